package channels

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/storysearch/surfacer/pkg/bus"
	"github.com/storysearch/surfacer/pkg/config"
	"github.com/storysearch/surfacer/pkg/logger"
)

const (
	sendTimeout  = 10 * time.Second
	messageLimit = 1500 // Discord caps at 2000; leave headroom for clean splits
)

// DiscordChannel delivers recommendation digests to a Discord channel and
// answers "!recs" from allow-listed users with the current digest.
type DiscordChannel struct {
	*BaseChannel
	session  *discordgo.Session
	config   config.DiscordConfig
	onDemand func() string
}

// NewDiscordChannel creates the channel. onDemand renders the current digest
// for interactive "!recs" requests; nil disables the command.
func NewDiscordChannel(cfg config.DiscordConfig, onDemand func() string) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &DiscordChannel{
		BaseChannel: NewBaseChannel("discord", cfg.AllowFrom),
		session:     session,
		config:      cfg,
		onDemand:    onDemand,
	}, nil
}

func (c *DiscordChannel) Start(ctx context.Context) error {
	logger.InfoC("discord", "Starting Discord digest channel")

	c.session.AddHandler(c.handleMessage)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	c.setRunning(true)

	botUser, err := c.session.User("@me")
	if err != nil {
		return fmt.Errorf("failed to get bot user: %w", err)
	}
	logger.InfoCF("discord", "Discord digest channel connected", map[string]any{
		"username": botUser.Username,
		"user_id":  botUser.ID,
	})

	return nil
}

func (c *DiscordChannel) Stop(ctx context.Context) error {
	logger.InfoC("discord", "Stopping Discord digest channel")
	c.setRunning(false)

	if err := c.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}

	return nil
}

func (c *DiscordChannel) Send(ctx context.Context, msg bus.DigestMessage) error {
	if !c.IsRunning() {
		return fmt.Errorf("discord channel not running")
	}

	channelID := msg.ChatID
	if channelID == "" {
		channelID = c.config.ChannelID
	}
	if channelID == "" {
		return fmt.Errorf("discord channel id is empty")
	}
	if strings.TrimSpace(msg.Content) == "" {
		return nil
	}

	for _, chunk := range splitMessage(msg.Content, messageLimit) {
		if err := c.sendChunk(ctx, channelID, chunk); err != nil {
			return err
		}
	}

	return nil
}

// splitMessage splits long digests into chunks, preferring newline and space
// boundaries near the limit.
func splitMessage(content string, limit int) []string {
	var messages []string

	for len(content) > 0 {
		if len(content) <= limit {
			messages = append(messages, content)
			break
		}

		end := lastBoundary(content[:limit], '\n', 200)
		if end <= 0 {
			end = lastBoundary(content[:limit], ' ', 100)
		}
		if end <= 0 {
			end = limit
		}

		messages = append(messages, content[:end])
		content = strings.TrimSpace(content[end:])
	}

	return messages
}

// lastBoundary returns the position of the last occurrence of sep within the
// trailing window of s, or -1.
func lastBoundary(s string, sep byte, window int) int {
	start := len(s) - window
	if start < 0 {
		start = 0
	}
	for i := len(s) - 1; i >= start; i-- {
		if s[i] == sep {
			return i
		}
	}
	return -1
}

func (c *DiscordChannel) sendChunk(ctx context.Context, channelID, content string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.session.ChannelMessageSend(channelID, content)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send discord message: %w", err)
		}
		return nil
	case <-sendCtx.Done():
		return fmt.Errorf("send message timeout: %w", sendCtx.Err())
	}
}

func (c *DiscordChannel) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil {
		return
	}
	if m.Author.ID == s.State.User.ID {
		return
	}
	if c.onDemand == nil {
		return
	}
	if strings.TrimSpace(m.Content) != "!recs" {
		return
	}
	if !c.IsAllowed(m.Author.ID) {
		logger.DebugCF("discord", "Digest request rejected by allowlist", map[string]any{
			"user_id": m.Author.ID,
		})
		return
	}

	reply := c.onDemand()
	if strings.TrimSpace(reply) == "" {
		reply = "No recommendations yet. Track some activity first."
	}

	logger.DebugCF("discord", "Serving on-demand digest", map[string]any{
		"user_id": m.Author.ID,
	})

	for _, chunk := range splitMessage(reply, messageLimit) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			logger.ErrorCF("discord", "Failed to send digest reply", map[string]any{
				"error": err.Error(),
			})
			return
		}
	}
}
