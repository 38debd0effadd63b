package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Engine   EngineConfig   `json:"engine"`
	Storage  StorageConfig  `json:"storage"`
	Content  ContentConfig  `json:"content"`
	Gateway  GatewayConfig  `json:"gateway"`
	Digest   DigestConfig   `json:"digest"`
	Channels ChannelsConfig `json:"channels"`
	Log      LogConfig      `json:"log"`
	mu       sync.RWMutex
}

type LogConfig struct {
	Level string `json:"level" env:"SURFACER_LOG_LEVEL"` // debug, info, warn, error
}

// EngineConfig gates the recommendation strategies and bounds aggregation.
type EngineConfig struct {
	EnableBehaviorTracking   bool `json:"enable_behavior_tracking" env:"SURFACER_ENGINE_ENABLE_BEHAVIOR_TRACKING"`
	EnableContextualAnalysis bool `json:"enable_contextual_analysis" env:"SURFACER_ENGINE_ENABLE_CONTEXTUAL_ANALYSIS"`
	EnableTrendingContent    bool `json:"enable_trending_content" env:"SURFACER_ENGINE_ENABLE_TRENDING_CONTENT"`
	MaxRecommendations       int  `json:"max_recommendations" env:"SURFACER_ENGINE_MAX_RECOMMENDATIONS"`
	DebounceMS               int  `json:"debounce_ms" env:"SURFACER_ENGINE_DEBOUNCE_MS"`
	StrategyTimeoutMS        int  `json:"strategy_timeout_ms" env:"SURFACER_ENGINE_STRATEGY_TIMEOUT_MS"`
}

type StorageConfig struct {
	Workspace string `json:"workspace" env:"SURFACER_STORAGE_WORKSPACE"`
}

// ContentConfig selects the content lookup backend. Mode "catalog" uses the
// built-in deterministic catalog; "http" talks to a content API.
type ContentConfig struct {
	Mode      string `json:"mode" env:"SURFACER_CONTENT_MODE"`
	APIBase   string `json:"api_base" env:"SURFACER_CONTENT_API_BASE"`
	CacheSize int    `json:"cache_size" env:"SURFACER_CONTENT_CACHE_SIZE"`
}

type GatewayConfig struct {
	Host string `json:"host" env:"SURFACER_GATEWAY_HOST"`
	Port int    `json:"port" env:"SURFACER_GATEWAY_PORT"`
}

// DigestConfig controls scheduled recommendation digests.
type DigestConfig struct {
	Enabled  bool   `json:"enabled" env:"SURFACER_DIGEST_ENABLED"`
	Schedule string `json:"schedule" env:"SURFACER_DIGEST_SCHEDULE"` // cron expression
}

type ChannelsConfig struct {
	Discord DiscordConfig `json:"discord"`
}

type DiscordConfig struct {
	Token     string              `json:"token" env:"SURFACER_CHANNELS_DISCORD_TOKEN"`
	ChannelID string              `json:"channel_id" env:"SURFACER_CHANNELS_DISCORD_CHANNEL_ID"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"SURFACER_CHANNELS_DISCORD_ALLOW_FROM"`
}

func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			EnableBehaviorTracking:   true,
			EnableContextualAnalysis: true,
			EnableTrendingContent:    true,
			MaxRecommendations:       10,
			DebounceMS:               1000,
			StrategyTimeoutMS:        4000,
		},
		Storage: StorageConfig{
			Workspace: "~/.surfacer/workspace",
		},
		Content: ContentConfig{
			Mode:      "catalog",
			APIBase:   "",
			CacheSize: 256,
		},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 18920,
		},
		Digest: DigestConfig{
			Enabled:  false,
			Schedule: "0 9 * * *", // daily at 09:00
		},
		Channels: ChannelsConfig{
			Discord: DiscordConfig{
				Token:     "",
				ChannelID: "",
				AllowFrom: FlexibleStringSlice{},
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) WorkspacePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Storage.Workspace)
}

// DigestChannelID returns the Discord channel digests are delivered to.
func (c *Config) DigestChannelID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Channels.Discord.ChannelID
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
