package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/storysearch/surfacer/pkg/digest"
	"github.com/storysearch/surfacer/pkg/recommend"
)

func newReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive session against the local recommendation engine",
		Example: strings.TrimSpace(`
  surfacer repl
  > search dragon fantasy epics
  > recs`),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyDebug(cmd)
			return runRepl(cmd)
		},
	}
	debugFlag(cmd)
	return cmd
}

func runRepl(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyLogLevel(cmd, cfg)

	engine, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("%s Interactive mode (type 'help' for commands, Ctrl+C to exit)\n\n", appName)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("%s> ", appName),
		HistoryFile:     filepath.Join(os.TempDir(), ".surfacer_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	ctx := context.Background()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		command, rest := splitCommand(input)
		switch command {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return nil
		case "help":
			printReplHelp()
		case "search":
			if rest == "" {
				fmt.Println("Usage: search <query>")
				continue
			}
			engine.TrackSearch(ctx, rest)
			fmt.Printf("Tracked search: %q\n", rest)
		case "view":
			if rest == "" {
				fmt.Println("Usage: view <content-id>")
				continue
			}
			engine.TrackContentView(ctx, rest)
			fmt.Printf("Tracked view: %s\n", rest)
		case "click":
			parts := strings.Fields(rest)
			if len(parts) == 0 {
				fmt.Println("Usage: click <content-id> [context]")
				continue
			}
			clickContext := "repl"
			if len(parts) > 1 {
				clickContext = strings.Join(parts[1:], " ")
			}
			engine.TrackClick(ctx, parts[0], clickContext)
			fmt.Printf("Tracked click: %s\n", parts[0])
		case "time":
			engine.TrackTimeOnPage(ctx)
			fmt.Println("Recorded time on current page")
		case "recs", "refresh":
			var recs []recommend.Recommendation
			if command == "refresh" {
				recs = engine.Refresh(ctx)
			} else {
				recs = engine.Predictions()
			}
			if len(recs) == 0 {
				fmt.Println("No recommendations yet. Track some activity first.")
				continue
			}
			fmt.Println(digest.Format(recs))
		case "feedback":
			parts := strings.Fields(rest)
			if len(parts) != 2 {
				fmt.Println("Usage: feedback <recommendation-id> <positive|negative>")
				continue
			}
			if err := engine.RecordFeedback(parts[0], recommend.Sentiment(parts[1])); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("Recorded %s feedback for %s\n", parts[1], parts[0])
		case "behavior":
			printBehavior(engine)
		case "clear":
			if err := engine.ClearUserData(ctx); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Cleared all tracked activity")
		default:
			fmt.Printf("Unknown command: %s (type 'help')\n", command)
		}
	}
}

func splitCommand(input string) (string, string) {
	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])
	rest := ""
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}
	return command, rest
}

func printReplHelp() {
	fmt.Println("Commands:")
	fmt.Println("  search <query>               Track a search")
	fmt.Println("  view <content-id>            Track a content view")
	fmt.Println("  click <content-id> [ctx]     Track a click")
	fmt.Println("  time                         Record time spent on the current page")
	fmt.Println("  recs                         Show current recommendations")
	fmt.Println("  refresh                      Force a fresh analysis and show results")
	fmt.Println("  feedback <id> <sentiment>    Rate a recommendation (positive|negative)")
	fmt.Println("  behavior                     Dump the tracked behavior document")
	fmt.Println("  clear                        Erase all tracked activity")
	fmt.Println("  exit                         Quit")
}

func printBehavior(engine *recommend.Engine) {
	snap := engine.Behavior()
	fmt.Printf("Recent searches (%d): %s\n", len(snap.RecentSearches), strings.Join(snap.RecentSearches, ", "))
	fmt.Printf("Viewed content (%d): %s\n", len(snap.ViewedContent), strings.Join(snap.ViewedContent, ", "))
	fmt.Printf("Click patterns: %d\n", len(snap.ClickPatterns))
	if len(snap.TimeOnPage) > 0 {
		fmt.Println("Time on page (ms):")
		for id, ms := range snap.TimeOnPage {
			fmt.Printf("  %s: %d\n", id, ms)
		}
	}
}
