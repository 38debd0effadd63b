package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storysearch/surfacer/pkg/config"
	"github.com/storysearch/surfacer/pkg/logger"
)

func executeCLI() error {
	return buildRootCommand().Execute()
}

func buildRootCommand() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "surfacer",
		Short: "Predictive content-surfacing engine for StorySearch",
		Long: strings.TrimSpace(`surfacer tracks user activity (searches, views, clicks, dwell time) and
surfaces ranked content recommendations from behavior, time-of-day context,
trending picks, and view-similarity.

Run the HTTP gateway for UI integration, or the repl for a local session.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")

	root.AddCommand(newOnboardCommand())
	root.AddCommand(newGatewayCommand())
	root.AddCommand(newReplCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newOnboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.surfacer config and workspace",
		Example: "  surfacer onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return onboard()
		},
	}
}

func onboard() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists at %s\n", configPath)
		fmt.Print("Overwrite? (y/n): ")
		reader := bufio.NewReader(os.Stdin)
		response, readErr := reader.ReadString('\n')
		if readErr != nil {
			fmt.Println("Aborted.")
			return nil
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	workspace := cfg.WorkspacePath()
	if err := os.MkdirAll(filepath.Join(workspace, "state"), 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	fmt.Printf("%s is ready!\n", appName)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Try a local session: surfacer repl")
	fmt.Println("  2. Run the HTTP gateway: surfacer gateway")
	fmt.Println("  3. (Optional) Point content.api_base at your content API in", configPath)
	fmt.Println("  4. (Optional) Configure channels.discord for scheduled digests")
	return nil
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show surfacer configuration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return status()
		},
	}
}

func status() error {
	configPath := getConfigPath()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("%s status\n\n", appName)
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("  Config:    %s\n", configPath)
	} else {
		fmt.Printf("  Config:    %s (not found, using defaults)\n", configPath)
	}
	fmt.Printf("  Workspace: %s\n", cfg.WorkspacePath())

	dbPath := filepath.Join(cfg.WorkspacePath(), "state", "behavior.db")
	if _, err := os.Stat(dbPath); err == nil {
		fmt.Printf("  Behavior:  %s\n", dbPath)
	} else {
		fmt.Printf("  Behavior:  %s (no tracked activity yet)\n", dbPath)
	}

	fmt.Printf("  Content:   %s", cfg.Content.Mode)
	if cfg.Content.Mode == "http" {
		fmt.Printf(" (%s)", cfg.Content.APIBase)
	}
	fmt.Println()

	fmt.Printf("  Strategies: behavior=%t context=%t trending=%t\n",
		cfg.Engine.EnableBehaviorTracking,
		cfg.Engine.EnableContextualAnalysis,
		cfg.Engine.EnableTrendingContent)
	fmt.Printf("  Gateway:   %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	if cfg.Digest.Enabled {
		fmt.Printf("  Digest:    enabled (%s)\n", cfg.Digest.Schedule)
	} else {
		fmt.Println("  Digest:    disabled")
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

func debugFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("debug", "d", false, "Enable debug logging")
}

func applyDebug(cmd *cobra.Command) {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logger.SetLevel(logger.DEBUG)
	}
}

// applyLogLevel sets the configured level unless --debug already lowered it.
func applyLogLevel(cmd *cobra.Command, cfg *config.Config) {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logger.SetLevel(logger.DEBUG)
	case "warn":
		logger.SetLevel(logger.WARN)
	case "error":
		logger.SetLevel(logger.ERROR)
	case "", "info":
	default:
		logger.WarnCF("config", "Unknown log level, keeping info", map[string]any{
			"level": cfg.Log.Level,
		})
	}
}
