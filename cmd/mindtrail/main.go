package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mindtrail/mindtrail/internal/config"
	"github.com/mindtrail/mindtrail/internal/export"
	"github.com/mindtrail/mindtrail/internal/layout"
	"github.com/mindtrail/mindtrail/internal/mapclient"
	"github.com/mindtrail/mindtrail/internal/tui"
)

var version = "dev"

// logDir returns the directory for the rotating debug log.
func logDir() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "mindtrail")
	}
	return filepath.Join(os.TempDir(), "mindtrail")
}

// loadConfig loads the layered config and applies CLI flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Apply CLI flag overrides (only if explicitly set)
	if cmd.Flags().Changed(FlagBackendURL) {
		cfg.Backend.BaseURL = viper.GetString(FlagBackendURL)
	}
	if cmd.Flags().Changed(FlagTimeout) {
		cfg.Backend.Timeout = viper.GetDuration(FlagTimeout)
	}
	if cmd.Flags().Changed(FlagChatEnabled) {
		cfg.Chat.Enabled = viper.GetBool(FlagChatEnabled)
	}
	return cfg, nil
}

// newClient builds the backend client from config.
func newClient(cfg *config.Config) *mapclient.HTTPClient {
	client := mapclient.NewHTTPClient(cfg.Backend.BaseURL)
	if cfg.Backend.Timeout > 0 {
		client = client.WithTimeout(cfg.Backend.Timeout)
	}
	return client
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	viper.SetEnvPrefix("MINDTRAIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "mindtrail",
		Short: "Interactive knowledge-map explorer",
		Long: `mindtrail turns a concept you want to learn into a navigable knowledge
map. It asks the mindtrail backend to break the concept into a tree of
prerequisite concepts, lays the tree out, and lets you pan, zoom, and ask
for explanations of individual concepts.`,
		SilenceUsage: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .mindtrail/config.yaml)")
	rootCmd.PersistentFlags().String(FlagBackendURL, "", "Backend base URL (default: http://localhost:8000)")
	rootCmd.PersistentFlags().Duration(FlagTimeout, 0, "Backend request timeout")

	// Bind all flags to viper
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mindtrail %s\n", version)
		},
	}

	// Explore command
	exploreCmd := &cobra.Command{
		Use:   "explore [concept]",
		Short: "Open the interactive knowledge-map TUI",
		Long: `Open the interactive terminal UI. With a concept argument the map is
generated immediately; otherwise type one into the search bar.

Keys: arrows/hjkl pan, +/- zoom, f fit, n/p select, enter explain,
c chat, / search, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetBool(FlagVerbose) {
				logLevel.Set(slog.LevelDebug)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("explore requires a terminal (use 'mindtrail export' for non-interactive output)")
			}

			// Redirect logging to a rotating file so it cannot corrupt
			// the display.
			dir := logDir()
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create log directory: %w", err)
			}
			tuiLog, err := SetupTUILogger(dir, logLevel, cfg.LogRotation)
			if err != nil {
				return err
			}
			defer func() { _ = tuiLog.Close() }()
			slog.SetDefault(tuiLog.Logger)

			slog.Info("mindtrail starting",
				"version", version,
				"backend", cfg.Backend.BaseURL,
			)

			var initialQuery string
			if len(args) > 0 {
				initialQuery = args[0]
			}

			app := tui.New(newClient(cfg), cfg, tui.WithInitialQuery(initialQuery))
			return app.Run()
		},
	}

	exploreCmd.Flags().Bool(FlagChatEnabled, true, "Enable the follow-up chat pane")
	exploreCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	// Export command
	exportCmd := &cobra.Command{
		Use:   "export <concept>",
		Short: "Generate a knowledge map and write it as SVG",
		Long: `Generate a knowledge map for a concept and write an SVG snapshot,
laid out the same way the interactive view lays it out.

Writes to stdout when --output is "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetBool(FlagVerbose) {
				logLevel.Set(slog.LevelDebug)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			concept := args[0]
			client := newClient(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Backend.Timeout)
			defer cancel()

			logger.Info("generating map", "concept", concept, "backend", cfg.Backend.BaseURL)
			tree, err := client.GenerateMap(ctx, concept)
			if err != nil {
				return err
			}

			lay, err := layout.Build(tree, layout.Canvas{
				Width:   cfg.Layout.CanvasWidth,
				Height:  cfg.Layout.CanvasHeight,
				Padding: cfg.Layout.Padding,
			}, layout.Options{
				SiblingGap:  cfg.Layout.SiblingGap,
				SubtreeGap:  cfg.Layout.SubtreeGap,
				LabelBudget: cfg.Layout.LabelBudget,
			})
			if err != nil {
				return fmt.Errorf("layout: %w", err)
			}

			opts := export.Options{
				Width:   viper.GetInt(FlagWidth),
				Height:  viper.GetInt(FlagHeight),
				Palette: layout.Palette(cfg.Palette),
				Collision: layout.CollisionOptions{
					MaxPasses: cfg.Collision.MaxPasses,
					MarginX:   cfg.Collision.MarginX,
					MarginY:   cfg.Collision.MarginY,
				},
				Title: viper.GetString(FlagTitle),
			}
			if opts.Title == "" {
				opts.Title = concept
			}

			out := viper.GetString(FlagOutput)
			var w io.Writer = os.Stdout
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			if err := export.WriteSVG(w, lay, opts); err != nil {
				return fmt.Errorf("write svg: %w", err)
			}
			if out != "-" {
				fmt.Fprintf(os.Stderr, "wrote %s\n", out)
			}
			return nil
		},
	}

	exportCmd.Flags().StringP(FlagOutput, "o", "-", "Output file path (\"-\" for stdout)")
	exportCmd.Flags().Int(FlagWidth, 1200, "SVG width in px")
	exportCmd.Flags().Int(FlagHeight, 800, "SVG height in px")
	exportCmd.Flags().String(FlagTitle, "", "Title rendered in the SVG (default: the concept)")
	exportCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	// Register all commands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(exportCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
