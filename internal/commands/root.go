// Package commands wires the lifehub CLI: the interactive console plus
// non-interactive subcommands for scripting against the same backend.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/config"
	"github.com/DragonRuins/life-hub-sub001/internal/version"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lifehub",
	Short: "Terminal console for the life dashboard",
	Long: `lifehub is the terminal client of a personal life dashboard. It
renders infrastructure monitoring, smart-home control, and the incident
log as an interactive console, and exposes the same data through plain
subcommands for scripting.

Running lifehub without arguments opens the interactive console.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("backend-url", "", "backend base URL")
	rootCmd.PersistentFlags().String("token", "", "backend bearer token")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// These should never fail as flags are defined above
	_ = viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("backend-url")) //nolint:errcheck
	_ = viper.BindPFlag("backend.token", rootCmd.PersistentFlags().Lookup("token"))     //nolint:errcheck
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level")) //nolint:errcheck

	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(incidentsCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. The console owns the terminal,
// so logs go to the configured file or nowhere.
func newLogger() *slog.Logger {
	var w io.Writer = io.Discard
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			w = f
		}
	}

	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.Logging.Format == "text" {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("app", version.Get().Short())
}

// newClient builds the backend client from the loaded configuration.
func newClient(logger *slog.Logger) (*client.Client, error) {
	opts := []client.Option{
		client.WithLogger(logger),
		client.WithBackgroundRate(cfg.Backend.BackgroundRate),
		client.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}),
	}
	if cfg.Backend.Token != "" {
		opts = append(opts, client.WithToken(cfg.Backend.Token))
	}
	return client.New(cfg.Backend.URL, opts...)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Println(info.String())

		if cmd.Flag("verbose").Changed {
			fmt.Printf("\nDetails:\n")
			fmt.Printf("  Version:    %s\n", info.Version)
			fmt.Printf("  Git Commit: %s\n", info.GitCommit)
			fmt.Printf("  Built:      %s\n", info.BuildTime)
			fmt.Printf("  Go Version: %s\n", info.GoVersion)
			fmt.Printf("  Platform:   %s\n", info.Platform)
		}
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")
}
