package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath      string
	dbPath          string
	logLevel        string
	quiet           bool
	insecureCatalog bool
)

var rootCmd = &cobra.Command{
	Use:           "popcorn",
	Short:         "Search movies and keep a rated watch log",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("popcorn %s\n", Version)
		fmt.Println("Movie search & watch log")
		fmt.Println("github.com/pders01/popcorn")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/popcorn/config.toml",
	Run: func(_ *cobra.Command, _ []string) {
		home, _ := os.UserHomeDir()
		configFile := filepath.Join(home, ".config", "popcorn", "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to configuration file")
	flags.StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off (overrides config)")
	flags.BoolVar(&quiet, "quiet", false, "Skip startup banner")
	flags.BoolVar(&insecureCatalog, "insecure-catalog", false, "Allow an http or localhost catalog base URL")
	_ = flags.MarkHidden("insecure-catalog")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd, searchCmd, detailCmd, watchedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(_ *cobra.Command, _ []string) error {
	if !quiet {
		tui.ShowBanner(Version)
	}

	env, err := setup()
	if err != nil {
		return err
	}
	defer env.Close()

	app := tui.NewApp(env.session, env.searcher, env.cfg)
	defer app.Shutdown()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
