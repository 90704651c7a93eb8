package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/bbcloud/bitbucket"
	"github.com/s0up4200/bbcloud/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *bitbucket.Client

	// Command flags
	maxItems   int
	filterExpr string
	query      string
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bbcloud",
	Short: "A command line client for the Bitbucket Cloud REST API",
	Long: `bbcloud talks to the Bitbucket Cloud 1.0 and 2.0 REST APIs.

It lists and inspects repositories, pull requests, issues, branches and
pipelines, and supports basic, OAuth1 and OAuth2 authentication.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(whoamiCmd)
}

// initializeApp loads the configuration and creates the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	client, err = newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create Bitbucket client: %w", err)
	}

	logger.Debug().
		Str("auth", client.Authenticator().Scheme()).
		Str("api", client.BaseURL(bitbucket.V2)).
		Msg("Client ready")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	user, err := client.Users.Current(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	if jsonOutput {
		return printJSON(user)
	}

	fmt.Printf("%s (%s)\n", user.DisplayName, user.Username)
	fmt.Printf("  Account ID: %s\n", user.AccountID)
	fmt.Printf("  UUID:       %s\n", user.UUID)
	if user.CreatedOn != nil {
		fmt.Printf("  Joined:     %s\n", user.CreatedOn.Format("2006-01-02"))
	}
	return nil
}
