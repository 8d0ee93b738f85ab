package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/cfclient/config"
	"github.com/s0up4200/cfclient/confluence"
	"github.com/s0up4200/cfclient/filter"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	cfgFile string
	cfg     *config.Config
	logger  = zerolog.Nop()
	client  confluence.API
	filters *filter.Manager

	// Shared command flags
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cfclient",
	Short: "Work with Confluence Cloud content from the command line",
	Long: `cfclient lists, creates and updates Confluence pages and blog posts and
manages their attachments through the Confluence REST API.

Results can be narrowed with filter expressions such as:
  Space == "DOCS" and Modified < daysAgo(90)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json)")
}

// initializeApp loads the configuration and builds the client. Commands that
// talk to Confluence use it as PreRunE.
func initializeApp(cmd *cobra.Command, args []string) error {
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("invalid output format: %s", outputFormat)
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, os.Stderr)

	client, err = newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create Confluence client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	return nil
}

// newClient builds an anonymous or authenticated client from cfg
func newClient(cfg *config.Config, logger zerolog.Logger) (*confluence.Client, error) {
	userAgent := cfg.Client.UserAgent
	if userAgent == "" {
		userAgent = "cfclient/" + version
	}

	opts := []confluence.Option{
		confluence.WithTimeout(cfg.Client.Timeout),
		confluence.WithUserAgent(userAgent),
		confluence.WithLogger(logger.With().Str("component", "confluence").Logger()),
	}

	auth := cfg.Auth.AuthMethod()
	if auth == nil {
		logger.Debug().Msg("No credentials configured, using anonymous access")
		return confluence.NewClient(cfg.Confluence.URL, opts...)
	}
	return confluence.NewAuthenticatedClient(cfg.Confluence.URL, auth, opts...)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(out),
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// filterExpression picks the filter to apply: command line expression,
// then preset, then the configured default. An empty result means no filter.
// Preset names are case-insensitive since viper lowercases map keys.
func filterExpression(m *filter.Manager, flagExpr, preset string, fc config.FilterConfig) (string, error) {
	if flagExpr != "" {
		return flagExpr, nil
	}
	if preset != "" {
		name := strings.ToLower(preset)
		if _, ok := m.GetFilter(name); !ok {
			return "", fmt.Errorf("preset '%s' not found in config", preset)
		}
		return name, nil
	}
	return fc.DefaultExpression, nil
}

// applyFilter narrows contents with the selected filter, if any
func applyFilter(cmd *cobra.Command, flagExpr, preset string, contents []confluence.Content) ([]confluence.Content, error) {
	expression, err := filterExpression(filters, flagExpr, preset, cfg.Filter)
	if err != nil {
		return nil, err
	}
	if expression == "" {
		return contents, nil
	}

	matches, err := filters.Apply(cmd.Context(), expression, contents)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	logger.Debug().
		Str("filter", expression).
		Int("total", len(contents)).
		Int("matched", len(matches)).
		Msg("Applied filter")
	return matches, nil
}
