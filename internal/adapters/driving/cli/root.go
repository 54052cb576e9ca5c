// Package cli implements the sercha-embed command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-embed/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-embed/internal/logger"
	"github.com/custodia-labs/sercha-embed/internal/observability"
)

var version = "dev"

// Services are the driving ports the commands run against.
type Services struct {
	// Settings is always available once the config directory opens.
	Settings driving.SettingsService

	// Embedding is nil when the configured model cannot be built.
	// EmbeddingErr then holds the reason.
	Embedding    driving.EmbeddingService
	EmbeddingErr error

	// Close releases caches and connections. Optional.
	Close func() error
}

// Bootstrap builds the services for configDir. An empty configDir
// selects the default location.
type Bootstrap func(ctx context.Context, configDir string) (*Services, error)

var (
	embeddingService driving.EmbeddingService
	settingsService  driving.SettingsService

	bootstrap       Bootstrap
	embeddingErr    error
	closeServices   func() error
	shutdownMetrics observability.ShutdownFunc

	verbose     bool
	configDir   string
	withMetrics bool
)

var rootCmd = &cobra.Command{
	Use:   "sercha-embed",
	Short: "Embed text of any length with a local BERT bi-encoder",
	Long: `sercha-embed turns text into unit-length embedding vectors.

Text longer than the model's input limit is split into chunks, each chunk
is embedded separately and the results are averaged by token count.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.sercha-embed)")
	rootCmd.PersistentFlags().BoolVar(&withMetrics, "metrics", false, "write OpenTelemetry metrics to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command until it finishes or ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if !needsServices(cmd) {
		return nil
	}

	if withMetrics {
		shutdown, err := observability.InstallStdout(cmd.ErrOrStderr(), observability.DefaultExportInterval)
		if err != nil {
			return err
		}
		shutdownMetrics = shutdown
	}

	if bootstrap == nil || settingsService != nil || embeddingService != nil {
		return nil
	}

	svcs, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return err
	}
	settingsService = svcs.Settings
	embeddingService = svcs.Embedding
	embeddingErr = svcs.EmbeddingErr
	closeServices = svcs.Close
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	var errs []error
	if closeServices != nil {
		errs = append(errs, closeServices())
		closeServices = nil
	}
	if shutdownMetrics != nil {
		errs = append(errs, shutdownMetrics(context.WithoutCancel(cmd.Context())))
		shutdownMetrics = nil
	}
	return errors.Join(errs...)
}

// offlineAnnotation marks commands that run without services.
const offlineAnnotation = "offline"

// needsServices reports whether cmd talks to a service.
func needsServices(cmd *cobra.Command) bool {
	if cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd {
		return false
	}
	_, offline := cmd.Annotations[offlineAnnotation]
	return !offline
}

// requireEmbedding returns the embedding service or explains why there is none.
func requireEmbedding() (driving.EmbeddingService, error) {
	if embeddingService != nil {
		return embeddingService, nil
	}
	if embeddingErr != nil {
		return nil, fmt.Errorf("embedding service unavailable: %w", embeddingErr)
	}
	return nil, errors.New("embedding service not configured")
}

// requireSettings returns the settings service.
func requireSettings() (driving.SettingsService, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService, nil
}
