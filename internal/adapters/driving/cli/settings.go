package cli

import (
	"bufio"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

var cacheBackendFlag string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding model, inference server and cache.

Use subcommands to change a single setting or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsBaseURLCmd = &cobra.Command{
	Use:   "base-url [url]",
	Short: "Set the inference server endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsBaseURL,
}

var settingsCacheCmd = &cobra.Command{
	Use:   "cache [on|off]",
	Short: "Enable or disable the embedding cache",
	Long: `Enable or disable the embedding cache.

Available backends:
  memory - Kept for the lifetime of the process
  sqlite - Persisted in a local database`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsCache,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the current settings",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCacheCmd.Flags().StringVar(&cacheBackendFlag, "backend", "", "cache backend (memory or sqlite)")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsBaseURLCmd)
	settingsCmd.AddCommand(settingsCacheCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	p := newPrinter(cmd.OutOrStdout())
	cmd.Println(p.Title("Current Settings"))
	cmd.Println("================")
	cmd.Println()

	e := settings.Embedding
	cmd.Println("[Embedding]")
	cmd.Printf("  Model: %s\n", e.Model)
	cmd.Printf("  Base URL: %s\n", e.BaseURL)
	if e.Dimension > 0 {
		cmd.Printf("  Dimension: %d\n", e.Dimension)
	}
	if e.Pooling != "" {
		cmd.Printf("  Pooling: %s\n", e.Pooling.Description())
	}
	if e.MaxInputLength > 0 {
		cmd.Printf("  Max input length: %d\n", e.MaxInputLength)
	}
	if e.Concurrency > 0 {
		cmd.Printf("  Concurrency: %d\n", e.Concurrency)
	}
	cmd.Printf("  Timeout: %s\n", e.Timeout)
	if e.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", e.RequestsPerSecond)
	} else {
		cmd.Printf("  Rate limit: none\n")
	}
	cmd.Println()

	c := settings.Cache
	cmd.Println("[Cache]")
	if c.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Backend: %s\n", c.Backend.Description())
		if c.Dir != "" {
			cmd.Printf("  Directory: %s\n", c.Dir)
		}
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("%s %v\n", p.Warning("Warning:"), err)
		cmd.Println("Run 'sercha-embed settings wizard' to fix configuration issues.")
	} else {
		cmd.Println(p.Success("Configuration is valid."))
	}

	return nil
}

func runSettingsBaseURL(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	if err := svc.SetBaseURL(args[0]); err != nil {
		return fmt.Errorf("failed to set base URL: %w", err)
	}

	cmd.Printf("Base URL set to: %s\n", args[0])
	return nil
}

func runSettingsCache(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	enabled, ok := parseToggle(args[0])
	if !ok {
		return fmt.Errorf("expected on or off, got %q", args[0])
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	backend := settings.Cache.Backend
	if cacheBackendFlag != "" {
		backend = domain.CacheBackend(cacheBackendFlag)
	}

	if err := svc.SetCache(enabled, backend); err != nil {
		return fmt.Errorf("failed to configure cache: %w", err)
	}

	if enabled {
		cmd.Printf("Cache enabled: %s\n", backend.Description())
	} else {
		cmd.Println("Cache disabled")
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	if err := svc.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cmd.Println("Configuration is valid.")
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	current, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Sercha Embed Settings Wizard")
	cmd.Println("============================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Model
	cmd.Println("Step 1: Select Embedding Model")
	cmd.Println("------------------------------")
	models := domain.KnownModels()
	defaultModel := slices.Index(models, current.Embedding.Model) + 1
	if defaultModel == 0 {
		defaultModel = 1
	}
	for i, name := range models {
		spec, _ := domain.LookupModel(name)
		cmd.Printf("  %d. %s (%d dims, %s pooling)\n", i+1, name, spec.Dimension, spec.Pooling)
	}
	cmd.Printf("\nEnter choice [%d]: ", defaultModel)
	model := models[parseChoice(readLine(reader), len(models), defaultModel)-1]

	if err := svc.SetModel(model); err != nil {
		return fmt.Errorf("failed to set model: %w", err)
	}
	cmd.Printf("Set model to: %s\n\n", model)

	// Step 2: Inference server
	cmd.Println("Step 2: Inference Server")
	cmd.Println("------------------------")
	cmd.Printf("Enter base URL [%s]: ", current.Embedding.BaseURL)
	baseURL := readLine(reader)
	if baseURL == "" {
		baseURL = current.Embedding.BaseURL
	}
	if err := svc.SetBaseURL(baseURL); err != nil {
		return fmt.Errorf("failed to set base URL: %w", err)
	}
	cmd.Printf("Set base URL to: %s\n\n", baseURL)

	// Step 3: Cache
	cmd.Println("Step 3: Embedding Cache")
	cmd.Println("-----------------------")
	cmd.Print("Enable the cache? [y/N]: ")
	enabled := parseYesNo(readLine(reader), current.Cache.Enabled)

	backend := current.Cache.Backend
	if enabled {
		backends := domain.AllCacheBackends()
		defaultBackend := slices.Index(backends, backend) + 1
		if defaultBackend == 0 {
			defaultBackend = 1
		}
		for i, b := range backends {
			cmd.Printf("  %d. %s\n", i+1, b.Description())
		}
		cmd.Printf("\nEnter choice [%d]: ", defaultBackend)
		backend = backends[parseChoice(readLine(reader), len(backends), defaultBackend)-1]
	}
	if err := svc.SetCache(enabled, backend); err != nil {
		return fmt.Errorf("failed to configure cache: %w", err)
	}
	cmd.Println()

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func parseYesNo(input string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return defaultVal
	}
}

func parseToggle(input string) (enabled, ok bool) {
	switch strings.ToLower(input) {
	case "on", "true", "enable", "enabled":
		return true, true
	case "off", "false", "disable", "disabled":
		return false, true
	default:
		return false, false
	}
}
