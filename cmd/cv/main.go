package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"cv-go/internal/app"
	"cv-go/internal/config"
	"cv-go/internal/model"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a CVApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddEntity", "Render").
func newApp(operation string, args ...string) (*app.CVApp, error) {
	defaults, err := app.ResolveDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewCVApp(cfg, operation, args...)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// runWithApp builds the app for one command, runs fn and records its outcome.
func runWithApp(operation string, fn func(cmd *cobra.Command, args []string, a *app.CVApp) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(operation, args...)
		if err != nil {
			return err
		}
		defer a.Close()

		err = fn(cmd, args, a)
		a.Fail(err)
		return err
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// langFlag returns the --lang flag as a LanguageID. Empty is canonical.
func langFlag(cmd *cobra.Command) model.LanguageID {
	lang, _ := cmd.Flags().GetString("lang")
	return model.LanguageID(lang)
}

// readPayload returns the JSON given with --data, or read from --file
// ("-" is stdin).
func readPayload(cmd *cobra.Command) ([]byte, error) {
	if data, _ := cmd.Flags().GetString("data"); data != "" {
		return []byte(data), nil
	}
	path, _ := cmd.Flags().GetString("file")
	switch path {
	case "":
		return nil, fmt.Errorf("either --data or --file is required")
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	default:
		return os.ReadFile(path)
	}
}

func addPayloadFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "JSON payload")
	cmd.Flags().StringP("file", "f", "", "Read the JSON payload from a file (- for stdin)")
}

var rootCmd = &cobra.Command{
	Use:           "cv",
	Short:         "Multi-language CV data manager",
	SilenceUsage:  true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.ResolveDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		workspaceID := uuid.New().String()
		cfg := config.NewConfig(workspaceID, defaults.BaseDir)
		cfg.LogDir = defaults.LogDir

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Workspace ID: %s\n", workspaceID)
		fmt.Fprintf(out, "Base Dir: %s\n", defaults.BaseDir)
		fmt.Fprintf(out, "Log Dir: %s\n", defaults.LogDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.ResolveDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Workspace ID: %s\n", cfg.WorkspaceID)
		fmt.Fprintf(out, "Base Dir:     %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:      %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Database:     %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Fprintf(out, "Encryption:   %s\n", cfg.Encryption.Type)
		for _, v := range cfg.Vaults {
			fmt.Fprintf(out, "Vault:        %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

// render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Resolve the CV through a template and print it as JSON",
	RunE: runWithApp("Render", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		templateID, _ := cmd.Flags().GetString("template")
		r, err := a.Render(cmd.Context(), langFlag(cmd), templateID)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), r)
	}),
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	renderCmd.Flags().String("lang", "", "Language to render (default canonical)")
	renderCmd.Flags().StringP("template", "t", "", "Template ID (default the selected template)")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(entityCmd)
	rootCmd.AddCommand(sectionCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(applicationCmd)
	rootCmd.AddCommand(workspaceCmd)
}
