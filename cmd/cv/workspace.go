package main

import (
	"fmt"
	"io"
	"os"

	"cv-go/internal/app"
	"cv-go/internal/cv"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassphrase takes the passphrase from CV_PASSPHRASE, or prompts for it
// on the terminal without echo. With confirm it is asked for twice.
func readPassphrase(cmd *cobra.Command, confirm bool) (string, error) {
	if p := os.Getenv("CV_PASSPHRASE"); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal to read the passphrase from; set CV_PASSPHRASE")
	}

	prompt := func(label string) (string, error) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}

	p, err := prompt("Passphrase: ")
	if err != nil {
		return "", err
	}
	if confirm {
		again, err := prompt("Repeat passphrase: ")
		if err != nil {
			return "", err
		}
		if again != p {
			return "", fmt.Errorf("passphrases do not match")
		}
	}
	return p, nil
}

func printImportResult(w io.Writer, res cv.ImportResult) {
	if res.Malformed {
		fmt.Fprintln(w, "Import payload is not a record array; nothing was changed.")
		return
	}
	fmt.Fprintf(w, "Imported %d record(s), skipped %d\n", res.Imported, res.Skipped)
}

// workspace command
var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Whole-workspace status, export, import and archives",
}

var workspaceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace status",
	RunE: runWithApp("WorkspaceStatus", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		st, err := a.Status(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Workspace: %s\n", st.WorkspaceID)
		fmt.Fprintf(out, "Database:  %s\n", st.DatabasePath)
		fmt.Fprintf(out, "Schema:    v%d of v%d", st.Schema.Version, st.Schema.Latest)
		if st.Schema.Dirty {
			fmt.Fprint(out, " (dirty)")
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Empty:     %t\n", st.Empty)
		fmt.Fprintf(out, "Keys:      %t\n", st.Sealed)
		return nil
	}),
}

var workspaceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every record as a JSON array",
	RunE: runWithApp("Export", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" || path == "-" {
			return a.ExportJSON(cmd.Context(), cmd.OutOrStdout())
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := a.ExportJSON(cmd.Context(), f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}),
}

var workspaceImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace every record with a JSON export",
	RunE: runWithApp("Import", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		path, _ := cmd.Flags().GetString("file")
		var r io.Reader = cmd.InOrStdin()
		if path != "" && path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer f.Close()
			r = f
		}
		res, err := a.ImportJSON(cmd.Context(), r)
		if err != nil {
			return err
		}
		printImportResult(cmd.OutOrStdout(), res)
		return nil
	}),
}

var workspaceKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the key pair that seals archives",
	RunE: runWithApp("Keygen", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		p, err := readPassphrase(cmd, true)
		if err != nil {
			return err
		}
		if err := a.Keygen(p); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Keys generated.")
		return nil
	}),
}

var workspaceBackupCmd = &cobra.Command{
	Use:   "backup DEST",
	Short: "Copy the database file to DEST",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("Backup", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		dest, err := a.Backup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database copied to %s\n", dest)
		return nil
	}),
}

// archive subcommands
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Sealed exports stored in a vault",
}

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Seal the workspace into a vault",
	RunE: runWithApp("ArchiveExport", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		vaultName, _ := cmd.Flags().GetString("vault")
		name, err := a.ExportArchive(cmd.Context(), vaultName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Archived as %s\n", name)
		return nil
	}),
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archives in a vault",
	RunE: runWithApp("ArchiveList", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		vaultName, _ := cmd.Flags().GetString("vault")
		archives, err := a.ListArchives(cmd.Context(), vaultName)
		if err != nil {
			return err
		}
		if len(archives) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No archives.")
			return nil
		}
		for _, ar := range archives {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %d\n", ar.Name, ar.Size)
		}
		return nil
	}),
}

var archiveImportCmd = &cobra.Command{
	Use:   "import [NAME]",
	Short: "Restore the workspace from an archive (default the newest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: runWithApp("ArchiveImport", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		vaultName, _ := cmd.Flags().GetString("vault")
		var name string
		if len(args) > 0 {
			name = args[0]
		}
		var passphrase string
		if a.Config().Encryption.Type == "" || a.Config().Encryption.Type == "age" {
			p, err := readPassphrase(cmd, false)
			if err != nil {
				return err
			}
			passphrase = p
		}
		res, err := a.ImportArchive(cmd.Context(), vaultName, name, passphrase)
		if err != nil {
			return err
		}
		printImportResult(cmd.OutOrStdout(), res)
		return nil
	}),
}

func init() {
	workspaceExportCmd.Flags().StringP("file", "f", "", "Output file (default stdout)")
	workspaceImportCmd.Flags().StringP("file", "f", "", "Input file (default stdin)")

	archiveCmd.PersistentFlags().String("vault", "", "Vault name (default the first configured)")
	archiveCmd.AddCommand(archiveExportCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveImportCmd)

	for _, c := range []*cobra.Command{workspaceStatusCmd, workspaceExportCmd, workspaceImportCmd, workspaceKeygenCmd, workspaceBackupCmd, archiveCmd} {
		workspaceCmd.AddCommand(c)
	}
}
