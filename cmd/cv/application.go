package main

import (
	"fmt"

	"cv-go/internal/app"
	"cv-go/internal/cv"
	"cv-go/internal/model"

	"github.com/spf13/cobra"
)

// application command
var applicationCmd = &cobra.Command{
	Use:     "application",
	Aliases: []string{"app"},
	Short:   "Track job applications and the CV sent with each",
}

var applicationCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record an application with a snapshot of the CV",
	RunE: runWithApp("CreateApplication", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		f := cmd.Flags()
		in := cv.ApplicationInput{LanguageID: langFlag(cmd)}
		in.Company, _ = f.GetString("company")
		in.Position, _ = f.GetString("position")
		in.URL, _ = f.GetString("url")
		in.Date, _ = f.GetString("date")
		in.Salary, _ = f.GetString("salary")
		in.Currency, _ = f.GetString("currency")
		in.Notes, _ = f.GetString("notes")
		in.TemplateID, _ = f.GetString("template")
		status, _ := f.GetString("status")
		in.Status = model.ApplicationStatus(status)

		created, err := a.Service().Applications.Create(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created application %s (template %s)\n", created.ID, created.TemplateID)
		return nil
	}),
}

var applicationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications, most recent first",
	RunE: runWithApp("ListApplications", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		apps, err := a.Service().Applications.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(apps) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No applications recorded.")
			return nil
		}
		for _, ap := range apps {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-10s  %s / %s\n",
				ap.ID, ap.Date, ap.Status, ap.Company, ap.Position)
		}
		return nil
	}),
}

var applicationShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show an application with its CV snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("ShowApplication", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ap, err := a.Service().Applications.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), ap)
	}),
}

var applicationUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change an application's own fields",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("UpdateApplication", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		var patch cv.ApplicationPatch
		patch.Company = stringFlagIfChanged(cmd, "company")
		patch.Position = stringFlagIfChanged(cmd, "position")
		patch.URL = stringFlagIfChanged(cmd, "url")
		patch.Date = stringFlagIfChanged(cmd, "date")
		patch.Salary = stringFlagIfChanged(cmd, "salary")
		patch.Currency = stringFlagIfChanged(cmd, "currency")
		patch.Notes = stringFlagIfChanged(cmd, "notes")
		if s := stringFlagIfChanged(cmd, "status"); s != nil {
			status := model.ApplicationStatus(*s)
			patch.Status = &status
		}

		ap, err := a.Service().Applications.Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated application %s (%s)\n", ap.ID, ap.Status)
		return nil
	}),
}

var applicationDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("DeleteApplication", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		if err := a.Service().Applications.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted application %s\n", args[0])
		return nil
	}),
}

func stringFlagIfChanged(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func addApplicationFlags(cmd *cobra.Command) {
	cmd.Flags().String("company", "", "Company name")
	cmd.Flags().String("position", "", "Position applied for")
	cmd.Flags().String("url", "", "Job posting URL")
	cmd.Flags().String("date", "", "Application date, YYYY-MM-DD (default today)")
	cmd.Flags().String("status", "", "draft, sent, interview, offer, rejected, accepted or withdrawn")
	cmd.Flags().String("salary", "", "Expected salary")
	cmd.Flags().String("currency", "", "ISO currency code (default from settings)")
	cmd.Flags().String("notes", "", "Free-form notes")
}

func init() {
	addApplicationFlags(applicationCreateCmd)
	applicationCreateCmd.Flags().String("lang", "", "Language of the CV snapshot (default canonical)")
	applicationCreateCmd.Flags().StringP("template", "t", "", "Template ID (default the selected template)")
	applicationCreateCmd.MarkFlagRequired("company")
	applicationCreateCmd.MarkFlagRequired("position")
	addApplicationFlags(applicationUpdateCmd)

	for _, c := range []*cobra.Command{applicationCreateCmd, applicationListCmd, applicationShowCmd, applicationUpdateCmd, applicationDeleteCmd} {
		applicationCmd.AddCommand(c)
	}
}
