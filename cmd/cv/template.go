package main

import (
	"encoding/json"
	"fmt"

	"cv-go/internal/app"
	"cv-go/internal/model"

	"github.com/spf13/cobra"
)

func readTemplate(cmd *cobra.Command) (model.Template, error) {
	var t model.Template
	payload, err := readPayload(cmd)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decoding template: %w", err)
	}
	return t, nil
}

// template command
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates, built-in first",
	RunE: runWithApp("ListTemplates", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ctx := cmd.Context()
		templates, err := a.Service().Templates.List(ctx)
		if err != nil {
			return err
		}
		selected, err := a.Service().Templates.Selected(ctx)
		if err != nil {
			return err
		}
		for _, t := range templates {
			marker := " "
			if t.ID == selected.ID {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-38s %s\n", marker, t.ID, t.Name)
		}
		return nil
	}),
}

var templateShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a template",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("ShowTemplate", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		t, err := a.Service().Templates.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), t)
	}),
}

var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a template from JSON",
	RunE: runWithApp("CreateTemplate", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		t, err := readTemplate(cmd)
		if err != nil {
			return err
		}
		id, err := a.Service().Templates.Create(cmd.Context(), t)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created template %s\n", id)
		return nil
	}),
}

var templateUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Replace a template's name, design and rules",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("UpdateTemplate", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		t, err := readTemplate(cmd)
		if err != nil {
			return err
		}
		t.ID = args[0]
		if err := a.Service().Templates.Update(cmd.Context(), t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated template %s\n", t.ID)
		return nil
	}),
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("DeleteTemplate", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		if err := a.Service().Templates.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", args[0])
		return nil
	}),
}

var templateSelectCmd = &cobra.Command{
	Use:   "select ID",
	Short: "Make a template the active one",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("SelectTemplate", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		return a.Service().Templates.Select(cmd.Context(), args[0])
	}),
}

func init() {
	for _, c := range []*cobra.Command{templateListCmd, templateShowCmd, templateCreateCmd, templateUpdateCmd, templateDeleteCmd, templateSelectCmd} {
		templateCmd.AddCommand(c)
	}
	addPayloadFlags(templateCreateCmd)
	addPayloadFlags(templateUpdateCmd)
}
