package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"cv-go/internal/app"
	"cv-go/internal/cv"
	"cv-go/internal/model"

	"github.com/spf13/cobra"
)

// entityOps erases the element type of a list repository for the CLI.
type entityOps struct {
	kind   model.Kind
	add    func(ctx context.Context, lang model.LanguageID, payload []byte) (int64, error)
	list   func(ctx context.Context, lang model.LanguageID) (any, error)
	get    func(ctx context.Context, id int64) (any, error)
	update func(ctx context.Context, id int64, fields cv.Fields) error
	delete func(ctx context.Context, id int64) error
	copy   func(ctx context.Context, id int64, lang model.LanguageID) (int64, error)
	hints  func(ctx context.Context, lang model.LanguageID) (any, error)
}

func listOps[T any, P cv.ListEntity[T]](r *cv.ListRepository[T, P]) entityOps {
	return entityOps{
		kind: r.Kind(),
		add: func(ctx context.Context, lang model.LanguageID, payload []byte) (int64, error) {
			var item T
			if err := json.Unmarshal(payload, &item); err != nil {
				return 0, fmt.Errorf("decoding %s: %w", r.Kind(), err)
			}
			return r.Add(ctx, lang, item)
		},
		list: func(ctx context.Context, lang model.LanguageID) (any, error) {
			return r.List(ctx, lang)
		},
		get: func(ctx context.Context, id int64) (any, error) {
			return r.Get(ctx, id)
		},
		update: r.Update,
		delete: r.Delete,
		copy:   r.CopyToLanguage,
		hints: func(ctx context.Context, lang model.LanguageID) (any, error) {
			return r.Hints(ctx, lang)
		},
	}
}

func entityKinds(svc *cv.Service) map[string]entityOps {
	return map[string]entityOps{
		string(model.KindExperience): listOps(svc.Experience),
		string(model.KindEducation):  listOps(svc.Education),
		string(model.KindCourse):     listOps(svc.Courses),
		string(model.KindSkill):      listOps(svc.Skills),
	}
}

func lookupEntity(a *app.CVApp, kind string) (entityOps, error) {
	kinds := entityKinds(a.Service())
	ops, ok := kinds[kind]
	if !ok {
		names := make([]string, 0, len(kinds))
		for k := range kinds {
			names = append(names, k)
		}
		sort.Strings(names)
		return entityOps{}, fmt.Errorf("unknown entity kind %q (one of %v)", kind, names)
	}
	return ops, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

// entity command
var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Manage experience, education, course and skill entries",
}

var entityAddCmd = &cobra.Command{
	Use:   "add KIND",
	Short: "Add an entry in a language",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("AddEntity", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupEntity(a, args[0])
		if err != nil {
			return err
		}
		payload, err := readPayload(cmd)
		if err != nil {
			return err
		}
		id, err := ops.add(cmd.Context(), langFlag(cmd), payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s %d\n", ops.kind, id)
		return nil
	}),
}

var entityListCmd = &cobra.Command{
	Use:   "list KIND",
	Short: "List the entries of one language",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("ListEntities", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupEntity(a, args[0])
		if err != nil {
			return err
		}
		items, err := ops.list(cmd.Context(), langFlag(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), items)
	}),
}

var entityGetCmd = &cobra.Command{
	Use:   "get KIND ID",
	Short: "Show one entry",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp("GetEntity", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupEntity(a, args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		item, err := ops.get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), item)
	}),
}

var entityUpdateCmd = &cobra.Command{
	Use:   "update KIND ID",
	Short: "Merge JSON fields into an entry",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp("UpdateEntity", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupEntity(a, args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		payload, err := readPayload(cmd)
		if err != nil {
			return err
		}
		var fields cv.Fields
		if err := json.Unmarshal(payload, &fields); err != nil {
			return fmt.Errorf("decoding fields: %w", err)
		}
		if err := ops.update(cmd.Context(), id, fields); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d\n", ops.kind, id)
		return nil
	}),
}

var entityDeleteCmd = &cobra.Command{
	Use:   "delete KIND ID",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp("DeleteEntity", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupEntity(a, args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := ops.delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", ops.kind, id)
		return nil
	}),
}

var entityCopyCmd = &cobra.Command{
	Use:   "copy KIND ID",
	Short: "Copy a canonical entry into the --lang language",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp("CopyEntity", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupEntity(a, args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		lang := langFlag(cmd)
		newID, err := ops.copy(cmd.Context(), id, lang)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied %s %d to %s as %d\n", ops.kind, id, lang, newID)
		return nil
	}),
}

// hint command
var hintCmd = &cobra.Command{
	Use:   "hint",
	Short: "Canonical entries not yet copied or dismissed in a language",
}

var hintListCmd = &cobra.Command{
	Use:   "list KIND",
	Short: "List pending hints for --lang",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("ListHints", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupEntity(a, args[0])
		if err != nil {
			return err
		}
		items, err := ops.hints(cmd.Context(), langFlag(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), items)
	}),
}

var hintDismissCmd = &cobra.Command{
	Use:   "dismiss KIND ID",
	Short: "Stop suggesting a canonical entry in --lang",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp("DismissHint", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupEntity(a, args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return a.Service().Hints.Dismiss(cmd.Context(), langFlag(cmd), ops.kind, id)
	}),
}

func init() {
	for _, c := range []*cobra.Command{entityAddCmd, entityListCmd, entityGetCmd, entityUpdateCmd, entityDeleteCmd, entityCopyCmd} {
		entityCmd.AddCommand(c)
	}
	entityAddCmd.Flags().String("lang", "", "Language of the new entry (default canonical)")
	entityListCmd.Flags().String("lang", "", "Language to list (default canonical)")
	entityCopyCmd.Flags().String("lang", "", "Target language")
	entityCopyCmd.MarkFlagRequired("lang")
	addPayloadFlags(entityAddCmd)
	addPayloadFlags(entityUpdateCmd)

	hintCmd.AddCommand(hintListCmd)
	hintCmd.AddCommand(hintDismissCmd)
	hintCmd.PersistentFlags().String("lang", "", "Overlay language")
	hintCmd.MarkPersistentFlagRequired("lang")
}
