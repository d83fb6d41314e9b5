package main

import (
	"context"
	"encoding/json"
	"fmt"

	"cv-go/internal/app"
	"cv-go/internal/cv"
	"cv-go/internal/model"

	"github.com/spf13/cobra"
)

type sectionOps struct {
	kind model.Kind
	show func(ctx context.Context, lang model.LanguageID) (any, error)
	set  func(ctx context.Context, lang model.LanguageID, payload []byte) error
}

func singletonOps[T any, P cv.SingletonEntity[T]](r *cv.SingletonRepository[T, P]) sectionOps {
	return sectionOps{
		kind: r.Kind(),
		show: func(ctx context.Context, lang model.LanguageID) (any, error) {
			v, err := r.Get(ctx, lang)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, fmt.Errorf("%s for %s: %w", r.Kind(), lang, cv.ErrNotFound)
			}
			return v, nil
		},
		set: func(ctx context.Context, lang model.LanguageID, payload []byte) error {
			var v T
			if err := json.Unmarshal(payload, &v); err != nil {
				return fmt.Errorf("decoding %s: %w", r.Kind(), err)
			}
			return r.Save(ctx, lang, v)
		},
	}
}

func lookupSection(a *app.CVApp, kind string) (sectionOps, error) {
	svc := a.Service()
	switch model.Kind(kind) {
	case model.KindPersonal:
		return singletonOps(svc.Personal), nil
	case model.KindLinks:
		return singletonOps(svc.Links), nil
	case model.KindFooter:
		return singletonOps(svc.Footer), nil
	case model.KindFreelance:
		return singletonOps(svc.Freelance), nil
	case model.KindSettings:
		return singletonOps(svc.Settings), nil
	default:
		return sectionOps{}, fmt.Errorf("unknown section %q (one of personal, links, footer, freelance, settings)", kind)
	}
}

// section command
var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Manage the one-per-language sections",
}

var sectionShowCmd = &cobra.Command{
	Use:   "show KIND",
	Short: "Show a section for --lang",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("ShowSection", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupSection(a, args[0])
		if err != nil {
			return err
		}
		v, err := ops.show(cmd.Context(), langFlag(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), v)
	}),
}

var sectionSetCmd = &cobra.Command{
	Use:   "set KIND",
	Short: "Replace a section for --lang",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp("SetSection", func(cmd *cobra.Command, args []string, a *app.CVApp) error {
		ops, err := lookupSection(a, args[0])
		if err != nil {
			return err
		}
		payload, err := readPayload(cmd)
		if err != nil {
			return err
		}
		if err := ops.set(cmd.Context(), langFlag(cmd), payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s for %s\n", ops.kind, langFlag(cmd))
		return nil
	}),
}

func init() {
	sectionCmd.AddCommand(sectionShowCmd)
	sectionCmd.AddCommand(sectionSetCmd)
	sectionCmd.PersistentFlags().String("lang", "", "Language (default canonical)")
	addPayloadFlags(sectionSetCmd)
}
