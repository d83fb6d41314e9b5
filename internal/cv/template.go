package cv

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cv-go/internal/model"
)

// TemplateRepository stores user templates. The built-in template is never
// stored; it is resolved by ID whenever it is asked for.
type TemplateRepository struct {
	store    Store
	settings *SettingsRepository
	clock    Clock
	idgen    IDGenerator
	logger   Logger
}

func NewTemplateRepository(store Store, settings *SettingsRepository, clock Clock, idgen IDGenerator, logger Logger) *TemplateRepository {
	return &TemplateRepository{
		store:    store,
		settings: settings,
		clock:    clock,
		idgen:    idgen,
		logger:   logger,
	}
}

// List returns the built-in template followed by the stored ones by name.
func (r *TemplateRepository) List(ctx context.Context) ([]model.Template, error) {
	recs, err := r.store.ListByType(ctx, string(model.KindTemplate))
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	stored := make([]model.Template, 0, len(recs))
	for _, rec := range recs {
		t, err := decodeTagged[model.Template](rec, model.KindTemplate)
		if err != nil {
			return nil, fmt.Errorf("listing templates: %w", err)
		}
		stored = append(stored, *t)
	}
	sort.SliceStable(stored, func(i, j int) bool {
		if stored[i].Name != stored[j].Name {
			return stored[i].Name < stored[j].Name
		}
		return stored[i].ID < stored[j].ID
	})

	return append([]model.Template{*model.BuiltinTemplate()}, stored...), nil
}

// Get returns the template with the given ID. An empty ID or the built-in
// ID yields the built-in template.
func (r *TemplateRepository) Get(ctx context.Context, id string) (*model.Template, error) {
	if id == "" || id == model.BuiltinTemplateID {
		return model.BuiltinTemplate(), nil
	}
	rec, err := r.store.Get(ctx, templateKey(id))
	if err != nil {
		return nil, fmt.Errorf("getting template %s: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return decodeTagged[model.Template](rec, model.KindTemplate)
}

// Create stores t under a new ID and returns it.
func (r *TemplateRepository) Create(ctx context.Context, t model.Template) (string, error) {
	if err := validate(&t); err != nil {
		return "", fmt.Errorf("creating template: %w", err)
	}

	now := r.clock.Now().UnixMilli()
	t.ID = r.idgen.New()
	t.Meta = model.Meta{
		Key:       templateKey(t.ID),
		Type:      model.KindTemplate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.put(ctx, &t); err != nil {
		return "", fmt.Errorf("creating template: %w", err)
	}
	r.logger.Info("template created", "id", t.ID, "name", t.Name)
	return t.ID, nil
}

// Update replaces the stored template that has t.ID.
func (r *TemplateRepository) Update(ctx context.Context, t model.Template) error {
	if t.IsBuiltin() {
		return fmt.Errorf("updating template: %w", ErrBuiltinTemplate)
	}
	if err := validate(&t); err != nil {
		return fmt.Errorf("updating template: %w", err)
	}

	existing, err := r.Get(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Meta = existing.Meta
	t.UpdatedAt = r.clock.Now().UnixMilli()

	if err := r.put(ctx, &t); err != nil {
		return fmt.Errorf("updating template %s: %w", t.ID, err)
	}
	r.logger.Info("template updated", "id", t.ID)
	return nil
}

// Delete removes a stored template. If it was the selected template, the
// selection falls back to the built-in template.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	if id == "" || id == model.BuiltinTemplateID {
		return fmt.Errorf("deleting template: %w", ErrBuiltinTemplate)
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, templateKey(id)); err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	r.logger.Info("template deleted", "id", id)

	settings, err := r.settings.Get(ctx, model.Canonical)
	if err != nil {
		return err
	}
	if settings != nil && settings.SelectedTemplateID == id {
		return r.Select(ctx, model.BuiltinTemplateID)
	}
	return nil
}

// Select records id as the active template in the canonical settings.
func (r *TemplateRepository) Select(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	settings, err := r.settings.Get(ctx, model.Canonical)
	if err != nil {
		return err
	}
	if settings == nil {
		settings = &model.Settings{}
	}
	if id == "" {
		id = model.BuiltinTemplateID
	}
	settings.SelectedTemplateID = id
	return r.settings.Save(ctx, model.Canonical, *settings)
}

// Selected returns the active template. A selection that points at a
// template which no longer exists resolves to the built-in template.
func (r *TemplateRepository) Selected(ctx context.Context) (*model.Template, error) {
	settings, err := r.settings.Get(ctx, model.Canonical)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return model.BuiltinTemplate(), nil
	}
	t, err := r.Get(ctx, settings.SelectedTemplateID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.BuiltinTemplate(), nil
		}
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) put(ctx context.Context, t *model.Template) error {
	rec, err := newRecord(&t.Meta, t)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, rec)
}
