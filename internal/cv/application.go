package cv

import (
	"context"
	"fmt"
	"sort"

	"cv-go/internal/model"
	"cv-go/internal/resolve"
)

// DataLoader reads one language's CV content.
type DataLoader func(ctx context.Context, lang model.LanguageID) (*model.CVData, error)

// ApplicationInput is what the caller supplies when recording an application.
// An empty TemplateID means the currently selected template.
type ApplicationInput struct {
	Company    string
	Position   string
	URL        string
	Date       string
	Status     model.ApplicationStatus
	Salary     string
	Currency   string
	Notes      string
	LanguageID model.LanguageID
	TemplateID string
}

// ApplicationPatch changes an application's own fields. Nil fields are left
// as they are. The snapshot cannot be patched.
type ApplicationPatch struct {
	Company  *string
	Position *string
	URL      *string
	Date     *string
	Status   *model.ApplicationStatus
	Salary   *string
	Currency *string
	Notes    *string
}

// ApplicationRepository records job applications together with the CV
// projection as it looked when the application was created.
type ApplicationRepository struct {
	store     Store
	templates *TemplateRepository
	settings  *SettingsRepository
	load      DataLoader
	clock     Clock
	idgen     IDGenerator
	logger    Logger
}

func NewApplicationRepository(store Store, templates *TemplateRepository, settings *SettingsRepository, load DataLoader, clock Clock, idgen IDGenerator, logger Logger) *ApplicationRepository {
	return &ApplicationRepository{
		store:     store,
		templates: templates,
		settings:  settings,
		load:      load,
		clock:     clock,
		idgen:     idgen,
		logger:    logger,
	}
}

// Create resolves the CV for in.LanguageID through the requested template
// and stores it, frozen, with the application.
func (r *ApplicationRepository) Create(ctx context.Context, in ApplicationInput) (*model.Application, error) {
	var (
		tpl *model.Template
		err error
	)
	if in.TemplateID == "" {
		tpl, err = r.templates.Selected(ctx)
	} else {
		tpl, err = r.templates.Get(ctx, in.TemplateID)
	}
	if err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	data, err := r.load(ctx, in.LanguageID)
	if err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	now := r.clock.Now()
	a := &model.Application{
		ID:         r.idgen.New(),
		Company:    in.Company,
		Position:   in.Position,
		URL:        in.URL,
		Date:       in.Date,
		Status:     in.Status,
		Salary:     in.Salary,
		Currency:   in.Currency,
		Notes:      in.Notes,
		LanguageID: in.LanguageID,
		TemplateID: tpl.ID,
		Snapshot:   *resolve.Resolve(data, tpl),
	}
	if a.Status == "" {
		a.Status = model.StatusDraft
	}
	if a.Date == "" {
		a.Date = now.Format("2006-01-02")
	}
	if a.Currency == "" {
		settings, err := r.settings.Get(ctx, model.Canonical)
		if err != nil {
			return nil, fmt.Errorf("creating application: %w", err)
		}
		if settings != nil {
			a.Currency = settings.DefaultCurrency
		}
	}
	if err := validate(a); err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	a.Meta = model.Meta{
		Key:       applicationKey(a.ID),
		Type:      model.KindApplication,
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
	if err := r.put(ctx, a); err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}
	r.logger.Info("application created", "id", a.ID, "company", a.Company, "template", a.TemplateID)
	return a, nil
}

// List returns all applications, most recent date first.
func (r *ApplicationRepository) List(ctx context.Context) ([]model.Application, error) {
	recs, err := r.store.ListByType(ctx, string(model.KindApplication))
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	apps := make([]model.Application, 0, len(recs))
	for _, rec := range recs {
		a, err := decodeTagged[model.Application](rec, model.KindApplication)
		if err != nil {
			return nil, fmt.Errorf("listing applications: %w", err)
		}
		apps = append(apps, *a)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].Date != apps[j].Date {
			return apps[i].Date > apps[j].Date
		}
		return apps[i].CreatedAt > apps[j].CreatedAt
	})
	return apps, nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id string) (*model.Application, error) {
	rec, err := r.store.Get(ctx, applicationKey(id))
	if err != nil {
		return nil, fmt.Errorf("getting application %s: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return decodeTagged[model.Application](rec, model.KindApplication)
}

// Update applies patch to the application's own fields and returns the
// stored result.
func (r *ApplicationRepository) Update(ctx context.Context, id string, patch ApplicationPatch) (*model.Application, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setIf(&a.Company, patch.Company)
	setIf(&a.Position, patch.Position)
	setIf(&a.URL, patch.URL)
	setIf(&a.Date, patch.Date)
	setIf(&a.Status, patch.Status)
	setIf(&a.Salary, patch.Salary)
	setIf(&a.Currency, patch.Currency)
	setIf(&a.Notes, patch.Notes)

	if err := validate(a); err != nil {
		return nil, fmt.Errorf("updating application %s: %w", id, err)
	}
	a.UpdatedAt = r.clock.Now().UnixMilli()

	if err := r.put(ctx, a); err != nil {
		return nil, fmt.Errorf("updating application %s: %w", id, err)
	}
	r.logger.Info("application updated", "id", id, "status", a.Status)
	return a, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, applicationKey(id)); err != nil {
		return fmt.Errorf("deleting application %s: %w", id, err)
	}
	r.logger.Info("application deleted", "id", id)
	return nil
}

func (r *ApplicationRepository) put(ctx context.Context, a *model.Application) error {
	rec, err := newRecord(&a.Meta, a)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, rec)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
