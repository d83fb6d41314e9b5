package cv

import (
	"context"

	"cv-go/internal/model"
	"cv-go/internal/resolve"
)

// Service bundles every repository over one store.
type Service struct {
	Experience *ExperienceRepository
	Education  *EducationRepository
	Courses    *CourseRepository
	Skills     *SkillRepository

	Personal  *PersonalRepository
	Links     *LinksRepository
	Footer    *FooterRepository
	Freelance *FreelanceRepository
	Settings  *SettingsRepository

	Hints        *HintStore
	Templates    *TemplateRepository
	Applications *ApplicationRepository
	Workspace    *Workspace

	store  Store
	logger Logger
}

func NewService(store Store, logger Logger, clock Clock, ids IdentityGenerator, idgen IDGenerator) *Service {
	hints := NewHintStore(store, clock, logger)
	settings := newSingletonRepository[model.Settings](store, model.KindSettings, clock, logger)
	templates := NewTemplateRepository(store, settings, clock, idgen, logger)

	s := &Service{
		Experience: newListRepository[model.Experience](store, model.KindExperience, experienceNewerFirst, hints, clock, ids, logger),
		Education:  newListRepository[model.Education](store, model.KindEducation, nil, hints, clock, ids, logger),
		Courses:    newListRepository[model.Course](store, model.KindCourse, courseNewerFirst, hints, clock, ids, logger),
		Skills:     newListRepository[model.Skill](store, model.KindSkill, nil, hints, clock, ids, logger),

		Personal:  newSingletonRepository[model.Personal](store, model.KindPersonal, clock, logger),
		Links:     newSingletonRepository[model.Links](store, model.KindLinks, clock, logger),
		Footer:    newSingletonRepository[model.Footer](store, model.KindFooter, clock, logger),
		Freelance: newSingletonRepository[model.Freelance](store, model.KindFreelance, clock, logger),
		Settings:  settings,

		Hints:     hints,
		Templates: templates,
		Workspace: NewWorkspace(store, logger),

		store:  store,
		logger: logger,
	}
	s.Applications = NewApplicationRepository(store, templates, settings, s.LoadData, clock, idgen, logger)
	return s
}

// Render resolves lang through the template with templateID, or through the
// selected template when templateID is empty.
func (s *Service) Render(ctx context.Context, lang model.LanguageID, templateID string) (*model.Projection, error) {
	var (
		tpl *model.Template
		err error
	)
	if templateID == "" {
		tpl, err = s.Templates.Selected(ctx)
	} else {
		tpl, err = s.Templates.Get(ctx, templateID)
	}
	if err != nil {
		return nil, err
	}
	data, err := s.LoadData(ctx, lang)
	if err != nil {
		return nil, err
	}
	return resolve.Resolve(data, tpl), nil
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}
