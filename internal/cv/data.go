package cv

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"cv-go/internal/model"
)

// LoadData reads every section of lang. The reads run concurrently; the
// first failure cancels the rest.
func (s *Service) LoadData(ctx context.Context, lang model.LanguageID) (*model.CVData, error) {
	data := &model.CVData{LanguageID: lang}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.Personal, err = s.Personal.Get(gctx, lang)
		return err
	})
	g.Go(func() (err error) {
		data.Links, err = s.Links.Get(gctx, lang)
		return err
	})
	g.Go(func() (err error) {
		data.Footer, err = s.Footer.Get(gctx, lang)
		return err
	})
	g.Go(func() (err error) {
		data.Freelance, err = s.Freelance.Get(gctx, lang)
		return err
	})
	g.Go(func() (err error) {
		data.Experience, err = s.Experience.List(gctx, lang)
		return err
	})
	g.Go(func() (err error) {
		data.Education, err = s.Education.List(gctx, lang)
		return err
	})
	g.Go(func() (err error) {
		data.Courses, err = s.Courses.List(gctx, lang)
		return err
	})
	g.Go(func() (err error) {
		data.Skills, err = s.Skills.List(gctx, lang)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading %s data: %w", lang, err)
	}
	return data, nil
}
