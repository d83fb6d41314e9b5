package cv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-go/internal/cv"
	"cv-go/internal/model"
	"cv-go/internal/testutil"
)

func TestService_LoadData(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	require.NoError(t, svc.Personal.Save(ctx, "de", model.Personal{FullName: "Ada", About: "Über mich"}))
	require.NoError(t, svc.Footer.Save(ctx, "de", model.Footer{Text: "Fußzeile"}))
	_, err := svc.Experience.Add(ctx, "de", model.Experience{Company: "Acme", StartDate: "2020-01"})
	require.NoError(t, err)
	_, err = svc.Skills.Add(ctx, model.Canonical, model.Skill{Name: "Go"})
	require.NoError(t, err)

	data, err := svc.LoadData(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, model.LanguageID("de"), data.LanguageID)
	require.NotNil(t, data.Personal)
	assert.Equal(t, "Über mich", data.Personal.About)
	require.NotNil(t, data.Footer)
	assert.Nil(t, data.Links)
	assert.Nil(t, data.Freelance)
	assert.Len(t, data.Experience, 1)
	assert.Empty(t, data.Skills, "no fallback to canonical")
}

func TestService_LoadDataFailure(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFailingStore(testutil.NewTestStore(t))
	svc := testutil.NewTestServiceWithStore(t, store)
	store.FailReads()

	_, err := svc.LoadData(ctx, model.Canonical)
	assert.ErrorIs(t, err, testutil.ErrInjected)
}

func TestService_Render(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	require.NoError(t, svc.Personal.Save(ctx, model.Canonical, model.Personal{
		FullName: "Ada",
		About:    "stored about",
		Photo:    "data:image/png;base64,AAAA",
	}))
	require.NoError(t, svc.Links.Save(ctx, model.Canonical, model.Links{Entries: map[string]string{
		"github":   "https://github.com/ada",
		"linkedin": "https://linkedin.com/in/ada",
	}}))
	first, err := svc.Experience.Add(ctx, model.Canonical, model.Experience{Company: "A", StartDate: "2019-01", Description: "one"})
	require.NoError(t, err)
	second, err := svc.Experience.Add(ctx, model.Canonical, model.Experience{Company: "B", StartDate: "2021-01", Description: "two"})
	require.NoError(t, err)

	t.Run("selected defaults to builtin", func(t *testing.T) {
		p, err := svc.Render(ctx, model.Canonical, "")
		require.NoError(t, err)
		assert.Equal(t, model.BuiltinTemplateID, p.TemplateID)
		assert.Equal(t, "stored about", p.About)
		assert.Equal(t, "Ada", p.Profile.FullName)
		require.Len(t, p.Experience, 2)
		assert.Equal(t, "B", p.Experience[0].Company)
		require.Len(t, p.Links, 2)
		assert.Equal(t, "github", p.Links[0].Key)
	})

	t.Run("explicit template", func(t *testing.T) {
		tplID, err := svc.Templates.Create(ctx, model.Template{
			Name:   "Short",
			Design: "compact",
			Sections: model.TemplateSections{
				Experience: model.ItemRules{
					Disabled:     []int64{first},
					CustomValues: map[int64]string{second: "tailored"},
				},
				About:          model.TextRules{Disabled: true},
				ProfilePicture: model.ToggleRule{Disabled: true},
				Links:          model.LinkRules{Disabled: []string{"linkedin"}},
			},
		})
		require.NoError(t, err)

		p, err := svc.Render(ctx, model.Canonical, tplID)
		require.NoError(t, err)
		assert.Equal(t, tplID, p.TemplateID)
		assert.Equal(t, "compact", p.Design)
		assert.Empty(t, p.About)
		assert.Empty(t, p.Photo)
		require.Len(t, p.Experience, 1)
		assert.Equal(t, "tailored", p.Experience[0].Description)
		assert.Equal(t, []model.Link{{Key: "github", URL: "https://github.com/ada"}}, p.Links)

		stored, err := svc.Experience.Get(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, "two", stored.Description)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := svc.Render(ctx, model.Canonical, "missing")
		assert.ErrorIs(t, err, cv.ErrNotFound)
	})
}
