package cv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-go/internal/cv"
	"cv-go/internal/model"
	"cv-go/internal/testutil"
)

func TestSingletonRepository_GetAbsent(t *testing.T) {
	svc, _ := testutil.NewTestService(t)

	got, err := svc.Personal.Get(context.Background(), model.Canonical)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSingletonRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	svc, clock := testutil.NewTestService(t)

	require.NoError(t, svc.Personal.Save(ctx, model.Canonical, model.Personal{
		FullName: "Ada Lovelace",
		Title:    "Engineer",
		Email:    "ada@example.com",
	}))
	first, err := svc.Personal.Get(ctx, model.Canonical)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "personal", first.Key)

	clock.Advance(time.Hour)
	require.NoError(t, svc.Personal.Save(ctx, model.Canonical, model.Personal{FullName: "Ada King"}))

	second, err := svc.Personal.Get(ctx, model.Canonical)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", second.FullName)
	assert.Empty(t, second.Title, "save is a full replace")
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Greater(t, second.UpdatedAt, first.UpdatedAt)
}

func TestSingletonRepository_PerLanguageKeys(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	svc := testutil.NewTestServiceWithStore(t, store)

	require.NoError(t, svc.Footer.Save(ctx, model.Canonical, model.Footer{Text: "canonical"}))
	require.NoError(t, svc.Footer.Save(ctx, "de", model.Footer{Text: "deutsch"}))
	require.NoError(t, svc.Footer.Save(ctx, "de", model.Footer{Text: "deutsch 2"}))

	keys, err := testutil.KeysWithPrefix(ctx, store, "footer")
	require.NoError(t, err)
	assert.Equal(t, []string{"footer", "footer_de"}, keys)

	de, err := svc.Footer.Get(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, "deutsch 2", de.Text)
	assert.Equal(t, model.LanguageID("de"), de.LanguageID)

	fr, err := svc.Footer.Get(ctx, "fr")
	require.NoError(t, err)
	assert.Nil(t, fr, "overlays never fall back to canonical")
}

func TestSingletonRepository_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	err := svc.Personal.Save(ctx, model.Canonical, model.Personal{FullName: "x", Email: "not-an-email"})
	assert.ErrorIs(t, err, cv.ErrInvalid)

	err = svc.Settings.Save(ctx, model.Canonical, model.Settings{DefaultCurrency: "eur"})
	assert.ErrorIs(t, err, cv.ErrInvalid)

	require.NoError(t, svc.Settings.Save(ctx, model.Canonical, model.Settings{
		DefaultLanguage:    "en",
		AvailableLanguages: []model.LanguageID{"en", "de"},
		DefaultCurrency:    "EUR",
	}))
}

func TestSingletonRepository_Links(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	require.NoError(t, svc.Links.Save(ctx, "de", model.Links{Entries: map[string]string{
		"github":   "https://github.com/ada",
		"linkedin": "https://linkedin.com/in/ada",
	}}))
	got, err := svc.Links.Get(ctx, "de")
	require.NoError(t, err)
	assert.Len(t, got.Entries, 2)
}
