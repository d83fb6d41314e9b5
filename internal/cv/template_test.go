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

func TestTemplateRepository_Builtin(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	list, err := svc.Templates.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.BuiltinTemplateID, list[0].ID)

	for _, id := range []string{"", model.BuiltinTemplateID} {
		tpl, err := svc.Templates.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, tpl.IsBuiltin())
	}

	assert.ErrorIs(t, svc.Templates.Update(ctx, *model.BuiltinTemplate()), cv.ErrBuiltinTemplate)
	assert.ErrorIs(t, svc.Templates.Delete(ctx, model.BuiltinTemplateID), cv.ErrBuiltinTemplate)

	selected, err := svc.Templates.Selected(ctx)
	require.NoError(t, err)
	assert.True(t, selected.IsBuiltin())
}

func TestTemplateRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	id, err := svc.Templates.Create(ctx, model.Template{
		Name:   "Short",
		Design: "modern",
		Sections: model.TemplateSections{
			About: model.TextRules{CustomValue: "tailored"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	_, err = svc.Templates.Create(ctx, model.Template{Name: "Academic"})
	require.NoError(t, err)

	list, err := svc.Templates.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Classic", "Academic", "Short"}, []string{list[0].Name, list[1].Name, list[2].Name})

	tpl, err := svc.Templates.Get(ctx, id)
	require.NoError(t, err)
	tpl.Sections.About.Disabled = true
	require.NoError(t, svc.Templates.Update(ctx, *tpl))

	updated, err := svc.Templates.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, updated.Sections.About.Disabled)
	assert.Equal(t, tpl.CreatedAt, updated.CreatedAt)

	require.NoError(t, svc.Templates.Delete(ctx, id))
	_, err = svc.Templates.Get(ctx, id)
	assert.ErrorIs(t, err, cv.ErrNotFound)
}

func TestTemplateRepository_Validation(t *testing.T) {
	svc, _ := testutil.NewTestService(t)

	_, err := svc.Templates.Create(context.Background(), model.Template{})
	assert.ErrorIs(t, err, cv.ErrInvalid)
}

func TestTemplateRepository_DeleteSelectedFallsBack(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	id, err := svc.Templates.Create(ctx, model.Template{Name: "Short"})
	require.NoError(t, err)
	require.NoError(t, svc.Templates.Select(ctx, id))

	selected, err := svc.Templates.Selected(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, selected.ID)

	require.NoError(t, svc.Templates.Delete(ctx, id))

	selected, err = svc.Templates.Selected(ctx)
	require.NoError(t, err)
	assert.True(t, selected.IsBuiltin())

	settings, err := svc.Settings.Get(ctx, model.Canonical)
	require.NoError(t, err)
	assert.Equal(t, model.BuiltinTemplateID, settings.SelectedTemplateID)
}

func TestTemplateRepository_DanglingSelection(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	require.NoError(t, svc.Settings.Save(ctx, model.Canonical, model.Settings{SelectedTemplateID: "ghost"}))

	selected, err := svc.Templates.Selected(ctx)
	require.NoError(t, err)
	assert.True(t, selected.IsBuiltin())

	assert.ErrorIs(t, svc.Templates.Select(ctx, "ghost"), cv.ErrNotFound)
}
