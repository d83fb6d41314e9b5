package cv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-go/internal/model"
	"cv-go/internal/testutil"
)

func TestWorkspace_IsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	empty, err := svc.Workspace.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, svc.Settings.Save(ctx, model.Canonical, model.Settings{DefaultLanguage: "en"}))
	require.NoError(t, svc.Settings.Save(ctx, "de", model.Settings{}))

	empty, err = svc.Workspace.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty, "settings records alone do not count as data")

	_, err = svc.Experience.Add(ctx, model.Canonical, model.Experience{Company: "Acme"})
	require.NoError(t, err)

	empty, err = svc.Workspace.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestWorkspace_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	svc := testutil.NewTestServiceWithStore(t, store)
	seedCV(t, svc)
	require.NoError(t, svc.Hints.Dismiss(ctx, "de", model.KindExperience, 1001))

	before, err := store.GetAll(ctx)
	require.NoError(t, err)

	exported, err := svc.Workspace.Export(ctx)
	require.NoError(t, err)

	res, err := svc.Workspace.Import(ctx, []byte("[]"))
	require.NoError(t, err)
	assert.False(t, res.Malformed)
	keys, err := store.GetAllKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys, `importing "[]" empties the table`)

	res, err = svc.Workspace.Import(ctx, exported)
	require.NoError(t, err)
	assert.Equal(t, len(before), res.Imported)
	assert.Zero(t, res.Skipped)

	after, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Key, after[i].Key)
		assert.Equal(t, before[i].Type, after[i].Type)
		assert.Equal(t, before[i].CreatedAt, after[i].CreatedAt)
		assert.JSONEq(t, string(before[i].Body), string(after[i].Body))
	}
}

func TestWorkspace_ImportTolerance(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		payload       string
		wantMalformed bool
		wantImported  int
		wantSkipped   int
		wantKeys      []string
	}{
		{
			name:          "bare object",
			payload:       `{"key":"personal"}`,
			wantMalformed: true,
			wantKeys:      []string{"footer"},
		},
		{
			name:          "not json",
			payload:       `not-json-array`,
			wantMalformed: true,
			wantKeys:      []string{"footer"},
		},
		{
			name:          "empty payload",
			payload:       ``,
			wantMalformed: true,
			wantKeys:      []string{"footer"},
		},
		{
			name:          "null",
			payload:       `null`,
			wantMalformed: true,
			wantKeys:      []string{"footer"},
		},
		{
			name:         "double encoded",
			payload:      `"[{\"key\":\"personal\",\"fullName\":\"Ada\"}]"`,
			wantImported: 1,
			wantKeys:     []string{"personal"},
		},
		{
			name: "invalid elements skipped",
			payload: `[
				{"key":"skill_1","type":"skill","id":1,"languageId":null,"name":"Go","createdAt":5,"updatedAt":6},
				42,
				{"name":"no key"},
				{"key":""},
				{"key":"footer","text":"hi"}
			]`,
			wantImported: 2,
			wantSkipped:  3,
			wantKeys:     []string{"footer", "skill_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewTestStore(t)
			svc := testutil.NewTestServiceWithStore(t, store)
			require.NoError(t, svc.Footer.Save(ctx, model.Canonical, model.Footer{Text: "existing"}))

			res, err := svc.Workspace.Import(ctx, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMalformed, res.Malformed)
			assert.Equal(t, tt.wantImported, res.Imported)
			assert.Equal(t, tt.wantSkipped, res.Skipped)

			keys, err := store.GetAllKeys(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestWorkspace_ImportedRecordsAreReadable(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewTestService(t)

	_, err := svc.Workspace.Import(ctx, []byte(`[
		{"key":"skill_1","type":"skill","id":1,"languageId":null,"name":"Go","createdAt":5,"updatedAt":6},
		{"key":"skill_2","type":"skill","id":2,"languageId":"de","name":"Go (de)"}
	]`))
	require.NoError(t, err)

	skills, err := svc.Skills.List(ctx, model.Canonical)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "Go", skills[0].Name)
	assert.Equal(t, int64(5), skills[0].CreatedAt)
}

func TestWorkspace_ImportSkipsUnreadableRecords(t *testing.T) {
	ctx := context.Background()

	good := `{"key":"experience_1","type":"experience","id":1,"languageId":null,"company":"Acme","startDate":"2020-01"}`
	tests := []struct {
		name string
		elem string
	}{
		{"id of wrong type", `{"key":"experience_2","type":"experience","id":"two","languageId":null,"company":"Bad"}`},
		{"key does not match id", `{"key":"experience_9","type":"experience","id":2,"languageId":null,"company":"Bad"}`},
		{"key of another kind", `{"key":"skill_2","type":"experience","id":2,"languageId":null}`},
		{"unknown type", `{"key":"widget_2","type":"widget","id":2}`},
		{"template without id", `{"key":"template_","type":"template","name":"x"}`},
		{"application field of wrong type", `{"key":"application_a","type":"application","id":"a","company":7}`},
		{"singleton key for another language", `{"key":"personal_de","languageId":"fr","fullName":"Ada"}`},
		{"singleton body not decodable", `{"key":"footer","text":5}`},
		{"untagged unknown key", `{"key":"whatever","text":"x"}`},
		{"dismissals for canonical language", `{"key":"hints_skill_","kind":"skill","languageId":null,"dismissed":[1]}`},
		{"dismissals with bad ids", `{"key":"hints_skill_de","kind":"skill","languageId":"de","dismissed":["x"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewTestStore(t)
			svc := testutil.NewTestServiceWithStore(t, store)

			res, err := svc.Workspace.Import(ctx, []byte("["+good+","+tt.elem+"]"))
			require.NoError(t, err)
			assert.Equal(t, 1, res.Imported)
			assert.Equal(t, 1, res.Skipped)

			keys, err := store.GetAllKeys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"experience_1"}, keys)

			items, err := svc.Experience.List(ctx, model.Canonical)
			require.NoError(t, err)
			require.Len(t, items, 1)

			_, err = svc.Experience.Add(ctx, model.Canonical, model.Experience{Company: "New", StartDate: "2021-01"})
			require.NoError(t, err)
			require.NoError(t, svc.Experience.Delete(ctx, 1))

			_, err = svc.LoadData(ctx, model.Canonical)
			require.NoError(t, err)
		})
	}
}

func TestWorkspace_ImportKeepsWellFormedRecordsOfEveryKind(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	svc := testutil.NewTestServiceWithStore(t, store)

	res, err := svc.Workspace.Import(ctx, []byte(`[
		{"key":"course_3","type":"course","id":3,"languageId":"de","name":"Go","completionDate":"2021"},
		{"key":"template_t1","type":"template","id":"t1","name":"Short"},
		{"key":"application_a1","type":"application","id":"a1","company":"Acme"},
		{"key":"hints_course_de","kind":"course","languageId":"de","dismissed":[3]},
		{"key":"links_de","languageId":"de","entries":{"github":"gh"}},
		{"key":"settings","languageId":null,"defaultLanguage":"en"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 6, res.Imported)
	assert.Zero(t, res.Skipped)
}
