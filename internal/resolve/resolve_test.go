package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-go/internal/model"
)

func exp(id int64, desc string) model.Experience {
	return model.Experience{ListItem: model.ListItem{ID: id}, Company: "c", Description: desc}
}

func sampleData() *model.CVData {
	return &model.CVData{
		LanguageID: "de",
		Personal: &model.Personal{
			FullName:      "Ada",
			Title:         "Engineer",
			Email:         "ada@example.com",
			Phone:         "+44 1",
			Location:      "London",
			Website:       "https://ada.example.com",
			BirthDate:     "1815-12-10",
			Photo:         "me.png",
			About:         "about me",
			SkillsSummary: "many skills",
		},
		Links:     &model.Links{Entries: map[string]string{"github": "gh", "linkedin": "li"}},
		Footer:    &model.Footer{Text: "footer"},
		Freelance: &model.Freelance{Text: "available"},
		Experience: []model.Experience{
			exp(1, "first"),
			exp(2, "second"),
			exp(3, "third"),
		},
		Education: []model.Education{
			{ListItem: model.ListItem{ID: 4}, Institution: "Cambridge", Description: "maths"},
			{ListItem: model.ListItem{ID: 5}, Institution: "London", Description: "logic"},
		},
		Courses: []model.Course{
			{ListItem: model.ListItem{ID: 6}, Name: "Go", Description: "concurrency"},
			{ListItem: model.ListItem{ID: 7}, Name: "SQL", Description: "joins"},
		},
		Skills: []model.Skill{
			{ListItem: model.ListItem{ID: 8}, Name: "Go", Description: "lots"},
			{ListItem: model.ListItem{ID: 9}, Name: "SQL", Description: "some"},
		},
	}
}

func TestResolveBuiltinIsIdentity(t *testing.T) {
	data := sampleData()

	for _, tpl := range []*model.Template{nil, model.BuiltinTemplate()} {
		p := Resolve(data, tpl)
		assert.Equal(t, model.BuiltinTemplateID, p.TemplateID)
		assert.Equal(t, "about me", p.About)
		assert.Equal(t, "many skills", p.SkillsBlock)
		assert.Equal(t, "me.png", p.Photo)
		assert.Equal(t, "available", p.Freelance)
		assert.Equal(t, "footer", p.Footer)
		assert.Equal(t, model.LanguageID("de"), p.LanguageID)
		assert.Equal(t, model.Profile{
			FullName:  "Ada",
			Title:     "Engineer",
			Email:     "ada@example.com",
			Phone:     "+44 1",
			Location:  "London",
			Website:   "https://ada.example.com",
			BirthDate: "1815-12-10",
		}, p.Profile)
		assert.Equal(t, data.Experience, p.Experience)
		assert.Equal(t, data.Education, p.Education)
		assert.Equal(t, data.Courses, p.Courses)
		assert.Equal(t, data.Skills, p.Skills)
		assert.Equal(t, []model.Link{{Key: "github", URL: "gh"}, {Key: "linkedin", URL: "li"}}, p.Links)
	}
}

func TestResolveAppliesRules(t *testing.T) {
	data := sampleData()
	tpl := &model.Template{
		ID:     "t1",
		Design: "modern",
		Sections: model.TemplateSections{
			Experience: model.ItemRules{
				Disabled:     []int64{2},
				CustomValues: map[int64]string{1: "custom", 2: "ignored", 3: ""},
			},
			About:          model.TextRules{Disabled: true, CustomValue: "ignored"},
			SkillsBlock:    model.TextRules{CustomValue: "short list"},
			Footer:         model.TextRules{},
			ProfilePicture: model.ToggleRule{Disabled: true},
			Links:          model.LinkRules{Disabled: []string{"github"}},
		},
	}

	p := Resolve(data, tpl)

	assert.Equal(t, "t1", p.TemplateID)
	assert.Equal(t, "modern", p.Design)
	require.Len(t, p.Experience, 2)
	assert.Equal(t, int64(1), p.Experience[0].ID)
	assert.Equal(t, "custom", p.Experience[0].Description)
	assert.Equal(t, int64(3), p.Experience[1].ID)
	assert.Equal(t, "third", p.Experience[1].Description)

	assert.Empty(t, p.About, "disabled wins over custom value")
	assert.Equal(t, "short list", p.SkillsBlock)
	assert.Equal(t, "footer", p.Footer)
	assert.Equal(t, "available", p.Freelance)
	assert.Empty(t, p.Photo)
	assert.Equal(t, []model.Link{{Key: "linkedin", URL: "li"}}, p.Links)
}

// itemView reduces a resolved section to id and description pairs.
type itemView struct {
	ID          int64
	Description string
}

func TestResolveItemRulesPerSection(t *testing.T) {
	tests := []struct {
		name  string
		rules func(*model.TemplateSections) *model.ItemRules
		view  func(*model.Projection) []itemView
		want  []itemView
	}{
		{
			name:  "experience",
			rules: func(s *model.TemplateSections) *model.ItemRules { return &s.Experience },
			view: func(p *model.Projection) []itemView {
				var out []itemView
				for _, e := range p.Experience {
					out = append(out, itemView{e.ID, e.Description})
				}
				return out
			},
			want: []itemView{{1, "first"}, {3, "third"}},
		},
		{
			name:  "education",
			rules: func(s *model.TemplateSections) *model.ItemRules { return &s.Education },
			view: func(p *model.Projection) []itemView {
				var out []itemView
				for _, e := range p.Education {
					out = append(out, itemView{e.ID, e.Description})
				}
				return out
			},
			want: []itemView{{5, "logic"}},
		},
		{
			name:  "courses",
			rules: func(s *model.TemplateSections) *model.ItemRules { return &s.Courses },
			view: func(p *model.Projection) []itemView {
				var out []itemView
				for _, c := range p.Courses {
					out = append(out, itemView{c.ID, c.Description})
				}
				return out
			},
			want: []itemView{{7, "joins"}},
		},
		{
			name:  "skills",
			rules: func(s *model.TemplateSections) *model.ItemRules { return &s.Skills },
			view: func(p *model.Projection) []itemView {
				var out []itemView
				for _, sk := range p.Skills {
					out = append(out, itemView{sk.ID, sk.Description})
				}
				return out
			},
			want: []itemView{{9, "some"}},
		},
	}

	// disabled and overridden identity per section
	targets := map[string][2]int64{
		"experience": {2, 1},
		"education":  {4, 5},
		"courses":    {6, 7},
		"skills":     {8, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := sampleData()
			ids := targets[tt.name]
			tpl := &model.Template{ID: "t1"}
			*tt.rules(&tpl.Sections) = model.ItemRules{
				Disabled:     []int64{ids[0]},
				CustomValues: map[int64]string{ids[0]: "ignored", ids[1]: ""},
			}

			p := Resolve(data, tpl)
			assert.Equal(t, tt.want, tt.view(p))

			tt.rules(&tpl.Sections).CustomValues[ids[1]] = "custom"
			p = Resolve(data, tpl)
			got := tt.view(p)
			require.NotEmpty(t, got)
			assert.Contains(t, got, itemView{ids[1], "custom"})
			assert.NotContains(t, got, itemView{ids[0], "ignored"})

			untouched := Resolve(sampleData(), nil)
			for _, other := range tests {
				if other.name == tt.name {
					continue
				}
				assert.Equal(t, other.view(untouched), other.view(p), "section %s", other.name)
			}
		})
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	data := sampleData()
	tpl := &model.Template{
		ID: "t1",
		Sections: model.TemplateSections{
			Experience: model.ItemRules{
				Disabled:     []int64{1},
				CustomValues: map[int64]string{2: "override"},
			},
		},
	}

	first := Resolve(data, tpl)
	second := Resolve(data, tpl)

	assert.Equal(t, first, second)
	assert.Equal(t, sampleData().Experience, data.Experience)

	first.Experience[0].Description = "changed"
	assert.Equal(t, "override", second.Experience[0].Description)
}

func TestResolveNilData(t *testing.T) {
	p := Resolve(nil, nil)
	require.NotNil(t, p)
	assert.Empty(t, p.Experience)
	assert.Empty(t, p.About)
}
