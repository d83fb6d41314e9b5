// Package resolve merges CV content with a template's disable and override
// rules into the projection handed to renderers.
package resolve

import (
	"slices"
	"sort"

	"cv-go/internal/model"
)

// Resolve applies tpl to data and returns a new projection. It never mutates
// its inputs and the result shares no slices or maps with them, so the same
// inputs always produce an equal, independent projection.
//
// A nil or built-in template yields data unchanged. Otherwise, per section,
// a disabled flag wins over a custom value and a non-empty custom value wins
// over the stored text.
func Resolve(data *model.CVData, tpl *model.Template) *model.Projection {
	p := project(data)
	if tpl.IsBuiltin() {
		p.TemplateID = model.BuiltinTemplateID
		p.Design = model.BuiltinTemplateID
		return p
	}
	p.TemplateID = tpl.ID
	p.Design = tpl.Design
	if p.Design == "" {
		p.Design = model.BuiltinTemplateID
	}

	s := tpl.Sections
	p.Experience = applyItems(p.Experience, s.Experience, func(e *model.Experience) (int64, *string) {
		return e.ID, &e.Description
	})
	p.Education = applyItems(p.Education, s.Education, func(e *model.Education) (int64, *string) {
		return e.ID, &e.Description
	})
	p.Courses = applyItems(p.Courses, s.Courses, func(c *model.Course) (int64, *string) {
		return c.ID, &c.Description
	})
	p.Skills = applyItems(p.Skills, s.Skills, func(sk *model.Skill) (int64, *string) {
		return sk.ID, &sk.Description
	})

	p.About = applyText(p.About, s.About)
	p.SkillsBlock = applyText(p.SkillsBlock, s.SkillsBlock)
	p.Freelance = applyText(p.Freelance, s.Freelance)
	p.Footer = applyText(p.Footer, s.Footer)

	if s.ProfilePicture.Disabled {
		p.Photo = ""
	}
	if len(s.Links.Disabled) > 0 {
		p.Links = slices.DeleteFunc(p.Links, func(l model.Link) bool {
			return slices.Contains(s.Links.Disabled, l.Key)
		})
	}
	return p
}

// project copies data into the projection shape.
func project(data *model.CVData) *model.Projection {
	p := &model.Projection{}
	if data == nil {
		return p
	}
	p.LanguageID = data.LanguageID

	if data.Personal != nil {
		pe := data.Personal
		p.Profile = model.Profile{
			FullName:  pe.FullName,
			Title:     pe.Title,
			Email:     pe.Email,
			Phone:     pe.Phone,
			Location:  pe.Location,
			Website:   pe.Website,
			BirthDate: pe.BirthDate,
		}
		p.Photo = pe.Photo
		p.About = pe.About
		p.SkillsBlock = pe.SkillsSummary
	}
	if data.Freelance != nil {
		p.Freelance = data.Freelance.Text
	}
	if data.Footer != nil {
		p.Footer = data.Footer.Text
	}
	if data.Links != nil && len(data.Links.Entries) > 0 {
		keys := make([]string, 0, len(data.Links.Entries))
		for k := range data.Links.Entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		p.Links = make([]model.Link, len(keys))
		for i, k := range keys {
			p.Links[i] = model.Link{Key: k, URL: data.Links.Entries[k]}
		}
	}

	p.Experience = slices.Clone(data.Experience)
	p.Education = slices.Clone(data.Education)
	p.Courses = slices.Clone(data.Courses)
	p.Skills = slices.Clone(data.Skills)
	return p
}

// applyItems drops disabled items and overrides descriptions in place.
// items must already be a private copy.
func applyItems[T any](items []T, rules model.ItemRules, fields func(*T) (int64, *string)) []T {
	if items == nil {
		return nil
	}
	out := items[:0]
	for i := range items {
		id, desc := fields(&items[i])
		if slices.Contains(rules.Disabled, id) {
			continue
		}
		if v := rules.CustomValues[id]; v != "" {
			*desc = v
		}
		out = append(out, items[i])
	}
	return out
}

func applyText(text string, rules model.TextRules) string {
	switch {
	case rules.Disabled:
		return ""
	case rules.CustomValue != "":
		return rules.CustomValue
	default:
		return text
	}
}
