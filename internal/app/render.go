package app

import (
	"fmt"

	"cv-go/internal/model"
	"cv-go/internal/richtext"
)

// RenderedCV is a projection together with the parsed form of every
// non-empty text block in it. Segments are keyed by section name, or by
// "<section>/<id>" for list item descriptions.
type RenderedCV struct {
	Projection *model.Projection             `json:"projection"`
	Segments   map[string][]richtext.Segment `json:"segments"`
}

func NewRenderedCV(p *model.Projection) *RenderedCV {
	segs := make(map[string][]richtext.Segment)
	add := func(key, text string) {
		if text != "" {
			segs[key] = richtext.Parse(text)
		}
	}

	add("about", p.About)
	add("skillsBlock", p.SkillsBlock)
	add("freelance", p.Freelance)
	add("footer", p.Footer)
	for _, e := range p.Experience {
		add(fmt.Sprintf("experience/%d", e.ID), e.Description)
	}
	for _, e := range p.Education {
		add(fmt.Sprintf("education/%d", e.ID), e.Description)
	}
	for _, c := range p.Courses {
		add(fmt.Sprintf("courses/%d", c.ID), c.Description)
	}
	for _, s := range p.Skills {
		add(fmt.Sprintf("skills/%d", s.ID), s.Description)
	}

	return &RenderedCV{Projection: p, Segments: segs}
}
