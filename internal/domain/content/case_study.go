package content

import (
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
)

// CaseStudy describes a clinic installation or treatment success story
type CaseStudy struct {
	shared.BaseAggregateRoot
	Title       string
	Slug        string
	Summary     string
	Challenge   string
	Solution    string
	Results     string
	ImageURL    string
	PublishedAt time.Time
}

// CaseStudySections groups the narrative fields
type CaseStudySections struct {
	Summary   string
	Challenge string
	Solution  string
	Results   string
}

// NewCaseStudy creates a case study
func NewCaseStudy(title, slug string, sections CaseStudySections) (*CaseStudy, error) {
	cs := &CaseStudy{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PublishedAt:       time.Now(),
	}
	if err := cs.Edit(title, slug, sections); err != nil {
		return nil, err
	}
	return cs, nil
}

// Edit replaces title, slug and sections
func (cs *CaseStudy) Edit(title, slug string, sections CaseStudySections) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.InvalidInput("Title is required")
	}
	normalized, err := normalizeSlug(slug, title)
	if err != nil {
		return err
	}
	cs.Title = title
	cs.Slug = normalized
	cs.Summary = sections.Summary
	cs.Challenge = sections.Challenge
	cs.Solution = sections.Solution
	cs.Results = sections.Results
	cs.UpdatedAt = time.Now()
	return nil
}

// SetImage replaces the image reference
func (cs *CaseStudy) SetImage(url string) {
	cs.ImageURL = url
	cs.UpdatedAt = time.Now()
}
