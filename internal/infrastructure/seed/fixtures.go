package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the curated storefront content
type Fixtures struct {
	Products    []ProductFixture   `yaml:"products"`
	Articles    []ArticleFixture   `yaml:"articles"`
	CaseStudies []CaseStudyFixture `yaml:"case_studies"`
}

// ProductFixture is one catalog entry
type ProductFixture struct {
	Name             string            `yaml:"name"`
	Category         string            `yaml:"category"`
	Price            decimal.Decimal   `yaml:"price"`
	OriginalPrice    *decimal.Decimal  `yaml:"original_price"`
	Stock            int               `yaml:"stock"`
	Badge            string            `yaml:"badge"`
	ImageURL         string            `yaml:"image_url"`
	ShortDescription string            `yaml:"short_description"`
	Description      string            `yaml:"description"`
	Specifications   map[string]string `yaml:"specifications"`
	Features         []string          `yaml:"features"`
}

// ArticleFixture is one blog post
type ArticleFixture struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	Author      string    `yaml:"author"`
	Category    string    `yaml:"category"`
	ImageURL    string    `yaml:"image_url"`
	PublishedAt time.Time `yaml:"published_at"`
	Content     string    `yaml:"content"`
}

// CaseStudyFixture is one success story
type CaseStudyFixture struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	ImageURL    string    `yaml:"image_url"`
	PublishedAt time.Time `yaml:"published_at"`
	Summary     string    `yaml:"summary"`
	Challenge   string    `yaml:"challenge"`
	Solution    string    `yaml:"solution"`
	Results     string    `yaml:"results"`
}

// DefaultFixtures returns the catalog compiled into the binary
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

// ParseFixtures decodes a fixtures document. Unknown keys are rejected so
// typos do not silently drop data.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}
