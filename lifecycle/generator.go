package lifecycle

import (
	"embed"
	"fmt"
	"strings"

	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"

	"gopkg.in/yaml.v3"
)

// Generator produces the i-th module of a seed run.
type Generator interface {
	Module(i int) graph.ModuleDraft
}

// TemplateGenerator builds numbered modules with a fixed slide layout.
type TemplateGenerator struct {
	Prefix              string
	SlidesPerModule     int
	ObjectivesPerModule int
}

func (g TemplateGenerator) Module(i int) graph.ModuleDraft {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "Module"
	}
	slides := g.SlidesPerModule
	if slides <= 0 {
		slides = 3
	}
	objectives := g.ObjectivesPerModule
	if objectives <= 0 {
		objectives = 2
	}

	d := graph.ModuleDraft{
		Title:       fmt.Sprintf("%s %d", prefix, i+1),
		Description: fmt.Sprintf("Generated module %d", i+1),
	}
	for j := 0; j < objectives; j++ {
		d.Objectives = append(d.Objectives, fmt.Sprintf("Objective %d.%d", i+1, j+1))
	}
	for j := 0; j < slides; j++ {
		title := fmt.Sprintf("Slide %d.%d", i+1, j+1)
		var p content.SlidePayload = content.TextPayload{Body: title + " body"}
		if j == slides-1 && slides > 1 {
			p = content.VideoPayload{Path: fmt.Sprintf("videos/generated/%d-%d.mp4", i+1, j+1)}
		}
		d.Slides = append(d.Slides, content.SlideSpec{Title: title, Payload: p})
	}
	return d
}

//go:embed fixtures/*.yaml
var fixtureFS embed.FS

// FixtureVersion is the fixture file the FixtureGenerator reads.
const FixtureVersion = 1

type fixtureFile struct {
	Version int             `yaml:"version"`
	Modules []fixtureModule `yaml:"modules"`
}

type fixtureModule struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Categories  []string       `yaml:"categories"`
	Objectives  []string       `yaml:"objectives"`
	Slides      []fixtureSlide `yaml:"slides"`
}

type fixtureSlide struct {
	Type  string `yaml:"type"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Path  string `yaml:"path"`
}

// FixtureGenerator cycles through the embedded fixture modules. Titles are
// suffixed with the cycle number once the set is exhausted.
type FixtureGenerator struct {
	drafts []graph.ModuleDraft
}

func NewFixtureGenerator() (*FixtureGenerator, error) {
	raw, err := fixtureFS.ReadFile(fmt.Sprintf("fixtures/modules.v%d.yaml", FixtureVersion))
	if err != nil {
		return nil, err
	}
	return parseFixtures(raw)
}

func parseFixtures(raw []byte) (*FixtureGenerator, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if f.Version != FixtureVersion {
		return nil, fmt.Errorf("fixture version %d, want %d", f.Version, FixtureVersion)
	}
	if len(f.Modules) == 0 {
		return nil, fmt.Errorf("fixture file has no modules")
	}

	g := &FixtureGenerator{}
	for _, m := range f.Modules {
		d := graph.ModuleDraft{
			Title:       m.Title,
			Description: m.Description,
			Objectives:  m.Objectives,
			Categories:  m.Categories,
		}
		for _, s := range m.Slides {
			p, err := content.NewSlidePayload(content.SlideType(strings.ToLower(s.Type)), s.Body, nil, "", s.Path)
			if err != nil {
				return nil, fmt.Errorf("fixture %q slide %q: %w", m.Title, s.Title, err)
			}
			d.Slides = append(d.Slides, content.SlideSpec{Title: s.Title, Payload: p})
		}
		g.drafts = append(g.drafts, d)
	}
	return g, nil
}

func (g *FixtureGenerator) Len() int { return len(g.drafts) }

func (g *FixtureGenerator) Module(i int) graph.ModuleDraft {
	d := g.drafts[i%len(g.drafts)]
	if cycle := i / len(g.drafts); cycle > 0 {
		d.Title = fmt.Sprintf("%s (%d)", d.Title, cycle+1)
	}
	return d
}
