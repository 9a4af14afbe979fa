package lifecycle

import (
	"testing"

	"github.com/Sean-Brix/RiderMind-sub003/models/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateGeneratorIsDeterministic(t *testing.T) {
	g := TemplateGenerator{Prefix: "Lesson", SlidesPerModule: 2}
	a, b := g.Module(4), g.Module(4)
	assert.Equal(t, a, b)
	assert.Equal(t, "Lesson 5", a.Title)
	require.Len(t, a.Slides, 2)
	assert.Equal(t, content.SlideText, a.Slides[0].Payload.SlideType())
	assert.Equal(t, content.SlideVideo, a.Slides[1].Payload.SlideType())
	assert.Len(t, a.Objectives, 2)
}

func TestEmbeddedFixturesParse(t *testing.T) {
	g, err := NewFixtureGenerator()
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, "Motorcycle Basics", g.Module(0).Title)
	assert.Equal(t, "Motorcycle Basics (2)", g.Module(4).Title)
	assert.Equal(t, "Motorcycle Basics", g.Module(0).Title)
}

func TestParseFixturesRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"wrong version", "version: 2\nmodules:\n  - title: x\n"},
		{"empty", "version: 1\nmodules: []\n"},
		{"bad slide", "version: 1\nmodules:\n  - title: x\n    slides:\n      - type: text\n        path: a.mp4\n"},
		{"not yaml", "version: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFixtures([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
