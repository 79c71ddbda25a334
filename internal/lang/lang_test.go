package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"commitsonic/internal/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "src/app.ts", expected: "TypeScript"},
		{path: "web/App.TSX", expected: "TypeScript"},
		{path: "main.go", expected: "Go"},
		{path: "scripts/deploy.sh", expected: "Shell"},
		{path: "build/Dockerfile", expected: "Dockerfile"},
		{path: "README", expected: Other},
		{path: "assets/logo.png", expected: Other},
		{path: ".gitignore", expected: Other},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Detect(tt.path), tt.path)
	}
}

func TestHistogramKeepsFirstSeenOrder(t *testing.T) {
	h := Histogram([]string{"a.py", "b.go", "c.py", "d.md", "e.go"})

	assert.Equal(t, models.LanguageWeights{
		{Label: "Python", Weight: 2},
		{Label: "Go", Weight: 2},
		{Label: "Markdown", Weight: 1},
	}, h)
}

func TestPrimary(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		expected string
	}{
		{name: "clear winner", paths: []string{"a.go", "b.go", "c.ts"}, expected: "Go"},
		{name: "tie goes to first seen", paths: []string{"a.py", "b.go", "c.go", "d.py"}, expected: "Python"},
		{name: "tie reversed order", paths: []string{"b.go", "a.py", "d.py", "c.go"}, expected: "Go"},
		{name: "no files", paths: nil, expected: Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Primary(Histogram(tt.paths)))
		})
	}
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#00add8", Color("Go"))
	assert.Equal(t, DefaultColor, Color("Brainfuck"))
}
