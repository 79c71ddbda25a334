// Package lang classifies file paths by programming language.
package lang

import (
	"path"
	"strings"

	"commitsonic/internal/models"
)

// Other labels every path the tables do not recognise.
const Other = "Other"

// DefaultColor is used for languages without a color entry.
const DefaultColor = "#8b8b8b"

var byExtension = map[string]string{
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".mts":   "TypeScript",
	".cts":   "TypeScript",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".mjs":   "JavaScript",
	".cjs":   "JavaScript",
	".py":    "Python",
	".pyi":   "Python",
	".go":    "Go",
	".rs":    "Rust",
	".java":  "Java",
	".kt":    "Kotlin",
	".kts":   "Kotlin",
	".rb":    "Ruby",
	".c":     "C",
	".h":     "C",
	".cc":    "C++",
	".cpp":   "C++",
	".cxx":   "C++",
	".hpp":   "C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".sh":    "Shell",
	".bash":  "Shell",
	".zsh":   "Shell",
	".html":  "HTML",
	".htm":   "HTML",
	".css":   "CSS",
	".scss":  "CSS",
	".md":    "Markdown",
	".mdx":   "Markdown",
	".json":  "JSON",
	".yml":   "YAML",
	".yaml":  "YAML",
	".sql":   "SQL",
	".vue":   "Vue",
}

var byFilename = map[string]string{
	"Dockerfile": "Dockerfile",
	"Makefile":   "Makefile",
}

var colorByLanguage = map[string]string{
	"TypeScript": "#3178c6",
	"JavaScript": "#f1e05a",
	"Python":     "#3572a5",
	"Go":         "#00add8",
	"Rust":       "#dea584",
	"Java":       "#b07219",
	"Kotlin":     "#a97bff",
	"Ruby":       "#701516",
	"C":          "#555555",
	"C++":        "#f34b7d",
	"C#":         "#178600",
	"PHP":        "#4f5d95",
	"Swift":      "#f05138",
	"Shell":      "#89e051",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"Markdown":   "#083fa1",
}

// Detect returns the language label for a file path.
func Detect(p string) string {
	base := path.Base(p)
	if l, ok := byFilename[base]; ok {
		return l
	}
	if l, ok := byExtension[strings.ToLower(path.Ext(base))]; ok {
		return l
	}
	return Other
}

// Color returns the display color of a language label.
func Color(language string) string {
	if c, ok := colorByLanguage[language]; ok {
		return c
	}
	return DefaultColor
}

// Histogram weighs every path by 1 under its language, keeping the order in
// which languages are first seen.
func Histogram(paths []string) models.LanguageWeights {
	h := models.LanguageWeights{}
	for _, p := range paths {
		h = h.Add(Detect(p), 1)
	}
	return h
}

// Primary returns the heaviest label. Ties go to the label seen first.
func Primary(h models.LanguageWeights) string {
	best, bestWeight := Other, -1
	for _, w := range h {
		if w.Weight > bestWeight {
			best, bestWeight = w.Label, w.Weight
		}
	}
	return best
}
