// Package ingest prepares raw source files for indexing. Markdown is
// reduced to plain text so chunk content and lexical matching see
// prose, not formatting syntax.
package ingest

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	reCodeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	reInlineCode   = regexp.MustCompile("`[^`]+`")
	reImage        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	reLink         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reHeading      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reBlockquote   = regexp.MustCompile(`(?m)^>\s*`)
	reRule         = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	reListMarker   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	reNumberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	reBlankRuns    = regexp.MustCompile(`\n{3,}`)
)

// IsMarkdown reports whether the path carries a markdown extension.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// StripMarkdown reduces markdown formatting to plain text. Code blocks
// are dropped entirely; link and emphasis syntax is unwrapped.
func StripMarkdown(content string) string {
	content = reCodeBlock.ReplaceAllString(content, "")
	content = reInlineCode.ReplaceAllString(content, "")
	content = reImage.ReplaceAllString(content, "")
	content = reLink.ReplaceAllString(content, "$1")
	content = reHeading.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = reBlockquote.ReplaceAllString(content, "")
	content = reRule.ReplaceAllString(content, "")
	content = reListMarker.ReplaceAllString(content, "")
	content = reNumberedList.ReplaceAllString(content, "")
	content = reBlankRuns.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}

// TitleFromMarkdown takes the first H1 heading as the display title,
// falling back to a cleaned-up filename.
func TitleFromMarkdown(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return TitleFromFilename(path)
}

// TitleFromFilename derives a display title from a file path.
func TitleFromFilename(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
