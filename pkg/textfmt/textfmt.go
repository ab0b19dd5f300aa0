// Package textfmt cleans AI-generated text for display.
//
// Content generators tend to decorate their output with Markdown even when
// asked for plain text. [CleanMarkdown] strips the common constructs so that
// line-oriented markup such as "**SYMPTOM:** Fever" parses the same as
// "SYMPTOM: Fever".
package textfmt

import (
	"regexp"
	"strings"
)

// Patterns are applied in order; bold must run before italic so that
// "**x**" is not read as two italic markers.
var (
	boldStarRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRe  = regexp.MustCompile(`__(.+?)__`)
	italicStarRe = regexp.MustCompile(`\*(.+?)\*`)
	italicUndRe  = regexp.MustCompile(`_(.+?)_`)
	headerRe     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	inlineCodeRe = regexp.MustCompile("`(.+?)`")
	codeBlockRe  = regexp.MustCompile("```[\\s\\S]*?```")
	linkRe       = regexp.MustCompile(`\[(.+?)\]\(.+?\)`)
	imageRe      = regexp.MustCompile(`!\[.+?\]\(.+?\)`)
	ruleRe       = regexp.MustCompile(`(?m)^[\-\*]{3,}$`)
	quoteRe      = regexp.MustCompile(`(?m)^>\s+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// CleanMarkdown removes Markdown formatting from s and trims the result.
// Empty input is returned unchanged.
func CleanMarkdown(s string) string {
	if s == "" {
		return s
	}

	s = boldStarRe.ReplaceAllString(s, "$1")
	s = boldUnderRe.ReplaceAllString(s, "$1")
	s = italicStarRe.ReplaceAllString(s, "$1")
	s = italicUndRe.ReplaceAllString(s, "$1")
	s = headerRe.ReplaceAllString(s, "")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = codeBlockRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = imageRe.ReplaceAllString(s, "")
	s = ruleRe.ReplaceAllString(s, "")
	s = quoteRe.ReplaceAllString(s, "")
	s = blankRunRe.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// FormatForDisplay cleans s for display. With preserveStructure the line
// breaks are kept; otherwise all whitespace collapses to single spaces.
func FormatForDisplay(s string, preserveStructure bool) string {
	if s == "" {
		return s
	}
	cleaned := CleanMarkdown(s)
	if preserveStructure {
		return cleaned
	}
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(cleaned, " "))
}
