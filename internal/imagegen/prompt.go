package imagegen

import (
	"fmt"
	"strings"

	"github.com/pavelanni/lessonpress/internal/model"
)

// PromptStyle selects the visual register of generated illustrations.
type PromptStyle string

const (
	// StylePhoto produces realistic photographic images.
	StylePhoto PromptStyle = "photo"
	// StyleIllustration is the default warm flat-illustration style.
	StyleIllustration PromptStyle = "illustration"
	// StyleDiagram produces clean schematic diagrams.
	StyleDiagram PromptStyle = "diagram"
)

var validStyles = map[PromptStyle]bool{
	StylePhoto:        true,
	StyleIllustration: true,
	StyleDiagram:      true,
}

// IsValidStyle checks if a prompt style name is valid.
func IsValidStyle(s string) bool {
	return validStyles[PromptStyle(s)]
}

var styleDirectives = map[PromptStyle]string{
	StylePhoto:        "Render as a realistic, well-lit photograph.",
	StyleIllustration: "Render as a warm, flat educational illustration with soft colors.",
	StyleDiagram:      "Render as a clean schematic diagram on a white background.",
}

// Slide positions that receive illustrations: title, introduction, concept,
// two development slides, and the worked example. Bounding the set bounds
// generation cost and latency per deck.
var eligibleSlides = map[int]string{
	0: "title",
	1: "introduction",
	2: "concept",
	4: "development",
	6: "development",
	8: "worked example",
}

// Eligible reports whether the slide at the given index receives an image.
func Eligible(index int) bool {
	_, ok := eligibleSlides[index]
	return ok
}

// BuildPrompt derives the illustration prompt for a slide. The result is a
// pure function of its inputs: the same slide index, heading and material
// metadata always produce the same prompt text.
func BuildPrompt(style PromptStyle, m model.MaterialRecord, slideIndex int, heading string) string {
	role, ok := eligibleSlides[slideIndex]
	if !ok {
		role = "content"
	}
	directive, ok := styleDirectives[style]
	if !ok {
		directive = styleDirectives[StyleIllustration]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "An educational image for the %s slide of a school lesson.\n", role)
	if heading != "" {
		fmt.Fprintf(&sb, "Slide topic: %s.\n", heading)
	}
	if m.Title != "" {
		fmt.Fprintf(&sb, "Lesson theme: %s.\n", m.Title)
	}
	if m.Subject != "" {
		fmt.Fprintf(&sb, "Subject: %s.\n", m.Subject)
	}
	if m.Grade != "" {
		fmt.Fprintf(&sb, "Audience: %s students.\n", m.Grade)
	}
	sb.WriteString(directive)
	sb.WriteString(" No text or lettering in the image.")
	return sb.String()
}
