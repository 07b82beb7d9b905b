// Package render binds structured material content to HTML templates,
// paginates rendered documents into print pages, and extracts slide decks.
package render

import (
	"database/sql"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/pavelanni/lessonpress/internal/model"
)

// ErrTemplateMissing is returned when neither the requested template nor
// the kind's default template exists.
var ErrTemplateMissing = errors.New("template not found and no default for kind")

// TemplateSource supplies template snapshots, normally the sqlite store.
type TemplateSource interface {
	GetTemplate(id string) (model.Template, error)
}

// Renderer binds material content to templates.
type Renderer struct {
	templates TemplateSource
}

// NewRenderer creates a Renderer over the given template source.
func NewRenderer(ts TemplateSource) *Renderer {
	return &Renderer{templates: ts}
}

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render substitutes every recognized placeholder in the template with the
// matching field of the material. Unresolved placeholders render as empty
// strings: a missing field is a content-quality issue, not a render failure.
func Render(tmpl model.Template, m model.MaterialRecord) string {
	fields := placeholderFields(m)
	return placeholderRe.ReplaceAllStringFunc(tmpl.HTML, func(tok string) string {
		name := placeholderRe.FindStringSubmatch(tok)[1]
		return fields[name]
	})
}

// RenderByID renders a material against a stored template, falling back to
// the kind's default template when the requested id is empty or missing.
func (r *Renderer) RenderByID(templateID string, m model.MaterialRecord) (string, error) {
	if templateID != "" {
		tmpl, err := r.templates.GetTemplate(templateID)
		if err == nil {
			return Render(tmpl, m), nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("load template %q: %w", templateID, err)
		}
	}
	tmpl, err := r.templates.GetTemplate(DefaultTemplateID(m.Kind))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTemplateMissing
	}
	if err != nil {
		return "", fmt.Errorf("load default template for %s: %w", m.Kind, err)
	}
	return Render(tmpl, m), nil
}

// placeholderFields maps placeholder names to their rendered values for a
// material. Free text is escaped; evaluation is admin-authored HTML and is
// inserted raw.
func placeholderFields(m model.MaterialRecord) map[string]string {
	fields := map[string]string{
		"title":   html.EscapeString(m.Title),
		"subject": html.EscapeString(m.Subject),
		"grade":   html.EscapeString(m.Grade),
		"date":    m.CreatedAt.Format("2006-01-02"),
	}
	switch body := m.Content.(type) {
	case *model.LessonPlanBody:
		fields["objectives"] = listItems(body.Objectives)
		fields["skills"] = listItems(body.Skills)
		fields["steps"] = stepRows(body.Steps)
		fields["resources"] = listItems(body.Resources)
		fields["evaluation"] = body.Evaluation
	case *model.ActivityBody:
		fields["instructions"] = html.EscapeString(body.Instructions)
		fields["questions"] = questionBlocks(body.Questions, false)
	case *model.AssessmentBody:
		fields["instructions"] = html.EscapeString(body.Instructions)
		fields["questions"] = questionBlocks(body.Questions, true)
	case *model.SlidesBody:
		fields["slides"] = slideSections(body.Slides)
	}
	return fields
}

func listItems(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("<li>")
		sb.WriteString(html.EscapeString(item))
		sb.WriteString("</li>")
	}
	return sb.String()
}

func stepRows(steps []model.DevelopmentStep) string {
	var sb strings.Builder
	for _, st := range steps {
		sb.WriteString("<tr><td>")
		sb.WriteString(html.EscapeString(st.Stage))
		sb.WriteString("</td><td>")
		sb.WriteString(html.EscapeString(st.Activity))
		sb.WriteString("</td><td>")
		sb.WriteString(html.EscapeString(st.Time))
		sb.WriteString("</td><td>")
		sb.WriteString(html.EscapeString(st.Resources))
		sb.WriteString("</td></tr>")
	}
	return sb.String()
}

func questionBlocks(questions []model.Question, withScore bool) string {
	var sb strings.Builder
	for _, q := range questions {
		sb.WriteString(`<div class="question">`)
		if withScore && q.Score > 0 {
			fmt.Fprintf(&sb, `<span class="score">%.1f pts</span>`, q.Score)
		}
		fmt.Fprintf(&sb, "<p><strong>%d.</strong> %s</p>", q.Number, html.EscapeString(q.Prompt))
		if len(q.Options) > 0 {
			sb.WriteString(`<ol class="options">`)
			for _, opt := range q.Options {
				sb.WriteString("<li>")
				sb.WriteString(html.EscapeString(opt))
				sb.WriteString("</li>")
			}
			sb.WriteString("</ol>")
		}
		sb.WriteString("</div>")
	}
	return sb.String()
}

func slideSections(slides []model.SlideContent) string {
	var sb strings.Builder
	for _, s := range slides {
		sb.WriteString(`<section class="slide">`)
		sb.WriteString("<h2>")
		sb.WriteString(html.EscapeString(s.Title))
		sb.WriteString("</h2><ul>")
		for _, line := range s.Content {
			sb.WriteString("<li>")
			sb.WriteString(html.EscapeString(line))
			sb.WriteString("</li>")
		}
		sb.WriteString("</ul></section>")
	}
	return sb.String()
}
