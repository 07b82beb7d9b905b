// Package export serializes rendered materials into downloadable artifacts.
// The three encoders (PDF, DOCX, PPTX) are parallel pipelines sharing the
// same Page/Slide inputs; they are not one abstraction with format branches.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/lessonpress/internal/imagegen"
	"github.com/pavelanni/lessonpress/internal/model"
	"github.com/pavelanni/lessonpress/internal/render"
)

// Format identifies an export target.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
)

// ErrFormatNotApplicable is returned when the requested format is
// structurally incompatible with the material kind (e.g. Word export of a
// slide deck). Surfaced to the user immediately; no partial artifact.
var ErrFormatNotApplicable = errors.New("format not applicable to this material kind")

// Artifact is the final binary document produced for download. Incomplete
// is set when encoding proceeded best-effort after a resource-load timeout.
type Artifact struct {
	Filename   string
	MIME       string
	Data       []byte
	Incomplete bool
}

// Status tracks one export invocation. Nothing is retried automatically;
// the surrounding UI may re-invoke.
type Status string

const (
	StatusRequested Status = "requested"
	StatusRendering Status = "rendering"
	StatusEncoding  Status = "encoding"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job records the state machine of a single export invocation.
type Job struct {
	ID         string
	MaterialID int64
	Format     Format
	Status     Status
	StartedAt  time.Time
}

func newJob(materialID int64, format Format) *Job {
	return &Job{
		ID:         uuid.NewString(),
		MaterialID: materialID,
		Format:     format,
		Status:     StatusRequested,
		StartedAt:  time.Now(),
	}
}

func (j *Job) transition(s Status) {
	j.Status = s
	slog.Debug("export job", "id", j.ID, "material", j.MaterialID, "format", j.Format, "status", s)
}

// Service drives export invocations through
// Requested -> Rendering -> Encoding -> Completed|Failed.
type Service struct {
	renderer  *render.Renderer
	paginator *render.Paginator
	images    *imagegen.Orchestrator
	pdf       *PDFEncoder
}

// NewService creates an export service.
func NewService(r *render.Renderer, p *render.Paginator, images *imagegen.Orchestrator, pdf *PDFEncoder) *Service {
	return &Service{renderer: r, paginator: p, images: images, pdf: pdf}
}

// ToPDF renders a material and prints it to PDF. Applicable to all kinds;
// slide decks print one slide per page.
func (s *Service) ToPDF(ctx context.Context, m model.MaterialRecord) (*Artifact, error) {
	job := newJob(m.ID, FormatPDF)
	job.transition(StatusRendering)

	pages, err := s.renderPages(m)
	if err != nil {
		job.transition(StatusFailed)
		return nil, err
	}

	job.transition(StatusEncoding)
	art, err := s.pdf.Encode(ctx, m, pages)
	if err != nil {
		job.transition(StatusFailed)
		return nil, fmt.Errorf("encode PDF: %w", err)
	}
	job.transition(StatusCompleted)
	return art, nil
}

// ToWord renders a material into a DOCX document. Slide decks are not
// representable as word-processing documents and are rejected.
func (s *Service) ToWord(_ context.Context, m model.MaterialRecord) (*Artifact, error) {
	job := newJob(m.ID, FormatDOCX)
	if m.Kind == model.KindSlides {
		job.transition(StatusFailed)
		return nil, ErrFormatNotApplicable
	}
	job.transition(StatusRendering)

	doc, err := s.renderer.RenderByID("", m)
	if err != nil {
		job.transition(StatusFailed)
		return nil, err
	}
	pages := s.paginator.Paginate(doc)

	job.transition(StatusEncoding)
	art, err := EncodeDOCX(m, pages)
	if err != nil {
		job.transition(StatusFailed)
		return nil, fmt.Errorf("encode DOCX: %w", err)
	}
	job.transition(StatusCompleted)
	return art, nil
}

// ToPPT renders a slide deck into a PPTX presentation, embedding resolved
// illustrations. Only slide-kind materials are applicable.
func (s *Service) ToPPT(ctx context.Context, m model.MaterialRecord) (*Artifact, error) {
	job := newJob(m.ID, FormatPPTX)
	if m.Kind != model.KindSlides {
		job.transition(StatusFailed)
		return nil, ErrFormatNotApplicable
	}
	job.transition(StatusRendering)

	doc, err := s.renderer.RenderByID("", m)
	if err != nil {
		job.transition(StatusFailed)
		return nil, err
	}
	slides := render.ExtractSlides(doc)
	if s.images != nil {
		s.images.Annotate(m.ID, slides)
	}

	job.transition(StatusEncoding)
	art, err := EncodePPTX(ctx, m, slides)
	if err != nil {
		job.transition(StatusFailed)
		return nil, fmt.Errorf("encode PPTX: %w", err)
	}
	job.transition(StatusCompleted)
	return art, nil
}

// renderPages produces the print page sequence for any kind. Slide decks
// map one slide to one page so the PDF matches the on-screen deck.
func (s *Service) renderPages(m model.MaterialRecord) ([]model.Page, error) {
	doc, err := s.renderer.RenderByID("", m)
	if err != nil {
		return nil, err
	}
	if m.Kind == model.KindSlides {
		slides := render.ExtractSlides(doc)
		pages := make([]model.Page, 0, len(slides))
		for _, sl := range slides {
			pages = append(pages, model.Page{Index: sl.Index, First: sl.Index == 0, HTML: sl.HTML})
		}
		if len(pages) == 0 {
			pages = []model.Page{{Index: 0, First: true}}
		}
		return pages, nil
	}
	return s.paginator.Paginate(doc), nil
}

// suggestedFilename derives a download filename from the material title.
func suggestedFilename(m model.MaterialRecord, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '_':
			return '-'
		}
		return -1
	}, m.Title)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = fmt.Sprintf("material-%d", m.ID)
	}
	return slug + "." + ext
}
