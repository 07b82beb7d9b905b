package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/pavelanni/lessonpress/internal/export"
)

func TestWriteArtifactHeaders(t *testing.T) {
	art := &export.Artifact{
		Filename: "lesson.pdf",
		MIME:     "application/pdf",
		Data:     []byte("%PDF-1.7"),
	}

	rec := httptest.NewRecorder()
	writeArtifact(rec, art)

	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="lesson.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("X-Export-Incomplete"); got != "" {
		t.Errorf("complete artifact must not be flagged, got %q", got)
	}
	if rec.Body.String() != "%PDF-1.7" {
		t.Error("artifact bytes not written")
	}
}

func TestWriteArtifactSignalsIncomplete(t *testing.T) {
	art := &export.Artifact{
		Filename:   "lesson.pdf",
		MIME:       "application/pdf",
		Data:       []byte("%PDF-1.7"),
		Incomplete: true,
	}

	rec := httptest.NewRecorder()
	writeArtifact(rec, art)

	if got := rec.Header().Get("X-Export-Incomplete"); got != "true" {
		t.Errorf("X-Export-Incomplete = %q, want \"true\"", got)
	}
	if rec.Body.String() != "%PDF-1.7" {
		t.Error("incomplete artifact must still be delivered")
	}
}
