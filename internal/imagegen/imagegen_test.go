package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pavelanni/lessonpress/internal/model"
)

// fakeGenerator returns canned results and counts invocations.
type fakeGenerator struct {
	calls    atomic.Int64
	generate func(prompt string) (string, error)
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	return f.generate(prompt)
}

func testMaterial() model.MaterialRecord {
	return model.MaterialRecord{
		ID:      7,
		Kind:    model.KindSlides,
		Subject: "Science",
		Grade:   "4th grade",
		Title:   "The Water Cycle",
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	m := testMaterial()

	a := BuildPrompt(StyleIllustration, m, 2, "Evaporation")
	b := BuildPrompt(StyleIllustration, m, 2, "Evaporation")
	if a != b {
		t.Error("same inputs must produce the same prompt")
	}

	c := BuildPrompt(StyleIllustration, m, 4, "Evaporation")
	if a == c {
		t.Error("different slide roles must produce different prompts")
	}

	if !strings.Contains(a, "The Water Cycle") || !strings.Contains(a, "Science") {
		t.Errorf("prompt missing material context: %q", a)
	}
	if !strings.Contains(a, "concept") {
		t.Errorf("prompt for slide 2 should name the concept role: %q", a)
	}
}

func TestBuildPromptStyles(t *testing.T) {
	m := testMaterial()
	photo := BuildPrompt(StylePhoto, m, 0, "Title")
	diagram := BuildPrompt(StyleDiagram, m, 0, "Title")
	if photo == diagram {
		t.Error("styles must alter the prompt")
	}
	if !strings.Contains(photo, "photograph") {
		t.Errorf("photo style directive missing: %q", photo)
	}
}

func TestEligibility(t *testing.T) {
	eligible := map[int]bool{0: true, 1: true, 2: true, 4: true, 6: true, 8: true}
	for i := 0; i < 12; i++ {
		if got := Eligible(i); got != eligible[i] {
			t.Errorf("Eligible(%d) = %t, want %t", i, got, eligible[i])
		}
	}
}

func TestEnsureImageCachesResult(t *testing.T) {
	gen := &fakeGenerator{generate: func(string) (string, error) {
		return "https://img.example/1.png", nil
	}}
	o := NewOrchestrator(gen, StyleIllustration)
	m := testMaterial()
	ctx := context.Background()

	url, ok := o.EnsureImage(ctx, m, 0, "<h2>Title</h2>")
	if !ok || url != "https://img.example/1.png" {
		t.Fatalf("EnsureImage = %q, %t", url, ok)
	}

	// Second request is served from cache.
	url2, ok := o.EnsureImage(ctx, m, 0, "<h2>Title</h2>")
	if !ok || url2 != url {
		t.Fatalf("second EnsureImage = %q, %t", url2, ok)
	}
	if got := gen.calls.Load(); got != 1 {
		t.Errorf("generator called %d times, want 1", got)
	}

	if st := o.Status(m.ID, 0); st != StateReady {
		t.Errorf("Status = %v, want StateReady", st)
	}
	if _, ok := o.ImageURL(m.ID, 0); !ok {
		t.Error("ImageURL should resolve after success")
	}
}

func TestEnsureImageIneligibleSlide(t *testing.T) {
	gen := &fakeGenerator{generate: func(string) (string, error) {
		return "unused", nil
	}}
	o := NewOrchestrator(gen, StyleIllustration)

	if _, ok := o.EnsureImage(context.Background(), testMaterial(), 3, "<h2>x</h2>"); ok {
		t.Error("ineligible slide must not resolve an image")
	}
	if got := gen.calls.Load(); got != 0 {
		t.Errorf("generator called %d times for an ineligible slide", got)
	}
}

func TestEnsureImageFailureIsIsolated(t *testing.T) {
	gen := &fakeGenerator{generate: func(prompt string) (string, error) {
		if strings.Contains(prompt, "title slide") {
			return "", errors.New("rate limited")
		}
		return "https://img.example/ok.png", nil
	}}
	o := NewOrchestrator(gen, StyleIllustration)
	m := testMaterial()
	ctx := context.Background()

	if _, ok := o.EnsureImage(ctx, m, 0, "<h2>A</h2>"); ok {
		t.Error("failed generation must report ok=false")
	}
	if st := o.Status(m.ID, 0); st != StateFailed {
		t.Errorf("Status after failure = %v, want StateFailed", st)
	}

	// The sibling slide still succeeds.
	url, ok := o.EnsureImage(ctx, m, 1, "<h2>B</h2>")
	if !ok || url == "" {
		t.Error("failure on one slide must not affect another")
	}
}

func TestStatusDefaultsToNone(t *testing.T) {
	o := NewOrchestrator(&fakeGenerator{generate: func(string) (string, error) { return "", nil }}, StyleIllustration)
	if st := o.Status(99, 0); st != StateNone {
		t.Errorf("Status for unknown pair = %v, want StateNone", st)
	}
}

func TestAnnotateFillsResolvedURLs(t *testing.T) {
	gen := &fakeGenerator{generate: func(prompt string) (string, error) {
		return fmt.Sprintf("https://img.example/%d.png", len(prompt)), nil
	}}
	o := NewOrchestrator(gen, StyleIllustration)
	m := testMaterial()
	ctx := context.Background()

	o.EnsureImage(ctx, m, 0, "<h2>A</h2>")
	o.EnsureImage(ctx, m, 2, "<h2>C</h2>")

	slides := []model.Slide{
		{Index: 0, HTML: "<h2>A</h2>"},
		{Index: 1, HTML: "<h2>B</h2>"},
		{Index: 2, HTML: "<h2>C</h2>"},
		{Index: 3, HTML: "<h2>D</h2>"},
	}
	o.Annotate(m.ID, slides)

	if slides[0].ImageURL == "" || slides[2].ImageURL == "" {
		t.Error("resolved slides must carry their image URL")
	}
	if slides[1].ImageURL != "" || slides[3].ImageURL != "" {
		t.Error("unresolved slides must stay without URL")
	}
}

func TestOrchestratorRejectsInvalidStyle(t *testing.T) {
	o := NewOrchestrator(&fakeGenerator{generate: func(string) (string, error) { return "", nil }}, PromptStyle("watercolor"))
	if o.style != StyleIllustration {
		t.Errorf("invalid style should fall back to illustration, got %q", o.style)
	}
}
