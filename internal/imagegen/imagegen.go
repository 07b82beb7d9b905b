// Package imagegen orchestrates asynchronous AI illustration generation
// for slide decks: one contextual prompt per eligible slide, concurrent
// staggered dispatch, and a per-session result cache. Individual failures
// degrade visual richness only; they never fail the surrounding render.
package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/singleflight"

	"github.com/pavelanni/lessonpress/internal/model"
	"github.com/pavelanni/lessonpress/internal/render"
)

// Generator is the external image service boundary: an opaque, potentially
// slow, potentially failing dependency.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenerator calls an OpenAI-compatible images endpoint.
type OpenAIGenerator struct {
	api   *openai.Client
	model string
}

// NewOpenAIGenerator creates a generator against the given endpoint.
func NewOpenAIGenerator(baseURL, apiKey, modelName string) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Generate requests one image and returns its URL.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("image API call: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("image API returned no data")
	}
	return resp.Data[0].URL, nil
}

// State describes the lifecycle of one slide's image.
type State int

const (
	// StateNone means no generation was requested for this slide.
	StateNone State = iota
	// StatePending means generation is in flight.
	StatePending
	// StateReady means a URL is resolved.
	StateReady
	// StateFailed means generation failed; the slide renders a neutral
	// "image unavailable" placeholder.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "none"
	}
}

// staggerDelay spaces out concurrent dispatches to respect external rate
// limits without serializing the deck.
const defaultStagger = 250 * time.Millisecond

type cacheKey struct {
	materialID int64
	slide      int
}

type entry struct {
	state State
	url   string
}

// Orchestrator coordinates image generation per (material, slide index).
// Once a URL resolves for a pair it is never re-requested for the lifetime
// of the process (the viewing session).
type Orchestrator struct {
	gen     Generator
	style   PromptStyle
	stagger time.Duration

	mu    sync.Mutex
	cache map[cacheKey]entry
	group singleflight.Group
}

// NewOrchestrator creates an Orchestrator with the given generator and
// prompt style.
func NewOrchestrator(gen Generator, style PromptStyle) *Orchestrator {
	if !validStyles[style] {
		style = StyleIllustration
	}
	return &Orchestrator{
		gen:     gen,
		style:   style,
		stagger: defaultStagger,
		cache:   make(map[cacheKey]entry),
	}
}

// EnsureImage resolves the image URL for one slide, generating it if needed.
// Ineligible slides return ok=false immediately. Errors are absorbed here:
// a failed slide reports ok=false and is remembered as failed.
func (o *Orchestrator) EnsureImage(ctx context.Context, m model.MaterialRecord, slideIndex int, slideHTML string) (string, bool) {
	if !Eligible(slideIndex) {
		return "", false
	}
	key := cacheKey{materialID: m.ID, slide: slideIndex}

	o.mu.Lock()
	if e, ok := o.cache[key]; ok && e.state != StatePending {
		o.mu.Unlock()
		return e.url, e.state == StateReady
	}
	o.cache[key] = entry{state: StatePending}
	o.mu.Unlock()

	heading := render.FirstHeading(slideHTML)
	prompt := BuildPrompt(o.style, m, slideIndex, heading)

	// The external call cannot be aborted mid-flight; a viewer navigating
	// away discards the result rather than cancelling the request.
	genCtx := context.WithoutCancel(ctx)

	flightKey := fmt.Sprintf("%d/%d", m.ID, slideIndex)
	v, err, _ := o.group.Do(flightKey, func() (any, error) {
		return o.gen.Generate(genCtx, prompt)
	})
	if err != nil {
		slog.Warn("image generation failed",
			"material", m.ID, "slide", slideIndex, "error", err)
		o.store(key, entry{state: StateFailed})
		return "", false
	}

	url := v.(string)
	o.store(key, entry{state: StateReady, url: url})
	slog.Debug("image resolved", "material", m.ID, "slide", slideIndex)
	return url, true
}

// RequestAll dispatches generation for every eligible slide of a deck,
// concurrently but staggered. One slide's failure or delay never blocks a
// sibling; RequestAll returns immediately.
func (o *Orchestrator) RequestAll(ctx context.Context, m model.MaterialRecord, slides []model.Slide) {
	go func() {
		for _, s := range slides {
			if !Eligible(s.Index) {
				continue
			}
			if o.Status(m.ID, s.Index) != StateNone {
				continue
			}
			slide := s
			go o.EnsureImage(ctx, m, slide.Index, slide.HTML)
			time.Sleep(o.stagger)
		}
	}()
}

// Status reports the cached state for one (material, slide) pair.
func (o *Orchestrator) Status(materialID int64, slideIndex int) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cache[cacheKey{materialID: materialID, slide: slideIndex}].state
}

// ImageURL returns the resolved URL for a pair, if any.
func (o *Orchestrator) ImageURL(materialID int64, slideIndex int) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e := o.cache[cacheKey{materialID: materialID, slide: slideIndex}]
	return e.url, e.state == StateReady
}

// Annotate fills ImageURL on every slide whose image already resolved.
func (o *Orchestrator) Annotate(materialID int64, slides []model.Slide) {
	for i := range slides {
		if url, ok := o.ImageURL(materialID, slides[i].Index); ok {
			slides[i].ImageURL = url
		}
	}
}

func (o *Orchestrator) store(key cacheKey, e entry) {
	o.mu.Lock()
	o.cache[key] = e
	o.mu.Unlock()
}
