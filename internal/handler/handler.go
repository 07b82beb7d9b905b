package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/lessonpress/internal/export"
	appI18n "github.com/pavelanni/lessonpress/internal/i18n"
	"github.com/pavelanni/lessonpress/internal/imagegen"
	"github.com/pavelanni/lessonpress/internal/model"
	"github.com/pavelanni/lessonpress/internal/render"
	"github.com/pavelanni/lessonpress/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store     *store.Store
	renderer  *render.Renderer
	paginator *render.Paginator
	images    *imagegen.Orchestrator
	exports   *export.Service
	config    model.Config
}

// New creates a new Handler.
func New(s *store.Store, r *render.Renderer, p *render.Paginator, img *imagegen.Orchestrator, exp *export.Service, cfg model.Config) (*Handler, error) {
	return &Handler{store: s, renderer: r, paginator: p, images: img, exports: exp, config: cfg}, nil
}

// path prefixes a route with the configured base path for link generation.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Use(h.requireAuth)

		r.Get("/", h.handleIndex)
		r.Post("/logout", h.handleLogout)

		r.Post("/materials", h.handleCreateMaterial)
		r.Get("/materials/{materialID}", h.handleGetMaterial)
		r.Post("/materials/{materialID}/content", h.handleEditContent)
		r.Get("/materials/{materialID}/preview", h.handlePreview)
		r.Get("/materials/{materialID}/slides/{index}/image", h.handleSlideImage)
		r.Post("/materials/{materialID}/export/{format}", h.handleExport)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireRole(model.UserRoleAdmin))
			r.Get("/templates", h.handleAdminTemplatesPage)
			r.Post("/templates", h.handleSaveTemplate)
			r.Post("/templates/{templateID}/delete", h.handleDeleteTemplate)
			r.Get("/users", h.handleAdminUsersPage)
			r.Post("/users", h.handleCreateUser)
		})
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	materials, err := h.store.ListMaterials()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := newHTMLPage(appI18n.T(r.Context(), "Materials"))
	page.openList()
	for _, m := range materials {
		page.listItem(fmt.Sprintf(`<a href="%s">%s</a> <small>%s · %s · %s</small>`,
			page.esc(h.path(fmt.Sprintf("/materials/%d/preview", m.ID))),
			page.esc(m.Title), page.esc(string(m.Kind)), page.esc(m.Subject), page.esc(m.Grade)))
	}
	page.closeList()
	page.writeTo(w)
}

// materialInput is the JSON create payload.
type materialInput struct {
	Kind    model.Kind      `json:"kind"`
	Subject string          `json:"subject"`
	Grade   string          `json:"grade"`
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

func (h *Handler) handleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	var in materialInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !model.ValidKind(in.Kind) {
		http.Error(w, "unknown material kind", http.StatusBadRequest)
		return
	}

	body, err := model.UnmarshalContent(in.Kind, in.Content)
	if err != nil {
		http.Error(w, "invalid content: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.store.InsertMaterial(model.MaterialRecord{
		Kind:    in.Kind,
		Subject: in.Subject,
		Grade:   in.Grade,
		Title:   in.Title,
		Content: body,
	})
	if err != nil {
		slog.Error("failed to insert material", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]int64{"id": id})
}

func (h *Handler) handleGetMaterial(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMaterial(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      m.ID,
		"kind":    m.Kind,
		"subject": m.Subject,
		"grade":   m.Grade,
		"title":   m.Title,
		"content": m.Content,
	})
}

// handleEditContent updates one field of the material body, addressed by a
// dot path like "steps.1.activity".
func (h *Handler) handleEditContent(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMaterial(w, r)
	if !ok {
		return
	}

	fieldPath := r.FormValue("path")
	value := r.FormValue("value")
	if fieldPath == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	editor := model.EditorFor(m.Content)
	if err := editor.Set(fieldPath, value); err != nil {
		http.Error(w, "edit failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateMaterialContent(m.ID, m.Content); err != nil {
		slog.Error("failed to update material", "id", m.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.path(fmt.Sprintf("/materials/%d/preview", m.ID)), http.StatusSeeOther)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMaterial(w, r)
	if !ok {
		return
	}

	doc, err := h.renderer.RenderByID(render.DefaultTemplateID(m.Kind), m)
	if err != nil {
		slog.Error("render failed", "id", m.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if m.Kind == model.KindSlides {
		slides := render.ExtractSlides(doc)
		// Kick off generation for eligible slides; the deck renders
		// immediately with whatever has already resolved.
		h.images.RequestAll(r.Context(), m, slides)
		h.images.Annotate(m.ID, slides)
		h.writeSlidePreview(w, r, m, slides)
		return
	}

	pages := h.paginator.Paginate(doc)
	fmt.Fprintf(w, `<p class="preview-count">%s</p>`, appI18n.Tp(r.Context(), "PageCount", len(pages)))
	for _, p := range pages {
		fmt.Fprint(w, p.HTML)
	}
}

func (h *Handler) writeSlidePreview(w http.ResponseWriter, r *http.Request, m model.MaterialRecord, slides []model.Slide) {
	fmt.Fprintf(w, `<p class="preview-count">%s</p>`, appI18n.Tp(r.Context(), "SlideCount", len(slides)))
	for _, s := range slides {
		fmt.Fprint(w, s.HTML)
		if !imagegen.Eligible(s.Index) {
			continue
		}
		switch h.images.Status(m.ID, s.Index) {
		case imagegen.StateReady:
			fmt.Fprintf(w, `<img class="slide-illustration" src="%s" alt="">`, s.ImageURL)
		case imagegen.StateFailed:
			fmt.Fprintf(w, `<p class="slide-illustration-missing">%s</p>`, appI18n.T(r.Context(), "ImageUnavailable"))
		default:
			fmt.Fprintf(w, `<p class="slide-illustration-pending" data-slide="%d">%s</p>`, s.Index, appI18n.T(r.Context(), "ImageGenerating"))
		}
	}
}

// handleSlideImage reports the generation state of one slide illustration,
// polled by the preview page.
func (h *Handler) handleSlideImage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMaterial(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		http.Error(w, "invalid slide index", http.StatusBadRequest)
		return
	}

	resp := map[string]any{"state": h.images.Status(m.ID, index).String()}
	if url, ok := h.images.ImageURL(m.ID, index); ok {
		resp["url"] = url
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMaterial(w, r)
	if !ok {
		return
	}

	var artifact *export.Artifact
	var err error
	switch export.Format(chi.URLParam(r, "format")) {
	case export.FormatPDF:
		artifact, err = h.exports.ToPDF(r.Context(), m)
	case export.FormatDOCX:
		artifact, err = h.exports.ToWord(r.Context(), m)
	case export.FormatPPTX:
		artifact, err = h.exports.ToPPT(r.Context(), m)
	default:
		http.Error(w, "unknown export format", http.StatusBadRequest)
		return
	}
	if errors.Is(err, export.ErrFormatNotApplicable) {
		http.Error(w, appI18n.T(r.Context(), "ExportNotApplicable"), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		slog.Error("export failed", "id", m.ID, "format", chi.URLParam(r, "format"), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeArtifact(w, artifact)
}

// writeArtifact streams an export download. An artifact whose resources did
// not all resolve in time is still delivered, flagged so the client can warn
// about possibly missing images.
func writeArtifact(w http.ResponseWriter, artifact *export.Artifact) {
	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	if artifact.Incomplete {
		w.Header().Set("X-Export-Incomplete", "true")
	}
	_, _ = w.Write(artifact.Data)
}

// loadMaterial resolves the materialID route parameter, writing the error
// response itself on failure.
func (h *Handler) loadMaterial(w http.ResponseWriter, r *http.Request) (model.MaterialRecord, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "materialID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid material ID", http.StatusBadRequest)
		return model.MaterialRecord{}, false
	}

	m, err := h.store.GetMaterial(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, appI18n.T(r.Context(), "MaterialNotFound"), http.StatusNotFound)
			return model.MaterialRecord{}, false
		}
		slog.Error("failed to load material", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return model.MaterialRecord{}, false
	}
	return m, true
}
