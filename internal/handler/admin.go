package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/lessonpress/internal/i18n"
	"github.com/pavelanni/lessonpress/internal/model"
	"github.com/pavelanni/lessonpress/internal/render"
)

func (h *Handler) handleAdminTemplatesPage(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.ListTemplates()
	if err != nil {
		slog.Error("failed to list templates", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	csrf := model.CSRFTokenFromContext(r.Context())
	page := newHTMLPage(appI18n.T(r.Context(), "AdminTemplates"))
	for _, t := range templates {
		page.raw(fmt.Sprintf(`<h2>%s <small>(%s)</small></h2>
<form method="post" action="%s">
<input type="hidden" name="csrf_token" value="%s">
<input type="hidden" name="id" value="%s">
<input type="hidden" name="kind" value="%s">
<textarea name="html" rows="14">%s</textarea>
<p><button type="submit">Save</button></p>
</form>
<form method="post" action="%s">
<input type="hidden" name="csrf_token" value="%s">
<p><button type="submit">Delete</button></p>
</form>
`,
			page.esc(t.ID), page.esc(string(t.Kind)),
			page.esc(h.path("/admin/templates")),
			page.esc(csrf), page.esc(t.ID), page.esc(string(t.Kind)), page.esc(t.HTML),
			page.esc(h.path("/admin/templates/"+t.ID+"/delete")),
			page.esc(csrf)))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page.writeTo(w)
}

func (h *Handler) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.FormValue("id"))
	kind := model.Kind(r.FormValue("kind"))
	htmlBody := r.FormValue("html")

	if id == "" || htmlBody == "" {
		http.Error(w, "id and html are required", http.StatusBadRequest)
		return
	}
	if !model.ValidKind(kind) {
		http.Error(w, "unknown template kind", http.StatusBadRequest)
		return
	}
	// The downstream stages key on these markers; a slides template without
	// slide containers would paginate into nothing.
	if kind == model.KindSlides && !strings.Contains(htmlBody, "{{slides}}") && !strings.Contains(htmlBody, `class="slide"`) {
		http.Error(w, "slides template must contain {{slides}} or slide containers", http.StatusBadRequest)
		return
	}

	if err := h.store.SetTemplate(model.Template{ID: id, Kind: kind, HTML: htmlBody}); err != nil {
		slog.Error("failed to save template", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("template saved", "id", id, "kind", kind)
	http.Redirect(w, r, h.path("/admin/templates"), http.StatusSeeOther)
}

// handleDeleteTemplate removes a stored template. Rendering falls back to
// the built-in default for the kind.
func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")

	builtin := false
	for _, t := range render.DefaultTemplates() {
		if t.ID == id {
			builtin = true
			break
		}
	}

	if err := h.store.DeleteTemplate(id); err != nil {
		slog.Error("failed to delete template", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Built-in IDs must always resolve, so deleting one restores the
	// shipped version instead of leaving a hole.
	if builtin {
		for _, t := range render.DefaultTemplates() {
			if t.ID == id {
				if err := h.store.SetTemplate(t); err != nil {
					slog.Error("failed to restore default template", "id", id, "error", err)
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
			}
		}
	}

	slog.Info("template deleted", "id", id, "restored_default", builtin)
	http.Redirect(w, r, h.path("/admin/templates"), http.StatusSeeOther)
}

func (h *Handler) handleAdminUsersPage(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		slog.Error("failed to list users", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	csrf := model.CSRFTokenFromContext(r.Context())
	page := newHTMLPage("Users")
	page.raw("<table><tr><th>Username</th><th>Name</th><th>Role</th><th>Active</th></tr>\n")
	for _, u := range users {
		page.raw(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%t</td></tr>\n",
			page.esc(u.Username), page.esc(u.DisplayName), page.esc(string(u.Role)), u.Active))
	}
	page.raw("</table>\n")
	page.raw(fmt.Sprintf(`<h2>New user</h2>
<form method="post" action="%s">
<input type="hidden" name="csrf_token" value="%s">
<p><label>Username <input type="text" name="username" required></label></p>
<p><label>Display name <input type="text" name="display_name"></label></p>
<p><label>Password <input type="password" name="password" required></label></p>
<p><label>Role <select name="role"><option value="teacher">teacher</option><option value="admin">admin</option></select></label></p>
<p><button type="submit">Create</button></p>
</form>
`, page.esc(h.path("/admin/users")), page.esc(csrf)))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page.writeTo(w)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	displayName := r.FormValue("display_name")
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if displayName == "" {
		displayName = username
	}

	_, err = h.store.CreateUser(model.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         model.UserRole(role),
		Active:       true,
	})
	if err != nil {
		slog.Error("failed to create user", "error", err)
		http.Error(w, "failed to create user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.path("/admin/users"), http.StatusSeeOther)
}
