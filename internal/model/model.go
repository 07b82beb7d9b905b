package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleTeacher is a teacher user role.
	UserRoleTeacher UserRole = "teacher"
	// UserRoleAdmin is an admin user role.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// Kind identifies the type of a pedagogical material.
type Kind string

const (
	KindLessonPlan Kind = "lesson-plan"
	KindSlides     Kind = "slides"
	KindActivity   Kind = "activity"
	KindAssessment Kind = "assessment"
)

// ValidKind reports whether k names a known material kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindLessonPlan, KindSlides, KindActivity, KindAssessment:
		return true
	}
	return false
}

// MaterialRecord is a persisted pedagogical document plus metadata.
// The rendering core receives it read-only from the surrounding application.
type MaterialRecord struct {
	ID        int64       `json:"id"`
	Kind      Kind        `json:"kind"`
	Subject   string      `json:"subject"`
	Grade     string      `json:"grade"`
	Title     string      `json:"title"`
	CreatedAt time.Time   `json:"created_at"`
	Content   ContentBody `json:"content"`
}

// Template is an HTML/CSS string with placeholder and structural markers
// used to render a ContentBody. Templates are admin-editable but must keep
// the page-break and slide container markers the pipeline expects.
type Template struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	HTML string `json:"html"`
}

// Page is one print-sized HTML fragment of a rendered document.
// The first page carries the title block; subsequent pages do not.
type Page struct {
	Index int
	First bool
	HTML  string
}

// Slide is one presentation-sized HTML fragment extracted from a rendered
// slide deck. ImageURL is set once a generated illustration resolves.
type Slide struct {
	Index    int
	HTML     string
	ImageURL string
}

// Config holds runtime parameters set via CLI flags.
type Config struct {
	BrandName     string // header branding on print pages
	FooterText    string // footer branding line
	BasePath      string // URL prefix for sub-path deployments (e.g. "/app")
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	PromptStyle   string // Image prompt style (photo, illustration, diagram)
	ChromePath    string // Override path to the Chrome binary for PDF export
}
