// Package i18n localizes the server-rendered UI. Catalogs for English and
// Portuguese are embedded in the binary; the serve command picks the active
// language at startup and the middleware attaches a localizer to every
// request.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var bundle *i18n.Bundle

// Init parses every embedded catalog into a bundle whose default language
// is lang. Must run before any translation helper.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	bundle = i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		bundle.MustParseMessageFileBytes(data, e.Name())
	}
	slog.Debug("locale catalogs loaded", "count", len(entries), "default", lang)

	return nil
}

// NewLocalizer returns a localizer preferring the given language, with the
// bundle default as fallback.
func NewLocalizer(lang string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, lang)
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

// T translates a plain message.
func T(ctx context.Context, msgID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message carrying template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
}

// Tp translates a count-dependent message, exposing the count to the
// template as Count.
func Tp(ctx context.Context, msgID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

// localize resolves a message against the request's localizer, degrading to
// the message ID itself so a missing translation never blanks the UI.
func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	loc, ok := ctx.Value(ctxKey{}).(*i18n.Localizer)
	if !ok {
		loc = i18n.NewLocalizer(bundle, "en")
	}
	s, err := loc.Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}
