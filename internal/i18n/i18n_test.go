package i18n

import (
	"context"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "AppTitle")
	if got != "Lessonpress" {
		t.Errorf("T(AppTitle) = %q, want 'Lessonpress'", got)
	}

	got = T(ctx, "ExportPDF")
	if got != "Download PDF" {
		t.Errorf("T(ExportPDF) = %q, want 'Download PDF'", got)
	}
}

func TestTranslatePortuguese(t *testing.T) {
	ctx := initLang(t, "pt")

	got := T(ctx, "Materials")
	if got != "Materiais" {
		t.Errorf("T(Materials) = %q, want 'Materiais'", got)
	}

	got = T(ctx, "ExportPDF")
	if got != "Baixar PDF" {
		t.Errorf("T(ExportPDF) = %q, want 'Baixar PDF'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got1 := Tp(ctx, "SlideCount", 1)
	if got1 != "1 slide" {
		t.Errorf("Tp(SlideCount, 1) = %q, want '1 slide'", got1)
	}

	got5 := Tp(ctx, "SlideCount", 5)
	if got5 != "5 slides" {
		t.Errorf("Tp(SlideCount, 5) = %q, want '5 slides'", got5)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "CreatedBy", map[string]any{"Name": "Ana"})
	if got != "Created by Ana" {
		t.Errorf("Td(CreatedBy, Name=Ana) = %q, want 'Created by Ana'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}
