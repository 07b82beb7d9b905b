package render

import (
	"fmt"
	"strings"
	"testing"
)

func testPaginator() *Paginator {
	return &Paginator{BrandName: "Lessonpress", FooterText: "Escola Aberta"}
}

func TestPaginateShortDocumentIsOnePage(t *testing.T) {
	doc := `<style>.document { margin: 0; }</style><div class="document"><h1>Short</h1><p>A short lesson plan.</p></div>`

	pages := testPaginator().Paginate(doc)

	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if !pages[0].First {
		t.Error("single page must be marked First")
	}
	if !strings.Contains(pages[0].HTML, "first-page") {
		t.Error("single page must carry the first-page class")
	}
	if !strings.Contains(pages[0].HTML, "A short lesson plan.") {
		t.Error("page content missing")
	}
}

func TestPaginateAlwaysReturnsAPage(t *testing.T) {
	pages := testPaginator().Paginate("")
	if len(pages) != 1 {
		t.Fatalf("empty document should yield exactly 1 page, got %d", len(pages))
	}
}

func TestPaginateExplicitBreaks(t *testing.T) {
	doc := `<div class="document">` +
		`<h2>One</h2><p>first part</p>` +
		`<div class="page-break"></div>` +
		`<h2>Two</h2><p>second part</p>` +
		`<div class="page-break"></div>` +
		`<h2>Three</h2><p>third part</p>` +
		`</div>`

	pages := testPaginator().Paginate(doc)

	if len(pages) != 3 {
		t.Fatalf("2 markers should yield 3 pages, got %d", len(pages))
	}
	for i, want := range []string{"first part", "second part", "third part"} {
		if !strings.Contains(pages[i].HTML, want) {
			t.Errorf("page %d missing %q", i, want)
		}
		if strings.Contains(pages[i].HTML, "page-break") {
			t.Errorf("page %d still contains the break marker", i)
		}
	}
	if !pages[0].First || pages[1].First || pages[2].First {
		t.Error("only the first page may be marked First")
	}
	if pages[0].Index != 0 || pages[1].Index != 1 || pages[2].Index != 2 {
		t.Error("page indices must follow input order")
	}
}

func TestPaginateBreakMarkersBeatLength(t *testing.T) {
	// One marker in a short doc still splits: markers are authoritative.
	doc := `<div class="document"><p>before</p><div class="page-break"></div><p>after</p></div>`

	pages := testPaginator().Paginate(doc)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
}

func TestPaginateNestedBreakMarkers(t *testing.T) {
	// A marker inside a wrapping element still splits; the wrapper is
	// closed before the boundary and reopened after it.
	doc := `<div class="document">` +
		`<section class="lesson"><h2>One</h2><p>first part</p>` +
		`<div class="page-break"></div>` +
		`<h2>Two</h2><p>second part</p></section>` +
		`</div>`

	pages := testPaginator().Paginate(doc)

	if len(pages) != 2 {
		t.Fatalf("1 nested marker should yield 2 pages, got %d", len(pages))
	}
	if !strings.Contains(pages[0].HTML, "first part") || strings.Contains(pages[0].HTML, "second part") {
		t.Error("page 0 must hold only the content before the marker")
	}
	if !strings.Contains(pages[1].HTML, "second part") || strings.Contains(pages[1].HTML, "first part") {
		t.Error("page 1 must hold only the content after the marker")
	}
	for i, p := range pages {
		if !strings.Contains(p.HTML, `<section class="lesson">`) {
			t.Errorf("page %d lost the wrapping section", i)
		}
		if strings.Contains(p.HTML, "page-break") {
			t.Errorf("page %d still contains the break marker", i)
		}
	}
}

func TestPaginateKeepsSiblingsOfDocumentContainer(t *testing.T) {
	// Admin templates may emit content outside the document container;
	// it still belongs to a page.
	doc := `<div class="document"><p>inside</p><div class="page-break"></div><p>inside two</p></div>` +
		`<p>closing note</p>`

	pages := testPaginator().Paginate(doc)

	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	var all strings.Builder
	for _, p := range pages {
		all.WriteString(TextContent(p.HTML))
	}
	for _, want := range []string{"inside", "inside two", "closing note"} {
		if !strings.Contains(all.String(), want) {
			t.Errorf("content %q lost during pagination", want)
		}
	}
	if !strings.Contains(pages[1].HTML, "closing note") {
		t.Error("trailing content must land on the final page")
	}
}

// longDocument builds a document of n sections, each carrying a unique
// sentinel string, long enough to force heuristic pagination.
func longDocument(n int) string {
	var sb strings.Builder
	sb.WriteString(`<style>h2 { color: navy; }</style><div class="document">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "<h2>Section %d</h2><p>sentinel-%04d %s</p>", i, i, strings.Repeat("conteúdo da seção ", 20))
	}
	sb.WriteString("</div>")
	return sb.String()
}

func TestPaginateHeuristicSplitCompleteness(t *testing.T) {
	doc := longDocument(24)
	pages := testPaginator().Paginate(doc)

	if len(pages) < 2 {
		t.Fatalf("long document should split into multiple pages, got %d", len(pages))
	}

	var all strings.Builder
	for _, p := range pages {
		all.WriteString(TextContent(p.HTML))
	}
	joined := all.String()
	for i := 0; i < 24; i++ {
		sentinel := fmt.Sprintf("sentinel-%04d", i)
		if got := strings.Count(joined, sentinel); got != 1 {
			t.Errorf("%s appears %d times across pages, want exactly 1", sentinel, got)
		}
	}
}

func TestPaginateSectionsStayIntact(t *testing.T) {
	doc := longDocument(24)
	pages := testPaginator().Paginate(doc)

	// A section's heading and its paragraph must land on the same page.
	for i := 0; i < 24; i++ {
		heading := fmt.Sprintf("Section %d<", i)
		sentinel := fmt.Sprintf("sentinel-%04d", i)
		for _, p := range pages {
			hasHeading := strings.Contains(p.HTML, heading)
			hasBody := strings.Contains(p.HTML, sentinel)
			if hasHeading != hasBody {
				t.Errorf("section %d split across pages", i)
			}
		}
	}
}

func TestPaginateRepeatsStylePreamble(t *testing.T) {
	doc := longDocument(24)
	pages := testPaginator().Paginate(doc)

	if len(pages) < 2 {
		t.Fatalf("long document should split into multiple pages, got %d", len(pages))
	}
	for i, p := range pages {
		if !strings.Contains(p.HTML, "color: navy") {
			t.Errorf("page %d missing the style preamble", i)
		}
	}
}

func TestPaginateShell(t *testing.T) {
	pages := testPaginator().Paginate(`<div class="document"><p>hello</p></div>`)
	html := pages[0].HTML

	for _, want := range []string{
		`<header class="page-header">Lessonpress</header>`,
		`<main class="page-content">`,
		`<footer class="page-footer">Escola Aberta</footer>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page shell missing %q", want)
		}
	}
}
