package export

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pavelanni/lessonpress/internal/model"
)

func pptxSlides(n int) []model.Slide {
	slides := make([]model.Slide, n)
	for i := range slides {
		slides[i] = model.Slide{
			Index: i,
			HTML:  fmt.Sprintf(`<section class="slide"><h2>Heading %d</h2><ul><li>bullet %d-a</li><li>bullet %d-b</li></ul></section>`, i, i, i),
		}
	}
	return slides
}

func TestEncodePPTXStructure(t *testing.T) {
	m := model.MaterialRecord{ID: 3, Kind: model.KindSlides, Title: "The Water Cycle"}

	art, err := EncodePPTX(context.Background(), m, pptxSlides(3))
	if err != nil {
		t.Fatalf("EncodePPTX: %v", err)
	}
	if art.MIME != pptxMIME {
		t.Errorf("MIME = %q", art.MIME)
	}
	if art.Filename != "the-water-cycle.pptx" {
		t.Errorf("Filename = %q", art.Filename)
	}

	names := zipPartNames(t, art.Data)
	for _, want := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide3.xml",
	} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("archive missing part %s", want)
		}
	}
}

func TestEncodePPTXSlideContent(t *testing.T) {
	m := model.MaterialRecord{ID: 3, Kind: model.KindSlides, Title: "deck"}

	art, err := EncodePPTX(context.Background(), m, pptxSlides(2))
	if err != nil {
		t.Fatalf("EncodePPTX: %v", err)
	}

	for i := 1; i <= 2; i++ {
		slide := readZipPart(t, art.Data, fmt.Sprintf("ppt/slides/slide%d.xml", i))
		if want := fmt.Sprintf("Heading %d", i-1); !strings.Contains(slide, want) {
			t.Errorf("slide %d missing title %q", i, want)
		}
		if want := fmt.Sprintf("bullet %d-a", i-1); !strings.Contains(slide, want) {
			t.Errorf("slide %d missing %q", i, want)
		}
		// No images were resolved, so no picture element and no r:embed.
		if strings.Contains(slide, "<p:pic>") {
			t.Errorf("slide %d embeds a picture without a resolved image", i)
		}
	}
}

func TestEncodePPTXPresentationListsAllSlides(t *testing.T) {
	m := model.MaterialRecord{ID: 3, Kind: model.KindSlides, Title: "deck"}

	art, err := EncodePPTX(context.Background(), m, pptxSlides(5))
	if err != nil {
		t.Fatalf("EncodePPTX: %v", err)
	}
	pres := readZipPart(t, art.Data, "ppt/presentation.xml")
	if got := strings.Count(pres, "<p:sldId "); got != 5 {
		t.Errorf("presentation.xml lists %d slides, want 5", got)
	}
}

func TestEncodePPTXDeterministic(t *testing.T) {
	m := model.MaterialRecord{ID: 3, Kind: model.KindSlides, Title: "deck"}
	slides := pptxSlides(3)

	a, err := EncodePPTX(context.Background(), m, slides)
	if err != nil {
		t.Fatalf("EncodePPTX: %v", err)
	}
	b, err := EncodePPTX(context.Background(), m, slides)
	if err != nil {
		t.Fatalf("EncodePPTX: %v", err)
	}

	// Same inputs must produce structurally identical decks.
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", i)
		if readZipPart(t, a.Data, name) != readZipPart(t, b.Data, name) {
			t.Errorf("%s differs between identical encodings", name)
		}
	}
}

func TestEncodePPTXRejectsNonSlides(t *testing.T) {
	m := model.MaterialRecord{Kind: model.KindLessonPlan, Title: "plan"}
	if _, err := EncodePPTX(context.Background(), m, nil); err != ErrFormatNotApplicable {
		t.Errorf("EncodePPTX(lesson-plan) error = %v, want ErrFormatNotApplicable", err)
	}
}
