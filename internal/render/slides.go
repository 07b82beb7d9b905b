package render

import "github.com/pavelanni/lessonpress/internal/model"

// ExtractSlides parses a rendered slide deck and returns one Slide per
// class="slide" container, in document order. Slide boundaries are always
// explicit in the template; no heuristic splitting happens here. Zero
// containers yield an empty sequence, which callers treat as "nothing to
// present", not an error.
func ExtractSlides(doc string) []model.Slide {
	body, err := parseBody(doc)
	if err != nil || body == nil {
		return nil
	}
	var slides []model.Slide
	for i, n := range findAllClass(body, "slide") {
		slides = append(slides, model.Slide{Index: i, HTML: renderNode(n)})
	}
	return slides
}
