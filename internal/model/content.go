package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ContentBody is the kind-specific structured payload of a MaterialRecord.
// The concrete shape is determined solely by the material kind.
type ContentBody interface {
	BodyKind() Kind
	// Clone returns a deep copy. Every list is independently owned: mutating
	// one list of the copy never affects the original or a sibling list.
	Clone() ContentBody
}

// DevelopmentStep is one row of a lesson plan's development table.
type DevelopmentStep struct {
	Stage     string `json:"stage"`
	Activity  string `json:"activity"`
	Time      string `json:"time"`
	Resources string `json:"resources"`
}

// LessonPlanBody is the payload for lesson-plan materials.
type LessonPlanBody struct {
	Objectives []string          `json:"objectives"`
	Skills     []string          `json:"skills"`
	Steps      []DevelopmentStep `json:"steps"`
	Resources  []string          `json:"resources"`
	Evaluation string            `json:"evaluation"`
}

func (*LessonPlanBody) BodyKind() Kind { return KindLessonPlan }

func (b *LessonPlanBody) Clone() ContentBody {
	c := &LessonPlanBody{
		Objectives: append([]string(nil), b.Objectives...),
		Skills:     append([]string(nil), b.Skills...),
		Steps:      append([]DevelopmentStep(nil), b.Steps...),
		Resources:  append([]string(nil), b.Resources...),
		Evaluation: b.Evaluation,
	}
	return c
}

// Question is one item of an activity or assessment.
type Question struct {
	Number  int      `json:"number"`
	Type    string   `json:"type"` // open, multiple-choice, true-false
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer,omitempty"`
	Score   float64  `json:"score,omitempty"`
}

func cloneQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q
		out[i].Options = append([]string(nil), q.Options...)
	}
	return out
}

// ActivityBody is the payload for activity materials.
type ActivityBody struct {
	Instructions string     `json:"instructions"`
	Questions    []Question `json:"questions"`
}

func (*ActivityBody) BodyKind() Kind { return KindActivity }

func (b *ActivityBody) Clone() ContentBody {
	return &ActivityBody{Instructions: b.Instructions, Questions: cloneQuestions(b.Questions)}
}

// AssessmentBody is the payload for assessment materials.
type AssessmentBody struct {
	Instructions string     `json:"instructions"`
	Questions    []Question `json:"questions"`
}

func (*AssessmentBody) BodyKind() Kind { return KindAssessment }

func (b *AssessmentBody) Clone() ContentBody {
	return &AssessmentBody{Instructions: b.Instructions, Questions: cloneQuestions(b.Questions)}
}

// SlideContent is one logical slide of a slides material.
type SlideContent struct {
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// SlidesBody is the payload for slides materials.
type SlidesBody struct {
	Slides []SlideContent `json:"slides"`
}

func (*SlidesBody) BodyKind() Kind { return KindSlides }

func (b *SlidesBody) Clone() ContentBody {
	c := &SlidesBody{Slides: make([]SlideContent, len(b.Slides))}
	for i, s := range b.Slides {
		c.Slides[i] = s
		c.Slides[i].Content = append([]string(nil), s.Content...)
	}
	return c
}

// UnmarshalContent decodes a kind-specific payload from JSON.
func UnmarshalContent(kind Kind, data []byte) (ContentBody, error) {
	var body ContentBody
	switch kind {
	case KindLessonPlan:
		body = &LessonPlanBody{}
	case KindSlides:
		body = &SlidesBody{}
	case KindActivity:
		body = &ActivityBody{}
	case KindAssessment:
		body = &AssessmentBody{}
	default:
		return nil, fmt.Errorf("unknown material kind %q", kind)
	}
	if err := json.Unmarshal(data, body); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", kind, err)
	}
	return body, nil
}

// ContentEditor provides uniform field-path access to a ContentBody,
// replacing per-kind conditional edit paths. Paths are dot-separated:
// "evaluation", "objectives.2", "steps.1.activity", "slides.0.title".
type ContentEditor interface {
	Get(path string) (string, error)
	Set(path string, value string) error
}

// EditorFor returns a ContentEditor for the given body.
func EditorFor(body ContentBody) ContentEditor {
	return &jsonPathEditor{body: body}
}

// jsonPathEditor edits any body through its JSON structure, so every kind
// shares one traversal instead of four switch ladders.
type jsonPathEditor struct {
	body ContentBody
}

func (e *jsonPathEditor) Get(path string) (string, error) {
	raw, err := json.Marshal(e.body)
	if err != nil {
		return "", err
	}
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return "", err
	}
	node, err := walkPath(root, strings.Split(path, "."))
	if err != nil {
		return "", err
	}
	switch v := node.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("path %q does not address a scalar field", path)
	}
}

func (e *jsonPathEditor) Set(path string, value string) error {
	raw, err := json.Marshal(e.body)
	if err != nil {
		return err
	}
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return err
	}
	if err := setPath(root, strings.Split(path, "."), value); err != nil {
		return err
	}
	updated, err := json.Marshal(root)
	if err != nil {
		return err
	}
	return json.Unmarshal(updated, e.body)
}

func walkPath(node any, parts []string) (any, error) {
	for _, p := range parts {
		switch v := node.(type) {
		case map[string]any:
			child, ok := v[p]
			if !ok {
				return nil, fmt.Errorf("unknown field %q", p)
			}
			node = child
		case []any:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(v) {
				return nil, fmt.Errorf("invalid index %q", p)
			}
			node = v[i]
		default:
			return nil, fmt.Errorf("cannot descend into %q", p)
		}
	}
	return node, nil
}

func setPath(node any, parts []string, value string) error {
	if len(parts) == 0 {
		return fmt.Errorf("empty path")
	}
	for _, p := range parts[:len(parts)-1] {
		switch v := node.(type) {
		case map[string]any:
			child, ok := v[p]
			if !ok {
				return fmt.Errorf("unknown field %q", p)
			}
			node = child
		case []any:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(v) {
				return fmt.Errorf("invalid index %q", p)
			}
			node = v[i]
		default:
			return fmt.Errorf("cannot descend into %q", p)
		}
	}
	last := parts[len(parts)-1]
	switch v := node.(type) {
	case map[string]any:
		if _, ok := v[last]; !ok {
			return fmt.Errorf("unknown field %q", last)
		}
		switch v[last].(type) {
		case float64:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("field %q expects a number: %w", last, err)
			}
			v[last] = f
		default:
			v[last] = value
		}
	case []any:
		i, err := strconv.Atoi(last)
		if err != nil || i < 0 || i >= len(v) {
			return fmt.Errorf("invalid index %q", last)
		}
		v[i] = value
	default:
		return fmt.Errorf("cannot set %q", last)
	}
	return nil
}
