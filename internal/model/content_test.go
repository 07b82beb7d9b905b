package model

import (
	"testing"
)

func TestLessonPlanCloneListsAreIndependent(t *testing.T) {
	original := &LessonPlanBody{
		Objectives: []string{"a", "b"},
		Skills:     []string{"s1"},
		Steps:      []DevelopmentStep{{Stage: "Warm-up", Activity: "Talk"}},
		Resources:  []string{"board"},
		Evaluation: "quiz",
	}

	clone := original.Clone().(*LessonPlanBody)

	clone.Objectives[0] = "changed"
	clone.Skills[0] = "changed"
	clone.Steps[0].Stage = "changed"
	clone.Resources[0] = "changed"

	if original.Objectives[0] != "a" {
		t.Error("objectives alias the original")
	}
	if original.Skills[0] != "s1" {
		t.Error("skills alias the original")
	}
	if original.Steps[0].Stage != "Warm-up" {
		t.Error("steps alias the original")
	}
	if original.Resources[0] != "board" {
		t.Error("resources alias the original")
	}
}

func TestQuestionCloneOptionsAreIndependent(t *testing.T) {
	original := &AssessmentBody{
		Questions: []Question{{Number: 1, Prompt: "p", Options: []string{"A", "B"}}},
	}

	clone := original.Clone().(*AssessmentBody)
	clone.Questions[0].Options[0] = "changed"

	if original.Questions[0].Options[0] != "A" {
		t.Error("question options alias the original")
	}
}

func TestSlidesCloneContentIsIndependent(t *testing.T) {
	original := &SlidesBody{
		Slides: []SlideContent{{Number: 1, Title: "t", Content: []string{"line"}}},
	}

	clone := original.Clone().(*SlidesBody)
	clone.Slides[0].Content[0] = "changed"

	if original.Slides[0].Content[0] != "line" {
		t.Error("slide content aliases the original")
	}
}

func TestUnmarshalContent(t *testing.T) {
	tests := []struct {
		kind Kind
		json string
	}{
		{KindLessonPlan, `{"objectives":["x"],"evaluation":"y"}`},
		{KindSlides, `{"slides":[{"number":1,"title":"t","content":["c"]}]}`},
		{KindActivity, `{"instructions":"i","questions":[]}`},
		{KindAssessment, `{"instructions":"i","questions":[{"number":1,"prompt":"p","score":2}]}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			body, err := UnmarshalContent(tt.kind, []byte(tt.json))
			if err != nil {
				t.Fatalf("UnmarshalContent: %v", err)
			}
			if body.BodyKind() != tt.kind {
				t.Errorf("BodyKind = %q, want %q", body.BodyKind(), tt.kind)
			}
		})
	}

	if _, err := UnmarshalContent(Kind("poster"), []byte(`{}`)); err == nil {
		t.Error("unknown kind must error")
	}
}

func TestEditorGetSet(t *testing.T) {
	body := &LessonPlanBody{
		Objectives: []string{"first", "second"},
		Steps:      []DevelopmentStep{{Stage: "Warm-up", Activity: "Talk", Time: "10 min"}},
		Evaluation: "quiz",
	}
	ed := EditorFor(body)

	tests := []struct {
		path, want string
	}{
		{"evaluation", "quiz"},
		{"objectives.1", "second"},
		{"steps.0.activity", "Talk"},
	}
	for _, tt := range tests {
		got, err := ed.Get(tt.path)
		if err != nil {
			t.Fatalf("Get(%q): %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	if err := ed.Set("steps.0.activity", "Group discussion"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if body.Steps[0].Activity != "Group discussion" {
		t.Errorf("Set did not write through: %q", body.Steps[0].Activity)
	}

	if err := ed.Set("objectives.0", "updated"); err != nil {
		t.Fatalf("Set list element: %v", err)
	}
	if body.Objectives[0] != "updated" {
		t.Errorf("list element not updated: %q", body.Objectives[0])
	}
}

func TestEditorSetNumericField(t *testing.T) {
	body := &AssessmentBody{
		Questions: []Question{{Number: 1, Prompt: "p", Score: 2}},
	}
	ed := EditorFor(body)

	if err := ed.Set("questions.0.score", "3.5"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if body.Questions[0].Score != 3.5 {
		t.Errorf("score = %v, want 3.5", body.Questions[0].Score)
	}

	if err := ed.Set("questions.0.score", "not a number"); err == nil {
		t.Error("numeric field must reject non-numeric input")
	}
}

func TestEditorRejectsUnknownPaths(t *testing.T) {
	ed := EditorFor(&LessonPlanBody{Objectives: []string{"a"}})

	for _, path := range []string{"nope", "objectives.5", "objectives.x", "evaluation.deep"} {
		if err := ed.Set(path, "v"); err == nil {
			t.Errorf("Set(%q) should fail", path)
		}
	}
}

func TestValidKind(t *testing.T) {
	for _, k := range []Kind{KindLessonPlan, KindSlides, KindActivity, KindAssessment} {
		if !ValidKind(k) {
			t.Errorf("ValidKind(%q) = false", k)
		}
	}
	if ValidKind(Kind("poster")) {
		t.Error("ValidKind(poster) = true")
	}
}
