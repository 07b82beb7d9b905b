package store

import (
	"database/sql"
	"testing"

	"github.com/pavelanni/lessonpress/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestMaterial(t *testing.T, s *Store, kind model.Kind, title string, body model.ContentBody) int64 {
	t.Helper()
	id, err := s.InsertMaterial(model.MaterialRecord{
		Kind:    kind,
		Subject: "Science",
		Grade:   "4th grade",
		Title:   title,
		Content: body,
	})
	if err != nil {
		t.Fatalf("insertTestMaterial: %v", err)
	}
	return id
}

func TestMaterialCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.MaterialCount()
	if err != nil {
		t.Fatalf("MaterialCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 materials, got %d", count)
	}

	body := &model.LessonPlanBody{
		Objectives: []string{"Understand evaporation"},
		Steps:      []model.DevelopmentStep{{Stage: "Warm-up", Activity: "Discussion", Time: "10 min"}},
		Evaluation: "<p>Short quiz.</p>",
	}
	id := insertTestMaterial(t, s, model.KindLessonPlan, "Water Cycle", body)

	m, err := s.GetMaterial(id)
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if m.Title != "Water Cycle" || m.Kind != model.KindLessonPlan {
		t.Errorf("got %q/%q", m.Title, m.Kind)
	}
	got, ok := m.Content.(*model.LessonPlanBody)
	if !ok {
		t.Fatalf("content decoded as %T", m.Content)
	}
	if len(got.Objectives) != 1 || got.Objectives[0] != "Understand evaporation" {
		t.Errorf("objectives not round-tripped: %v", got.Objectives)
	}
	if len(got.Steps) != 1 || got.Steps[0].Stage != "Warm-up" {
		t.Errorf("steps not round-tripped: %v", got.Steps)
	}

	// Not found.
	if _, err := s.GetMaterial(9999); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}

	// List omits bodies, newest first.
	insertTestMaterial(t, s, model.KindActivity, "Lab", &model.ActivityBody{Instructions: "x"})
	list, err := s.ListMaterials()
	if err != nil {
		t.Fatalf("ListMaterials: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(list))
	}
	if list[0].Title != "Lab" {
		t.Errorf("expected newest first, got %q", list[0].Title)
	}
	if list[0].Content != nil {
		t.Error("list entries must not carry content bodies")
	}
}

func TestUpdateMaterialContent(t *testing.T) {
	s := newTestStore(t)

	id := insertTestMaterial(t, s, model.KindActivity, "Lab", &model.ActivityBody{
		Instructions: "Work alone.",
	})

	if err := s.UpdateMaterialContent(id, &model.ActivityBody{Instructions: "Work in pairs."}); err != nil {
		t.Fatalf("UpdateMaterialContent: %v", err)
	}

	m, err := s.GetMaterial(id)
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if got := m.Content.(*model.ActivityBody).Instructions; got != "Work in pairs." {
		t.Errorf("instructions = %q", got)
	}
}

func TestTemplateCRUD(t *testing.T) {
	s := newTestStore(t)

	tmpl := model.Template{ID: "lesson-plan", Kind: model.KindLessonPlan, HTML: "<div>{{title}}</div>"}
	if err := s.SetTemplate(tmpl); err != nil {
		t.Fatalf("SetTemplate: %v", err)
	}

	got, err := s.GetTemplate("lesson-plan")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if got.HTML != tmpl.HTML || got.Kind != tmpl.Kind {
		t.Errorf("template not round-tripped: %+v", got)
	}

	// Upsert replaces.
	tmpl.HTML = "<div>v2 {{title}}</div>"
	if err := s.SetTemplate(tmpl); err != nil {
		t.Fatalf("SetTemplate upsert: %v", err)
	}
	got, _ = s.GetTemplate("lesson-plan")
	if got.HTML != "<div>v2 {{title}}</div>" {
		t.Errorf("upsert did not replace: %q", got.HTML)
	}

	// Missing id.
	if _, err := s.GetTemplate("nope"); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}

	if err := s.DeleteTemplate("lesson-plan"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if _, err := s.GetTemplate("lesson-plan"); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows after delete, got %v", err)
	}
}

func TestSeedTemplatesKeepsEdits(t *testing.T) {
	s := newTestStore(t)

	seed := []model.Template{
		{ID: "lesson-plan", Kind: model.KindLessonPlan, HTML: "shipped"},
		{ID: "slides", Kind: model.KindSlides, HTML: "shipped-slides"},
	}
	if err := s.SeedTemplates(seed); err != nil {
		t.Fatalf("SeedTemplates: %v", err)
	}

	// Admin edits one template, then the app restarts and reseeds.
	if err := s.SetTemplate(model.Template{ID: "lesson-plan", Kind: model.KindLessonPlan, HTML: "edited"}); err != nil {
		t.Fatalf("SetTemplate: %v", err)
	}
	if err := s.SeedTemplates(seed); err != nil {
		t.Fatalf("SeedTemplates again: %v", err)
	}

	got, err := s.GetTemplate("lesson-plan")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if got.HTML != "edited" {
		t.Errorf("reseeding clobbered an admin edit: %q", got.HTML)
	}
}

func TestUsersAndAuthSessions(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateUser(model.User{
		Username:     "ana",
		DisplayName:  "Ana",
		PasswordHash: "hash",
		Role:         model.UserRoleTeacher,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByUsername("ana")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("unexpected user: %+v", u)
	}

	missing, err := s.GetUserByUsername("nobody")
	if err != nil || missing != nil {
		t.Errorf("missing user should be nil, nil; got %+v, %v", missing, err)
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil || sess != nil {
		t.Errorf("deleted session should be nil, nil; got %+v, %v", sess, err)
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetMetadata("schema_note", "v1"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	got, err := s.GetMetadata("schema_note")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got != "v1" {
		t.Errorf("GetMetadata = %q", got)
	}

	// Missing key is empty, not an error.
	got, err = s.GetMetadata("absent")
	if err != nil || got != "" {
		t.Errorf("missing key should be empty; got %q, %v", got, err)
	}
}
