package store

import (
	"database/sql"

	"github.com/pavelanni/lessonpress/internal/model"
)

// GetTemplate returns a template by ID. The returned value is a snapshot:
// a render in progress never observes a later SetTemplate.
func (s *Store) GetTemplate(id string) (model.Template, error) {
	var t model.Template
	err := s.db.QueryRow(
		`SELECT id, kind, html FROM templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.Kind, &t.HTML)
	return t, err
}

// SetTemplate inserts or replaces a template.
func (s *Store) SetTemplate(t model.Template) error {
	_, err := s.db.Exec(
		`INSERT INTO templates (id, kind, html) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kind = ?, html = ?`,
		t.ID, t.Kind, t.HTML, t.Kind, t.HTML,
	)
	return err
}

// ListTemplates returns all templates ordered by ID.
func (s *Store) ListTemplates() ([]model.Template, error) {
	rows, err := s.db.Query(`SELECT id, kind, html FROM templates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var templates []model.Template
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.Kind, &t.HTML); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template by ID.
func (s *Store) DeleteTemplate(id string) error {
	_, err := s.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	return err
}

// TemplateExists reports whether a template with the given ID is stored.
func (s *Store) TemplateExists(id string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM templates WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// SeedTemplates inserts the given templates if they are not already stored.
// Existing rows are left untouched so admin edits survive restarts.
func (s *Store) SeedTemplates(templates []model.Template) error {
	for _, t := range templates {
		exists, err := s.TemplateExists(t.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.SetTemplate(t); err != nil {
			return err
		}
	}
	return nil
}
