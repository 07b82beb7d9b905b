package store

import (
	"encoding/json"
	"time"

	"github.com/pavelanni/lessonpress/internal/model"
)

// InsertMaterial stores a material record. The content body is persisted as
// JSON; its shape is determined by the material kind.
func (s *Store) InsertMaterial(m model.MaterialRecord) (int64, error) {
	content, err := json.Marshal(m.Content)
	if err != nil {
		return 0, err
	}
	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO materials (kind, subject, grade, title, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.Kind, m.Subject, m.Grade, m.Title, string(content), created,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetMaterial returns a material by ID with its content body decoded.
func (s *Store) GetMaterial(id int64) (model.MaterialRecord, error) {
	var m model.MaterialRecord
	var content string
	err := s.db.QueryRow(
		`SELECT id, kind, subject, grade, title, content, created_at FROM materials WHERE id = ?`, id,
	).Scan(&m.ID, &m.Kind, &m.Subject, &m.Grade, &m.Title, &content, &m.CreatedAt)
	if err != nil {
		return m, err
	}
	m.Content, err = model.UnmarshalContent(m.Kind, []byte(content))
	return m, err
}

// UpdateMaterialContent replaces the content body of a material.
func (s *Store) UpdateMaterialContent(id int64, body model.ContentBody) error {
	content, err := json.Marshal(body)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE materials SET content = ? WHERE id = ?`, string(content), id)
	return err
}

// ListMaterials returns all materials, newest first, without content bodies.
func (s *Store) ListMaterials() ([]model.MaterialRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, subject, grade, title, created_at FROM materials ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var materials []model.MaterialRecord
	for rows.Next() {
		var m model.MaterialRecord
		if err := rows.Scan(&m.ID, &m.Kind, &m.Subject, &m.Grade, &m.Title, &m.CreatedAt); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// MaterialCount returns the number of stored materials.
func (s *Store) MaterialCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM materials`).Scan(&count)
	return count, err
}
