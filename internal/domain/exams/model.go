package exams

import (
	"time"

	"github.com/google/uuid"
)

// ExamCategory groups exams in the catalog.
type ExamCategory struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Exam is a catalog entry. A panel exam (HasComponents true) is composed of
// atomic component exams tracked through the exam_component adjacency table.
type Exam struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Code          string     `db:"code" json:"code"`
	Name          string     `db:"name" json:"name"`
	Description   string     `db:"description" json:"description"`
	Price         float64    `db:"price" json:"price"`
	CategoryID    *uuid.UUID `db:"category_id" json:"category_id,omitempty"`
	HasComponents bool       `db:"has_components" json:"has_components"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IsPanel reports whether the exam expands into component exams.
func (e *Exam) IsPanel() bool { return e.HasComponents }

// ExamComponent links a panel exam to one of its atomic components.
type ExamComponent struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ParentExamID    uuid.UUID `db:"parent_exam_id" json:"parent_exam_id"`
	ComponentExamID uuid.UUID `db:"component_exam_id" json:"component_exam_id"`
	DisplayOrder    int       `db:"display_order" json:"display_order"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
