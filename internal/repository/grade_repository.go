package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/twoschool/twoschool-api/internal/models"
)

// GradeRepository handles persistence for student grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new repository instance.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Create persists a new grade.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO grades (id, value, teacher_id, student_id, subject_id, created_at)
		VALUES (:id, :value, :teacher_id, :student_id, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// ListByStudent returns the student's grades with subject and teacher names
// resolved, newest first.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GradeView, error) {
	const query = `SELECT g.id, g.value, g.subject_id,
			s.name AS subject_name,
			t.first_name || ' ' || t.last_name AS teacher_name,
			g.created_at
		FROM grades g
		JOIN subjects s ON s.id = g.subject_id
		JOIN teachers t ON t.id = g.teacher_id
		WHERE g.student_id = $1
		ORDER BY g.created_at DESC`
	var views []models.GradeView
	if err := r.db.SelectContext(ctx, &views, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	return views, nil
}

// DeleteByStudent removes every grade recorded for the student. Used by the
// account delete cascade.
func (r *GradeRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete grades by student: %w", err)
	}
	return nil
}

// DeleteByTeacher removes every grade recorded by the teacher. Used by the
// account delete cascade.
func (r *GradeRepository) DeleteByTeacher(ctx context.Context, teacherID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("delete grades by teacher: %w", err)
	}
	return nil
}
