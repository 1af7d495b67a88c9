package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/twoschool/twoschool-api/internal/models"
)

// RefColumn names one of the class reference-set columns. Only these
// constants may reach a query, never caller-supplied strings.
type RefColumn string

const (
	RefTeachers          RefColumn = "teachers_id"
	RefStudents          RefColumn = "students_id"
	RefHomework          RefColumn = "homework_id"
	RefDisciplinaryFiles RefColumn = "disciplinary_file_id"
)

func (c RefColumn) valid() bool {
	switch c {
	case RefTeachers, RefStudents, RefHomework, RefDisciplinaryFiles:
		return true
	}
	return false
}

const classColumns = "id, section, grade_of_class, logo, teachers_id, students_id, homework_id, disciplinary_file_id, created_at, updated_at"

// ClassRepository handles persistence for classrooms and their reference sets.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new repository instance.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID returns a classroom by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = $1", classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create persists a new classroom with empty reference sets.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, section, grade_of_class, logo, teachers_id, students_id, homework_id, disciplinary_file_id, created_at, updated_at)
		VALUES (:id, :section, :grade_of_class, :logo, :teachers_id, :students_id, :homework_id, :disciplinary_file_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// List returns every classroom.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes ORDER BY grade_of_class, section", classColumns)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListByMember returns the classrooms whose membership column contains the
// user. column must be RefTeachers or RefStudents.
func (r *ClassRepository) ListByMember(ctx context.Context, column RefColumn, userID string) ([]models.Class, error) {
	if column != RefTeachers && column != RefStudents {
		return nil, fmt.Errorf("column %q is not a membership column", column)
	}
	query := fmt.Sprintf("SELECT %s FROM classes WHERE $1 = ANY(%s) ORDER BY grade_of_class, section", classColumns, column)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, userID); err != nil {
		return nil, fmt.Errorf("list classes by member: %w", err)
	}
	return classes, nil
}

// AppendRef adds an id to one of the class reference sets. Idempotent: an
// id already present leaves the row untouched.
func (r *ClassRepository) AppendRef(ctx context.Context, classID string, column RefColumn, id string) error {
	if !column.valid() {
		return fmt.Errorf("unknown reference column %q", column)
	}
	query := fmt.Sprintf(`UPDATE classes
		SET %[1]s = array_append(COALESCE(%[1]s, '{}'), $1), updated_at = $2
		WHERE id = $3 AND NOT ($1 = ANY(COALESCE(%[1]s, '{}')))`, column)
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC(), classID); err != nil {
		return fmt.Errorf("append %s: %w", column, err)
	}
	return nil
}

// RemoveRefEverywhere drops the id from the column in every classroom that
// references it. Used by delete cascades and item deletes, which address
// items by id alone.
func (r *ClassRepository) RemoveRefEverywhere(ctx context.Context, column RefColumn, id string) error {
	if !column.valid() {
		return fmt.Errorf("unknown reference column %q", column)
	}
	query := fmt.Sprintf("UPDATE classes SET %[1]s = array_remove(%[1]s, $1), updated_at = $2 WHERE $1 = ANY(%[1]s)", column)
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("remove %s everywhere: %w", column, err)
	}
	return nil
}
