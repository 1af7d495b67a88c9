package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/twoschool/twoschool-api/internal/models"
)

// ItemRepository handles persistence for the two polymorphic item kinds,
// homework and disciplinary files, behind a single table-driven API.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new repository instance.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func itemTable(t models.ItemType) (string, error) {
	switch t {
	case models.ItemTypeHomework:
		return "homeworks", nil
	case models.ItemTypeDisciplinaryFile:
		return "disciplinary_files", nil
	}
	return "", fmt.Errorf("unknown item type %q", t)
}

// FindByID loads an item of the given type into the shared Item shape.
func (r *ItemRepository) FindByID(ctx context.Context, t models.ItemType, id string) (*models.Item, error) {
	switch t {
	case models.ItemTypeHomework:
		const query = `SELECT id, content, attachment, teacher_id, subject_id, created_at, updated_at FROM homeworks WHERE id = $1`
		var hw models.Homework
		if err := r.db.GetContext(ctx, &hw, query, id); err != nil {
			return nil, err
		}
		return &models.Item{
			ID:         hw.ID,
			Type:       models.ItemTypeHomework,
			Content:    hw.Content,
			Attachment: hw.Attachment,
			TeacherID:  hw.TeacherID,
			SubjectID:  hw.SubjectID,
			CreatedAt:  hw.CreatedAt,
			UpdatedAt:  hw.UpdatedAt,
		}, nil
	case models.ItemTypeDisciplinaryFile:
		const query = `SELECT id, content, teacher_id, student_id, created_at, updated_at FROM disciplinary_files WHERE id = $1`
		var df models.DisciplinaryFile
		if err := r.db.GetContext(ctx, &df, query, id); err != nil {
			return nil, err
		}
		return &models.Item{
			ID:        df.ID,
			Type:      models.ItemTypeDisciplinaryFile,
			Content:   df.Content,
			TeacherID: df.TeacherID,
			StudentID: df.StudentID,
			CreatedAt: df.CreatedAt,
			UpdatedAt: df.UpdatedAt,
		}, nil
	}
	return nil, fmt.Errorf("unknown item type %q", t)
}

// CreateHomework persists a new homework record.
func (r *ItemRepository) CreateHomework(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hw.CreatedAt.IsZero() {
		hw.CreatedAt = now
	}
	hw.UpdatedAt = now

	const query = `INSERT INTO homeworks (id, content, attachment, teacher_id, subject_id, created_at, updated_at)
		VALUES (:id, :content, :attachment, :teacher_id, :subject_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// CreateReport persists a new disciplinary file.
func (r *ItemRepository) CreateReport(ctx context.Context, df *models.DisciplinaryFile) error {
	if df.ID == "" {
		df.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if df.CreatedAt.IsZero() {
		df.CreatedAt = now
	}
	df.UpdatedAt = now

	const query = `INSERT INTO disciplinary_files (id, content, teacher_id, student_id, created_at, updated_at)
		VALUES (:id, :content, :teacher_id, :student_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, df); err != nil {
		return fmt.Errorf("create disciplinary file: %w", err)
	}
	return nil
}

// updatable columns per item type.
var itemColumns = map[models.ItemType]map[string]bool{
	models.ItemTypeHomework: {
		"content":    true,
		"attachment": true,
		"subject_id": true,
	},
	models.ItemTypeDisciplinaryFile: {
		"content": true,
	},
}

// UpdateFields applies a partial update to an item. Unknown or cross-type
// columns are rejected.
func (r *ItemRepository) UpdateFields(ctx context.Context, t models.ItemType, id string, fields map[string]interface{}) error {
	table, err := itemTable(t)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	allowed := itemColumns[t]
	sets := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	for column, value := range fields {
		if !allowed[column] {
			return fmt.Errorf("column %q is not updatable for %s", column, t)
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an item record.
func (r *ItemRepository) Delete(ctx context.Context, t models.ItemType, id string) error {
	table, err := itemTable(t)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListHomeworkByClass returns the homework referenced by the class, with
// author and subject names resolved, newest first.
func (r *ItemRepository) ListHomeworkByClass(ctx context.Context, classID string) ([]models.HomeworkView, error) {
	const query = `SELECT h.id, h.content, h.attachment, h.teacher_id, h.subject_id,
			s.name AS subject_name,
			t.first_name || ' ' || t.last_name AS teacher_name,
			h.created_at
		FROM homeworks h
		JOIN subjects s ON s.id = h.subject_id
		JOIN teachers t ON t.id = h.teacher_id
		WHERE h.id IN (SELECT unnest(homework_id) FROM classes WHERE id = $1)
		ORDER BY h.created_at DESC`
	var views []models.HomeworkView
	if err := r.db.SelectContext(ctx, &views, query, classID); err != nil {
		return nil, fmt.Errorf("list homework by class: %w", err)
	}
	return views, nil
}

// ListReportsByClass returns the disciplinary files referenced by the class,
// with author names resolved, newest first.
func (r *ItemRepository) ListReportsByClass(ctx context.Context, classID string) ([]models.DisciplinaryView, error) {
	const query = `SELECT d.id, d.content, d.teacher_id, d.student_id,
			t.first_name || ' ' || t.last_name AS teacher_name,
			d.created_at
		FROM disciplinary_files d
		JOIN teachers t ON t.id = d.teacher_id
		WHERE d.id IN (SELECT unnest(disciplinary_file_id) FROM classes WHERE id = $1)
		ORDER BY d.created_at DESC`
	var views []models.DisciplinaryView
	if err := r.db.SelectContext(ctx, &views, query, classID); err != nil {
		return nil, fmt.Errorf("list reports by class: %w", err)
	}
	return views, nil
}

// ListHomeworkByTeacher returns every homework authored by the teacher.
// Used by the account delete cascade to find attachments to clean up.
func (r *ItemRepository) ListHomeworkByTeacher(ctx context.Context, teacherID string) ([]models.Homework, error) {
	const query = `SELECT id, content, attachment, teacher_id, subject_id, created_at, updated_at FROM homeworks WHERE teacher_id = $1`
	var items []models.Homework
	if err := r.db.SelectContext(ctx, &items, query, teacherID); err != nil {
		return nil, fmt.Errorf("list homework by teacher: %w", err)
	}
	return items, nil
}

// DeleteByTeacher removes every item of the given type authored by the
// teacher and returns the deleted ids.
func (r *ItemRepository) DeleteByTeacher(ctx context.Context, t models.ItemType, teacherID string) ([]string, error) {
	table, err := itemTable(t)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE teacher_id = $1 RETURNING id", table)
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, teacherID); err != nil {
		return nil, fmt.Errorf("delete %s by teacher: %w", table, err)
	}
	return ids, nil
}
