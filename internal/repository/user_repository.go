package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/twoschool/twoschool-api/internal/models"
)

const userColumns = "id, first_name, last_name, email, psw_hash, avatar, created_at, updated_at"

// lookupOrder is the probe sequence for id and email lookups that span all
// three account tables.
var lookupOrder = []models.Category{
	models.CategoryTeacher,
	models.CategoryStudent,
	models.CategoryAdmin,
}

// UserRepository handles persistence for the three account tables. Teachers,
// students and admins are stored separately; the category argument selects
// the table and is stamped on every record the repository returns.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userTable(category models.Category) (string, error) {
	switch category {
	case models.CategoryTeacher:
		return "teachers", nil
	case models.CategoryStudent:
		return "students", nil
	case models.CategoryAdmin:
		return "admins", nil
	}
	return "", fmt.Errorf("unknown user category %d", category)
}

func userSelectColumns(category models.Category) string {
	if category == models.CategoryTeacher {
		return userColumns + ", subjects_id"
	}
	return userColumns
}

// FindByID returns the user with the given id from the category's table.
func (r *UserRepository) FindByID(ctx context.Context, category models.Category, id string) (*models.User, error) {
	table, err := userTable(category)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", userSelectColumns(category), table)

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	user.Category = category
	return &user, nil
}

// FindAnyByID probes the three tables in order and returns the first match,
// with Category set to the table it was found in.
func (r *UserRepository) FindAnyByID(ctx context.Context, id string) (*models.User, error) {
	for _, category := range lookupOrder {
		user, err := r.FindByID(ctx, category, id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	return nil, sql.ErrNoRows
}

// FindByEmail returns the user with the given email from the category's table.
func (r *UserRepository) FindByEmail(ctx context.Context, category models.Category, email string) (*models.User, error) {
	table, err := userTable(category)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE LOWER(email) = LOWER($1)", userSelectColumns(category), table)

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	user.Category = category
	return &user, nil
}

// FindAnyByEmail probes the three tables in order for an email match.
func (r *UserRepository) FindAnyByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, category := range lookupOrder {
		user, err := r.FindByEmail(ctx, category, email)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	return nil, sql.ErrNoRows
}

// Create persists a new account into the table selected by user.Category.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	table, err := userTable(user.Category)
	if err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if user.Category == models.CategoryTeacher {
		query := fmt.Sprintf(`INSERT INTO %s (id, first_name, last_name, email, psw_hash, avatar, subjects_id, created_at, updated_at)
			VALUES (:id, :first_name, :last_name, :email, :psw_hash, :avatar, :subjects_id, :created_at, :updated_at)`, table)
		if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, first_name, last_name, email, psw_hash, avatar, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :email, :psw_hash, :avatar, :created_at, :updated_at)`, table)
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// allowed profile columns for partial updates.
var profileColumns = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"psw_hash":   true,
	"avatar":     true,
}

// UpdateProfile applies a partial update to the account. Unknown columns are
// rejected so request payloads can never reach the SET clause verbatim.
func (r *UserRepository) UpdateProfile(ctx context.Context, category models.Category, id string, fields map[string]interface{}) error {
	table, err := userTable(category)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	for column, value := range fields {
		if !profileColumns[column] {
			return fmt.Errorf("column %q is not updatable", column)
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

// Delete removes the account record.
func (r *UserRepository) Delete(ctx context.Context, category models.Category, id string) error {
	table, err := userTable(category)
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

// List returns every account in the category's table.
func (r *UserRepository) List(ctx context.Context, category models.Category) ([]models.User, error) {
	table, err := userTable(category)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY last_name, first_name", userSelectColumns(category), table)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	for i := range users {
		users[i].Category = category
	}
	return users, nil
}

// ListByIDs returns the accounts in the category's table matching the ids.
// Missing ids are skipped, so dangling references do not fail the read.
func (r *UserRepository) ListByIDs(ctx context.Context, category models.Category, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	table, err := userTable(category)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ANY($1) ORDER BY last_name, first_name", userSelectColumns(category), table)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list %s by ids: %w", table, err)
	}
	for i := range users {
		users[i].Category = category
	}
	return users, nil
}

// AddSubjectToTeacher appends the subject to the teacher's subject set.
// Idempotent: a subject already present leaves the row untouched.
func (r *UserRepository) AddSubjectToTeacher(ctx context.Context, teacherID, subjectID string) error {
	const query = `UPDATE teachers
		SET subjects_id = array_append(COALESCE(subjects_id, '{}'), $1), updated_at = $2
		WHERE id = $3 AND NOT ($1 = ANY(COALESCE(subjects_id, '{}')))`
	if _, err := r.db.ExecContext(ctx, query, subjectID, time.Now().UTC(), teacherID); err != nil {
		return fmt.Errorf("add subject to teacher: %w", err)
	}
	return nil
}
