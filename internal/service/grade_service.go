package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/twoschool/twoschool-api/internal/models"
	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
)

type gradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeView, error)
}

// GradeService covers grade recording and per-student listings.
type GradeService struct {
	grades    gradeRepository
	users     itemUserRepository
	subjects  itemSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(grades gradeRepository, users itemUserRepository, subjects itemSubjectRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{grades: grades, users: users, subjects: subjects, validator: validate, logger: logger}
}

// Add records a mark. The calling teacher must be the grading teacher and
// must have the subject in their set; validation failures accumulate.
func (s *GradeService) Add(ctx context.Context, claims *models.JWTClaims, req models.AddGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	var details []string

	var teacher *models.User
	found, err := s.users.FindByID(ctx, models.CategoryTeacher, req.TeacherID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		details = append(details, "Specified teacher does not exist.")
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	default:
		teacher = found
	}

	if _, err := s.users.FindByID(ctx, models.CategoryStudent, req.StudentID); errors.Is(err, sql.ErrNoRows) {
		details = append(details, "Specified student does not exist.")
	} else if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	subjectExists := false
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); errors.Is(err, sql.ErrNoRows) {
		details = append(details, "Specified subject does not exist.")
	} else if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	} else {
		subjectExists = true
	}

	if teacher != nil && subjectExists && !teacher.TeachesSubject(req.SubjectID) {
		details = append(details, "The specified subject is not assigned to the given teacher.")
	}
	if claims.UserID != req.TeacherID {
		details = append(details, "Teacher identity mismatch: you can only record grades as yourself.")
	}

	if len(details) > 0 {
		return nil, appErrors.Validation("Grade creation failed due to validation errors.", details)
	}

	grade := &models.Grade{
		Value:     req.Value,
		TeacherID: req.TeacherID,
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
	}
	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}

	s.logger.Info("grade recorded",
		zap.String("grade_id", grade.ID),
		zap.String("student_id", req.StudentID),
		zap.Int("value", req.Value),
	)
	return grade, nil
}

// ListForStudent returns a student's grades. Students may only read their
// own; teachers and admins may read anyone's.
func (s *GradeService) ListForStudent(ctx context.Context, claims *models.JWTClaims, studentID string) ([]models.GradeView, error) {
	if claims.UserCategory == models.CategoryStudent && claims.UserID != studentID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Requested operation is not permitted.")
	}

	views, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return views, nil
}
