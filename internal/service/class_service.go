package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/twoschool/twoschool-api/internal/models"
	"github.com/twoschool/twoschool-api/internal/repository"
	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
	"github.com/twoschool/twoschool-api/pkg/export"
)

type classRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	List(ctx context.Context) ([]models.Class, error)
	ListByMember(ctx context.Context, column repository.RefColumn, userID string) ([]models.Class, error)
	AppendRef(ctx context.Context, classID string, column repository.RefColumn, id string) error
}

type classUserRepository interface {
	FindAnyByID(ctx context.Context, id string) (*models.User, error)
	ListByIDs(ctx context.Context, category models.Category, ids []string) ([]models.User, error)
}

type classItemRepository interface {
	ListHomeworkByClass(ctx context.Context, classID string) ([]models.HomeworkView, error)
	ListReportsByClass(ctx context.Context, classID string) ([]models.DisciplinaryView, error)
}

// ExportFormat selects the register export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult is a rendered class register ready to stream to the client.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ClassService covers classroom lifecycle, membership and the resolved
// classroom views.
type ClassService struct {
	classes   classRepository
	users     classUserRepository
	items     classItemRepository
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(
	classes classRepository,
	users classUserRepository,
	items classItemRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{
		classes:   classes,
		users:     users,
		items:     items,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Create registers a new classroom with empty rosters.
func (s *ClassService) Create(ctx context.Context, req models.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.Class{
		Section:      req.Section,
		GradeOfClass: req.GradeOfClass,
		Logo:         req.Logo,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.logger.Info("class created", zap.String("class_id", class.ID))
	return class, nil
}

// AddUser places an existing teacher or student into a classroom roster.
// Admins have no roster to join.
func (s *ClassService) AddUser(ctx context.Context, req models.AddUserToClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	user, err := s.users.FindAnyByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Specified user was not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	var column repository.RefColumn
	switch user.Category {
	case models.CategoryTeacher:
		column = repository.RefTeachers
	case models.CategoryStudent:
		column = repository.RefStudents
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "Only teachers and students can be added to a class.")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Specified classroom does not exist.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	if err := s.classes.AppendRef(ctx, req.ClassID, column, req.UserID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add user to class")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload class")
	}
	return class, nil
}

// ListForUser returns the classrooms visible to the caller: their own for
// teachers and students, every classroom for admins. Non-admin callers may
// only ask about themselves.
func (s *ClassService) ListForUser(ctx context.Context, claims *models.JWTClaims, userID string) ([]models.ClassSummary, error) {
	if claims.UserCategory != models.CategoryAdmin && userID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Target user Id does not match with the user Id provided in the authentication token.")
	}

	var (
		classes []models.Class
		err     error
	)
	switch claims.UserCategory {
	case models.CategoryTeacher:
		classes, err = s.classes.ListByMember(ctx, repository.RefTeachers, claims.UserID)
	case models.CategoryStudent:
		classes, err = s.classes.ListByMember(ctx, repository.RefStudents, claims.UserID)
	default:
		classes, err = s.classes.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	summaries := make([]models.ClassSummary, 0, len(classes))
	for _, class := range classes {
		teachers, err := s.users.ListByIDs(ctx, models.CategoryTeacher, class.TeachersID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teachers")
		}
		summaries = append(summaries, models.ClassSummary{
			ID:           class.ID,
			Section:      class.Section,
			GradeOfClass: class.GradeOfClass,
			Logo:         class.Logo,
			Teachers:     teachers,
		})
	}
	return summaries, nil
}

// Get resolves a classroom into its full detail view. Non-admin callers
// must belong to the classroom; students only see the reports addressed to
// them or to the whole class.
func (s *ClassService) Get(ctx context.Context, claims *models.JWTClaims, classID string) (*models.ClassDetail, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Specified classroom does not exist.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	switch claims.UserCategory {
	case models.CategoryTeacher:
		if !class.HasTeacher(claims.UserID) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Requested operation is not permitted.")
		}
	case models.CategoryStudent:
		if !class.HasStudent(claims.UserID) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Requested operation is not permitted.")
		}
	}

	teachers, err := s.users.ListByIDs(ctx, models.CategoryTeacher, class.TeachersID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teachers")
	}
	students, err := s.users.ListByIDs(ctx, models.CategoryStudent, class.StudentsID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve students")
	}
	homework, err := s.items.ListHomeworkByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve homework")
	}
	reports, err := s.items.ListReportsByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve disciplinary files")
	}
	if claims.UserCategory == models.CategoryStudent {
		reports = filterReportsForStudent(reports, claims.UserID)
	}

	return &models.ClassDetail{
		ID:                class.ID,
		Section:           class.Section,
		GradeOfClass:      class.GradeOfClass,
		Logo:              class.Logo,
		Teachers:          teachers,
		Students:          students,
		Homework:          homework,
		DisciplinaryFiles: reports,
	}, nil
}

// ExportRegister renders the classroom roster as CSV or PDF.
func (s *ClassService) ExportRegister(ctx context.Context, classID string, format ExportFormat) (*ExportResult, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Specified classroom does not exist.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	students, err := s.users.ListByIDs(ctx, models.CategoryStudent, class.StudentsID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve students")
	}

	dataset := export.Dataset{
		Headers: []string{"Last Name", "First Name", "Email"},
	}
	for _, student := range students {
		dataset.Rows = append(dataset.Rows, []string{student.LastName, student.FirstName, student.Email})
	}

	title := fmt.Sprintf("Class %d%s register", class.GradeOfClass, class.Section)
	base := fmt.Sprintf("class_%d%s_register", class.GradeOfClass, class.Section)

	switch format {
	case ExportPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	case ExportCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{FileName: base + ".csv", ContentType: "text/csv", Data: data}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "Unsupported export format.")
}

func filterReportsForStudent(reports []models.DisciplinaryView, studentID string) []models.DisciplinaryView {
	filtered := make([]models.DisciplinaryView, 0, len(reports))
	for _, report := range reports {
		if report.StudentID == nil || *report.StudentID == studentID {
			filtered = append(filtered, report)
		}
	}
	return filtered
}
