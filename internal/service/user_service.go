package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/twoschool/twoschool-api/internal/models"
	"github.com/twoschool/twoschool-api/internal/repository"
	"github.com/twoschool/twoschool-api/pkg/config"
	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
	"github.com/twoschool/twoschool-api/pkg/mail"
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindAnyByID(ctx context.Context, id string) (*models.User, error)
	FindAnyByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, category models.Category, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, category models.Category, id string) error
	List(ctx context.Context, category models.Category) ([]models.User, error)
}

type userClassRepository interface {
	RemoveRefEverywhere(ctx context.Context, column repository.RefColumn, id string) error
}

type userItemRepository interface {
	ListHomeworkByTeacher(ctx context.Context, teacherID string) ([]models.Homework, error)
	DeleteByTeacher(ctx context.Context, t models.ItemType, teacherID string) ([]string, error)
}

type userGradeRepository interface {
	DeleteByStudent(ctx context.Context, studentID string) error
	DeleteByTeacher(ctx context.Context, teacherID string) error
}

type attachmentDeleter interface {
	DeleteByURL(url string) error
}

// UserService covers account lifecycle: signup, profile reads and edits,
// listing and the delete cascade.
type UserService struct {
	users       userRepository
	classes     userClassRepository
	items       userItemRepository
	grades      userGradeRepository
	attachments attachmentDeleter
	mailer      mail.Mailer
	mailCfg     config.MailConfig
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(
	users userRepository,
	classes userClassRepository,
	items userItemRepository,
	grades userGradeRepository,
	attachments attachmentDeleter,
	mailer mail.Mailer,
	mailCfg config.MailConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{
		users:       users,
		classes:     classes,
		items:       items,
		grades:      grades,
		attachments: attachments,
		mailer:      mailer,
		mailCfg:     mailCfg,
		validator:   validate,
		logger:      logger,
	}
}

// Signup creates a new account with a generated temporary password and
// mails it to the new user. The mail is fire-and-forget.
func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}
	if !req.UserCategory.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid user category")
	}

	if _, err := s.users.FindAnyByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "User already exists.")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		PswHash:   string(hash),
		Avatar:    req.Avatar,
		Category:  req.UserCategory,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.mailer.Send(mail.WelcomeMessage(s.mailCfg, user.FullName(), user.Email, tempPassword))

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("category", user.Category.String()),
	)
	return user, nil
}

// Get returns the target user's public profile. Teachers and students may
// only read themselves; admins may read anyone.
func (s *UserService) Get(ctx context.Context, claims *models.JWTClaims, targetID string) (*models.User, error) {
	if err := s.authorizeTarget(claims, targetID); err != nil {
		return nil, err
	}

	user, err := s.users.FindAnyByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Specified user was not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Modify applies a partial profile update. Account owners may only change
// their avatar and password; names and email are admin-only. The returned
// user reflects the new state; when the caller edited their own record the
// handler reissues the token, since tokens embed profile fields.
func (s *UserService) Modify(ctx context.Context, claims *models.JWTClaims, targetID string, req models.ModifyUserRequest) (*models.User, error) {
	if err := s.authorizeTarget(claims, targetID); err != nil {
		return nil, err
	}
	if claims.UserCategory != models.CategoryAdmin && (req.FirstName != nil || req.LastName != nil || req.Email != nil) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Only avatar and password can be modified by the account owner.")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "You must provide parameters to be modified!")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid modify payload")
	}

	target, err := s.users.FindAnyByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Specified user was not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Avatar != nil {
		fields["avatar"] = *req.Avatar
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		fields["psw_hash"] = string(hash)
	}

	if err := s.users.UpdateProfile(ctx, target.Category, targetID, fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Specified user was not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	updated, err := s.users.FindAnyByID(ctx, targetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload user")
	}
	return updated, nil
}

// Delete removes the account and cleans up everything that references it:
// class rosters, authored items, grades and stored attachments. Blob
// deletes run after the database writes and never fail the request.
func (s *UserService) Delete(ctx context.Context, targetID string) error {
	target, err := s.users.FindAnyByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Specified user was not found.")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	var attachmentURLs []string
	switch target.Category {
	case models.CategoryTeacher:
		homework, err := s.items.ListHomeworkByTeacher(ctx, targetID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
		}
		for _, hw := range homework {
			if hw.Attachment != "" {
				attachmentURLs = append(attachmentURLs, hw.Attachment)
			}
		}

		deletedHomework, err := s.items.DeleteByTeacher(ctx, models.ItemTypeHomework, targetID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete homework")
		}
		for _, id := range deletedHomework {
			if err := s.classes.RemoveRefEverywhere(ctx, repository.RefHomework, id); err != nil {
				s.logger.Warn("failed to unlink homework from classes", zap.String("homework_id", id), zap.Error(err))
			}
		}

		deletedReports, err := s.items.DeleteByTeacher(ctx, models.ItemTypeDisciplinaryFile, targetID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete disciplinary files")
		}
		for _, id := range deletedReports {
			if err := s.classes.RemoveRefEverywhere(ctx, repository.RefDisciplinaryFiles, id); err != nil {
				s.logger.Warn("failed to unlink disciplinary file from classes", zap.String("report_id", id), zap.Error(err))
			}
		}

		if err := s.grades.DeleteByTeacher(ctx, targetID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grades")
		}
		if err := s.classes.RemoveRefEverywhere(ctx, repository.RefTeachers, targetID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlink teacher from classes")
		}

	case models.CategoryStudent:
		if err := s.grades.DeleteByStudent(ctx, targetID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grades")
		}
		if err := s.classes.RemoveRefEverywhere(ctx, repository.RefStudents, targetID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlink student from classes")
		}
	}

	if err := s.users.Delete(ctx, target.Category, targetID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	// compensating blob cleanup, after the database writes are durable
	for _, url := range attachmentURLs {
		url := url
		go func() {
			if err := s.attachments.DeleteByURL(url); err != nil {
				s.logger.Warn("failed to delete attachment blob", zap.String("url", url), zap.Error(err))
			}
		}()
	}

	s.logger.Info("user deleted",
		zap.String("user_id", targetID),
		zap.String("category", target.Category.String()),
	)
	return nil
}

// ListAll returns every account grouped by category. Admin only, enforced
// at the route gate.
func (s *UserService) ListAll(ctx context.Context) (map[string][]models.User, error) {
	out := map[string][]models.User{}
	for _, category := range []models.Category{models.CategoryTeacher, models.CategoryStudent, models.CategoryAdmin} {
		users, err := s.users.List(ctx, category)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
		}
		out[category.String()+"s"] = users
	}
	return out, nil
}

func (s *UserService) authorizeTarget(claims *models.JWTClaims, targetID string) error {
	if claims.UserCategory == models.CategoryAdmin {
		return nil
	}
	if claims.UserID != targetID {
		return appErrors.Clone(appErrors.ErrUnauthorized, "Target user Id does not match with the user Id provided in the authentication token.")
	}
	return nil
}

func generateTempPassword() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "changeMe" + hex.EncodeToString(buf), nil
}
