package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/twoschool/twoschool-api/internal/models"
	"github.com/twoschool/twoschool-api/internal/repository"
	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
	"github.com/twoschool/twoschool-api/pkg/storage"
)

type itemRepositoryAPI interface {
	FindByID(ctx context.Context, t models.ItemType, id string) (*models.Item, error)
	CreateHomework(ctx context.Context, hw *models.Homework) error
	CreateReport(ctx context.Context, df *models.DisciplinaryFile) error
	UpdateFields(ctx context.Context, t models.ItemType, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, t models.ItemType, id string) error
	ListHomeworkByClass(ctx context.Context, classID string) ([]models.HomeworkView, error)
	ListReportsByClass(ctx context.Context, classID string) ([]models.DisciplinaryView, error)
}

type itemClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	AppendRef(ctx context.Context, classID string, column repository.RefColumn, id string) error
	RemoveRefEverywhere(ctx context.Context, column repository.RefColumn, id string) error
}

type itemUserRepository interface {
	FindByID(ctx context.Context, category models.Category, id string) (*models.User, error)
}

type itemSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// ItemService covers homework and disciplinary file lifecycle. Creation
// validation accumulates every failed check into one error list instead of
// stopping at the first, so the client can surface all problems at once.
type ItemService struct {
	items       itemRepositoryAPI
	classes     itemClassRepository
	users       itemUserRepository
	subjects    itemSubjectRepository
	attachments attachmentDeleter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewItemService constructs an ItemService instance.
func NewItemService(
	items itemRepositoryAPI,
	classes itemClassRepository,
	users itemUserRepository,
	subjects itemSubjectRepository,
	attachments attachmentDeleter,
	validate *validator.Validate,
	logger *zap.Logger,
) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ItemService{
		items:       items,
		classes:     classes,
		users:       users,
		subjects:    subjects,
		attachments: attachments,
		validator:   validate,
		logger:      logger,
	}
}

// CreateHomework validates and publishes homework to a classroom. upload is
// the already-stored attachment, or nil; on any validation failure it is
// rolled back before the error returns.
func (s *ItemService) CreateHomework(ctx context.Context, claims *models.JWTClaims, req models.CreateHomeworkRequest, upload *storage.UploadHandle) (*models.Homework, error) {
	defer upload.Release()

	var details []string

	if req.Content == "" {
		details = append(details, "Homework cannot be empty.")
	}

	var teacher *models.User
	if req.TeacherID == "" {
		details = append(details, "Specified teacher does not exist.")
	} else {
		found, err := s.users.FindByID(ctx, models.CategoryTeacher, req.TeacherID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			details = append(details, "Specified teacher does not exist.")
		case err != nil:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
		default:
			teacher = found
		}
	}

	subjectExists := false
	if req.SubjectID == "" {
		details = append(details, "Specified subject does not exist.")
	} else {
		_, err := s.subjects.FindByID(ctx, req.SubjectID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			details = append(details, "Specified subject does not exist.")
		case err != nil:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		default:
			subjectExists = true
		}
	}

	var class *models.Class
	if req.ClassID == "" {
		details = append(details, "Specified classroom does not exist.")
	} else {
		found, err := s.classes.FindByID(ctx, req.ClassID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			details = append(details, "Specified classroom does not exist.")
		case err != nil:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		default:
			class = found
		}
	}

	// relationship checks only when both ends resolved
	if teacher != nil && subjectExists && !teacher.TeachesSubject(req.SubjectID) {
		details = append(details, "The specified subject is not assigned to the given teacher.")
	}
	if teacher != nil && class != nil && !class.HasTeacher(teacher.ID) {
		details = append(details, "The specified teacher is not assigned to the given class.")
	}
	if claims.UserID != req.TeacherID {
		details = append(details, "Teacher identity mismatch: you must be a teacher belonging to the specified class if you want to add a new homework.")
	}

	if len(details) > 0 {
		return nil, appErrors.Validation("Homework creation failed due to validation errors.", details)
	}

	hw := &models.Homework{
		Content:   req.Content,
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
	}
	if upload != nil {
		hw.Attachment = upload.URL
	}

	if err := s.items.CreateHomework(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create homework")
	}
	if err := s.classes.AppendRef(ctx, req.ClassID, repository.RefHomework, hw.ID); err != nil {
		// keep the record, the back-reference can be repaired; the client
		// still gets an error so it does not assume the class view updated
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link homework to class")
	}
	upload.Commit()

	s.logger.Info("homework created",
		zap.String("homework_id", hw.ID),
		zap.String("class_id", req.ClassID),
		zap.String("teacher_id", req.TeacherID),
	)
	return hw, nil
}

// CreateReport validates and files a disciplinary report against a
// classroom, optionally addressed to one of its students.
func (s *ItemService) CreateReport(ctx context.Context, claims *models.JWTClaims, req models.CreateReportRequest) (*models.DisciplinaryFile, error) {
	var details []string

	if req.Content == "" {
		details = append(details, "Disciplinary report cannot be empty.")
	}

	var teacher *models.User
	if req.TeacherID == "" {
		details = append(details, "Specified teacher does not exist.")
	} else {
		found, err := s.users.FindByID(ctx, models.CategoryTeacher, req.TeacherID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			details = append(details, "Specified teacher does not exist.")
		case err != nil:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
		default:
			teacher = found
		}
	}

	var class *models.Class
	if req.ClassID == "" {
		details = append(details, "Specified classroom does not exist.")
	} else {
		found, err := s.classes.FindByID(ctx, req.ClassID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			details = append(details, "Specified classroom does not exist.")
		case err != nil:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		default:
			class = found
		}
	}

	if req.StudentID != nil {
		_, err := s.users.FindByID(ctx, models.CategoryStudent, *req.StudentID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			details = append(details, "Specified student does not exist.")
		case err != nil:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		default:
			if class != nil && !class.HasStudent(*req.StudentID) {
				details = append(details, "The specified student is not assigned to the given class.")
			}
		}
	}

	if teacher != nil && class != nil && !class.HasTeacher(teacher.ID) {
		details = append(details, "The specified teacher is not assigned to the given class.")
	}
	if claims.UserID != req.TeacherID {
		details = append(details, "Teacher identity mismatch: you must be a teacher belonging to the specified class if you want to add a new disciplinary report.")
	}

	if len(details) > 0 {
		return nil, appErrors.Validation("Report creation failed due to validation errors.", details)
	}

	df := &models.DisciplinaryFile{
		Content:   req.Content,
		TeacherID: req.TeacherID,
		StudentID: req.StudentID,
	}
	if err := s.items.CreateReport(ctx, df); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create disciplinary file")
	}
	if err := s.classes.AppendRef(ctx, req.ClassID, repository.RefDisciplinaryFiles, df.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link disciplinary file to class")
	}

	s.logger.Info("disciplinary file created",
		zap.String("report_id", df.ID),
		zap.String("class_id", req.ClassID),
		zap.String("teacher_id", req.TeacherID),
	)
	return df, nil
}

// ListHomework returns a classroom's homework for a caller that belongs to
// it (admins see every classroom).
func (s *ItemService) ListHomework(ctx context.Context, claims *models.JWTClaims, classID string) ([]models.HomeworkView, error) {
	if _, err := s.memberClass(ctx, claims, classID); err != nil {
		return nil, err
	}
	views, err := s.items.ListHomeworkByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
	}
	return views, nil
}

// ListReports returns a classroom's disciplinary files. Students only see
// the reports addressed to them or to the whole class.
func (s *ItemService) ListReports(ctx context.Context, claims *models.JWTClaims, classID string) ([]models.DisciplinaryView, error) {
	if _, err := s.memberClass(ctx, claims, classID); err != nil {
		return nil, err
	}
	views, err := s.items.ListReportsByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list disciplinary files")
	}
	if claims.UserCategory == models.CategoryStudent {
		views = filterReportsForStudent(views, claims.UserID)
	}
	return views, nil
}

// Modify applies a partial update to a homework or disciplinary file. Only
// the author or an admin may touch the item, and homework must additionally
// belong to the classroom named in the request. upload is a replacement
// attachment, or nil; when the update succeeds the superseded blob is
// deleted after the database write, and on failure the new blob is rolled
// back.
func (s *ItemService) Modify(ctx context.Context, claims *models.JWTClaims, req models.ModifyItemRequest, upload *storage.UploadHandle) (*models.Item, error) {
	defer upload.Release()

	item, err := s.loadAuthorizedItem(ctx, claims, req.ItemType, req.ItemID, "update")
	if err != nil {
		return nil, err
	}
	if item.Type == models.ItemTypeHomework {
		if err := s.checkItemClass(ctx, item, req.ClassID); err != nil {
			return nil, err
		}
	}

	var details []string
	fields := map[string]interface{}{}
	var oldAttachment string
	if upload != nil {
		if item.Type != models.ItemTypeHomework {
			details = append(details, "Only homework carries an attachment.")
		} else {
			fields["attachment"] = upload.URL
			oldAttachment = item.Attachment
		}
	}
	if req.Content != nil {
		if *req.Content == "" {
			details = append(details, "Content cannot be set to an empty value.")
		} else {
			fields["content"] = *req.Content
		}
	}
	if req.SubjectID != nil {
		if item.Type != models.ItemTypeHomework {
			details = append(details, "Only homework carries a subject.")
		} else if _, err := s.subjects.FindByID(ctx, *req.SubjectID); errors.Is(err, sql.ErrNoRows) {
			details = append(details, "Specified subject does not exist.")
		} else if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		} else {
			fields["subject_id"] = *req.SubjectID
		}
	}
	if len(details) > 0 {
		return nil, appErrors.Validation("Item update failed due to validation errors.", details)
	}
	if len(fields) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "You must provide parameters to be modified!")
	}

	if err := s.items.UpdateFields(ctx, item.Type, item.ID, fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Provided item ID does not correspond to a valid object.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update item")
	}
	upload.Commit()

	// the superseded blob goes away only after the new state is durable
	if oldAttachment != "" {
		url := oldAttachment
		go func() {
			if err := s.attachments.DeleteByURL(url); err != nil {
				s.logger.Warn("failed to delete attachment blob", zap.String("url", url), zap.Error(err))
			}
		}()
	}

	updated, err := s.items.FindByID(ctx, item.Type, item.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload item")
	}
	return updated, nil
}

// Delete removes a homework or disciplinary file, scrubs its reference from
// every classroom that carries it and, for homework, deletes the stored
// attachment after the database writes are durable.
func (s *ItemService) Delete(ctx context.Context, claims *models.JWTClaims, req models.DeleteItemRequest) error {
	item, err := s.loadAuthorizedItem(ctx, claims, req.ItemType, req.ItemID, "delete")
	if err != nil {
		return err
	}

	column := repository.RefHomework
	if item.Type == models.ItemTypeDisciplinaryFile {
		column = repository.RefDisciplinaryFiles
	}

	if err := s.items.Delete(ctx, item.Type, item.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Provided item ID does not correspond to a valid object.")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete item")
	}
	if err := s.classes.RemoveRefEverywhere(ctx, column, item.ID); err != nil {
		s.logger.Warn("failed to unlink item from classes",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
	}

	if item.Type == models.ItemTypeHomework && item.Attachment != "" {
		url := item.Attachment
		go func() {
			if err := s.attachments.DeleteByURL(url); err != nil {
				s.logger.Warn("failed to delete attachment blob", zap.String("url", url), zap.Error(err))
			}
		}()
	}

	s.logger.Info("item deleted",
		zap.String("item_id", item.ID),
		zap.String("item_type", string(item.Type)),
	)
	return nil
}

// loadAuthorizedItem runs the shared modify/delete gauntlet: valid type,
// existing item, author-or-admin caller.
func (s *ItemService) loadAuthorizedItem(ctx context.Context, claims *models.JWTClaims, itemType models.ItemType, itemID, operation string) (*models.Item, error) {
	if itemType == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "You must provide a valid itemType in order to perform a "+operation+" operation.")
	}
	if !itemType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unrecognized item type.")
	}

	item, err := s.items.FindByID(ctx, itemType, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Provided item ID does not correspond to a valid object.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load item")
	}

	if claims.UserCategory != models.CategoryAdmin && item.TeacherID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "The specified userId is not the author of the resource, so it is not allowed to perform the requested operation")
	}

	return item, nil
}

// checkItemClass verifies the item sits in the named classroom's reference
// array. Homework updates require it; deletes scrub references instead.
func (s *ItemService) checkItemClass(ctx context.Context, item *models.Item, classID string) error {
	if classID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "You must provide the class to which the item belongs.")
	}
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Specified classroom does not exist.")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	owned := class.HasHomework(item.ID)
	if item.Type == models.ItemTypeDisciplinaryFile {
		owned = class.HasReport(item.ID)
	}
	if !owned {
		return appErrors.Clone(appErrors.ErrValidation, "The specified item does not belong to the provided classroom object ID.")
	}
	return nil
}

// memberClass loads the class and enforces roster membership for teachers
// and students.
func (s *ItemService) memberClass(ctx context.Context, claims *models.JWTClaims, classID string) (*models.Class, error) {
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
	return class, nil
}
