package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/twoschool/twoschool-api/internal/models"
	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
)

func newSubjectService(subjects *stubSubjects, users *stubUsers) *SubjectService {
	return NewSubjectService(subjects, users, validator.New(), zap.NewNop())
}

func TestCreateSubjectSuccess(t *testing.T) {
	subjects := &stubSubjects{names: map[string]bool{}}
	svc := newSubjectService(subjects, &stubUsers{})

	subject, err := svc.Create(context.Background(), models.CreateSubjectRequest{Name: "Physics"})
	require.NoError(t, err)
	assert.Equal(t, "sub-new", subject.ID)
	assert.Equal(t, "Physics", subject.Name)
}

func TestCreateSubjectDuplicateName(t *testing.T) {
	subjects := &stubSubjects{names: map[string]bool{"Physics": true}}
	svc := newSubjectService(subjects, &stubUsers{})

	_, err := svc.Create(context.Background(), models.CreateSubjectRequest{Name: "Physics"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "Subject already exists.", appErr.Message)
	assert.Empty(t, subjects.created)
}

func TestAssignSubjectToUnknownTeacher(t *testing.T) {
	users, subjects, _ := classroomFixture()
	svc := newSubjectService(subjects, users)

	_, err := svc.AssignToTeacher(context.Background(), models.AddSubjectToTeacherRequest{TeacherID: "ghost", SubjectID: "sub1"})
	require.Error(t, err)
	assert.Equal(t, "Specified teacher does not exist.", appErrors.FromError(err).Message)
}

func TestAssignUnknownSubject(t *testing.T) {
	users, subjects, _ := classroomFixture()
	svc := newSubjectService(subjects, users)

	_, err := svc.AssignToTeacher(context.Background(), models.AddSubjectToTeacherRequest{TeacherID: "t1", SubjectID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, "Specified subject does not exist.", appErrors.FromError(err).Message)
}

func TestAssignSubjectToTeacher(t *testing.T) {
	users, subjects, _ := classroomFixture()
	subjects.subjects["sub2"] = &models.Subject{ID: "sub2", Name: "History"}
	svc := newSubjectService(subjects, users)

	teacher, err := svc.AssignToTeacher(context.Background(), models.AddSubjectToTeacherRequest{TeacherID: "t1", SubjectID: "sub2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1/sub2"}, users.assigned)
	assert.True(t, teacher.TeachesSubject("sub2"))
}
