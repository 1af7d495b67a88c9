package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twoschool/twoschool-api/internal/models"
)

func TestCreateSubjectHandler(t *testing.T) {
	app := newTestApp(t)
	handler := NewSubjectHandler(app.subjectSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPost, "/createSubject", `{"name":"Physics"}`,
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Subject created successfully.", decodeBody(t, w)["message"])
}

func TestCreateSubjectHandlerDuplicate(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewSubjectHandler(app.subjectSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPost, "/createSubject", `{"name":"Math"}`,
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Subject already exists.", decodeBody(t, w)["message"])
}

func TestAssignSubjectHandler(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	app.subjects.subjects["sub2"] = &models.Subject{ID: "sub2", Name: "History"}
	handler := NewSubjectHandler(app.subjectSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPut, "/addSubjectToTeacher", `{"teacherId":"t1","subjectId":"sub2"}`,
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	handler.AssignToTeacher(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Subject assigned successfully.", decodeBody(t, w)["message"])
	assert.True(t, app.users.users["t1"].TeachesSubject("sub2"))
}

func TestListSubjectsHandler(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewSubjectHandler(app.subjectSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodGet, "/getSubjects", "",
		&models.JWTClaims{UserID: "s1", UserCategory: models.CategoryStudent})
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	subjects, ok := decodeBody(t, w)["subjects"].([]interface{})
	require.True(t, ok)
	assert.Len(t, subjects, 1)
}
