package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twoschool/twoschool-api/internal/models"
)

func TestAddGradeHandler(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewGradeHandler(app.gradeSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPost, "/addGrade",
		`{"value":8,"studentId":"s1","subjectId":"sub1","teacherId":"t1"}`,
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.Add(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Grade recorded successfully.", decodeBody(t, w)["message"])
	assert.Len(t, app.grades.grades, 1)
}

func TestAddGradeHandlerValidationEnvelope(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewGradeHandler(app.gradeSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPost, "/addGrade",
		`{"value":8,"studentId":"ghost","subjectId":"sub1","teacherId":"t1"}`,
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.Add(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Grade creation failed due to validation errors.", body["message"])
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"Specified student does not exist."}, errs)
}

func TestListGradesHandler(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	app.grades.grades["g1"] = &models.Grade{ID: "g1", Value: 9, StudentID: "s1", TeacherID: "t1", SubjectID: "sub1"}
	handler := NewGradeHandler(app.gradeSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodGet, "/getGrades/s1", "",
		&models.JWTClaims{UserID: "s1", UserCategory: models.CategoryStudent})
	c.Params = gin.Params{{Key: "studentId", Value: "s1"}}
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	grades, ok := decodeBody(t, w)["grades"].([]interface{})
	require.True(t, ok)
	assert.Len(t, grades, 1)
}

func TestListGradesHandlerForeignStudent(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewGradeHandler(app.gradeSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodGet, "/getGrades/s2", "",
		&models.JWTClaims{UserID: "s1", UserCategory: models.CategoryStudent})
	c.Params = gin.Params{{Key: "studentId", Value: "s2"}}
	handler.List(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
