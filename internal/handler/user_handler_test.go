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

func TestSignupHandlerCreatesUser(t *testing.T) {
	app := newTestApp(t)
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPost, "/signup",
		`{"firstName":"Luca","lastName":"Bianchi","email":"luca@school.test","userCategory":589}`,
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	handler.Signup(c)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User created successfully.", body["message"])
	require.Len(t, app.mailer.messages, 1)
	assert.Equal(t, "luca@school.test", app.mailer.messages[0].ToEmail)
}

func TestSignupHandlerDuplicate(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPost, "/signup",
		`{"firstName":"Anna","lastName":"Rossi","email":"anna@school.test","userCategory":345}`,
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	handler.Signup(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already exists.", decodeBody(t, w)["message"])
}

func TestGetUserPublicProjection(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodGet, "/getUser/s1", "",
		&models.JWTClaims{UserID: "s1", UserCategory: models.CategoryStudent})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	user, ok := decodeBody(t, w)["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Marco", user["firstName"])
	// only the public profile fields leave the API
	assert.NotContains(t, user, "id")
	assert.NotContains(t, user, "pswHash")
}

func TestModifySelfReissuesToken(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPatch, "/modifyUser/s1", `{"avatar":"http://files.test/avatars/s1.png"}`,
		&models.JWTClaims{UserID: "s1", UserCategory: models.CategoryStudent})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Modify(c)

	require.Equal(t, http.StatusOK, w.Code)
	token := w.Header().Get("Authorization")
	require.NotEmpty(t, token, "self edits must ship a fresh token")

	claims, err := app.authSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/avatars/s1.png", claims.Avatar)
}

func TestModifySelfRejectsAdminOnlyFields(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPatch, "/modifyUser/s1", `{"firstName":"Mario"}`,
		&models.JWTClaims{UserID: "s1", UserCategory: models.CategoryStudent})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Modify(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Only avatar and password can be modified by the account owner.", decodeBody(t, w)["message"])
}

func TestModifyByAdminKeepsToken(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPatch, "/modifyUser/s1", `{"firstName":"Mario"}`,
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Modify(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Authorization"))
	assert.Equal(t, "Mario", app.users.users["s1"].FirstName)
}

func TestModifyForeignTargetDenied(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPatch, "/modifyUser/t1", `{"firstName":"Mario"}`,
		&models.JWTClaims{UserID: "s1", UserCategory: models.CategoryStudent})
	c.Params = gin.Params{{Key: "id", Value: "t1"}}
	handler.Modify(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteStudentCleansRoster(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodDelete, "/deleteUser/s1", "",
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted successfully.", decodeBody(t, w)["message"])
	assert.NotContains(t, app.users.users, "s1")
	assert.False(t, app.classes.classes["c1"].HasStudent("s1"))
}

func TestListAllUsersGrouped(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodGet, "/getAllUsers", "",
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	handler.ListAll(c)

	require.Equal(t, http.StatusOK, w.Code)
	users, ok := decodeBody(t, w)["users"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, users, "teachers")
	assert.Contains(t, users, "students")
	assert.Contains(t, users, "admins")
}

func TestListAllUsersCategoryFilter(t *testing.T) {
	app := newTestApp(t)
	app.seedClassroom()
	handler := NewUserHandler(app.userSvc, app.authSvc)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodGet, "/getAllUsers?category=students", "",
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	handler.ListAll(c)

	require.Equal(t, http.StatusOK, w.Code)
	users, ok := decodeBody(t, w)["users"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, users, "students")
	assert.NotContains(t, users, "teachers")

	w = httptest.NewRecorder()
	c = jsonContext(t, w, http.MethodGet, "/getAllUsers?category=wizards", "",
		&models.JWTClaims{UserID: "a1", UserCategory: models.CategoryAdmin})
	handler.ListAll(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown user category.", decodeBody(t, w)["message"])
}
