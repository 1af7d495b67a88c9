package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twoschool/twoschool-api/internal/middleware"
	"github.com/twoschool/twoschool-api/internal/models"
)

func multipartContext(t *testing.T, w *httptest.ResponseRecorder, fields map[string]string, fileName string, claims *models.JWTClaims) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("attachment", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 fixture"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/addHomeworkToClass", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c
}

func itemApp(t *testing.T) (*testApp, *ItemHandler) {
	app := newTestApp(t)
	app.seedClassroom()
	return app, NewItemHandler(app.itemSvc, app.store, app.metrics)
}

func TestAddHomeworkJSON(t *testing.T) {
	app, handler := itemApp(t)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPost, "/addHomeworkToClass",
		`{"content":"Exercises 1-10","classId":"c1","subjectId":"sub1","teacherId":"t1"}`,
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.AddHomework(c)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Homework created successfully.", body["message"])
	hw, ok := body["homework"].(map[string]interface{})
	require.True(t, ok)
	id, _ := hw["id"].(string)
	require.NotEmpty(t, id)
	assert.True(t, app.classes.classes["c1"].HasHomework(id))
}

func TestAddHomeworkMultipartWithAttachment(t *testing.T) {
	app, handler := itemApp(t)

	w := httptest.NewRecorder()
	c := multipartContext(t, w, map[string]string{
		"content":   "Read the handout",
		"classId":   "c1",
		"subjectId": "sub1",
		"teacherId": "t1",
	}, "handout.pdf", &models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.AddHomework(c)

	require.Equal(t, http.StatusCreated, w.Code)
	hw, ok := decodeBody(t, w)["homework"].(map[string]interface{})
	require.True(t, ok)
	url, _ := hw["attachment"].(string)
	require.NotEmpty(t, url)
	assert.True(t, app.store.Exists(url))
}

func TestAddHomeworkMultipartRollsBackAttachment(t *testing.T) {
	app, handler := itemApp(t)

	w := httptest.NewRecorder()
	c := multipartContext(t, w, map[string]string{
		"content":   "Read the handout",
		"classId":   "c1",
		"subjectId": "sub1",
		"teacherId": "ghost",
	}, "handout.pdf", &models.JWTClaims{UserID: "ghost", UserCategory: models.CategoryTeacher})
	handler.AddHomework(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Homework creation failed due to validation errors.", body["message"])
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, errs, "Specified teacher does not exist.")
	assert.Empty(t, app.storedFiles(t), "rejected upload must not leave a blob behind")
}

func TestAddHomeworkMultipartRequiresClassID(t *testing.T) {
	_, handler := itemApp(t)

	w := httptest.NewRecorder()
	c := multipartContext(t, w, map[string]string{"content": "x"}, "",
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.AddHomework(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ClassID must be provided.", decodeBody(t, w)["message"])
}

func TestAddHomeworkMultipartMissingFile(t *testing.T) {
	app, handler := itemApp(t)

	w := httptest.NewRecorder()
	c := multipartContext(t, w, map[string]string{
		"content":   "Read the handout",
		"classId":   "c1",
		"subjectId": "sub1",
		"teacherId": "t1",
	}, "", &models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.AddHomework(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "There was an issue while uploading the requested files.", decodeBody(t, w)["message"])
	assert.Empty(t, app.storedFiles(t))
}

func TestAddHomeworkRejectsContentType(t *testing.T) {
	_, handler := itemApp(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/addHomeworkToClass", bytes.NewBufferString("content=x"))
	req.Header.Set("Content-Type", "text/plain")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.AddHomework(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid content-type.", decodeBody(t, w)["message"])
}

func TestAddReportHandler(t *testing.T) {
	app, handler := itemApp(t)

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPost, "/addReport/c1",
		`{"content":"Late three times this week","teacherId":"t1","studentId":"s1"}`,
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	c.Params = gin.Params{{Key: "classId", Value: "c1"}}
	handler.AddReport(c)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Report created successfully.", body["message"])
	report, ok := body["disciplinaryFile"].(map[string]interface{})
	require.True(t, ok)
	id, _ := report["id"].(string)
	assert.True(t, app.classes.classes["c1"].HasReport(id))
}

func TestModifyItemHandler(t *testing.T) {
	app, handler := itemApp(t)
	app.items.items["hw1"] = &models.Item{ID: "hw1", Type: models.ItemTypeHomework, Content: "old", TeacherID: "t1"}
	app.classes.classes["c1"].HomeworkID = append(app.classes.classes["c1"].HomeworkID, "hw1")

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodPatch, "/modifyItem",
		`{"itemType":"homework","itemId":"hw1","classId":"c1","content":"new"}`,
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.Modify(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Resource was updated successfully.", decodeBody(t, w)["message"])
	assert.Equal(t, "new", app.items.items["hw1"].Content)
}

func TestModifyItemReplacesAttachment(t *testing.T) {
	app, handler := itemApp(t)

	seed, err := app.store.Receive(multipartContext(t, httptest.NewRecorder(), nil, "first.pdf", nil).Request, "c1")
	require.NoError(t, err)
	require.NotNil(t, seed)
	seed.Commit()
	oldURL := seed.URL

	app.items.items["hw1"] = &models.Item{ID: "hw1", Type: models.ItemTypeHomework, TeacherID: "t1", Attachment: oldURL}
	app.classes.classes["c1"].HomeworkID = append(app.classes.classes["c1"].HomeworkID, "hw1")

	w := httptest.NewRecorder()
	c := multipartContext(t, w,
		map[string]string{"itemType": "homework", "itemId": "hw1", "classId": "c1"},
		"revised.pdf",
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.Modify(c)

	require.Equal(t, http.StatusOK, w.Code)
	newURL := app.items.items["hw1"].Attachment
	require.NotEmpty(t, newURL)
	require.NotEqual(t, oldURL, newURL)
	assert.True(t, app.store.Exists(newURL))
	assert.Eventually(t, func() bool {
		return !app.store.Exists(oldURL)
	}, time.Second, 10*time.Millisecond, "superseded blob should be deleted")
}

func TestModifyItemMultipartMissingFile(t *testing.T) {
	app, handler := itemApp(t)
	app.items.items["hw1"] = &models.Item{ID: "hw1", Type: models.ItemTypeHomework, TeacherID: "t1"}
	app.classes.classes["c1"].HomeworkID = append(app.classes.classes["c1"].HomeworkID, "hw1")

	w := httptest.NewRecorder()
	c := multipartContext(t, w,
		map[string]string{"itemType": "homework", "itemId": "hw1", "classId": "c1", "content": "new"},
		"",
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.Modify(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Content Type is form-data but no file attachment has been provided.", decodeBody(t, w)["message"])
	assert.Equal(t, "", app.items.items["hw1"].Content)
}

func TestDeleteItemHandler(t *testing.T) {
	app, handler := itemApp(t)
	app.items.items["hw1"] = &models.Item{ID: "hw1", Type: models.ItemTypeHomework, TeacherID: "t1"}
	app.classes.classes["c1"].HomeworkID = append(app.classes.classes["c1"].HomeworkID, "hw1")
	app.classes.classes["c2"] = &models.Class{ID: "c2", HomeworkID: pq.StringArray{"hw1"}}

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodDelete, "/deleteItem?itemId=hw1&itemType=homework", "",
		&models.JWTClaims{UserID: "t1", UserCategory: models.CategoryTeacher})
	handler.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Resource was deleted successfully.", decodeBody(t, w)["message"])
	assert.NotContains(t, app.items.items, "hw1")
	assert.False(t, app.classes.classes["c1"].HasHomework("hw1"))
	assert.False(t, app.classes.classes["c2"].HasHomework("hw1"))
}

func TestListHomeworkHandler(t *testing.T) {
	app, handler := itemApp(t)
	app.items.items["hw1"] = &models.Item{ID: "hw1", Type: models.ItemTypeHomework, TeacherID: "t1", SubjectID: "sub1"}

	w := httptest.NewRecorder()
	c := jsonContext(t, w, http.MethodGet, "/getHomeworks/c1", "",
		&models.JWTClaims{UserID: "s1", UserCategory: models.CategoryStudent})
	c.Params = gin.Params{{Key: "classId", Value: "c1"}}
	handler.ListHomework(c)

	require.Equal(t, http.StatusOK, w.Code)
	homeworks, ok := decodeBody(t, w)["homeworks"].([]interface{})
	require.True(t, ok)
	assert.Len(t, homeworks, 1)
}
