package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/twoschool/twoschool-api/internal/middleware"
	"github.com/twoschool/twoschool-api/internal/models"
	"github.com/twoschool/twoschool-api/internal/repository"
	"github.com/twoschool/twoschool-api/internal/service"
	"github.com/twoschool/twoschool-api/pkg/config"
	"github.com/twoschool/twoschool-api/pkg/mail"
	"github.com/twoschool/twoschool-api/pkg/storage"
)

// in-memory repositories backing the handler tests, so requests run through
// the real service layer

type memUsers struct {
	users map[string]*models.User
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	user.ID = fmt.Sprintf("u%d", len(m.users)+1)
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) FindAnyByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) FindAnyByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) FindByID(ctx context.Context, category models.Category, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok || u.Category != category {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) UpdateProfile(ctx context.Context, category models.Category, id string, fields map[string]interface{}) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	for column, value := range fields {
		s, _ := value.(string)
		switch column {
		case "first_name":
			u.FirstName = s
		case "last_name":
			u.LastName = s
		case "email":
			u.Email = s
		case "avatar":
			u.Avatar = s
		case "psw_hash":
			u.PswHash = s
		}
	}
	return nil
}

func (m *memUsers) Delete(ctx context.Context, category models.Category, id string) error {
	delete(m.users, id)
	return nil
}

func (m *memUsers) List(ctx context.Context, category models.Category) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Category == category {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) ListByIDs(ctx context.Context, category models.Category, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok && u.Category == category {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) AddSubjectToTeacher(ctx context.Context, teacherID, subjectID string) error {
	u, ok := m.users[teacherID]
	if !ok {
		return sql.ErrNoRows
	}
	if !u.TeachesSubject(subjectID) {
		u.SubjectsID = append(u.SubjectsID, subjectID)
	}
	return nil
}

type memClasses struct {
	classes map[string]*models.Class
}

func (m *memClasses) refSet(c *models.Class, column repository.RefColumn) *pqStringArray {
	switch column {
	case repository.RefTeachers:
		return (*pqStringArray)(&c.TeachersID)
	case repository.RefStudents:
		return (*pqStringArray)(&c.StudentsID)
	case repository.RefHomework:
		return (*pqStringArray)(&c.HomeworkID)
	default:
		return (*pqStringArray)(&c.DisciplinaryFileID)
	}
}

func (m *memClasses) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memClasses) Create(ctx context.Context, class *models.Class) error {
	class.ID = fmt.Sprintf("c%d", len(m.classes)+1)
	m.classes[class.ID] = class
	return nil
}

func (m *memClasses) List(ctx context.Context) ([]models.Class, error) {
	var out []models.Class
	for _, c := range m.classes {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memClasses) ListByMember(ctx context.Context, column repository.RefColumn, userID string) ([]models.Class, error) {
	var out []models.Class
	for _, c := range m.classes {
		if m.refSet(c, column).contains(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memClasses) AppendRef(ctx context.Context, classID string, column repository.RefColumn, id string) error {
	c, ok := m.classes[classID]
	if !ok {
		return sql.ErrNoRows
	}
	m.refSet(c, column).add(id)
	return nil
}

func (m *memClasses) RemoveRefEverywhere(ctx context.Context, column repository.RefColumn, id string) error {
	for _, c := range m.classes {
		m.refSet(c, column).remove(id)
	}
	return nil
}

type pqStringArray []string

func (a *pqStringArray) contains(id string) bool {
	for _, v := range *a {
		if v == id {
			return true
		}
	}
	return false
}

func (a *pqStringArray) add(id string) {
	if !a.contains(id) {
		*a = append(*a, id)
	}
}

func (a *pqStringArray) remove(id string) {
	out := (*a)[:0]
	for _, v := range *a {
		if v != id {
			out = append(out, v)
		}
	}
	*a = out
}

type memItems struct {
	items map[string]*models.Item
}

func (m *memItems) FindByID(ctx context.Context, t models.ItemType, id string) (*models.Item, error) {
	item, ok := m.items[id]
	if !ok || item.Type != t {
		return nil, sql.ErrNoRows
	}
	return item, nil
}

func (m *memItems) CreateHomework(ctx context.Context, hw *models.Homework) error {
	hw.ID = fmt.Sprintf("hw%d", len(m.items)+1)
	m.items[hw.ID] = &models.Item{
		ID:         hw.ID,
		Type:       models.ItemTypeHomework,
		Content:    hw.Content,
		Attachment: hw.Attachment,
		TeacherID:  hw.TeacherID,
		SubjectID:  hw.SubjectID,
	}
	return nil
}

func (m *memItems) CreateReport(ctx context.Context, df *models.DisciplinaryFile) error {
	df.ID = fmt.Sprintf("df%d", len(m.items)+1)
	m.items[df.ID] = &models.Item{
		ID:        df.ID,
		Type:      models.ItemTypeDisciplinaryFile,
		Content:   df.Content,
		TeacherID: df.TeacherID,
		StudentID: df.StudentID,
	}
	return nil
}

func (m *memItems) UpdateFields(ctx context.Context, t models.ItemType, id string, fields map[string]interface{}) error {
	item, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	for column, value := range fields {
		switch column {
		case "content":
			item.Content, _ = value.(string)
		case "subject_id":
			item.SubjectID, _ = value.(string)
		case "attachment":
			item.Attachment, _ = value.(string)
		}
	}
	return nil
}

func (m *memItems) Delete(ctx context.Context, t models.ItemType, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *memItems) ListHomeworkByClass(ctx context.Context, classID string) ([]models.HomeworkView, error) {
	var out []models.HomeworkView
	for _, item := range m.items {
		if item.Type == models.ItemTypeHomework {
			out = append(out, models.HomeworkView{
				ID:         item.ID,
				Content:    item.Content,
				Attachment: item.Attachment,
				TeacherID:  item.TeacherID,
				SubjectID:  item.SubjectID,
			})
		}
	}
	return out, nil
}

func (m *memItems) ListReportsByClass(ctx context.Context, classID string) ([]models.DisciplinaryView, error) {
	var out []models.DisciplinaryView
	for _, item := range m.items {
		if item.Type == models.ItemTypeDisciplinaryFile {
			out = append(out, models.DisciplinaryView{
				ID:        item.ID,
				Content:   item.Content,
				TeacherID: item.TeacherID,
				StudentID: item.StudentID,
			})
		}
	}
	return out, nil
}

func (m *memItems) ListHomeworkByTeacher(ctx context.Context, teacherID string) ([]models.Homework, error) {
	var out []models.Homework
	for _, item := range m.items {
		if item.Type == models.ItemTypeHomework && item.TeacherID == teacherID {
			out = append(out, models.Homework{ID: item.ID, Content: item.Content, Attachment: item.Attachment, TeacherID: item.TeacherID, SubjectID: item.SubjectID})
		}
	}
	return out, nil
}

func (m *memItems) DeleteByTeacher(ctx context.Context, t models.ItemType, teacherID string) ([]string, error) {
	var deleted []string
	for id, item := range m.items {
		if item.Type == t && item.TeacherID == teacherID {
			deleted = append(deleted, id)
			delete(m.items, id)
		}
	}
	return deleted, nil
}

type memSubjects struct {
	subjects map[string]*models.Subject
}

func (m *memSubjects) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = fmt.Sprintf("sub%d", len(m.subjects)+1)
	m.subjects[subject.ID] = subject
	return nil
}

func (m *memSubjects) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memSubjects) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, s := range m.subjects {
		if s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSubjects) List(ctx context.Context) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range m.subjects {
		out = append(out, *s)
	}
	return out, nil
}

type memGrades struct {
	grades map[string]*models.Grade
}

func (m *memGrades) Create(ctx context.Context, grade *models.Grade) error {
	grade.ID = fmt.Sprintf("g%d", len(m.grades)+1)
	m.grades[grade.ID] = grade
	return nil
}

func (m *memGrades) ListByStudent(ctx context.Context, studentID string) ([]models.GradeView, error) {
	var out []models.GradeView
	for _, g := range m.grades {
		if g.StudentID == studentID {
			out = append(out, models.GradeView{ID: g.ID, Value: g.Value, SubjectID: g.SubjectID})
		}
	}
	return out, nil
}

func (m *memGrades) DeleteByStudent(ctx context.Context, studentID string) error {
	for id, g := range m.grades {
		if g.StudentID == studentID {
			delete(m.grades, id)
		}
	}
	return nil
}

func (m *memGrades) DeleteByTeacher(ctx context.Context, teacherID string) error {
	for id, g := range m.grades {
		if g.TeacherID == teacherID {
			delete(m.grades, id)
		}
	}
	return nil
}

type captureMailer struct {
	messages []mail.Message
}

func (m *captureMailer) Send(msg mail.Message) {
	m.messages = append(m.messages, msg)
}

// testApp wires real services over the in-memory repositories.
type testApp struct {
	users    *memUsers
	classes  *memClasses
	items    *memItems
	subjects *memSubjects
	grades   *memGrades
	mailer   *captureMailer
	local    *storage.LocalStorage
	store    *storage.AttachmentStore

	authSvc    *service.AuthService
	userSvc    *service.UserService
	classSvc   *service.ClassService
	subjectSvc *service.SubjectService
	itemSvc    *service.ItemService
	gradeSvc   *service.GradeService
	metrics    *service.MetricsService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	local, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	app := &testApp{
		users:    &memUsers{users: map[string]*models.User{}},
		classes:  &memClasses{classes: map[string]*models.Class{}},
		items:    &memItems{items: map[string]*models.Item{}},
		subjects: &memSubjects{subjects: map[string]*models.Subject{}},
		grades:   &memGrades{grades: map[string]*models.Grade{}},
		mailer:   &captureMailer{},
		local:    local,
		store:    storage.NewAttachmentStore(local, "http://files.test", zap.NewNop()),
	}

	validate := validator.New()
	logger := zap.NewNop()
	mailCfg := config.MailConfig{AppName: "2school", ContactEmail: "info@2school.com", FrontendURL: "https://2school.test"}

	app.authSvc = service.NewAuthService(app.users, validate, logger, service.AuthConfig{Secret: "secret", Expiry: time.Hour})
	app.userSvc = service.NewUserService(app.users, app.classes, app.items, app.grades, app.store, app.mailer, mailCfg, validate, logger)
	app.classSvc = service.NewClassService(app.classes, app.users, app.items, validate, logger)
	app.subjectSvc = service.NewSubjectService(app.subjects, app.users, validate, logger)
	app.itemSvc = service.NewItemService(app.items, app.classes, app.users, app.subjects, app.store, validate, logger)
	app.gradeSvc = service.NewGradeService(app.grades, app.users, app.subjects, validate, logger)
	app.metrics = service.NewMetricsService()
	return app
}

// seedClassroom registers one teacher, one student, a Math subject and a
// class 3A holding them all.
func (app *testApp) seedClassroom() {
	app.users.users["t1"] = &models.User{ID: "t1", FirstName: "Anna", LastName: "Rossi", Email: "anna@school.test", Category: models.CategoryTeacher, SubjectsID: []string{"sub1"}}
	app.users.users["s1"] = &models.User{ID: "s1", FirstName: "Marco", LastName: "Verdi", Email: "marco@school.test", Category: models.CategoryStudent}
	app.users.users["a1"] = &models.User{ID: "a1", FirstName: "Ada", LastName: "Admin", Email: "ada@school.test", Category: models.CategoryAdmin}
	app.subjects.subjects["sub1"] = &models.Subject{ID: "sub1", Name: "Math"}
	app.classes.classes["c1"] = &models.Class{ID: "c1", Section: "A", GradeOfClass: 3, TeachersID: []string{"t1"}, StudentsID: []string{"s1"}}
}

func (app *testApp) storedFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	if err := app.local.Walk(func(rel string) error {
		files = append(files, rel)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return files
}

func jsonContext(t *testing.T, w *httptest.ResponseRecorder, method, target, body string, claims *models.JWTClaims) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}
	return body
}
