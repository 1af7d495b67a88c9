package models

// SignupRequest creates a new teacher, student or admin account.
type SignupRequest struct {
	FirstName    string   `json:"firstName" validate:"required"`
	LastName     string   `json:"lastName" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	UserCategory Category `json:"userCategory" validate:"required"`
	Avatar       string   `json:"avatar"`
}

// ModifyUserRequest is a partial profile update. Nil fields are untouched.
type ModifyUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	Avatar    *string `json:"avatar"`
}

// Empty reports whether the update carries no fields at all.
func (r ModifyUserRequest) Empty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil && r.Password == nil && r.Avatar == nil
}

// CreateClassRequest registers a new classroom.
type CreateClassRequest struct {
	Section      string `json:"section" validate:"required"`
	GradeOfClass int    `json:"gradeOfClass" validate:"required,min=1,max=13"`
	Logo         string `json:"logo"`
}

// AddUserToClassRequest places an existing user into a classroom roster.
type AddUserToClassRequest struct {
	UserID  string `json:"userId" validate:"required"`
	ClassID string `json:"classId" validate:"required"`
}

// CreateSubjectRequest registers a new subject.
type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required"`
}

// AddSubjectToTeacherRequest assigns a subject to a teacher.
type AddSubjectToTeacherRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
}

// CreateHomeworkRequest publishes homework to a classroom. The attachment
// travels separately as a multipart file.
type CreateHomeworkRequest struct {
	Content   string `json:"content" form:"content"`
	ClassID   string `json:"classId" form:"classId"`
	SubjectID string `json:"subjectId" form:"subjectId"`
	TeacherID string `json:"teacherId" form:"teacherId"`
}

// CreateReportRequest files a disciplinary report against a classroom,
// optionally addressed to a single student.
type CreateReportRequest struct {
	Content   string  `json:"content"`
	ClassID   string  `json:"classId"`
	TeacherID string  `json:"teacherId"`
	StudentID *string `json:"studentId"`
}

// ModifyItemRequest is the generic partial update for homework and
// disciplinary files. ClassID is only meaningful for homework, which must
// be addressed through the classroom that carries it.
type ModifyItemRequest struct {
	ItemType  ItemType `json:"itemType"`
	ItemID    string   `json:"itemId"`
	ClassID   string   `json:"classId"`
	Content   *string  `json:"content"`
	SubjectID *string  `json:"subjectId"`
}

// DeleteItemRequest is the generic delete for homework and disciplinary
// files.
type DeleteItemRequest struct {
	ItemType ItemType `json:"itemType"`
	ItemID   string   `json:"itemId"`
}

// AddGradeRequest records a mark for a student.
type AddGradeRequest struct {
	Value     int    `json:"value" validate:"required,min=2,max=10"`
	StudentID string `json:"studentId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	TeacherID string `json:"teacherId" validate:"required"`
}
