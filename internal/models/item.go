package models

import "time"

// ItemType tags the two polymorphic record kinds served by the generic
// modifyItem/deleteItem routes.
type ItemType string

const (
	ItemTypeHomework         ItemType = "homework"
	ItemTypeDisciplinaryFile ItemType = "disciplinaryFile"
)

// Valid reports whether the tag names a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeHomework || t == ItemTypeDisciplinaryFile
}

// Item is the shared shape loaded for generic item operations. Attachment
// and SubjectID are only populated for homework; StudentID only for
// disciplinary files (nil means the report addresses the whole class).
type Item struct {
	ID         string    `db:"id" json:"id"`
	Type       ItemType  `db:"-" json:"itemType"`
	Content    string    `db:"content" json:"content"`
	Attachment string    `db:"attachment" json:"attachment,omitempty"`
	TeacherID  string    `db:"teacher_id" json:"teacherId"`
	SubjectID  string    `db:"subject_id" json:"subjectId,omitempty"`
	StudentID  *string   `db:"student_id" json:"studentId,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// Homework is a class assignment authored by a teacher for a subject.
type Homework struct {
	ID         string    `db:"id" json:"id"`
	Content    string    `db:"content" json:"content"`
	Attachment string    `db:"attachment" json:"attachment,omitempty"`
	TeacherID  string    `db:"teacher_id" json:"teacherId"`
	SubjectID  string    `db:"subject_id" json:"subjectId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// DisciplinaryFile is a report authored by a teacher, optionally addressed
// to a single student; a nil StudentID addresses the whole class.
type DisciplinaryFile struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	TeacherID string    `db:"teacher_id" json:"teacherId"`
	StudentID *string   `db:"student_id" json:"studentId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// HomeworkView is the listing projection with author and subject resolved.
type HomeworkView struct {
	ID          string    `db:"id" json:"id"`
	Content     string    `db:"content" json:"content"`
	Attachment  string    `db:"attachment" json:"attachment,omitempty"`
	TeacherID   string    `db:"teacher_id" json:"teacherId"`
	SubjectID   string    `db:"subject_id" json:"subjectId"`
	SubjectName string    `db:"subject_name" json:"subjectName"`
	TeacherName string    `db:"teacher_name" json:"teacherName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// DisciplinaryView is the listing projection for reports.
type DisciplinaryView struct {
	ID          string    `db:"id" json:"id"`
	Content     string    `db:"content" json:"content"`
	TeacherID   string    `db:"teacher_id" json:"teacherId"`
	StudentID   *string   `db:"student_id" json:"studentId,omitempty"`
	TeacherName string    `db:"teacher_name" json:"teacherName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
