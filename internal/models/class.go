package models

import (
	"time"

	"github.com/lib/pq"
)

// Class is the aggregation root for membership and item back-references.
// The four reference sets mirror the document-style arrays of the legacy
// schema and must stay consistent with the referenced entities' existence.
type Class struct {
	ID                 string         `db:"id" json:"id"`
	Section            string         `db:"section" json:"section"`
	GradeOfClass       int            `db:"grade_of_class" json:"gradeOfClass"`
	Logo               string         `db:"logo" json:"logo"`
	TeachersID         pq.StringArray `db:"teachers_id" json:"teachersId"`
	StudentsID         pq.StringArray `db:"students_id" json:"studentsId"`
	HomeworkID         pq.StringArray `db:"homework_id" json:"homeworkId"`
	DisciplinaryFileID pq.StringArray `db:"disciplinary_file_id" json:"disciplinaryFileId"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasTeacher reports whether the teacher belongs to the class.
func (c *Class) HasTeacher(teacherID string) bool {
	return contains(c.TeachersID, teacherID)
}

// HasStudent reports whether the student belongs to the class.
func (c *Class) HasStudent(studentID string) bool {
	return contains(c.StudentsID, studentID)
}

// HasHomework reports whether the homework item is referenced by the class.
func (c *Class) HasHomework(homeworkID string) bool {
	return contains(c.HomeworkID, homeworkID)
}

// HasReport reports whether the disciplinary file is referenced by the class.
func (c *Class) HasReport(reportID string) bool {
	return contains(c.DisciplinaryFileID, reportID)
}

func contains(set pq.StringArray, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// ClassSummary is the per-user listing projection returned by getClasses.
type ClassSummary struct {
	ID           string `json:"id"`
	Section      string `json:"section"`
	GradeOfClass int    `json:"gradeOfClass"`
	Logo         string `json:"logo"`
	Teachers     []User `json:"teachers,omitempty"`
}

// ClassDetail is the fully resolved view returned by getClass: every
// reference set expanded into the records it points at.
type ClassDetail struct {
	ID                string             `json:"id"`
	Section           string             `json:"section"`
	GradeOfClass      int                `json:"gradeOfClass"`
	Logo              string             `json:"logo"`
	Teachers          []User             `json:"teachersId"`
	Students          []User             `json:"studentsId"`
	Homework          []HomeworkView     `json:"homeworkId"`
	DisciplinaryFiles []DisciplinaryView `json:"disciplinaryFileId"`
}
