package models

import "time"

// Grade records a numeric mark (2-10 inclusive) given by a teacher to a
// student for a subject.
type Grade struct {
	ID        string    `db:"id" json:"id"`
	Value     int       `db:"value" json:"value"`
	TeacherID string    `db:"teacher_id" json:"teacherId"`
	StudentID string    `db:"student_id" json:"studentId"`
	SubjectID string    `db:"subject_id" json:"subjectId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// GradeView resolves the subject and teacher names for listings.
type GradeView struct {
	ID          string    `db:"id" json:"id"`
	Value       int       `db:"value" json:"value"`
	SubjectID   string    `db:"subject_id" json:"subjectId"`
	SubjectName string    `db:"subject_name" json:"subjectName"`
	TeacherName string    `db:"teacher_name" json:"teacherName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
