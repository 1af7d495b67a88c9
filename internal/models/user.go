package models

import (
	"time"

	"github.com/lib/pq"
)

// Category is the numeric role discriminant embedded in issued tokens.
// The values are wire-level constants shared with the browser client.
type Category int

const (
	CategoryUnknown Category = 0
	CategoryTeacher Category = 345
	CategoryStudent Category = 589
	CategoryAdmin   Category = 118
)

// Valid reports whether the category is one of the three known roles.
func (c Category) Valid() bool {
	switch c {
	case CategoryTeacher, CategoryStudent, CategoryAdmin:
		return true
	}
	return false
}

func (c Category) String() string {
	switch c {
	case CategoryTeacher:
		return "teacher"
	case CategoryStudent:
		return "student"
	case CategoryAdmin:
		return "admin"
	}
	return "unknown"
}

// User is the unified identity record. Teachers, students and admins live in
// separate collections; Category records which one a row was loaded from and
// is always set explicitly by the repository, never inferred from the shape
// of the record.
type User struct {
	ID         string         `db:"id" json:"id"`
	FirstName  string         `db:"first_name" json:"firstName"`
	LastName   string         `db:"last_name" json:"lastName"`
	Email      string         `db:"email" json:"email"`
	PswHash    string         `db:"psw_hash" json:"-"`
	Avatar     string         `db:"avatar" json:"avatar"`
	SubjectsID pq.StringArray `db:"subjects_id" json:"subjectsId,omitempty"`
	Category   Category       `db:"-" json:"userCategory"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name for display and mail salutations.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// TeachesSubject reports whether the subject is in the teacher's subject set.
func (u *User) TeachesSubject(subjectID string) bool {
	for _, id := range u.SubjectsID {
		if id == subjectID {
			return true
		}
	}
	return false
}

// UserInfo is the public profile projection returned by getUser.
type UserInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
}

// Info returns the public projection of the user.
func (u *User) Info() UserInfo {
	return UserInfo{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Avatar:    u.Avatar,
	}
}
