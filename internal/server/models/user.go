package models

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/capacitanet/internal/common"
)

// User is the user record, keyed by Username. Password holds the bcrypt hash.
type User struct {
	Username  string           `json:"username"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Password  string           `json:"password"`
	Active    bool             `json:"active"`
	Courses   []CourseSnapshot `json:"courses"`
	Badges    []string         `json:"badges"`

	// Version is the store version the record was read at.
	Version int64 `json:"-"`
}

// Normalize replaces nil collections with empty ones so they serialize as [].
func (u *User) Normalize() {
	if u.Courses == nil {
		u.Courses = []CourseSnapshot{}
	}
	if u.Badges == nil {
		u.Badges = []string{}
	}
}

// Masked returns a copy of u safe to hand to callers: the password is masked
// and resource storage keys are dropped. u itself is left untouched.
func (u User) Masked() User {
	u.Password = common.MaskedPassword
	courses := make([]CourseSnapshot, len(u.Courses))
	for i, c := range u.Courses {
		c.Tags = slices.Clone(c.Tags)
		c.Resources = slices.Clone(c.Resources)
		for j := range c.Resources {
			c.Resources[j].StorageKey = ""
		}
		courses[i] = c
	}
	u.Courses = courses
	return u
}

// Enrollment returns the snapshot of courseID in the user's list, or nil.
func (u *User) Enrollment(courseID string) *CourseSnapshot {
	for i := range u.Courses {
		if u.Courses[i].CourseID == courseID {
			return &u.Courses[i]
		}
	}
	return nil
}

// CanonicalUsername is the form usernames are stored, keyed and compared in.
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
