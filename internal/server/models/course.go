package models

import (
	"slices"
	"time"
)

// Resource is a file attached to a course. StorageKey is the object key in
// the resource bucket; URL is only filled on read, with a presigned link.
type Resource struct {
	ID         string `json:"id"`
	Order      int    `json:"order"`
	Viewed     bool   `json:"viewed"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	StorageKey string `json:"storageKey,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Course is the canonical course record, keyed by CourseID.
type Course struct {
	CourseID        string     `json:"courseId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatorUsername string     `json:"creatorUsername"`
	Active          bool       `json:"active"`
	Tags            []string   `json:"tags"`
	Resources       []Resource `json:"resources"`

	// Version is the store version the record was read at.
	Version int64 `json:"-"`
}

// OwnedBy reports whether username created the course. Both sides are
// expected in canonical form.
func (c *Course) OwnedBy(username string) bool {
	return c.CreatorUsername == username
}

// Normalize replaces nil collections with empty ones so they serialize as [].
func (c *Course) Normalize() {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Resources == nil {
		c.Resources = []Resource{}
	}
}

// Snapshot returns a deep copy of the course detached from c, stamped with at.
// Later changes to c never reach the snapshot.
func (c *Course) Snapshot(at time.Time) CourseSnapshot {
	cp := *c
	cp.Tags = slices.Clone(c.Tags)
	cp.Resources = slices.Clone(c.Resources)
	cp.Version = 0
	cp.Normalize()
	return CourseSnapshot{Course: cp, SubscribedAt: at.UTC()}
}

// CourseSnapshot is the copy of a course embedded in a user's record at
// subscription time.
type CourseSnapshot struct {
	Course
	SubscribedAt time.Time `json:"subscribedAt,omitzero"`
}
