package user

import (
	"time"

	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/degree"
)

// Permissions are ordered: every level is allowed what the levels below it are.
type Permissions string

const (
	PermStudent Permissions = "student"
	PermAdmin   Permissions = "admin"
	PermOwner   Permissions = "owner"
)

var permissionRanks = map[Permissions]int{
	PermStudent: 1,
	PermAdmin:   2,
	PermOwner:   3,
}

func (p Permissions) Valid() bool {
	_, ok := permissionRanks[p]
	return ok
}

// Allows reports whether p grants access to routes requiring the given permissions.
func (p Permissions) Allows(required Permissions) bool {
	return permissionRanks[p] >= permissionRanks[required]
}

type (
	Details struct {
		Catalog      *catalog.DisplayCatalog `json:"catalog"`
		DegreeStatus degree.Status           `json:"degree_status"`
		Modified     bool                    `json:"modified"` // changed since the last computation
	}

	Settings struct {
		DarkMode bool `json:"dark_mode"`
	}

	// User is identified by the subject of its identity token.
	User struct {
		ID          string      `json:"_id"`
		Permissions Permissions `json:"permissions"`
		Details     Details     `json:"details"`
		Settings    Settings    `json:"settings"`
		CreatedAt   time.Time   `json:"created_at"` // UTC
		UpdatedAt   time.Time   `json:"updated_at"` // UTC
	}
)

func (u User) HasCatalog() bool {
	return u.Details.Catalog != nil
}

func (u User) HasCourses() bool {
	return u.Details.DegreeStatus.HasCourses()
}

func newUser(sub string) User {
	now := time.Now().UTC()
	return User{
		ID:          sub,
		Permissions: PermStudent,
		Details: Details{
			DegreeStatus: degree.Status{
				CourseStatuses:         []course.Status{},
				CourseBankRequirements: []degree.Requirement{},
				OverflowMsgs:           []string{},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
