package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/auth"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/user"
	"github.com/sogrim/sogrim/storage/database"
)

// PrepareDB opens a migrated in-memory sqlite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(core.NewTestConfig())
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, sub string, perms user.Permissions, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:          sub,
		Permissions: perms,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	ctx := context.Background()
	if err := repo.CreateUserIfNotExist(ctx, usr); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if err := repo.SetPermissions(ctx, sub, perms); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.GetUser(ctx, sub)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourses(t *testing.T, repo course.Repository, courses ...course.Course) {
	t.Helper()
	if err := repo.UpsertCourses(context.Background(), courses...); err != nil {
		t.Fatalf("CreateCourses() failed: %v", err)
	}
}

func CreateCatalog(t *testing.T, repo catalog.Repository, cat catalog.Catalog) catalog.Catalog {
	t.Helper()
	if err := repo.UpsertCatalog(context.Background(), cat); err != nil {
		t.Fatalf("CreateCatalog() failed: %v", err)
	}
	return cat
}

// Token signs a bearer token for sub with the test config secret.
func Token(t *testing.T, conf *core.Config, sub string) string {
	t.Helper()
	token, err := auth.Sign(auth.NewClaims(sub, "Test User", sub+"@campus.test", conf.Server.JWTExpirationDelta), []byte(conf.SecretKey))
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}

// SampleCatalog is a small catalog: two mandatory courses overflowing into a free choice bank.
func SampleCatalog() catalog.Catalog {
	return catalog.Catalog{
		ID:          "cs-3",
		Name:        "Computer Science 3 years",
		Description: "general track",
		TotalCredit: 10,
		Faculty:     "computer science",
		CourseBanks: []catalog.CourseBank{
			{Name: "mandatory", Rule: catalog.Rule{Kind: catalog.RuleAll}, Credit: core.Float64Ptr(8.5)},
			{Name: "free choice", Rule: catalog.Rule{Kind: catalog.RuleFreeChoice}, Credit: core.Float64Ptr(1.5)},
		},
		CreditOverflows: []catalog.CreditOverflow{{From: "mandatory", To: "free choice"}},
		CourseToBank:    map[string]string{"104031": "mandatory", "234111": "mandatory"},
	}
}

func SampleCourses() []course.Course {
	return []course.Course{
		{ID: "104031", Name: "Calculus 1M", Credit: 5.5},
		{ID: "234111", Name: "Introduction to Computer Science", Credit: 3},
		{ID: "394645", Name: "Basketball", Credit: 1},
		{ID: "324057", Name: "Philosophy of Science", Credit: 2},
	}
}
