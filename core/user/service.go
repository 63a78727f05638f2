package user

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/degree"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("user")
	errNoCatalog         = errors.New("select a catalog before computing the degree status")
	errUnknownCatalog    = errors.New("catalog does not exist")
	errInvalidCourses    = errors.New("invalid course statuses")
	errInvalidPermission = errors.New("invalid permissions")
)

// ComputeTimeout bounds a shared degree status computation.
const ComputeTimeout = time.Minute

type (
	Repository interface {
		GetUser(ctx context.Context, id string) (User, error)
		// CreateUserIfNotExist leaves an existing user with the same ID untouched.
		CreateUserIfNotExist(ctx context.Context, usr User) error
		UpdateUser(ctx context.Context, usr User) error
		SetPermissions(ctx context.Context, id string, perms Permissions) error
	}

	CatalogSource interface {
		GetByID(ctx context.Context, id string) (catalog.Catalog, error)
	}

	Evaluator interface {
		Evaluate(ctx context.Context, catalogID string, st *degree.Status) error
	}

	Service struct {
		repo      Repository
		catalogs  CatalogSource
		evaluator Evaluator
		computing singleflight.Group
		joined    func() // called once the caller is attached to a computation
	}
)

func NewService(repo Repository, catalogs CatalogSource, evaluator Evaluator) *Service {
	return &Service{repo: repo, catalogs: catalogs, evaluator: evaluator, joined: func() {}}
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, id)
}

// Login returns the user identified by sub, creating it on first login.
func (svc *Service) Login(ctx context.Context, sub string) (User, error) {
	sub = core.CleanString(sub)
	if err := svc.repo.CreateUserIfNotExist(ctx, newUser(sub)); err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	return svc.repo.GetUser(ctx, sub)
}

// SelectCatalog sets the student's catalog. The previous evaluation no longer applies and is cleared,
// imported courses are kept.
func (svc *Service) SelectCatalog(ctx context.Context, sub, catalogID string) (User, error) {
	cat, err := svc.catalogs.GetByID(ctx, catalogID)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, core.NewValidationError(errUnknownCatalog, core.FieldError{Field: "catalog_id", Error: errUnknownCatalog.Error()})
		}
		return User{}, errors.Wrap(err, "getting catalog")
	}
	return svc.update(ctx, sub, func(usr *User) error {
		display := cat.Display()
		usr.Details.Catalog = &display
		st := &usr.Details.DegreeStatus
		st.CourseBankRequirements = []degree.Requirement{}
		st.OverflowMsgs = []string{}
		st.TotalCredit = 0
		usr.Details.Modified = true
		return nil
	})
}

// ImportCourses replaces the student's course statuses. Missing states are derived from the grades.
func (svc *Service) ImportCourses(ctx context.Context, sub string, statuses []course.Status) (User, error) {
	var flds []core.FieldError
	for i := range statuses {
		statuses[i].Normalize()
		if err := core.Validate.Struct(statuses[i].Course); err != nil {
			flds = append(flds, core.FieldError{Field: "course_statuses", Error: statuses[i].Course.ID + ": " + err.Error()})
		}
	}
	if len(flds) > 0 {
		return User{}, core.NewValidationError(errInvalidCourses, flds...)
	}

	return svc.update(ctx, sub, func(usr *User) error {
		usr.Details.DegreeStatus = degree.Status{
			CourseStatuses:         statuses,
			CourseBankRequirements: []degree.Requirement{},
			OverflowMsgs:           []string{},
		}
		usr.Details.Modified = false
		return nil
	})
}

// ComputeDegreeStatus evaluates the student's courses against the selected catalog and stores the result.
// Concurrent requests for the same student share one computation, detached from the caller that started it.
// Each caller returns when its own ctx is done.
func (svc *Service) ComputeDegreeStatus(ctx context.Context, sub string) (User, error) {
	shared := context.WithoutCancel(ctx)
	ch := svc.computing.DoChan(sub, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(shared, ComputeTimeout)
		defer cancel()
		return svc.update(ctx, sub, func(usr *User) error {
			if !usr.HasCatalog() {
				return core.NewValidationError(errNoCatalog, core.FieldError{Field: "catalog", Error: errNoCatalog.Error()})
			}
			if err := svc.evaluator.Evaluate(ctx, usr.Details.Catalog.ID, &usr.Details.DegreeStatus); err != nil {
				return errors.Wrap(err, "computing degree status")
			}
			usr.Details.Modified = false
			return nil
		})
	})
	svc.joined()

	select {
	case <-ctx.Done():
		return User{}, errors.Wrap(ctx.Err(), "waiting for degree status")
	case res := <-ch:
		if res.Err != nil {
			return User{}, res.Err
		}
		return res.Val.(User), nil
	}
}

func (svc *Service) UpdateDetails(ctx context.Context, sub string, details Details) (User, error) {
	return svc.update(ctx, sub, func(usr *User) error {
		if details.DegreeStatus.CourseStatuses == nil {
			details.DegreeStatus.CourseStatuses = []course.Status{}
		}
		usr.Details = details
		return nil
	})
}

func (svc *Service) UpdateSettings(ctx context.Context, sub string, settings Settings) (User, error) {
	return svc.update(ctx, sub, func(usr *User) error {
		usr.Settings = settings
		return nil
	})
}

// SetPermissions creates the user if needed and grants it perms.
func (svc *Service) SetPermissions(ctx context.Context, sub string, perms Permissions) error {
	if !perms.Valid() {
		return core.NewValidationError(errInvalidPermission, core.FieldError{Field: "permissions", Error: string(perms)})
	}
	sub = core.CleanString(sub)
	if err := svc.repo.CreateUserIfNotExist(ctx, newUser(sub)); err != nil {
		return errors.Wrap(err, "creating user")
	}
	return svc.repo.SetPermissions(ctx, sub, perms)
}

func (svc *Service) update(ctx context.Context, sub string, apply func(usr *User) error) (User, error) {
	usr, err := svc.repo.GetUser(ctx, sub)
	if err != nil {
		return User{}, err
	}
	if err := apply(&usr); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	if err := svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}
