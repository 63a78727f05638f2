package course

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// MaxSearchResults caps the number of courses returned by Search.
const MaxSearchResults = 20

type (
	Repository interface {
		GetCourse(ctx context.Context, id string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		// FilterCourses does a case-insensitive substring match on the name and a prefix match on the ID.
		FilterCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		UpsertCourses(ctx context.Context, courses ...Course) error
		DeleteCourse(ctx context.Context, id string) error
		QueryMalags(ctx context.Context) ([]string, error)
		SetMalags(ctx context.Context, ids []string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

// QueryAllAsMap returns every course indexed by ID.
func (svc *Service) QueryAllAsMap(ctx context.Context) (map[string]Course, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	return ToMap(courses), nil
}

func (svc *Service) Malags(ctx context.Context) ([]string, error) {
	return svc.repo.QueryMalags(ctx)
}

func (svc *Service) SetMalags(ctx context.Context, ids []string) error {
	return svc.repo.SetMalags(ctx, ids)
}

func (svc *Service) Save(ctx context.Context, courses ...Course) error {
	for i := range courses {
		courses[i].ID = strings.TrimSpace(courses[i].ID)
		courses[i].Name = strings.TrimSpace(courses[i].Name)
	}
	return svc.repo.UpsertCourses(ctx, courses...)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Search filters courses by name or number.
// Name matches are ranked by their similarity to the query.
func (svc *Service) Search(ctx context.Context, filter QueryFilter) ([]Course, error) {
	filter.Clean()
	if filter.IsEmpty() {
		return []Course{}, nil
	}
	courses, err := svc.repo.FilterCourses(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	if filter.Name != "" {
		Rank(courses, filter.Name)
	}
	limit := MaxSearchResults
	if filter.Limit > 0 && filter.Limit < limit {
		limit = filter.Limit
	}
	if len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

// Rank sorts courses by descending name similarity to query. Ties keep the course number order.
func Rank(courses []Course, query string) {
	query = strings.ToLower(query)
	scores := make(map[string]float64, len(courses))
	for _, c := range courses {
		m := difflib.NewMatcher(strings.Split(query, ""), strings.Split(strings.ToLower(c.Name), ""))
		score := m.Ratio()
		if strings.HasPrefix(strings.ToLower(c.Name), query) {
			score++
		}
		scores[c.ID] = score
	}
	sort.SliceStable(courses, func(i, j int) bool {
		si, sj := scores[courses[i].ID], scores[courses[j].ID]
		if si != sj {
			return si > sj
		}
		return courses[i].ID < courses[j].ID
	})
}
