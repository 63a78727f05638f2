package catalog

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core"
)

var (
	ErrNotFound       = core.NewNotFoundError("catalog")
	errInvalidCatalog = errors.New("invalid catalog")
)

type (
	CourseBank struct {
		Name   string   `json:"name" yaml:"name" validate:"required"`
		Rule   Rule     `json:"rule" yaml:"rule"`
		Credit *float64 `json:"credit,omitempty" yaml:"credit,omitempty" validate:"omitempty,gte=0"`
	}

	CreditOverflow struct {
		From string `json:"from" yaml:"from" validate:"required"`
		To   string `json:"to" yaml:"to" validate:"required"`
	}

	CoursesOverflow struct {
		From string `json:"from" yaml:"from" validate:"required"`
		To   string `json:"to" yaml:"to" validate:"required"`
	}

	// DisplayCatalog is the projection of a Catalog shown when picking one.
	DisplayCatalog struct {
		ID          string  `json:"_id" db:"id"`
		Name        string  `json:"name" db:"name"`
		Description string  `json:"description" db:"description"`
		TotalCredit float64 `json:"total_credit" db:"total_credit"`
		Faculty     string  `json:"faculty" db:"faculty"`
	}

	Catalog struct {
		ID                  string              `json:"_id" yaml:"id"`
		Name                string              `json:"name" yaml:"name" validate:"required"`
		Description         string              `json:"description" yaml:"description"`
		TotalCredit         float64             `json:"total_credit" yaml:"total_credit" validate:"gt=0"`
		Faculty             string              `json:"faculty" yaml:"faculty"`
		CourseBanks         []CourseBank        `json:"course_banks" yaml:"course_banks" validate:"required,dive"`
		CreditOverflows     []CreditOverflow    `json:"credit_overflows" yaml:"credit_overflows" validate:"dive"`
		CoursesOverflows    []CoursesOverflow   `json:"courses_overflows" yaml:"courses_overflows" validate:"dive"`
		CatalogReplacements map[string][]string `json:"catalog_replacements" yaml:"catalog_replacements"`
		CommonReplacements  map[string][]string `json:"common_replacements" yaml:"common_replacements"`
		CourseToBank        map[string]string   `json:"course_to_bank" yaml:"course_to_bank"`
	}
)

// NewID returns an identifier for a new catalog.
func NewID() string {
	return uuid.NewString()
}

func (c Catalog) Display() DisplayCatalog {
	return DisplayCatalog{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		TotalCredit: c.TotalCredit,
		Faculty:     c.Faculty,
	}
}

// Clone returns a deep copy; evaluation mutates CourseToBank.
func (c Catalog) Clone() Catalog {
	cp := c
	cp.CourseBanks = append([]CourseBank(nil), c.CourseBanks...)
	cp.CreditOverflows = append([]CreditOverflow(nil), c.CreditOverflows...)
	cp.CoursesOverflows = append([]CoursesOverflow(nil), c.CoursesOverflows...)
	cp.CatalogReplacements = cloneReplacements(c.CatalogReplacements)
	cp.CommonReplacements = cloneReplacements(c.CommonReplacements)
	cp.CourseToBank = make(map[string]string, len(c.CourseToBank))
	for k, v := range c.CourseToBank {
		cp.CourseToBank[k] = v
	}
	return cp
}

func cloneReplacements(m map[string][]string) map[string][]string {
	cp := make(map[string][]string, len(m))
	for k, v := range m {
		cp[k] = append([]string(nil), v...)
	}
	return cp
}

func (c Catalog) BankByName(name string) (CourseBank, bool) {
	for _, b := range c.CourseBanks {
		if b.Name == name {
			return b, true
		}
	}
	return CourseBank{}, false
}

// CoursesOfBank lists the course IDs mapped to the bank, sorted.
func (c Catalog) CoursesOfBank(name string) []string {
	ids := make([]string, 0)
	for id, bank := range c.CourseToBank {
		if bank == name {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ReplaceCourses makes the replacement count in place of the catalog course.
func (c *Catalog) ReplaceCourses(original, replacement string) {
	bank, ok := c.CourseToBank[original]
	if !ok {
		return
	}
	delete(c.CourseToBank, original)
	c.CourseToBank[replacement] = bank
}

func (c Catalog) CreditOverflowFrom(bank string) (string, bool) {
	for _, o := range c.CreditOverflows {
		if o.From == bank {
			return o.To, true
		}
	}
	return "", false
}

func (c Catalog) CoursesOverflowFrom(bank string) (string, bool) {
	for _, o := range c.CoursesOverflows {
		if o.From == bank {
			return o.To, true
		}
	}
	return "", false
}

// Validate checks the catalog structure beyond field tags: bank names are unique and every overflow
// and mapped course names an existing bank.
func (c Catalog) Validate() error {
	if err := core.Validate.Struct(c); err != nil {
		return err
	}
	var flds []core.FieldError
	names := make(map[string]bool, len(c.CourseBanks))
	for _, b := range c.CourseBanks {
		if names[b.Name] {
			flds = append(flds, core.FieldError{Field: "course_banks", Error: "duplicate bank " + b.Name})
		}
		names[b.Name] = true
		if err := b.Rule.Validate(); err != nil {
			flds = append(flds, core.FieldError{Field: "course_banks", Error: b.Name + ": " + err.Error()})
		}
	}
	for _, o := range c.CreditOverflows {
		if !names[o.From] || !names[o.To] {
			flds = append(flds, core.FieldError{Field: "credit_overflows", Error: "unknown bank in " + o.From + " -> " + o.To})
		}
	}
	for _, o := range c.CoursesOverflows {
		if !names[o.From] || !names[o.To] {
			flds = append(flds, core.FieldError{Field: "courses_overflows", Error: "unknown bank in " + o.From + " -> " + o.To})
		}
	}
	for id, bank := range c.CourseToBank {
		if !names[bank] {
			flds = append(flds, core.FieldError{Field: "course_to_bank", Error: "course " + id + " maps to unknown bank " + bank})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(errInvalidCatalog, flds...)
	}
	return nil
}
