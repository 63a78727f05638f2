package echoapi

import (
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/course"
)

type (
	SelectCatalogRequest struct {
		CatalogID string `json:"catalog_id" validate:"required"`
	}

	ComputeRequest struct {
		CatalogID      string          `json:"catalog_id" validate:"required"`
		CourseStatuses []course.Status `json:"course_statuses"`
		// Transcript replaces CourseStatuses when set.
		Transcript string `json:"transcript"`
	}
)

func (r *SelectCatalogRequest) Validate() error {
	r.CatalogID = core.CleanString(r.CatalogID)
	return core.Validate.Struct(r)
}

func (r *ComputeRequest) Validate() error {
	r.CatalogID = core.CleanString(r.CatalogID)
	if err := core.Validate.Struct(r); err != nil {
		return err
	}
	if strings.TrimSpace(r.Transcript) != "" {
		statuses, err := course.ParseTranscript(r.Transcript)
		if err != nil {
			return errors.Wrap(err, "parsing transcript")
		}
		r.CourseStatuses = statuses
	}
	for i := range r.CourseStatuses {
		r.CourseStatuses[i].Normalize()
		if err := core.Validate.Struct(r.CourseStatuses[i].Course); err != nil {
			return err
		}
	}
	return nil
}

// bindCourseFilter reads the ?name=&number= search parameters.
func bindCourseFilter(ctx echo.Context) (course.QueryFilter, error) {
	var filter course.QueryFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return filter, errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	return filter, nil
}

// maxTranscriptSize bounds a plain text transcript body.
const maxTranscriptSize = 1 << 20

// bindCourseStatuses reads the courses of an import request. A text/plain body is parsed as a transcript.
func bindCourseStatuses(ctx echo.Context) ([]course.Status, error) {
	req := ctx.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMETextPlain) {
		data, err := io.ReadAll(io.LimitReader(req.Body, maxTranscriptSize))
		if err != nil {
			return nil, errors.Wrap(err, "reading transcript")
		}
		statuses, err := course.ParseTranscript(string(data))
		if err != nil {
			return nil, errors.Wrap(err, "parsing transcript")
		}
		return statuses, nil
	}

	var statuses []course.Status
	if err := ctx.Bind(&statuses); err != nil {
		return nil, errors.Wrap(err, "binding to []course.Status")
	}
	return statuses, nil
}
