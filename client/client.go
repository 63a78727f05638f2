package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/user"
)

// ErrUnauthorized means the token was rejected and the user must log in again.
var ErrUnauthorized = errors.New("unauthorized: log in again")

// APIError is any non-2xx response other than 401.
type APIError struct {
	StatusCode int
	// Message is the "error" value of the body, or the raw body.
	Message string
	// Fields holds per-field validation errors.
	Fields map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for fld, msg := range e.Fields {
			parts = append(parts, fld+": "+msg)
		}
		return fmt.Sprintf("api error %d: %s", e.StatusCode, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API at baseURL authenticating with the bearer token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(baseURL, "baseURL"),
		vala.StringNotEmpty(token, "token"),
	).Check(); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing base URL")
	}
	c := &Client{
		baseURL: u,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Token() string {
	return c.token
}

// GetUserState logs in and returns the stored user.
func (c *Client) GetUserState(ctx context.Context) (user.User, error) {
	var usr user.User
	err := c.do(ctx, http.MethodGet, "/students/login", nil, nil, &usr)
	return usr, err
}

func (c *Client) GetCatalogs(ctx context.Context) ([]catalog.DisplayCatalog, error) {
	var cats []catalog.DisplayCatalog
	err := c.do(ctx, http.MethodGet, "/students/catalogs", nil, nil, &cats)
	return cats, err
}

// UpdateCatalog selects the student's catalog.
func (c *Client) UpdateCatalog(ctx context.Context, catalogID string) (user.User, error) {
	var usr user.User
	err := c.do(ctx, http.MethodPut, "/students/catalog", nil, map[string]string{"catalog_id": catalogID}, &usr)
	return usr, err
}

func (c *Client) AddCourses(ctx context.Context, statuses []course.Status) (user.User, error) {
	var usr user.User
	err := c.do(ctx, http.MethodPost, "/students/courses", nil, statuses, &usr)
	return usr, err
}

// ComputeDegreeStatus runs the degree evaluation and returns the updated user.
func (c *Client) ComputeDegreeStatus(ctx context.Context) (user.User, error) {
	var usr user.User
	err := c.do(ctx, http.MethodGet, "/students/degree-status", nil, nil, &usr)
	return usr, err
}

func (c *Client) UpdateSettings(ctx context.Context, settings user.Settings) (user.User, error) {
	var usr user.User
	err := c.do(ctx, http.MethodPut, "/students/settings", nil, settings, &usr)
	return usr, err
}

func (c *Client) UpdateDetails(ctx context.Context, details user.Details) (user.User, error) {
	var usr user.User
	err := c.do(ctx, http.MethodPut, "/students/details", nil, details, &usr)
	return usr, err
}

func (c *Client) SearchCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	q := make(url.Values)
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}
	if filter.Number != "" {
		q.Set("number", filter.Number)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	var courses []course.Course
	err := c.do(ctx, http.MethodGet, "/students/courses", q, nil, &courses)
	return courses, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return newAPIError(res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s", method, path)
	}
	return nil
}

func newAPIError(res *http.Response) *APIError {
	apiErr := &APIError{StatusCode: res.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	var fields map[string]string
	if err := json.Unmarshal(b, &fields); err == nil {
		if msg, ok := fields["error"]; ok && len(fields) == 1 {
			apiErr.Message = msg
		} else {
			apiErr.Fields = fields
		}
		return apiErr
	}
	var msg string
	if err := json.Unmarshal(b, &msg); err == nil {
		apiErr.Message = msg
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(b))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(res.StatusCode)
	}
	return apiErr
}

// IsUnauthorized reports whether err requires the user to log in again.
func IsUnauthorized(err error) bool {
	return errors.Cause(err) == ErrUnauthorized
}
