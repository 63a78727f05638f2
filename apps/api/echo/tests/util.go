package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/zap"

	. "github.com/sogrim/sogrim/apps/api/echo"
	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/degree"
	"github.com/sogrim/sogrim/core/user"
	logsvc "github.com/sogrim/sogrim/services/logger"
	sqlxrepos "github.com/sogrim/sogrim/storage/database/sqlx"
	testutil "github.com/sogrim/sogrim/tests"
)

const ownerSub = "owner-sub"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type env struct {
	conf        *core.Config
	app         *Server
	usrRepo     user.Repository
	catalogRepo catalog.Repository
	courseRepo  course.Repository
}

func setup(t *testing.T) env {
	conf := core.NewTestConfig()
	conf.OwnerSubjects = []string{ownerSub}

	// set up DB & repos
	db := testutil.PrepareDB(t)
	e := env{
		conf:        conf,
		usrRepo:     sqlxrepos.NewUserRepository(db),
		catalogRepo: sqlxrepos.NewCatalogRepository(db),
		courseRepo:  sqlxrepos.NewCourseRepository(db),
	}

	// set up services
	catalogSvc := catalog.NewService(e.catalogRepo)
	courseSvc := course.NewService(e.courseRepo)
	degreeSvc := degree.NewService(catalogSvc, courseSvc)
	usrSvc := user.NewService(e.usrRepo, catalogSvc, degreeSvc)

	// set up server
	app, err := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logsvc.NewRollbarLogger(zap.NewNop(), conf),
		UserSvc:    usrSvc,
		CatalogSvc: catalogSvc,
		CourseSvc:  courseSvc,
		DegreeSvc:  degreeSvc,
	})
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	e.app = app
	return e
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do runs an authenticated request and decodes a 200 response into out.
func do(t *testing.T, e env, method, path, token string, in, out interface{}) int {
	t.Helper()
	var body []byte
	if in != nil {
		body = marshalObj(t, in)
	}
	req, rec := newAuthRequest(method, path, token, body)
	e.app.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
		}
	}
	return rec.Code
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, e env, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			e.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
