package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogrim/sogrim/core/auth"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/user"
	testutil "github.com/sogrim/sogrim/tests"
)

func Test_home(t *testing.T) {
	e := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	e.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Sogrim API!", rec.Body.String())
}

func Test_auth(t *testing.T) {
	e := setup(t)

	expired, err := auth.Sign(auth.NewClaims("sub", "", "", -time.Minute), []byte(e.conf.SecretKey))
	require.NoError(t, err)
	forged, err := auth.Sign(auth.NewClaims("sub", "", "", time.Minute), []byte("not the secret"))
	require.NoError(t, err)
	invalidToken := marshalObj(t, httpErr{Error: "invalid or expired jwt"})

	runHTTPTests(t, e, []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/students/login",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "expired token",
			method:   http.MethodGet,
			path:     "/students/login",
			token:    expired,
			wantCode: http.StatusUnauthorized,
			wantData: invalidToken,
		},
		{
			name:     "forged token",
			method:   http.MethodGet,
			path:     "/students/catalogs",
			token:    forged,
			wantCode: http.StatusUnauthorized,
			wantData: invalidToken,
		},
		{
			name:     "garbage token",
			method:   http.MethodGet,
			path:     "/students/catalogs",
			token:    "abc.def.ghi",
			wantCode: http.StatusUnauthorized,
			wantData: invalidToken,
		},
	})
}

func Test_studentsApi_registrationFlow(t *testing.T) {
	e := setup(t)
	cat := testutil.CreateCatalog(t, e.catalogRepo, testutil.SampleCatalog())
	testutil.CreateCourses(t, e.courseRepo, testutil.SampleCourses()...)
	token := testutil.Token(t, e.conf, "student-1")

	var usr user.User
	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/login", token, nil, &usr))
	assert.Equal(t, "student-1", usr.ID)
	assert.Equal(t, user.PermStudent, usr.Permissions)
	assert.False(t, usr.HasCatalog())

	runHTTPTests(t, e, []httpTest{
		{
			name:     "list catalogs",
			method:   http.MethodGet,
			path:     "/students/catalogs",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []catalog.DisplayCatalog{cat.Display()}),
		},
		{
			name:     "compute without catalog",
			method:   http.MethodGet,
			path:     "/students/degree-status",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"catalog": "select a catalog before computing the degree status"}),
		},
		{
			name:     "select missing catalog id",
			method:   http.MethodPut,
			path:     "/students/catalog",
			body:     []byte(`{}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"catalog_id": "this field is required"}),
		},
		{
			name:     "select unknown catalog",
			method:   http.MethodPut,
			path:     "/students/catalog",
			body:     []byte(`{"catalog_id": "nope"}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"catalog_id": "catalog does not exist"}),
		},
		{
			name:     "import invalid course",
			method:   http.MethodPost,
			path:     "/students/courses",
			body:     []byte(`[{"course": {"_id": "CS-101", "name": "Bad", "credit": 1}}]`),
			token:    token,
			wantCode: http.StatusBadRequest,
		},
	})

	require.Equal(t, http.StatusOK, do(t, e, http.MethodPut, "/students/catalog", token, map[string]string{"catalog_id": cat.ID}, &usr))
	require.True(t, usr.HasCatalog())
	assert.Equal(t, cat.ID, usr.Details.Catalog.ID)
	assert.True(t, usr.Details.Modified)

	statuses := []course.Status{{
		Course:   course.Course{ID: "104031", Name: "Calculus 1M", Credit: 5.5},
		Semester: "winter_1",
		Grade:    course.NumericGrade(95),
	}}
	require.Equal(t, http.StatusOK, do(t, e, http.MethodPost, "/students/courses", token, statuses, &usr))
	require.Len(t, usr.Details.DegreeStatus.CourseStatuses, 1)
	assert.Equal(t, course.StateComplete, usr.Details.DegreeStatus.CourseStatuses[0].State)
	assert.False(t, usr.Details.Modified)

	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/degree-status", token, nil, &usr))
	st := usr.Details.DegreeStatus
	assert.Len(t, st.CourseStatuses, 2) // the missing mandatory course is added
	require.Len(t, st.CourseBankRequirements, 2)
	assert.Equal(t, "mandatory", st.CourseBankRequirements[0].CourseBankName)
	assert.Equal(t, 5.5, st.CourseBankRequirements[0].CreditCompleted)
	assert.False(t, st.CourseBankRequirements[0].Completed)
	assert.Equal(t, 5.5, st.TotalCredit)

	// the stored user matches the response
	var again user.User
	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/login", token, nil, &again))
	assert.Equal(t, usr.Details, again.Details)

	require.Equal(t, http.StatusOK, do(t, e, http.MethodPut, "/students/settings", token, user.Settings{DarkMode: true}, &usr))
	assert.True(t, usr.Settings.DarkMode)

	details := usr.Details
	details.Modified = true
	require.Equal(t, http.StatusOK, do(t, e, http.MethodPut, "/students/details", token, details, &usr))
	assert.True(t, usr.Details.Modified)
}

func Test_studentsApi_searchCourses(t *testing.T) {
	e := setup(t)
	testutil.CreateCourses(t, e.courseRepo, testutil.SampleCourses()...)
	token := testutil.Token(t, e.conf, "student-1")

	var courses []course.Course
	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/courses?name=science", token, nil, &courses))
	require.Len(t, courses, 2)
	// "Philosophy of Science" is the shorter, closer name
	assert.Equal(t, "324057", courses[0].ID)

	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/courses?number=394", token, nil, &courses))
	assert.Equal(t, []course.Course{{ID: "394645", Name: "Basketball", Credit: 1}}, courses)

	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/courses?name=science&limit=1", token, nil, &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "324057", courses[0].ID)

	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/courses", token, nil, &courses))
	assert.Empty(t, courses)

	runHTTPTests(t, e, []httpTest{
		{name: "malformed limit", method: http.MethodGet, path: "/students/courses?name=science&limit=abc", token: token, wantCode: http.StatusBadRequest},
		{name: "overflowing limit", method: http.MethodGet, path: "/students/courses?number=394&limit=99999999999999999999", token: token, wantCode: http.StatusBadRequest},
	})
}

func Test_studentsApi_concurrentCompute(t *testing.T) {
	e := setup(t)
	cat := testutil.CreateCatalog(t, e.catalogRepo, testutil.SampleCatalog())
	testutil.CreateCourses(t, e.courseRepo, testutil.SampleCourses()...)
	token := testutil.Token(t, e.conf, "student-1")

	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/login", token, nil, nil))
	require.Equal(t, http.StatusOK, do(t, e, http.MethodPut, "/students/catalog", token, map[string]string{"catalog_id": cat.ID}, nil))

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, rec := newAuthRequest(http.MethodGet, "/students/degree-status", token)
			e.app.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()
	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
}

const transcript = `גיליון ציונים
חורף 2019-2020
104031 חשבון דיפרנציאלי ואינטגרלי 1מ 5.5 95
אביב 2019-2020
234111 מבוא למדעי המחשב 3.0 *70
סוף גיליון ציונים
`

func postTranscript(t *testing.T, e env, token, text string) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/students/courses", token, []byte(text))
	req.Header.Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	e.app.ServeHTTP(rec, req)
	return rec
}

func Test_studentsApi_importTranscript(t *testing.T) {
	e := setup(t)
	cat := testutil.CreateCatalog(t, e.catalogRepo, testutil.SampleCatalog())
	testutil.CreateCourses(t, e.courseRepo, testutil.SampleCourses()...)
	token := testutil.Token(t, e.conf, "student-1")

	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/login", token, nil, nil))
	require.Equal(t, http.StatusOK, do(t, e, http.MethodPut, "/students/catalog", token, map[string]string{"catalog_id": cat.ID}, nil))

	rec := postTranscript(t, e, token, transcript)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var usr user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
	statuses := usr.Details.DegreeStatus.CourseStatuses
	require.Len(t, statuses, 2)
	assert.Equal(t, "חורף_1", statuses[0].Semester)
	assert.Equal(t, course.NumericGrade(70), statuses[1].Grade)
	assert.Equal(t, course.StateComplete, statuses[1].State)

	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/students/degree-status", token, nil, &usr))
	assert.Equal(t, 8.5, usr.Details.DegreeStatus.TotalCredit)

	rec = postTranscript(t, e, token, strings.Replace(transcript, "סוף גיליון ציונים", "", 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = postTranscript(t, e, token, "not a transcript")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
