// Package testutil provides shared helpers for billing backend tests:
// sqlmock-backed databases, gin test contexts and polling assertions.
package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB pairs a gorm handle with the sqlmock controlling it.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens a gorm connection over sqlmock using the postgres
// dialect. The caller closes it when done.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// Close releases the underlying mock connection.
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet fails the test if any declared expectation was not
// exercised.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// TestContext bundles a gin context with its response recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext builds a context preloaded with a GET / request.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()
	return NewTestContextWithRequest(t, http.MethodGet, "/", nil)
}

// NewTestContextWithRequest builds a context around the given request, or
// around a bodyless method/path request when req is nil.
func NewTestContextWithRequest(t *testing.T, method, path string, req *http.Request) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	if req == nil {
		req = httptest.NewRequest(method, path, nil)
	}
	c.Request = req

	return &TestContext{Context: c, Recorder: w, Engine: engine}
}

// SetRequestID stores a request ID the way the RequestID middleware does.
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set("X-Request-ID", id)
}

// SetUserID sets the calling user header on the request.
func (tc *TestContext) SetUserID(id string) {
	tc.SetHeader("X-User-ID", id)
}

// SetHeader sets a header on the request.
func (tc *TestContext) SetHeader(key, value string) {
	tc.Context.Request.Header.Set(key, value)
}

// ResponseBody returns the recorded body bytes.
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the recorded status code.
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID derives a reproducible UUID from a seed string, so
// fixtures can reference stable IDs across runs.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// NewRandomUUID generates a fresh random UUID.
func NewRandomUUID() uuid.UUID {
	return uuid.New()
}

// TestUserID is the user identifier fixtures default to.
func TestUserID() string {
	return "test-user"
}

// ContextWithTimeout returns a deadline-bound context for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}

// ContextWithCancel returns a cancellable context for tests.
func ContextWithCancel(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithCancel(context.Background())
}

// pollUntil runs condition every interval until it returns true or the
// timeout elapses.
func pollUntil(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// AssertEventually polls condition and fails the test when it never
// becomes true within timeout.
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !pollUntil(condition, timeout, interval) {
		t.Fatalf("Condition not met within %v: %v", timeout, msgAndArgs)
	}
}

// RequireEventually is AssertEventually reported through require.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !pollUntil(condition, timeout, interval) {
		require.Fail(t, "Condition not met within timeout", msgAndArgs...)
	}
}

// AssertNever fails the test if condition becomes true at any point
// during the observation window.
func AssertNever(t *testing.T, condition func() bool, duration, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if pollUntil(condition, duration, interval) {
		t.Fatalf("Condition unexpectedly became true: %v", msgAndArgs)
	}
}
