package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"todoapp/internal/identity"
	"todoapp/internal/middleware"
	"todoapp/internal/model"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context, req service.ListTasksRequest) (service.ListTasksResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.ListTasksResult), args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, task *model.Task, callerID string) (bool, error) {
	args := m.Called(ctx, task, callerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, id uint, callerID string, isAdmin bool) (*model.Task, error) {
	args := m.Called(ctx, id, callerID, isAdmin)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskService) Edit(ctx context.Context, id uint, fields service.TaskFields, callerID string, isAdmin bool) (bool, error) {
	args := m.Called(ctx, id, fields, callerID, isAdmin)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, id uint, callerID string, isAdmin bool) (bool, error) {
	args := m.Called(ctx, id, callerID, isAdmin)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskService) ToggleComplete(ctx context.Context, id uint, callerID string, isAdmin bool) (bool, error) {
	args := m.Called(ctx, id, callerID, isAdmin)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskService) OwnedCount(ctx context.Context, callerID string) (int64, error) {
	args := m.Called(ctx, callerID)
	return args.Get(0).(int64), args.Error(1)
}

// withPrincipal stands in for JWTAuthMiddleware.
func withPrincipal(claims identity.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, claims.UserID)
		c.Set(middleware.PrincipalKey, claims)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body["error"]
}
