// api/controller/audit_controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	"github.com/open-warden/warden/api/audit"
	"github.com/open-warden/warden/api/controller"
	"github.com/open-warden/warden/api/test/mock"
)

func setupAuditRouter(svc *mock.MockAuditService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	controller.NewAuditController(svc).RegisterRoutes(api)
	return r
}

func TestQueryDecisions(t *testing.T) {
	svc := new(mock.MockAuditService)
	r := setupAuditRouter(svc)

	svc.On("QueryLogs", testify_mock.Anything, testify_mock.MatchedBy(func(q audit.AuditQuery) bool {
		return q.Action == audit.ActionProxyRequest &&
			q.ApplicationID == "app-1" &&
			q.Decision == "DENIED" &&
			q.From.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	})).Return([]audit.AuditLog{
		{Action: audit.ActionProxyRequest, ApplicationID: "app-1", Decision: "DENIED"},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet,
		"/api/v1/audit/decisions?application_id=app-1&decision=DENIED&from=2026-08-01T00:00:00Z", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestQueryDecisionsInvalidTimestamp(t *testing.T) {
	svc := new(mock.MockAuditService)
	r := setupAuditRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/audit/decisions?from=yesterday", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "QueryLogs")
}
