// api/controller/credential_controller_test.go
package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	"github.com/open-warden/warden/api/controller"
	warden_errors "github.com/open-warden/warden/api/errors"
	"github.com/open-warden/warden/api/model"
	"github.com/open-warden/warden/api/test/mock"
)

func setupCredentialRouter(svc *mock.MockCredentialService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	controller.NewCredentialController(svc).RegisterRoutes(api)
	return r
}

func TestRegisterCredential(t *testing.T) {
	svc := new(mock.MockCredentialService)
	r := setupCredentialRouter(svc)

	credential := model.Credential{
		ID:     "cred-1",
		Name:   "orders-db",
		TypeID: "postgres",
		Operations: []model.OperationRisk{
			{Operation: "select", RiskLevel: 1},
			{Operation: "drop_table", RiskLevel: 9},
		},
	}
	svc.On("RegisterCredential", testify_mock.Anything, testify_mock.AnythingOfType("model.Credential")).
		Return(&credential, nil)

	body, _ := json.Marshal(credential)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/credentials", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got model.Credential
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "cred-1", got.ID)
	assert.Len(t, got.Operations, 2)
	svc.AssertExpectations(t)
}

func TestGetCredentialNotFound(t *testing.T) {
	svc := new(mock.MockCredentialService)
	r := setupCredentialRouter(svc)

	svc.On("GetCredential", testify_mock.Anything, "missing").
		Return(nil, warden_errors.ErrCredentialNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/credentials/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCredentials(t *testing.T) {
	svc := new(mock.MockCredentialService)
	r := setupCredentialRouter(svc)

	svc.On("ListCredentials", testify_mock.Anything, 10, 0).
		Return([]*model.Credential{{ID: "cred-1", Name: "orders-db", TypeID: "postgres"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/credentials", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []*model.Credential
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestDeleteCredential(t *testing.T) {
	svc := new(mock.MockCredentialService)
	r := setupCredentialRouter(svc)

	svc.On("DeleteCredential", testify_mock.Anything, "cred-1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/credentials/cred-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
