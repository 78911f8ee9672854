// api/controller/policy_controller_test.go
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

func setupPolicyRouter(svc *mock.MockPolicyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	controller.NewPolicyController(svc).RegisterRoutes(api)
	return r
}

func samplePolicy() model.Policy {
	return model.Policy{
		ID:           "pol-1",
		Type:         model.PolicyTypeDenyList,
		Name:         "block-drops",
		Scope:        model.ScopeCredential,
		CredentialID: "cred-1",
		Config:       map[string]interface{}{"operations": []interface{}{"drop_table"}},
		Priority:     90,
		Active:       true,
	}
}

func TestCreatePolicy(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	policy := samplePolicy()
	svc.On("CreatePolicy", testify_mock.Anything, testify_mock.AnythingOfType("model.Policy")).Return(&policy, nil)

	body, _ := json.Marshal(policy)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/policies", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got model.Policy
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "pol-1", got.ID)
	svc.AssertExpectations(t)
}

func TestCreatePolicyConflict(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	svc.On("CreatePolicy", testify_mock.Anything, testify_mock.AnythingOfType("model.Policy")).
		Return(nil, warden_errors.ErrPolicyConflict)

	body, _ := json.Marshal(samplePolicy())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/policies", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreatePolicyInvalidBody(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/policies", bytes.NewReader([]byte("{not json")))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreatePolicy")
}

func TestGetPolicyNotFound(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	svc.On("GetPolicy", testify_mock.Anything, "missing").Return(nil, warden_errors.ErrPolicyNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/policies/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePolicyUsesPathID(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	policy := samplePolicy()
	svc.On("UpdatePolicy", testify_mock.Anything, testify_mock.MatchedBy(func(p model.Policy) bool {
		return p.ID == "pol-1"
	})).Return(&policy, nil)

	body, _ := json.Marshal(model.Policy{Name: "block-drops", Type: model.PolicyTypeDenyList, Scope: model.ScopeCredential, CredentialID: "cred-1", Config: map[string]interface{}{}})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/policies/pol-1", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDeletePolicy(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	svc.On("DeletePolicy", testify_mock.Anything, "pol-1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/policies/pol-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListPoliciesDefaultPagination(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	policy := samplePolicy()
	svc.On("ListPolicies", testify_mock.Anything, 10, 0).Return([]*model.Policy{&policy}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/policies", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []*model.Policy
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	svc.AssertExpectations(t)
}

func TestSearchPolicies(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	policy := samplePolicy()
	svc.On("SearchPolicies", testify_mock.Anything, testify_mock.MatchedBy(func(c model.PolicySearchCriteria) bool {
		return c.CredentialID == "cred-1" && c.Type == model.PolicyTypeDenyList
	})).Return([]*model.Policy{&policy}, nil)

	body, _ := json.Marshal(model.PolicySearchCriteria{CredentialID: "cred-1", Type: model.PolicyTypeDenyList})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/policies/search", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestBulkCreatePolicies(t *testing.T) {
	svc := new(mock.MockPolicyService)
	r := setupPolicyRouter(svc)

	svc.On("BulkCreatePolicies", testify_mock.Anything, testify_mock.AnythingOfType("[]model.Policy")).
		Return([]string{"pol-1", "pol-2"}, nil)

	body, _ := json.Marshal([]model.Policy{samplePolicy(), samplePolicy()})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/policies/bulk", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got map[string][]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got["policy_ids"], 2)
}
