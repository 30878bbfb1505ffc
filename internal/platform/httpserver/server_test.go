package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	approvalengine "weldvault/contexts/document-approval/approval-engine"
	approvalentities "weldvault/contexts/document-approval/approval-engine/domain/entities"
	approvalports "weldvault/contexts/document-approval/approval-engine/ports"
	approvalhttp "weldvault/contexts/document-approval/approval-engine/transport/http"
	accesscontrol "weldvault/contexts/identity-access/access-control"
	accessentities "weldvault/contexts/identity-access/access-control/domain/entities"
	accesshttp "weldvault/contexts/identity-access/access-control/transport/http"
	"weldvault/internal/shared/events"
)

type noopPublisher struct{}

func (noopPublisher) PublishNotification(_ context.Context, _ events.Envelope) error { return nil }

func newTestServer() (*Server, accesscontrol.Module, approvalengine.Module) {
	access := accesscontrol.NewInMemoryModule(nil)
	approval := approvalengine.NewInMemoryModule(noopPublisher{}, nil)
	server := New(access, approval, nil, "")
	return server, access, approval
}

func seedApprovalFixture(approval approvalengine.Module) {
	store := approval.Store
	for _, user := range []string{"submitter-1", "approver-1"} {
		store.SeedEmployee("company-1", approvalports.EmployeeRef{UserID: user})
	}
	store.SeedApprover("approver-1", "company-1", "wps")
	store.SeedWorkflow(approvalentities.WorkflowDefinition{
		WorkflowID:   "wf-1",
		DocumentType: "wps",
		CompanyID:    "company-1",
		Name:         "Single Review",
		Steps: []approvalentities.WorkflowStep{
			{Name: "Review", Selector: approvalentities.ApproverSelector{
				Kind: approvalentities.SelectByUser, IDs: []string{"approver-1"},
			}},
		},
		IsDefault: true,
		IsActive:  true,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path, userID string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCheckAccessEndpoint(t *testing.T) {
	server, access, _ := newTestServer()
	access.Store.SeedCompany("company-1", "owner-1")

	rr := doJSON(t, server.Handler(), http.MethodPost, "/api/access/v1/check", "owner-1", accesshttp.CheckAccessRequest{
		Resource: accesshttp.ResourceDTO{
			Kind:        "wps_records",
			ScopeKind:   "enterprise",
			OwnerID:     "someone",
			CompanyID:   "company-1",
			AccessLevel: "company",
		},
		Action: "edit",
		Scope:  accesshttp.ScopeDTO{Kind: "enterprise", CompanyID: "company-1"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp accesshttp.CheckAccessResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Allowed {
		t.Fatalf("expected company owner allowed, got %+v", resp)
	}

	rr = doJSON(t, server.Handler(), http.MethodPost, "/api/access/v1/check", "outsider", accesshttp.CheckAccessRequest{
		Resource: accesshttp.ResourceDTO{
			Kind:        "wps_records",
			ScopeKind:   "enterprise",
			OwnerID:     "someone",
			CompanyID:   "company-1",
			AccessLevel: "company",
		},
		Action: "view",
		Scope:  accesshttp.ScopeDTO{Kind: "enterprise", CompanyID: "company-1"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	resp = accesshttp.CheckAccessResponse{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Allowed || resp.Reason != string(accessentities.DenyNotAMember) {
		t.Fatalf("expected not_a_member denial, got %+v", resp)
	}
}

func TestCheckAccessEndpointRejectsBadScope(t *testing.T) {
	server, _, _ := newTestServer()

	rr := doJSON(t, server.Handler(), http.MethodPost, "/api/access/v1/check", "user-1", accesshttp.CheckAccessRequest{
		Resource: accesshttp.ResourceDTO{
			Kind:        "wps_records",
			ScopeKind:   "enterprise",
			OwnerID:     "someone",
			CompanyID:   "company-1",
			AccessLevel: "company",
		},
		Action: "view",
		Scope:  accesshttp.ScopeDTO{Kind: "enterprise"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestApprovalSubmitAndApproveEndpoints(t *testing.T) {
	server, _, approval := newTestServer()
	seedApprovalFixture(approval)

	rr := doJSON(t, server.Handler(), http.MethodPost, "/api/approvals/v1/submit", "submitter-1", approvalhttp.SubmitRequest{
		DocumentType:  "wps",
		DocumentID:    "doc-1",
		DocumentTitle: "Pipe Butt Weld",
		ActorName:     "Sam Submitter",
		Scope:         approvalhttp.ScopeDTO{Kind: "enterprise", CompanyID: "company-1"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var instance approvalhttp.InstanceDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &instance); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if instance.Status != "pending" || instance.CurrentStep != 1 {
		t.Fatalf("unexpected submitted instance: %+v", instance)
	}

	// Duplicate submit conflicts while the first instance is active.
	rr = doJSON(t, server.Handler(), http.MethodPost, "/api/approvals/v1/submit", "submitter-1", approvalhttp.SubmitRequest{
		DocumentType:  "wps",
		DocumentID:    "doc-1",
		DocumentTitle: "Pipe Butt Weld",
		Scope:         approvalhttp.ScopeDTO{Kind: "enterprise", CompanyID: "company-1"},
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server.Handler(), http.MethodPost,
		"/api/approvals/v1/instances/"+instance.InstanceID+"/approve", "approver-1",
		approvalhttp.DecisionRequest{ActorName: "Alice Approver", Comment: "ok"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var approved approvalhttp.InstanceDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &approved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if approved.Status != "approved" || approved.CompletedAt == nil {
		t.Fatalf("expected closed approved instance, got %+v", approved)
	}

	status, ok := approval.Store.DocumentStatus("wps", "doc-1")
	if !ok || status != "approved" {
		t.Fatalf("expected document status approved, got %q ok=%v", status, ok)
	}

	rr = doJSON(t, server.Handler(), http.MethodGet,
		"/api/approvals/v1/documents/wps/doc-1/active", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var active approvalhttp.ActiveInstanceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &active); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if active.Active {
		t.Fatal("expected no active instance after approval")
	}
}

func TestApprovalEndpointsRequireUserHeader(t *testing.T) {
	server, _, _ := newTestServer()

	rr := doJSON(t, server.Handler(), http.MethodPost, "/api/approvals/v1/submit", "", approvalhttp.SubmitRequest{
		DocumentType: "wps",
		DocumentID:   "doc-1",
		Scope:        approvalhttp.ScopeDTO{Kind: "enterprise", CompanyID: "company-1"},
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestApprovalRejectEndpointUnauthorizedActor(t *testing.T) {
	server, _, approval := newTestServer()
	seedApprovalFixture(approval)
	approval.Store.SeedEmployee("company-1", approvalports.EmployeeRef{UserID: "bystander-1"})

	rr := doJSON(t, server.Handler(), http.MethodPost, "/api/approvals/v1/submit", "submitter-1", approvalhttp.SubmitRequest{
		DocumentType:  "wps",
		DocumentID:    "doc-1",
		DocumentTitle: "Pipe Butt Weld",
		Scope:         approvalhttp.ScopeDTO{Kind: "enterprise", CompanyID: "company-1"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var instance approvalhttp.InstanceDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &instance); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = doJSON(t, server.Handler(), http.MethodPost,
		"/api/approvals/v1/instances/"+instance.InstanceID+"/reject", "bystander-1", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRoleEndpoints(t *testing.T) {
	server, access, _ := newTestServer()
	access.Store.SeedCompany("company-1", "owner-1")

	rr := doJSON(t, server.Handler(), http.MethodPost, "/api/access/v1/roles", "owner-1", accesshttp.SaveRoleRequest{
		CompanyID: "company-1",
		Name:      "Welding Engineer",
		Matrix: []accesshttp.PermissionCellDTO{
			{Module: "wps", Action: "approve", Granted: true},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var role accesshttp.RoleDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &role); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if role.RoleID == "" || !role.IsActive {
		t.Fatalf("unexpected saved role: %+v", role)
	}

	rr = doJSON(t, server.Handler(), http.MethodGet, "/api/access/v1/companies/company-1/roles", "owner-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var list accesshttp.ListRolesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Roles) != 1 {
		t.Fatalf("expected 1 role, got %d", len(list.Roles))
	}

	rr = doJSON(t, server.Handler(), http.MethodPost,
		"/api/access/v1/roles/"+role.RoleID+"/deactivate", "owner-1", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", rr.Code, rr.Body.String())
	}
}
