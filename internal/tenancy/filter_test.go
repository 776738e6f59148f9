package tenancy

import (
	"strings"
	"testing"

	"leasing_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

func adminContext() Context {
	return NewIdentity(uuid.New(), uuid.New(), AccessAdmin)
}

func managerContext() Context {
	return NewIdentity(uuid.New(), uuid.New(), AccessWrite)
}

func TestFilterRejectsEmptyContext(t *testing.T) {
	_, err := Filter(EntityConversation, Context{}, 0)
	if err == nil {
		t.Fatal("expected error for empty context")
	}
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestConversationPredicateIsTenantScoped(t *testing.T) {
	pred, err := Filter(EntityConversation, adminContext(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sql := strings.ToLower(pred.SQL)
	requiredFragments := []string{
		"tcb.id = lp_conversation.chatbot_id",
		"tp.company_id = $1",
	}
	for _, fragment := range requiredFragments {
		if !strings.Contains(sql, fragment) {
			t.Fatalf("expected fragment %q in predicate %q", fragment, pred.SQL)
		}
	}
	if len(pred.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(pred.Args))
	}
}

func TestConversationManagerPredicateRequiresActiveAssignment(t *testing.T) {
	pred, err := Filter(EntityConversation, managerContext(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sql := strings.ToLower(pred.SQL)
	requiredFragments := []string{
		"ta.property_manager_id = $1",
		"ta.end_date is null or ta.end_date >= current_date",
	}
	for _, fragment := range requiredFragments {
		if !strings.Contains(sql, fragment) {
			t.Fatalf("expected fragment %q in predicate %q", fragment, pred.SQL)
		}
	}
	if strings.Contains(sql, "company_id") {
		t.Fatal("manager-only context must not receive a company-wide grant")
	}
}

func TestGrantsCombineWithOR(t *testing.T) {
	tctx := adminContext()
	pred, err := Filter(EntityNotification, tctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(pred.SQL, " OR ") {
		t.Fatalf("expected OR-combined grants, got %q", pred.SQL)
	}
	// argOffset 2 means predicate placeholders start at $3.
	if !strings.Contains(pred.SQL, "$3") || !strings.Contains(pred.SQL, "$4") {
		t.Fatalf("expected placeholders $3 and $4, got %q", pred.SQL)
	}
	if len(pred.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(pred.Args))
	}
	if !strings.Contains(pred.SQL, "lp_lead_notification.property_manager_id = $4") {
		t.Fatalf("expected direct manager scope on notifications, got %q", pred.SQL)
	}
}

func TestManagerWithoutAdminGetsNoCompanyWideFAQAccess(t *testing.T) {
	pred, err := Filter(EntityFAQ, managerContext(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.SQL != "FALSE" {
		t.Fatalf("expected denied predicate, got %q", pred.SQL)
	}
	if len(pred.Args) != 0 {
		t.Fatalf("denied predicate must not bind args, got %d", len(pred.Args))
	}
}

func TestAssignmentPredicateScopesBothGrants(t *testing.T) {
	pred, err := Filter(EntityAssignment, adminContext(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sql := strings.ToLower(pred.SQL)
	if !strings.Contains(sql, "tp.id = lp_property_manager_assignment.property_id") {
		t.Fatalf("expected property traversal, got %q", pred.SQL)
	}
	if !strings.Contains(sql, "lp_property_manager_assignment.property_manager_id = $2") {
		t.Fatalf("expected manager scope, got %q", pred.SQL)
	}
}

func TestRequireWrite(t *testing.T) {
	readOnly := NewIdentity(uuid.New(), uuid.New(), AccessRead)
	if err := readOnly.RequireWrite(); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for read-only caller, got %v", err)
	}
	if err := readOnly.RequireGrant(); err != nil {
		t.Fatalf("read-only caller still holds a read grant: %v", err)
	}
	if err := managerContext().RequireWrite(); err != nil {
		t.Fatalf("write caller should pass: %v", err)
	}
}

func TestNewIdentityGrantIndependence(t *testing.T) {
	companyID := uuid.New()
	managerID := uuid.New()

	admin := NewIdentity(companyID, managerID, AccessAdmin)
	if admin.CompanyID == nil || *admin.CompanyID != companyID {
		t.Fatal("admin should hold the company grant")
	}
	if admin.ManagerID == nil || *admin.ManagerID != managerID {
		t.Fatal("admin should also hold the manager grant")
	}

	writer := NewIdentity(companyID, managerID, AccessWrite)
	if writer.CompanyID != nil {
		t.Fatal("non-admin must not hold the company grant")
	}
	if writer.ManagerID == nil {
		t.Fatal("manager grant missing")
	}
}
