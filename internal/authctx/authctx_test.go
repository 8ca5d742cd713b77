package authctx

import (
	"errors"
	"testing"

	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

func TestActor_Permissions(t *testing.T) {
	tests := []struct {
		role       string
		dispatch   bool
		compliance bool
		estimate   bool
		approve    bool
		catalog    bool
	}{
		{RoleOwner, true, true, true, true, true},
		{RoleAdmin, true, true, true, true, true},
		{RoleDispatcher, true, true, false, false, true},
		{RoleEstimator, false, false, true, false, false},
		{RoleField, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			a := Actor{UserID: "u1", CompanyID: "c1", Role: tt.role}
			if !a.Valid() {
				t.Fatal("身份应有效")
			}
			if a.CanDispatch() != tt.dispatch {
				t.Errorf("CanDispatch 期望 %v", tt.dispatch)
			}
			if a.CanManageCompliance() != tt.compliance {
				t.Errorf("CanManageCompliance 期望 %v", tt.compliance)
			}
			if a.CanEstimate() != tt.estimate {
				t.Errorf("CanEstimate 期望 %v", tt.estimate)
			}
			if a.CanApproveEstimate() != tt.approve {
				t.Errorf("CanApproveEstimate 期望 %v", tt.approve)
			}
			if a.CanManageCatalog() != tt.catalog {
				t.Errorf("CanManageCatalog 期望 %v", tt.catalog)
			}
		})
	}
}

func TestActor_Invalid(t *testing.T) {
	if (Actor{UserID: "u1", CompanyID: "c1", Role: "leader"}).Valid() {
		t.Error("未知角色不应有效")
	}
	if (Actor{Role: RoleAdmin}).Valid() {
		t.Error("缺少 user/company 不应有效")
	}
}

func TestRequire(t *testing.T) {
	if err := Require(true); err != nil {
		t.Errorf("期望 nil，实际=%v", err)
	}
	if err := Require(false); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际=%v", err)
	}
}
