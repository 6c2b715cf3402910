package auth

import (
	"fmt"
	"strings"

	"resto-system/internal/apperrors"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
	RoleWaiter  Role = "waiter"
)

// ParseRole accepts the English role names and the legacy Spanish labels
// still present in older tokens.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrador":
		return RoleAdmin, nil
	case "cashier", "cajero":
		return RoleCashier, nil
	case "waiter", "mesero":
		return RoleWaiter, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Capability int

const (
	CapViewOrders Capability = iota
	CapOpenOrder
	CapAddLine
	CapRemoveLine
	CapChangeOrderStatus
	CapTakePayment
	CapReleaseTable
	CapViewStock
	CapAdjustStock
	CapManageInventory
)

var capabilities = map[Capability][]Role{
	CapViewOrders:        {RoleAdmin, RoleCashier, RoleWaiter},
	CapOpenOrder:         {RoleAdmin, RoleWaiter},
	CapAddLine:           {RoleAdmin, RoleWaiter},
	CapRemoveLine:        {RoleAdmin},
	CapChangeOrderStatus: {RoleAdmin},
	CapTakePayment:       {RoleAdmin, RoleCashier},
	CapReleaseTable:      {RoleAdmin, RoleCashier},
	CapViewStock:         {RoleAdmin, RoleCashier, RoleWaiter},
	CapAdjustStock:       {RoleAdmin, RoleCashier},
	CapManageInventory:   {RoleAdmin},
}

func (r Role) Can(c Capability) bool {
	for _, allowed := range capabilities[c] {
		if allowed == r {
			return true
		}
	}
	return false
}

// Identity is the verified caller attached to every request.
// BranchID 0 means the identity is not bound to a branch.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
	BranchID int32
}

func (id Identity) IsZero() bool {
	return id.UserID == 0 && id.Role == ""
}

// Authorize is the single capability check used by every operation.
func Authorize(id Identity, c Capability) error {
	if id.IsZero() {
		return apperrors.ErrUnauthorized
	}
	if !id.Role.Can(c) {
		return apperrors.ErrForbidden.WithMessagef("role %q is not allowed to perform this operation", id.Role)
	}
	return nil
}

// AuthorizeBranch restricts non-admin identities to their own branch.
func AuthorizeBranch(id Identity, branchID int32) error {
	if id.Role == RoleAdmin || id.BranchID == 0 || id.BranchID == branchID {
		return nil
	}
	return apperrors.ErrForbidden.WithMessagef("identity is bound to branch %d", id.BranchID)
}
