// Package access decides which tenant-owned records a principal may see and
// what it may do with them.
package access

import (
	"errors"

	"agrocore-service/internal/model"

	"gorm.io/gorm"
)

// Action is an operation performed on a tenant-owned record
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var (
	// ErrForbidden is returned when the principal may not perform an action
	ErrForbidden = errors.New("access denied")
	// ErrNoCompany is returned when an operation needs a company membership
	ErrNoCompany = errors.New("principal does not belong to a company")
)

// Scope is the resolved principal a request acts as
type Scope struct {
	UserID    uint
	Email     string
	Role      model.Role
	CompanyID *uint
}

// Individual reports whether the principal works on its own records
func (s Scope) Individual() bool {
	return s.CompanyID == nil
}

// HasRole reports whether the principal holds one of the roles
func (s Scope) HasRole(roles ...model.Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// Apply restricts a query to the records visible to the principal
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	if s.CompanyID != nil {
		return db.Where("company_id = ?", *s.CompanyID)
	}
	return db.Where("owner_user_id = ? AND company_id IS NULL", s.UserID)
}

// Stamp returns the ownership a newly created record must carry
func (s Scope) Stamp() model.Ownership {
	if s.CompanyID != nil {
		companyID := *s.CompanyID
		return model.Ownership{CompanyID: &companyID}
	}
	userID := s.UserID
	return model.Ownership{OwnerUserID: &userID}
}

// Owns reports whether a record falls inside the principal's scope
func (s Scope) Owns(o model.Ownership) bool {
	if s.CompanyID != nil {
		return o.CompanyID != nil && *o.CompanyID == *s.CompanyID
	}
	return o.CompanyID == nil && o.OwnerUserID != nil && *o.OwnerUserID == s.UserID
}

// Can reports whether the principal may perform the action within its scope
func (s Scope) Can(a Action) bool {
	if s.Individual() {
		return true
	}
	switch s.Role {
	case model.RoleBoss, model.RoleManager:
		return true
	case model.RoleEmployee:
		return a != ActionDelete
	}
	return a == ActionView
}

// Authorize returns ErrForbidden when the action is not allowed
func (s Scope) Authorize(a Action) error {
	if !s.Can(a) {
		return ErrForbidden
	}
	return nil
}

// SameCompany reports whether a user belongs to the principal's company
func (s Scope) SameCompany(companyID *uint) bool {
	return s.CompanyID != nil && companyID != nil && *s.CompanyID == *companyID
}
