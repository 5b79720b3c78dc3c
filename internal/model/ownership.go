package model

import "errors"

// ErrOwnership is returned when a tenant-owned record does not belong to
// exactly one company or one individual user
var ErrOwnership = errors.New("record must belong to exactly one company or one owner")

// Ownership is embedded in every tenant-owned record
type Ownership struct {
	OwnerUserID *uint `json:"owner_user_id,omitempty" gorm:"index"`
	CompanyID   *uint `json:"company_id,omitempty" gorm:"index"`
}

// Validate checks that exactly one side of the ownership pair is set
func (o Ownership) Validate() error {
	if (o.OwnerUserID == nil) == (o.CompanyID == nil) {
		return ErrOwnership
	}
	return nil
}
