// Package identity resolves the authenticated user into the scope a request
// acts as. Role and company are read from the users table, not the token, so
// staff changes take effect on the next request. Results are kept briefly in
// an expirable LRU.
package identity

import (
	"errors"
	"fmt"
	"time"

	"agrocore-service/internal/access"
	"agrocore-service/internal/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"
)

var (
	// ErrUnknownUser is returned when the token refers to a deleted user
	ErrUnknownUser = errors.New("user no longer exists")
	// ErrLocked is returned for accounts locked by an administrator
	ErrLocked = errors.New("account is locked")
)

var principals = expirable.NewLRU[uint, access.Scope](1024, nil, 30*time.Second)

// Init replaces the principal cache with one of the given size and TTL
func Init(size int, ttl time.Duration) {
	if size <= 0 {
		size = 1024
	}
	principals = expirable.NewLRU[uint, access.Scope](size, nil, ttl)
}

// Resolve returns the current scope of a user
func Resolve(db *gorm.DB, userID uint) (access.Scope, error) {
	if s, ok := principals.Get(userID); ok {
		return s, nil
	}

	var user model.User
	err := db.Select("id", "email", "role", "company_id", "locked").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return access.Scope{}, ErrUnknownUser
	}
	if err != nil {
		return access.Scope{}, fmt.Errorf("resolve principal %d: %w", userID, err)
	}
	if user.Locked {
		return access.Scope{}, ErrLocked
	}

	s := access.Scope{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}
	principals.Add(userID, s)
	return s, nil
}

// Invalidate drops the cached scope of a user
func Invalidate(userIDs ...uint) {
	for _, id := range userIDs {
		principals.Remove(id)
	}
}

// Purge empties the cache
func Purge() {
	principals.Purge()
}
