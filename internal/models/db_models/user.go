package db_models

import "strings"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

const StatusActive = "active"

// User documents carry the role under two spellings, "role" and "Role". Both
// are kept; neither is treated as canonical.
type User struct {
	ID           string `gorm:"primaryKey;size:128" json:"id"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	DisplayName  string `json:"displayName"`
	Role         string `gorm:"column:role" json:"role,omitempty"`
	RoleAlt      string `gorm:"column:role_capitalized" json:"Role,omitempty"`
	Status       string `json:"status"`
	Country      string `json:"country,omitempty"`
	Company      string `json:"company,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    int64  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// EffectiveRole reads whichever role field is set.
func (u *User) EffectiveRole() string {
	if r := strings.TrimSpace(u.Role); r != "" {
		return strings.ToLower(r)
	}
	return strings.ToLower(strings.TrimSpace(u.RoleAlt))
}

// IsActive treats a blank status as active; rows predating the column have none.
func (u *User) IsActive() bool {
	s := strings.TrimSpace(u.Status)
	return s == "" || strings.EqualFold(s, StatusActive)
}

// Name is what other documents denormalize as the user's name.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
