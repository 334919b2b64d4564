package services

import (
	"strings"

	dbm "bizdesk/internal/models/db_models"
)

// Caller is the authenticated user a service call acts for.
type Caller struct {
	UserID string
	Email  string
	Role   string
}

func (c Caller) IsStaff() bool {
	r := strings.ToLower(c.Role)
	return r == dbm.RoleAdmin || r == dbm.RoleManager
}

func (c Caller) IsAdmin() bool {
	return strings.EqualFold(c.Role, dbm.RoleAdmin)
}
