// Package policy holds the ownership predicates shared by every record
// endpoint. Pure functions, no I/O, fail closed: centralizing them here
// keeps the ownership rule from drifting between endpoints.
package policy

import (
	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/models"
)

// CanAccessRecord reports whether user may read or write a
// session-owned record (session, alert, message, GPS ping) identified
// by its parent and sitter foreign keys.
func CanAccessRecord(parentID string, sitterID *string, user auth.CurrentUser) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	if user.ID == "" {
		return false
	}
	if user.ID == parentID {
		return true
	}
	return sitterID != nil && user.ID == *sitterID
}

// CanAccessSession reports whether user may read or write the session.
func CanAccessSession(s models.Session, user auth.CurrentUser) bool {
	return CanAccessRecord(s.ParentID, s.SitterID, user)
}

// CanAccessChild reports whether user may read or write the child
// record. Children belong to the parent only.
func CanAccessChild(c models.Child, user auth.CurrentUser) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	return user.ID != "" && user.ID == c.ParentID
}
