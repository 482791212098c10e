package policy

import (
	"testing"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/models"
)

func TestCanAccessRecord(t *testing.T) {
	sitterID := "sitter-1"
	cases := []struct {
		name   string
		user   auth.CurrentUser
		sitter *string
		want   bool
	}{
		{"owning parent", auth.CurrentUser{ID: "parent-1", Role: models.RoleParent}, &sitterID, true},
		{"assigned sitter", auth.CurrentUser{ID: "sitter-1", Role: models.RoleSitter}, &sitterID, true},
		{"other parent", auth.CurrentUser{ID: "parent-2", Role: models.RoleParent}, &sitterID, false},
		{"other sitter", auth.CurrentUser{ID: "sitter-2", Role: models.RoleSitter}, &sitterID, false},
		{"unassigned record, sitter", auth.CurrentUser{ID: "sitter-1", Role: models.RoleSitter}, nil, false},
		{"admin", auth.CurrentUser{ID: "admin-1", Role: models.RoleAdmin}, nil, true},
		{"anonymous", auth.CurrentUser{}, &sitterID, false},
	}
	for _, tc := range cases {
		if got := CanAccessRecord("parent-1", tc.sitter, tc.user); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanAccessChild(t *testing.T) {
	child := models.Child{ID: "child-1", ParentID: "parent-1"}

	if !CanAccessChild(child, auth.CurrentUser{ID: "parent-1", Role: models.RoleParent}) {
		t.Fatal("owning parent denied")
	}
	if CanAccessChild(child, auth.CurrentUser{ID: "sitter-1", Role: models.RoleSitter}) {
		t.Fatal("sitter allowed direct child access")
	}
	if !CanAccessChild(child, auth.CurrentUser{ID: "admin-1", Role: models.RoleAdmin}) {
		t.Fatal("admin denied")
	}
	if CanAccessChild(child, auth.CurrentUser{}) {
		t.Fatal("anonymous allowed")
	}
}
