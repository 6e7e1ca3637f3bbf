package models

import "testing"

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleStudent, true},
		{RoleInstructor, true},
		{RoleAdmin, true},
		{Role("superuser"), false},
		{Role(""), false},
	}
	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role        Role
		manageUsers bool
		authorExams bool
		takeExams   bool
	}{
		{RoleStudent, false, false, true},
		{RoleInstructor, false, true, false},
		{RoleAdmin, true, true, false},
	}
	for _, tt := range tests {
		if got := tt.role.CanManageUsers(); got != tt.manageUsers {
			t.Errorf("%s.CanManageUsers() = %v, want %v", tt.role, got, tt.manageUsers)
		}
		if got := tt.role.CanAuthorExams(); got != tt.authorExams {
			t.Errorf("%s.CanAuthorExams() = %v, want %v", tt.role, got, tt.authorExams)
		}
		if got := tt.role.CanTakeExams(); got != tt.takeExams {
			t.Errorf("%s.CanTakeExams() = %v, want %v", tt.role, got, tt.takeExams)
		}
	}
}
