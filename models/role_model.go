package models

// Role is the typed role code carried on every user. The handful of
// capability helpers below replace ad hoc role-string comparisons in
// handlers.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// CanManageUsers covers the roster, role changes and user deletion.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// CanAuthorExams covers question banks, exam definition and instructor reports.
func (r Role) CanAuthorExams() bool {
	return r == RoleInstructor || r == RoleAdmin
}

func (r Role) CanTakeExams() bool {
	return r == RoleStudent
}
