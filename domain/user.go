package domain

import "strings"

// Role is the closed set of actors known to the app.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole converts a stored role string into a Role.
func ParseRole(value string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(value))); r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return r, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	default:
		return false
	}
}

// CanReviewAppointments reports whether the role may confirm or cancel appointments.
func (r Role) CanReviewAppointments() bool {
	switch r {
	case RoleAdmin, RoleDoctor:
		return true
	case RolePatient:
		return false
	default:
		return false
	}
}

// Dashboard names the landing screen the app shell routes the role to.
func (r Role) Dashboard() string {
	switch r {
	case RoleAdmin:
		return "AdminDashboard"
	case RoleDoctor:
		return "DoctorDashboard"
	case RolePatient:
		return "PatientDashboard"
	default:
		return "Login"
	}
}

// User represents an identity known to the directory.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Image     string `json:"image,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

func (u *User) IsDoctor() bool {
	return u != nil && u.Role == RoleDoctor
}

// Credentials are only held for the duration of a sign-in call.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData carries what a patient provides at registration.
type RegisterData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
