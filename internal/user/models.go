package user

import "time"

const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
	RoleEvaluator   = "evaluator"
	RoleAttendee    = "attendee"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the subset of a user handed to views and certificate
// manifests.
type Profile struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleParticipant, RoleEvaluator, RoleAttendee:
		return true
	}
	return false
}
