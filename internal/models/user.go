package models

const RoleAdmin = "admin"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginResponse est la réponse de POST /api/auth/login
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
