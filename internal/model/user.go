package model

// User — профиль, возвращаемый при входе.
type User struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

func (u User) GetID() string { return u.ID }

// LoginResult is the data of a successful /auth/login response.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
