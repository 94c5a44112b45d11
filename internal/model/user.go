package model

// User identifies the account a session belongs to. The server does not
// return a profile on login, so only the email typed at login is known.
type User struct {
	Email string `json:"email"`
}

// Credentials is the request payload for register and login.
// Never persisted.
type Credentials struct {
	Username string `json:"username,omitempty"` // Register only
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload drops the username, which the login endpoint does not take.
func (c Credentials) LoginPayload() map[string]string {
	return map[string]string{
		"email":    c.Email,
		"password": c.Password,
	}
}
