package domain

import "strings"

// Principal is the authenticated caller resolved from a session.
type Principal struct {
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

// DisplayName is "first last" trimmed, or the user name when both are blank.
func (p Principal) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if full == "" {
		return p.UserName
	}
	return full
}

type User struct {
	ID           int64
	UserName     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

func (u User) Principal() Principal {
	return Principal{UserName: u.UserName, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}
