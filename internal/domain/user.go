package domain

import (
	"strings"
	"time"
)

// User es la cuenta de un padre o tutor. Los niños cuelgan de ella como Child.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Name devuelve el nombre para mostrar, o la parte local del email si no hay.
func (u User) Name() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
