package admin

import (
	"time"

	"github.com/google/uuid"
)

// Lab is the laboratory printed on report letterheads.
type Lab struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is a staff account. PasswordHash is a bcrypt hash and never leaves
// the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     *string   `json:"fullName"`
	Phone        *string   `json:"phone"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Profile struct {
	Email    string  `json:"email"`
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
}

type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type CredentialsUpdate struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	CurrentPassword string `json:"currentPassword"`
}

type EmailChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewEmail        string `json:"newEmail"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
