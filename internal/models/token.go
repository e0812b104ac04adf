package models

import (
	"time"

	"github.com/google/uuid"
)

// Token is the decoded session claim set carried by a bearer token.
type Token struct {
	MemberID  uuid.UUID `json:"member_id"`
	BrigadeID uuid.UUID `json:"brigade_id"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CreateTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CreateTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
