package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OperatorTokenPayload captures the data available when minting an operator JWT.
type OperatorTokenPayload struct {
	OperatorID      uuid.UUID
	OperatorName    string
	RegisterLocalID string
	JTI             string
}

// OperatorTokenClaims is the typed JWT the terminal presents to the ledger.
type OperatorTokenClaims struct {
	OperatorID      uuid.UUID `json:"operator_id"`
	OperatorName    string    `json:"operator_name,omitempty"`
	RegisterLocalID string    `json:"register_local_id,omitempty"`
	jwt.RegisteredClaims
}
