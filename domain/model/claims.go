package model

import "github.com/golang-jwt/jwt"

// BridgeClaims are carried by tokens minted with the api-token command.
type BridgeClaims struct {
	jwt.StandardClaims
	Scope string `json:"scope,omitempty"`
}
