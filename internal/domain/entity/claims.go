package entity

import "github.com/golang-jwt/jwt/v5"

// Claims are the identity claims extracted from a verified access token.
// ExternalID holds the identity provider subject, not the local user id.
type Claims struct {
	ExternalID string
	Username   string
	jwt.RegisteredClaims
}
