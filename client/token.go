package client

import (
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core/auth"
)

// Profile holds the display claims of an identity token.
type Profile struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// DecodeToken reads the display claims of token. The signature is not checked.
func DecodeToken(token string) (Profile, error) {
	claims, err := auth.ParseUnverified(token)
	if err != nil {
		return Profile{}, errors.Wrap(err, "decoding token")
	}
	return Profile{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
	}, nil
}
