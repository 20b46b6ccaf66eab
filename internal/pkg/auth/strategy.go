package auth

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Identity is the verified caller carried by a bearer token.
type Identity struct {
	BuyerID  string
	UserName string
}

// Strategy issues and verifies bearer tokens.
type Strategy interface {
	IssueToken(identity Identity) (string, error)
	ParseToken(token string) (Identity, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
