package services

import "errors"

var (
	ErrNoIdentity     = errors.New("no identity, run keygen first")
	ErrIdentityExists = errors.New("identity already exists")
	ErrNotLoggedIn    = errors.New("not logged in")
)
