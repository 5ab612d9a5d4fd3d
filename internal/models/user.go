package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
)

const MaxUserNameLength = 64

// User maps a display name to a public key. Users never expire.
type User struct {
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
}

func NewUser(name, publicKey string) *User {
	return &User{Name: strings.TrimSpace(name), PublicKey: publicKey}
}

func (u *User) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("%w: empty user name", common.ErrorValidation)
	}
	if utf8.RuneCountInString(u.Name) > MaxUserNameLength {
		return fmt.Errorf("%w: user name longer than %d characters", common.ErrorValidation, MaxUserNameLength)
	}
	return cryptox.ValidatePublicKey(u.PublicKey)
}
