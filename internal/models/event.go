package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/sigrelay/internal/canon"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
)

// now is a test seam for the signing clock.
var now = time.Now

// Event is a signed, content-addressed message.
//
// ID and Sig stay empty until Sign succeeds. After that ID is the sha256 of
// the canonical encoding of (PublicKey, CreatedAt, Kind, Tags, Content) and
// Sig is the Schnorr signature of the same bytes. Changing any of those
// fields afterwards invalidates both. ExpiresAt is not signed; 0 means the
// event never expires.
type Event struct {
	ID        string `json:"id"`
	PublicKey string `json:"public_key"`
	CreatedAt int64  `json:"created_at"`
	Kind      uint32 `json:"kind"`
	Tags      string `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
	ExpiresAt int64  `json:"expires_at"`
}

// NewEvent returns an unsigned event of kind 0 with no tags.
func NewEvent(publicKey, content string, expiresAt int64) *Event {
	return &Event{
		PublicKey: publicKey,
		Content:   content,
		ExpiresAt: expiresAt,
	}
}

// Signed reports whether Sign has been called successfully.
func (e *Event) Signed() bool {
	return e.ID != "" && e.Sig != ""
}

// Sign stamps CreatedAt with the current time and fills ID and Sig. The
// canonical payload is computed once and used for both.
//
// A malformed PublicKey is ErrInvalidKey. privateKey must belong to
// PublicKey (ErrKeyMismatch otherwise). Signing is
// irreversible: a second call returns ErrAlreadySigned. On error the event is
// left untouched.
func (e *Event) Sign(privateKey string) error {
	if e.ID != "" || e.Sig != "" {
		return common.ErrAlreadySigned
	}

	if err := cryptox.ValidatePublicKey(e.PublicKey); err != nil {
		return err
	}
	pub, err := cryptox.PublicKeyOf(privateKey)
	if err != nil {
		return err
	}
	if !cryptox.SameKey(pub, e.PublicKey) {
		return common.ErrKeyMismatch
	}

	createdAt := now().Unix()
	payload, err := canon.Encode(e.PublicKey, createdAt, e.Kind, e.Tags, e.Content)
	if err != nil {
		return err
	}
	sig, err := cryptox.Sign(payload, privateKey)
	if err != nil {
		return err
	}

	e.CreatedAt = createdAt
	e.ID = cryptox.Hash(payload)
	e.Sig = sig
	return nil
}

// Check verifies the event and explains a failure.
//
// Structurally malformed keys or signatures yield ErrInvalidKey or
// ErrInvalidSignature. An unsigned event, an ID that is not the content
// address, or a signature that does not verify yield ErrorSignatureMismatch.
func (e *Event) Check() error {
	if !e.Signed() {
		return fmt.Errorf("%w: event is not signed", common.ErrorSignatureMismatch)
	}

	payload, err := canon.Encode(e.PublicKey, e.CreatedAt, e.Kind, e.Tags, e.Content)
	if err != nil {
		return err
	}
	if e.ID != cryptox.Hash(payload) {
		return fmt.Errorf("%w: id is not the content address", common.ErrorSignatureMismatch)
	}

	ok, err := cryptox.Verify(payload, e.Sig, e.PublicKey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: signature does not verify", common.ErrorSignatureMismatch)
	}
	return nil
}

// Verify reports whether the event is signed and consistent. It never
// mutates the event; an unsigned event is always false.
func (e *Event) Verify() bool {
	return e.Check() == nil
}

// Expired reports whether the event is past its expiry at t.
func (e *Event) Expired(t time.Time) bool {
	return e.ExpiresAt != 0 && t.Unix() >= e.ExpiresAt
}
