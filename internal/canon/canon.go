// Package canon produces the canonical byte form of an event, used both for
// its content address and as the signed payload.
//
// The form is the CBOR Core Deterministic Encoding (RFC 8949 §4.2) of the
// array
//
//	[0, public_key, created_at, kind, tags, content]
//
// Every element is length-prefixed, so no value of tags or content can be
// confused with a field boundary. Equal inputs always give equal bytes.
package canon

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Version is the leading array element. It changes only if the layout does.
const Version = 0

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("canon: CBOR encoder initialization failed: " + err.Error())
	}
}

type payload struct {
	_         struct{} `cbor:",toarray"`
	Version   uint
	PublicKey string
	CreatedAt int64
	Kind      uint32
	Tags      string
	Content   string
}

// Encode returns the canonical encoding of the signed event fields.
func Encode(publicKey string, createdAt int64, kind uint32, tags, content string) ([]byte, error) {
	b, err := encMode.Marshal(payload{
		Version:   Version,
		PublicKey: publicKey,
		CreatedAt: createdAt,
		Kind:      kind,
		Tags:      tags,
		Content:   content,
	})
	if err != nil {
		return nil, fmt.Errorf("canon encode: %w", err)
	}
	return b, nil
}
