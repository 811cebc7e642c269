package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/pkg/security"
)

const keyInfo = "records-portal/session/v1"

// ErrIDMismatch is returned when a payload decodes to a session other than
// the one it was stored under.
var ErrIDMismatch = errors.New("session id mismatch")

// Codec turns sessions into the bytes written to external stores. With a
// secret configured the payload is sealed with AES-GCM and bound to the
// session id, since it carries the bearer token.
type Codec struct {
	enc security.Encryptor
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return &Codec{enc: security.NewNoopEncryptor()}, nil
	}
	key, err := security.DeriveKey(secret, keyInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	enc, err := security.NewAESEncryptor(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create session encryptor: %w", err)
	}
	return &Codec{enc: enc}, nil
}

func (c *Codec) Encode(sess *model.Session) ([]byte, error) {
	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.enc.Encrypt(raw, []byte(sess.ID))
}

// Decode opens a payload stored under id.
func (c *Codec) Decode(id string, data []byte) (*model.Session, error) {
	raw, err := c.enc.Decrypt(data, []byte(id))
	if err != nil {
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if sess.ID != id {
		return nil, ErrIDMismatch
	}
	return &sess, nil
}
