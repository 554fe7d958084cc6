package db

import (
	"errors"
	"fmt"

	"github.com/ramanasai/reflectboard/internal/encryption"
)

// ErrLocked is returned when reading an encrypted record without a
// passphrase.
var ErrLocked = errors.New("record is encrypted; configure store.passphrase")

// ErrDecrypt is returned when the configured passphrase does not open a
// record.
var ErrDecrypt = errors.New("record cannot be decrypted with the configured passphrase")

// sealer encrypts the JSON payload columns when a passphrase is set.
type sealer struct {
	enc *encryption.Encryptor
}

func (s sealer) enabled() bool { return s.enc != nil }

func (s sealer) seal(fields ...*string) error {
	if !s.enabled() {
		return nil
	}
	for _, f := range fields {
		out, err := s.enc.Encrypt(*f)
		if err != nil {
			return fmt.Errorf("failed to encrypt payload: %w", err)
		}
		*f = out
	}
	return nil
}

func (s sealer) open(encrypted bool, fields ...*string) error {
	if !encrypted {
		return nil
	}
	if !s.enabled() {
		return ErrLocked
	}
	for _, f := range fields {
		out, err := s.enc.Decrypt(*f)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDecrypt, err)
		}
		*f = out
	}
	return nil
}
