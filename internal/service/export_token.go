package service

import (
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
)

// ExportTokens issues and verifies download tokens for calculation exports.
// A token is a fernet token whose payload is the calculation ID, so it cannot
// be forged or altered and expires after the configured TTL.
type ExportTokens struct {
	keys []*fernet.Key
	ttl  time.Duration
}

// NewExportTokens creates an issuer from a base64 fernet key. An empty key
// generates a random one, which invalidates tokens on restart.
func NewExportTokens(encodedKey string, ttl time.Duration) (*ExportTokens, error) {
	var key *fernet.Key
	if encodedKey == "" {
		key = new(fernet.Key)
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate export token key: %w", err)
		}
	} else {
		k, err := fernet.DecodeKey(encodedKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode export token key: %w", err)
		}
		key = k
	}
	return &ExportTokens{keys: []*fernet.Key{key}, ttl: ttl}, nil
}

// Issue returns a token for calculationID.
func (e *ExportTokens) Issue(calculationID string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(calculationID), e.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to sign export token: %w", err)
	}
	return string(tok), nil
}

// Verify returns the calculation ID inside a valid, unexpired token.
func (e *ExportTokens) Verify(token string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(token), e.ttl, e.keys)
	if msg == nil {
		return "", apperrors.ErrInvalidExportToken
	}
	return string(msg), nil
}
