// Package pass renders the QR entry pass of an accepted transaction.
package pass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/skip2/go-qrcode"

	"ms-transactions/internal/models"
)

var ErrInvalidPass = errors.New("invalid pass token")

// Claims is what the QR code carries, sealed with the service secret.
type Claims struct {
	TransactionID string    `json:"transaction_id"`
	EventID       string    `json:"event_id"`
	EventName     string    `json:"event_name,omitempty"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	IssuedAt      time.Time `json:"issued_at"`
}

func ClaimsFor(t *models.Transaction, at time.Time) Claims {
	c := Claims{
		TransactionID: t.ID,
		EventID:       t.EventID,
		CustomerID:    t.CustomerID,
		CustomerName:  t.CustomerName,
		IssuedAt:      at,
	}
	if t.Event != nil {
		c.EventName = t.Event.Name
	}
	return c
}

type Generator struct {
	aead cipher.AEAD
	Size int
}

func NewGenerator(secret string) (*Generator, error) {
	key := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Generator{aead: aead, Size: 256}, nil
}

// Token seals c into a URL-safe string.
func (g *Generator) Token(c Claims) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, g.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := g.aead.Seal(nonce, nonce, data, nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Open reverses Token. Tampered or foreign tokens fail with ErrInvalidPass.
func (g *Generator) Open(token string) (*Claims, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidPass
	}
	n := g.aead.NonceSize()
	if len(raw) < n {
		return nil, ErrInvalidPass
	}

	data, err := g.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return nil, ErrInvalidPass
	}

	var c Claims
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode pass: %w", err)
	}
	return &c, nil
}

// PNG encodes the sealed claims as a QR image.
func (g *Generator) PNG(c Claims) ([]byte, error) {
	token, err := g.Token(c)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, g.Size)
}
