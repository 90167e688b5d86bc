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

	"evento/internal/models"

	"github.com/skip2/go-qrcode"
)

var ErrInvalidPass = errors.New("invalid ticket pass")

// Payload is what a scanned pass decodes to.
type Payload struct {
	EventID    string    `json:"event_id"`
	SeatNumber int       `json:"seat_number"`
	UserID     string    `json:"user_id"`
	IssuedAt   time.Time `json:"issued_at"`
}

type Generator struct {
	aead cipher.AEAD
	now  func() time.Time
	size int
}

func NewGenerator(secret string) (*Generator, error) {
	if secret == "" {
		return nil, errors.New("pass secret must not be empty")
	}
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	block, err := aes.NewCipher(hashed[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Generator{aead: aead, now: time.Now, size: 256}, nil
}

// Token encrypts the pass payload for a purchased ticket.
func (g *Generator) Token(ticket models.Ticket) (string, error) {
	if !ticket.Purchased() {
		return "", fmt.Errorf("seat %d of event %s is not purchased", ticket.SeatNumber(), ticket.EventID())
	}
	data, err := json.Marshal(Payload{
		EventID:    ticket.EventID(),
		SeatNumber: ticket.SeatNumber(),
		UserID:     ticket.UserID(),
		IssuedAt:   g.now().UTC(),
	})
	if err != nil {
		return "", err
	}

	nonce := make([]byte, g.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := g.aead.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// PNG renders the encrypted pass as a QR code image.
func (g *Generator) PNG(ticket models.Ticket) ([]byte, error) {
	token, err := g.Token(ticket)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, g.size)
}

func (g *Generator) Decode(token string) (Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPass, err)
	}
	if len(raw) < g.aead.NonceSize() {
		return Payload{}, ErrInvalidPass
	}
	nonce, sealed := raw[:g.aead.NonceSize()], raw[g.aead.NonceSize():]
	data, err := g.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPass, err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPass, err)
	}
	return p, nil
}
