package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"evento/internal/clock"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims carried by evento access tokens. The subject is the user ID.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type JsonWebToken struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// JWTHandler issues and validates HS256 tokens signed with a shared secret.
type JWTHandler struct {
	secret []byte
	issuer string
	expiry time.Duration
	clock  clock.Clock
}

func NewJWTHandler(secret, issuer string, expiry time.Duration, clk clock.Clock) *JWTHandler {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &JWTHandler{secret: []byte(secret), issuer: issuer, expiry: expiry, clock: clk}
}

func (h *JWTHandler) CreateToken(userID, name, role string) (JsonWebToken, error) {
	if userID == "" {
		return JsonWebToken{}, errors.New("user id is required")
	}
	now := h.clock.Now()
	expires := now.Add(h.expiry)
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    h.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return JsonWebToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return JsonWebToken{Token: signed, Expires: expires}, nil
}

// ParseToken verifies signature, issuer and expiry and returns the claims.
func (h *JWTHandler) ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return h.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("subject claim not found in token")
	}
	return claims, nil
}

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}
