package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by a bearer token. Typ distinguishes access tokens from the
// invitation tokens minted for self-serve registration.
type Claims struct {
	Typ  string `json:"typ"`
	Role string `json:"rol,omitempty"`

	// Invitation fields
	InviteRole string `json:"rol_invitado,omitempty"`
	SuperiorID uint   `json:"id_superior,omitempty"`
	LeaderID   uint   `json:"id_lider,omitempty"`

	jwt.RegisteredClaims
}

const (
	TypAccess       = "acceso"
	TypLeaderInvite = "invitacion_lider"
	TypPersonInvite = "invitacion_persona"
)

var (
	ErrInvalid   = errors.New("token: invalid or expired")
	ErrWrongType = errors.New("token: wrong token type")
)

// Manager signs and verifies the service's HMAC tokens.
type Manager struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
}

func NewManager(secret, algorithm string, expiryMinutes int) (*Manager, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unsupported algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: algorithm %q is not HMAC", algorithm)
	}
	return &Manager{
		secret: []byte(secret),
		method: method,
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}, nil
}

// Access mints a bearer token for the given principal.
func (m *Manager) Access(userID uint, role string) (string, error) {
	return m.sign(Claims{
		Typ:  TypAccess,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	})
}

// LeaderInvite mints a registration invitation binding the new principal to a
// role and a superior in the hierarchy.
func (m *Manager) LeaderInvite(role string, superiorID uint, ttl time.Duration) (string, error) {
	return m.sign(Claims{
		Typ:        TypLeaderInvite,
		InviteRole: role,
		SuperiorID: superiorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	})
}

// PersonInvite mints a person self-registration invitation bound to the
// responsible leader.
func (m *Manager) PersonInvite(leaderID uint, ttl time.Duration) (string, error) {
	return m.sign(Claims{
		Typ:      TypPersonInvite,
		LeaderID: leaderID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	})
}

func (m *Manager) sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(m.method, c)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: signing: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and checks the token carries the
// expected typ claim.
func (m *Manager) Parse(tokenString, wantTyp string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalid
	}
	if claims.Typ != wantTyp {
		return nil, ErrWrongType
	}
	return claims, nil
}

// Subject returns the numeric subject of an access token.
func (c *Claims) SubjectID() (uint, error) {
	n, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return uint(n), nil
}

// Default is the process-wide manager, set once at startup.
var Default *Manager

func Init(secret, algorithm string, expiryMinutes int) error {
	m, err := NewManager(secret, algorithm, expiryMinutes)
	if err != nil {
		return err
	}
	Default = m
	return nil
}
