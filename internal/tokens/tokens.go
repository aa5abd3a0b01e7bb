package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

// Identity is what an authenticated request carries.
type Identity struct {
	Name string      `json:"name"`
	ID   uint        `json:"id"`
	Role models.Role `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

type SessionClaims struct {
	Name   string      `json:"name"`
	UserID uint        `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) Identity() Identity {
	return Identity{Name: c.Name, ID: c.UserID, Role: c.Role}
}

type Pair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Issuer signs and verifies the access/refresh pair. The two tokens use
// distinct secrets so a refresh token can never pass as an access token.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) IssuePair(id Identity) (*Pair, error) {
	now := i.now()
	accessExp := now.Add(i.AccessTTL)
	access, err := Sign(id, i.AccessSecret, now, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := now.Add(i.RefreshTTL)
	refresh, err := Sign(id, i.RefreshSecret, now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (i *Issuer) IssueAccess(id Identity) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.AccessTTL)
	token, err := Sign(id, i.AccessSecret, now, exp)
	return token, exp, err
}

func (i *Issuer) ParseAccess(token string) (*SessionClaims, error) {
	return Parse(token, i.AccessSecret)
}

func (i *Issuer) ParseRefresh(token string) (*SessionClaims, error) {
	return Parse(token, i.RefreshSecret)
}

func Sign(id Identity, secret []byte, issuedAt, exp time.Time) (string, error) {
	claims := SessionClaims{
		Name:   id.Name,
		UserID: id.ID,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func Parse(tokenStr string, secret []byte) (*SessionClaims, error) {
	var claims SessionClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}
