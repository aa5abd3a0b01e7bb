package tokens

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

func newTestIssuer() *Issuer {
	return &Issuer{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     10 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func TestIssuer_IssuePair_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	id := Identity{Name: "alice", ID: 7, Role: models.RoleUser}

	pair, err := iss.IssuePair(id)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := iss.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, access.Identity())
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), access.ExpiresAt.Time, 2*time.Second)

	refresh, err := iss.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, refresh.Identity())
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), refresh.ExpiresAt.Time, 2*time.Second)
	assert.NotEmpty(t, refresh.ID)
}

func TestIssuer_SecretsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	pair, err := iss.IssuePair(Identity{Name: "bob", ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = iss.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = iss.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestParse_ExpiredToken(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	token, err := Sign(Identity{Name: "carol", ID: 3}, []byte("s"), past, past.Add(time.Minute))
	require.NoError(t, err)

	_, err = Parse(token, []byte("s"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestCookies(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(10 * time.Minute)
	c := CreateCookie(AccessCookie, "v", exp, 10*time.Minute, false)
	assert.Equal(t, "Juice", c.Name)
	assert.Equal(t, 600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)

	d := DeleteCookie(RefreshCookie, true)
	assert.Equal(t, "Sauce", d.Name)
	assert.Equal(t, -1, d.MaxAge)
	assert.Empty(t, d.Value)
}
