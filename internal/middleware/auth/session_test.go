package authmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
)

var alice = tokens.Identity{Name: "alice", ID: 7, Role: models.RoleUser}

func newIssuer() *tokens.Issuer {
	return &tokens.Issuer{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     10 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func serve(t *testing.T, m *Session, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, id)
	}, m.Require)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestRequire_ValidAccessToken(t *testing.T) {
	issuer := newIssuer()
	pair, err := issuer.IssuePair(alice)
	require.NoError(t, err)

	rec := serve(t, NewSession(issuer, false), &http.Cookie{Name: tokens.AccessCookie, Value: pair.AccessToken})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"alice","id":7,"role":"user"}`, rec.Body.String())
	assert.Nil(t, cookieByName(rec, tokens.AccessCookie))
}

func TestRequire_RenewsFromRefreshToken(t *testing.T) {
	issuer := newIssuer()
	past := time.Now().Add(-time.Hour)
	expired, err := tokens.Sign(alice, issuer.AccessSecret, past, past.Add(10*time.Minute))
	require.NoError(t, err)
	pair, err := issuer.IssuePair(alice)
	require.NoError(t, err)

	rec := serve(t, NewSession(issuer, false),
		&http.Cookie{Name: tokens.AccessCookie, Value: expired},
		&http.Cookie{Name: tokens.RefreshCookie, Value: pair.RefreshToken},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	renewed := cookieByName(rec, tokens.AccessCookie)
	require.NotNil(t, renewed)
	assert.Equal(t, 600, renewed.MaxAge)
	assert.True(t, renewed.HttpOnly)

	claims, err := issuer.ParseAccess(renewed.Value)
	require.NoError(t, err)
	assert.Equal(t, alice, claims.Identity())
}

func TestRequire_RejectsMissingTokens(t *testing.T) {
	rec := serve(t, NewSession(newIssuer(), false))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")
	cleared := cookieByName(rec, tokens.RefreshCookie)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestRequire_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	issuer := newIssuer()
	pair, err := issuer.IssuePair(alice)
	require.NoError(t, err)

	rec := serve(t, NewSession(issuer, false),
		&http.Cookie{Name: tokens.AccessCookie, Value: pair.RefreshToken},
		&http.Cookie{Name: tokens.RefreshCookie, Value: pair.AccessToken},
	)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotNil(t, cookieByName(rec, tokens.AccessCookie))
}
