package main

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "auth_token"
	sessionDuration   = 7 * 24 * time.Hour
)

// Tokens issues and checks the signed session tokens carried in the
// auth_token cookie. Nothing is stored server side.
type Tokens struct {
	key []byte
	now func() time.Time
}

func NewTokens(key []byte) *Tokens {
	return &Tokens{key: key, now: time.Now}
}

func (t *Tokens) issue(accountID string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(sessionDuration)

	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// resolve returns the account id in token, or "" if the token is malformed,
// expired or signed with another key.
func (t *Tokens) resolve(token string) string {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return ""
	}
	return claims.Subject
}

func (a *App) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.Production,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

func (a *App) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.Production,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// startSession issues a token for account and sets it on the response.
func (a *App) startSession(w http.ResponseWriter, account *Account) error {
	token, _, err := a.tokens.issue(account.ID)
	if err != nil {
		return err
	}
	a.setSessionCookie(w, token)
	return nil
}

// authenticate resolves the session cookie to an account. It returns nil
// when the cookie is missing, the token does not verify, or the account is
// gone; err is only set for storage failures.
func (a *App) authenticate(r *http.Request) (*Account, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	id := a.tokens.resolve(cookie.Value)
	if id == "" {
		return nil, nil
	}

	return a.store.accountByID(r.Context(), id)
}

// requireAuth rejects requests without a valid session before next runs.
func (a *App) requireAuth(next func(http.ResponseWriter, *http.Request, *Account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		account, err := a.authenticate(r)
		if err != nil {
			writeError(w, r, err, "Authentication failed")
			return
		}
		if account == nil {
			writeError(w, r, ErrUnauthorized, "")
			return
		}

		next(w, r, account)
	}
}
