package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/logging"
	"exercisehub/internal/models"
)

const (
	// CookieName is the name of the browser session cookie.
	CookieName = "exercisehub_session"

	tokenKey = "token"
)

// Store persists server-side session records.
type Store interface {
	CreateSession(ctx context.Context, id string, user models.SessionUser, expiresAt time.Time) error
	SessionUser(ctx context.Context, id string) (models.SessionUser, error)
	DeleteSession(ctx context.Context, id string) error
}

// Resolver turns requests into session users and manages the session lifecycle.
type Resolver struct {
	tokens  *TokenManager
	store   Store
	cookies sessions.Store
	ttl     time.Duration
	now     func() time.Time
}

// NewResolver wires a Resolver. cookies may be nil to disable the cookie transport.
func NewResolver(tokens *TokenManager, store Store, cookies sessions.Store, ttl time.Duration) *Resolver {
	return &Resolver{
		tokens:  tokens,
		store:   store,
		cookies: cookies,
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewCookieStore builds the gorilla cookie store used for browser sessions.
func NewCookieStore(secret []byte, ttl time.Duration, secure bool) *sessions.CookieStore {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	cs.MaxAge(int(ttl.Seconds()))
	return cs
}

// Resolve returns the user behind the request's session, or nil when the
// request carries no valid session. Errors are reserved for backend failures.
func (r *Resolver) Resolve(req *http.Request) (*models.SessionUser, error) {
	token := r.token(req)
	if token == "" {
		return nil, nil
	}

	claims, err := r.tokens.Parse(token)
	if err != nil {
		return nil, nil
	}

	user, err := r.store.SessionUser(req.Context(), claims.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}

	if uid, _ := claims.UserID(); uid != user.ID {
		logging.WithContext(req.Context()).Warn().Str("session_id", claims.ID).Msg("session token subject mismatch")
		return nil, nil
	}
	return &user, nil
}

// Start creates a session for user, sets the session cookie and returns the token.
func (r *Resolver) Start(w http.ResponseWriter, req *http.Request, user models.SessionUser) (string, error) {
	now := r.now()
	expiresAt := now.Add(r.ttl)
	sessionID := uuid.NewString()

	if err := r.store.CreateSession(req.Context(), sessionID, user, expiresAt); err != nil {
		return "", err
	}

	token, err := r.tokens.Issue(sessionID, user, now, expiresAt)
	if err != nil {
		return "", err
	}

	if r.cookies != nil {
		sess, _ := r.cookies.Get(req, CookieName)
		sess.Values[tokenKey] = token
		if err := sess.Save(req, w); err != nil {
			return "", fmt.Errorf("save session cookie: %w", err)
		}
	}
	return token, nil
}

// End revokes the request's session, if any, and clears the cookie.
func (r *Resolver) End(w http.ResponseWriter, req *http.Request) error {
	if token := r.token(req); token != "" {
		if claims, err := r.tokens.Parse(token); err == nil {
			if err := r.store.DeleteSession(req.Context(), claims.ID); err != nil {
				return err
			}
		}
	}

	if r.cookies != nil {
		sess, _ := r.cookies.Get(req, CookieName)
		delete(sess.Values, tokenKey)
		sess.Options.MaxAge = -1
		if err := sess.Save(req, w); err != nil {
			return fmt.Errorf("clear session cookie: %w", err)
		}
	}
	return nil
}

func (r *Resolver) token(req *http.Request) string {
	if token := parseBearerToken(req.Header.Get("Authorization")); token != "" {
		return token
	}
	if r.cookies == nil {
		return ""
	}
	sess, err := r.cookies.Get(req, CookieName)
	if err != nil || sess.IsNew {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
