package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"time"

	"stormcenter/internal/auth"
	"stormcenter/internal/data"
	"stormcenter/internal/session"
)

// sessionAuthorIDKey holds the local author id of the logged-in handler,
// set on login and read when a write needs an updated_by attribution.
const sessionAuthorIDKey = "author_id"

// AuthorDirectory resolves a verified login to a local author row.
type AuthorDirectory interface {
	GetByUsername(ctx context.Context, username string) (*data.Author, error)
}

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     *auth.Authenticator
	sessions session.Manager
	authors  AuthorDirectory
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a *auth.Authenticator, sm session.Manager, authors AuthorDirectory) *AuthHandler {
	return &AuthHandler{auth: a, sessions: sm, authors: authors}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randString(16)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider.
// It handles the code exchange and token verification, then stores the
// verified subject in the server-side session. Casbin maps that subject to
// the admin role.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	// Verify the state parameter to prevent CSRF attacks.
	stateCookie, err := r.Cookie("state")
	if err != nil {
		http.Error(w, "state cookie not found", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}

	// Exchange the authorization code for an OAuth2 token.
	oauth2Token, err := h.auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "Failed to exchange token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Extract the ID Token from the OAuth2 token.
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "No id_token field in oauth2 token", http.StatusInternalServerError)
		return
	}

	// Verify the ID Token's signature and claims.
	// The OIDC library internally checks the nonce, issuer, audience, and expiry.
	idToken, err := h.auth.IDTokenVerifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		http.Error(w, "Failed to verify ID Token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var claims struct {
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		http.Error(w, "Failed to parse ID Token claims: "+err.Error(), http.StatusInternalServerError)
		return
	}

	subject := claims.Email
	if subject == "" {
		subject = idToken.Subject
	}
	h.sessions.Put(r.Context(), "user_subject", subject)
	h.storeAuthorID(r.Context(), claims.PreferredUsername, subject)

	// Redirect user to the home page after successful login.
	http.Redirect(w, r, "/", http.StatusFound)
}

// storeAuthorID links the verified login to a local author row so later
// writes can record who made them. A login without a matching author row is
// still valid; casbin authorizes on the subject alone.
func (h *AuthHandler) storeAuthorID(ctx context.Context, preferredUsername, subject string) {
	if h.authors == nil {
		return
	}
	username := preferredUsername
	if username == "" {
		username = subject
	}
	author, err := h.authors.GetByUsername(ctx, username)
	if err != nil {
		return
	}
	h.sessions.Put(ctx, sessionAuthorIDKey, strconv.FormatInt(author.ID, 10))
}

// handleLogout destroys the session.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_ = h.sessions.Destroy(r.Context())
	http.Redirect(w, r, "/", http.StatusFound)
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
