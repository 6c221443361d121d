// ABOUTME: Cookie-based session handling for the dashboard
// ABOUTME: Signs email plus expiry with HMAC-SHA256 so sessions survive restarts when a secret is configured
package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	sessionCookie = "salesdesk_session"
	sessionTTL    = 12 * time.Hour
)

type sessionSigner struct {
	secret []byte
}

// newSessionSigner uses the configured secret, or a random ephemeral one when
// none is set. Ephemeral secrets log everyone out on restart.
func newSessionSigner(secret string) *sessionSigner {
	if secret != "" {
		return &sessionSigner{secret: []byte(secret)}
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to generate session secret: %v", err))
	}
	return &sessionSigner{secret: buf}
}

func (s *sessionSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// issue sets the session cookie for email.
func (s *sessionSigner) issue(w http.ResponseWriter, email string) {
	payload := email + "|" + strconv.FormatInt(time.Now().Add(sessionTTL).Unix(), 10)
	value := base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + s.sign(payload)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

// clear expires the session cookie.
func (s *sessionSigner) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// verify returns the email of a valid, unexpired session cookie, or "".
func (s *sessionSigner) verify(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	parts := strings.SplitN(cookie.Value, ".", 2)
	if len(parts) != 2 {
		return ""
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ""
	}
	payload := string(raw)
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[1])) {
		return ""
	}

	fields := strings.SplitN(payload, "|", 2)
	if len(fields) != 2 {
		return ""
	}
	expiry, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		return ""
	}
	return fields[0]
}
