package navigation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie that carries navigation state between views.
const CookieName = "nav_state"

// ErrInvalidState is returned for missing, tampered or expired state.
var ErrInvalidState = errors.New("invalid navigation state")

// State is everything that crosses a view boundary.
type State struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"documentId"`
}

type stateClaims struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"documentId"`
	jwt.RegisteredClaims
}

// Codec signs navigation state into a short-lived HS256 token.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a codec. A non-positive ttl defaults to ten minutes.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Codec{secret: secret, ttl: ttl, now: time.Now}
}

// Encode signs the state.
func (c *Codec) Encode(s State) (string, error) {
	if strings.TrimSpace(s.DocumentID) == "" {
		return "", fmt.Errorf("%w: documentId is required", ErrInvalidState)
	}
	now := c.now()
	claims := stateClaims{
		Filename:   s.Filename,
		DocumentID: s.DocumentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies a token and returns the state it carries.
func (c *Codec) Decode(raw string) (State, error) {
	claims := &stateClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || !token.Valid {
		return State{}, ErrInvalidState
	}
	if claims.DocumentID == "" {
		return State{}, ErrInvalidState
	}
	return State{Filename: claims.Filename, DocumentID: claims.DocumentID}, nil
}

// Redirect stores the state in a cookie and sends a 303 to path.
func (c *Codec) Redirect(gc *gin.Context, path string, s State) error {
	token, err := c.Encode(s)
	if err != nil {
		return err
	}
	gc.SetSameSite(http.SameSiteLaxMode)
	gc.SetCookie(CookieName, token, int(c.ttl/time.Second), "/", "", false, true)
	gc.Redirect(http.StatusSeeOther, path)
	return nil
}

// FromRequest reads the state cookie. The second result is false when the
// cookie is absent or does not verify.
func (c *Codec) FromRequest(gc *gin.Context) (State, bool) {
	raw, err := gc.Cookie(CookieName)
	if err != nil || raw == "" {
		return State{}, false
	}
	s, err := c.Decode(raw)
	if err != nil {
		return State{}, false
	}
	return s, true
}

// FilenameFor returns the carried filename when the state belongs to
// documentID, otherwise fallback.
func (c *Codec) FilenameFor(gc *gin.Context, documentID, fallback string) string {
	s, ok := c.FromRequest(gc)
	if !ok || s.DocumentID != documentID || strings.TrimSpace(s.Filename) == "" {
		return fallback
	}
	return s.Filename
}
