package devserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bizconsole/internal/apierror"
	"bizconsole/internal/model"
	"bizconsole/internal/session"
)

// DefaultBcryptCost matches what production password hashes use.
const DefaultBcryptCost = 12

// Tokens issues HS256 access tokens carrying the claims the console reads.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: now}
}

func (t *Tokens) Issue(u model.User) (string, error) {
	now := t.now()
	claims := session.Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// HashPassword hashes password with cost, or DefaultBcryptCost when cost is 0.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

const msgBadCredentials = "No active account found with the given credentials"

func (h *handlers) login(c *gin.Context) {
	var req model.Credentials
	if !bindAndValidate(c, &req) {
		return
	}
	user, hash, ok := h.store.Account(req.Username)
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(msgBadCredentials))
		return
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, model.LoginResponse{Access: token, User: user})
}

// DefaultSeedPassword is the password of every seeded account unless
// DEV_SEED_PASSWORD_HASH overrides it.
const DefaultSeedPassword = "bizconsole2026"
