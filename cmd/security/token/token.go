package token

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Claims is the decoded identity envelope of an access or refresh token.
type Claims struct {
	UserID    int64
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and decodes signed, time-bounded claim bundles.
//
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a Codec from a shared secret and an HMAC algorithm name
// (HS256, HS384, or HS512; matched case-insensitively).
//
// Access and refresh lifetimes are independent: typically minutes vs days.
func NewCodec(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretMissing
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, ErrUnsupportedAlgorithm
	}

	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	return &Codec{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs a short-lived access token for userID.
func (c *Codec) IssueAccess(now time.Time, userID int64, role string) (string, time.Time, error) {
	return c.issue(now, userID, role, c.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for userID.
// Persisting its hash is the caller's job; the codec never stores anything.
func (c *Codec) IssueRefresh(now time.Time, userID int64, role string) (string, time.Time, error) {
	return c.issue(now, userID, role, c.refreshTTL)
}

func (c *Codec) issue(now time.Time, userID int64, role string, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)

	claims := wireClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			// JWT timestamps have second precision; the unique jti keeps
			// two tokens minted for one user in the same second from being
			// byte-identical, which would defeat refresh rotation.
			ID: ulid.Make().String(),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Decode verifies signature and expiry of raw as of now.
//
// It returns ErrTokenExpired for a well-signed token past its expiry and
// ErrTokenInvalid for everything else (bad signature, wrong algorithm,
// structurally malformed payload, missing claims).
func (c *Codec) Decode(raw string, now time.Time) (Claims, error) {
	var wc wireClaims

	parsed, err := jwt.ParseWithClaims(raw, &wc,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(wc.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, ErrTokenInvalid
	}
	if wc.Role == "" {
		return Claims{}, ErrTokenInvalid
	}

	out := Claims{
		UserID: userID,
		Role:   wc.Role,
	}
	if wc.IssuedAt != nil {
		out.IssuedAt = wc.IssuedAt.Time
	}
	if wc.ExpiresAt != nil {
		out.ExpiresAt = wc.ExpiresAt.Time
	}
	return out, nil
}
