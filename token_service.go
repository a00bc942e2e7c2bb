package blog

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultTokenTTL is used when TokenConfig.TTL is zero
const DefaultTokenTTL = 30 * time.Minute

// DefaultSigningMethod is used when TokenConfig.Algorithm is empty
const DefaultSigningMethod = "HS256"

// TokenConfig holds the signing setup. It is built once at startup.
type TokenConfig struct {
	SigningKey []byte
	Algorithm  string
	TTL        time.Duration
	Issuer     string
}

// TokenService signs and decodes access tokens
type TokenService struct {
	signingKey []byte
	method     jwt.SigningMethod
	ttl        time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
}

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithClock overrides time.Now, used by tests to mint stale tokens
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a new TokenService. The config is copied so later
// changes to it have no effect.
func NewTokenService(cfg *TokenConfig, opts ...TokenServiceOption) (*TokenService, error) {
	if cfg == nil {
		return nil, errors.New("token config is required", errors.CategoryBadInput)
	}

	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("signing key must not be empty", errors.CategoryBadInput)
	}

	alg := strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if alg == "" {
		alg = DefaultSigningMethod
	}

	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, errors.New(fmt.Sprintf("unsupported signing method %q", cfg.Algorithm), errors.CategoryBadInput)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	if ttl < 0 {
		return nil, errors.New("token TTL must be positive", errors.CategoryBadInput)
	}

	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)

	ts := &TokenService{
		signingKey: key,
		method:     method,
		ttl:        ttl,
		issuer:     cfg.Issuer,
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts, nil
}

// TTL returns the configured token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Algorithm returns the JWT alg header value
func (ts *TokenService) Algorithm() string {
	return ts.method.Alg()
}

// Issue mints a bearer token for subject, expiring TTL from now
func (ts *TokenService) Issue(subject string) (AccessToken, error) {
	if strings.TrimSpace(subject) == "" {
		return AccessToken{}, errors.New("subject is required", errors.CategoryBadInput)
	}

	now := ts.now()
	expiresAt := now.Add(ts.ttl)

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token, err := ts.SignClaims(claims)
	if err != nil {
		return AccessToken{}, err
	}

	return AccessToken{
		Token:     token,
		Type:      TokenTypeBearer,
		ExpiresAt: expiresAt,
	}, nil
}

// SignClaims signs arbitrary claims using the configured key and method
func (ts *TokenService) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(ts.method, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Decode verifies signature, method and expiry and returns the claims.
// Errors are ErrTokenExpired, ErrTokenMissingSubject or ErrTokenInvalid.
func (ts *TokenService) Decode(tokenString string) (*JWTClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{ts.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			ts.logger.Debug("token service decode: token expired")
			return nil, ErrTokenExpired
		}
		ts.logger.Debug("token service decode: %v", err)
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if strings.TrimSpace(claims.Subject()) == "" {
		return nil, ErrTokenMissingSubject
	}

	return claims, nil
}
