package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/pension/internal/domain"
)

var errBadCredentials = domain.NewAppError(domain.CodeUnauthorized, "invalid username or password", nil)

// Options configures a Service.
type Options struct {
	Secret string
	Issuer string
	Expiry time.Duration
	// Operators maps usernames to bcrypt password hashes.
	Operators map[string]string
}

// Service issues and verifies operator bearer tokens. It satisfies
// middleware.TokenVerifier.
type Service struct {
	secret    []byte
	issuer    string
	expiry    time.Duration
	operators map[string][]byte
	dummyHash []byte
	now       func() time.Time
}

// NewService creates a Service. Expiry defaults to one hour.
func NewService(opts Options) (*Service, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("auth: secret must not be empty")
	}
	if opts.Expiry <= 0 {
		opts.Expiry = time.Hour
	}

	ops := make(map[string][]byte, len(opts.Operators))
	for user, hash := range opts.Operators {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, errors.New("auth: operator " + user + " has an invalid password hash")
		}
		ops[user] = []byte(hash)
	}

	// Unknown usernames are checked against a random hash.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Service{
		secret:    []byte(opts.Secret),
		issuer:    opts.Issuer,
		expiry:    opts.Expiry,
		operators: ops,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// IssueToken checks the operator's credentials and returns a signed token.
func (s *Service) IssueToken(_ context.Context, username, password string) (*TokenResponse, error) {
	hash, known := s.operators[username]
	if !known {
		hash = s.dummyHash
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !known {
		return nil, errBadCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to sign token", err)
	}

	return &TokenResponse{Token: signed, ExpiresAt: jwt.NewNumericDate(expiresAt).Time.UTC()}, nil
}

// VerifyToken validates token and returns the operator it was issued to.
func (s *Service) VerifyToken(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return "", domain.NewAppError(domain.CodeUnauthorized, "invalid token", err)
	}
	if _, ok := s.operators[claims.Subject]; !ok {
		return "", domain.NewAppError(domain.CodeUnauthorized, "unknown operator", nil)
	}
	return claims.Subject, nil
}
