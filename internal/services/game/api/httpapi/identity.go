package httpapi

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
)

// Environment variables configuring API identity tokens.
const (
	EnvIdentityIssuer     = "WARROOM_API_IDENTITY_ISSUER"
	EnvIdentityAudience   = "WARROOM_API_IDENTITY_AUDIENCE"
	EnvIdentityPublicKey  = "WARROOM_API_IDENTITY_PUBLIC_KEY"
	EnvIdentityPrivateKey = "WARROOM_API_IDENTITY_PRIVATE_KEY"
)

// DefaultIdentityTokenTTL bounds identity tokens issued without an explicit
// lifetime.
const DefaultIdentityTokenTTL = 12 * time.Hour

// identityEnv holds raw env values before post-parse validation.
type identityEnv struct {
	Issuer     string `env:"WARROOM_API_IDENTITY_ISSUER"`
	Audience   string `env:"WARROOM_API_IDENTITY_AUDIENCE"`
	PublicKey  string `env:"WARROOM_API_IDENTITY_PUBLIC_KEY"`
	PrivateKey string `env:"WARROOM_API_IDENTITY_PRIVATE_KEY"`
}

// IdentityConfig defines how API identity tokens are verified. SigningKey is
// optional; deployments that only validate tokens minted elsewhere leave it
// unset.
type IdentityConfig struct {
	Issuer     string
	Audience   string
	Key        ed25519.PublicKey
	SigningKey ed25519.PrivateKey
	Now        func() time.Time
}

// TokenAuthenticator resolves a bearer token to a user id.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// LoadIdentityConfigFromEnv reads identity token configuration. The private
// key is optional.
func LoadIdentityConfigFromEnv(now func() time.Time) (IdentityConfig, error) {
	var raw identityEnv
	if err := env.Parse(&raw); err != nil {
		return IdentityConfig{}, fmt.Errorf("parse identity env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	privateKey := strings.TrimSpace(raw.PrivateKey)
	if issuer == "" {
		return IdentityConfig{}, fmt.Errorf("%s is required", EnvIdentityIssuer)
	}
	if audience == "" {
		return IdentityConfig{}, fmt.Errorf("%s is required", EnvIdentityAudience)
	}
	if publicKey == "" {
		return IdentityConfig{}, fmt.Errorf("%s is required", EnvIdentityPublicKey)
	}
	keyBytes, err := decodeIdentityKey(publicKey)
	if err != nil {
		return IdentityConfig{}, fmt.Errorf("decode identity public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return IdentityConfig{}, fmt.Errorf("identity public key must be %d bytes", ed25519.PublicKeySize)
	}

	cfg := IdentityConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if privateKey != "" {
		signingBytes, err := decodeIdentityKey(privateKey)
		if err != nil {
			return IdentityConfig{}, fmt.Errorf("decode identity private key: %w", err)
		}
		if len(signingBytes) != ed25519.PrivateKeySize {
			return IdentityConfig{}, fmt.Errorf("identity private key must be %d bytes", ed25519.PrivateKeySize)
		}
		cfg.SigningKey = ed25519.PrivateKey(signingBytes)
	}

	return cfg, nil
}

// NewTokenAuthenticator builds an authenticator validating ed25519-signed
// identity tokens against the given configuration.
func NewTokenAuthenticator(cfg IdentityConfig) (TokenAuthenticator, error) {
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, fmt.Errorf("identity issuer and audience are required")
	}
	if len(cfg.Key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("identity public key must be %d bytes", ed25519.PublicKeySize)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &identityAuthenticator{cfg: cfg}, nil
}

// IssueIdentityToken signs an identity token for a user. Meant for local
// tooling and tests; production tokens come from the deployment's auth issuer.
func IssueIdentityToken(userID string, ttl time.Duration, cfg IdentityConfig) (string, error) {
	if len(cfg.SigningKey) != ed25519.PrivateKeySize {
		return "", errors.New("identity signer is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("identity token requires a user id")
	}
	if ttl <= 0 {
		ttl = DefaultIdentityTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	now := cfg.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Subject:   userID,
		Audience:  jwt.ClaimStrings{cfg.Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, nil
}

type identityAuthenticator struct {
	cfg IdentityConfig
}

func (a *identityAuthenticator) Authenticate(ctx context.Context, accessToken string) (string, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return "", apperrors.New(apperrors.CodeIdentityTokenRequired, "access token is required")
	}

	var parsed jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(accessToken, &parsed, func(token *jwt.Token) (any, error) {
		return a.cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", mapIdentityError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != a.cfg.Issuer {
		return "", apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token issuer mismatch")
	}
	if !identityAudienceContains(parsed.Audience, a.cfg.Audience) {
		return "", apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token audience mismatch")
	}
	if parsed.ExpiresAt == nil {
		return "", apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token exp is required")
	}

	now := a.cfg.Now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return "", apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return "", apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token not active yet")
	}

	userID := strings.TrimSpace(parsed.Subject)
	if userID == "" {
		return "", apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token sub is required")
	}
	return userID, nil
}

// mapIdentityError translates jwt library errors to application errors.
func mapIdentityError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token alg is invalid")
	}
	return apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity token is invalid")
}

// identityAudienceContains reports whether the audience list contains the
// given value.
func identityAudienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeIdentityKey(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}

// userIDKey carries the authenticated caller through the request context.
type userIDKey struct{}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func userIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}
