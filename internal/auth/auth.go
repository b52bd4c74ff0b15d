package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	jwtIssuer   = "groundslot-gate"
	jwtAudience = "groundslot-channels"

	DefaultTokenTTL = 24 * time.Hour
)

// Roles a channel token can carry.
const (
	RolePartner  = "partner"
	RoleDesk     = "desk"
	RolePayments = "payments"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingChannel = errors.New("token has no channel id")
	ErrEmptyJWTSecret = errors.New("jwt secret cannot be empty")
)

type ChannelClaims struct {
	ChannelID string `json:"channel_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateChannelToken signs a token identifying a sales channel. Tokens are
// normally issued by the credential gate; this is used by the CLI and tests.
func GenerateChannelToken(channelID, role, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptyJWTSecret
	}
	if channelID == "" {
		return "", ErrMissingChannel
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := &ChannelClaims{
		ChannelID: channelID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   channelID,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*ChannelClaims, error) {
	if secret == "" {
		return nil, ErrEmptyJWTSecret
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&ChannelClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}

	claims, ok := token.Claims.(*ChannelClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ChannelID == "" {
		return nil, ErrMissingChannel
	}

	return claims, nil
}
