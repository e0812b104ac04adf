package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brigadehq/roster/internal/models"
)

type TokenService struct {
	jwtSecret string
	tokenTTL  time.Duration
}

func NewTokenService(jwtSecret string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// CreateToken issues a signed session token for the given member.
func (s *TokenService) CreateToken(member *models.Member) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"sub":        member.ID.String(),
		"brigade_id": member.BrigadeID.String(),
		"role":       string(member.Role),
		"exp":        expiresAt.Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a token string and returns its decoded claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	memberID, err := claimUUID(claims, "sub")
	if err != nil {
		return nil, err
	}
	brigadeID, err := claimUUID(claims, "brigade_id")
	if err != nil {
		return nil, err
	}

	role, _ := claims["role"].(string)
	exp, _ := claims["exp"].(float64)

	return &models.Token{
		MemberID:  memberID,
		BrigadeID: brigadeID,
		Role:      models.Role(role),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, errors.New("missing " + key + " claim")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid " + key + " claim")
	}
	return id, nil
}
