package utils

import (
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/infrastructure/logger"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken mints an HS256 bridge token for subject, valid for ttl.
func GenerateToken(subject string, ttl time.Duration, secretKey string) (string, error) {
	now := GetCurrentTime()
	claims := model.BridgeClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   subject,
			Issuer:    "linkedin-publisher",
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Scope: "bridge",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
