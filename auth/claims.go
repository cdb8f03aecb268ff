package auth

import (
	"fmt"
	"net/http"
	"strings"

	"raffler/config"
	"raffler/models"

	"github.com/dgrijalva/jwt-go"
)

// ActorFromRequest resolves the calling actor from the request. Production
// traffic carries a signed bearer token; in development the X-Dev-Alias-Id
// header can stand in for one.
func ActorFromRequest(r *http.Request) (models.Actor, error) {
	cfg := config.Get()

	header := r.Header.Get("Authorization")
	if header == "" && cfg.IsDevelopment() {
		return actorFromDevHeaders(r)
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return models.Actor{}, fmt.Errorf("missing bearer token")
	}

	return actorFromToken(token, cfg.JWTSecret)
}

func actorFromToken(token, secret string) (models.Actor, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return models.Actor{}, fmt.Errorf("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, fmt.Errorf("could not parse claims")
	}

	aliasID, ok := claims["alias_id"].(string)
	if !ok || aliasID == "" {
		return models.Actor{}, fmt.Errorf("token carries no alias_id")
	}

	verified, _ := claims["eligibility_verified"].(bool)

	return models.Actor{AliasID: aliasID, EligibilityVerified: verified}, nil
}

func actorFromDevHeaders(r *http.Request) (models.Actor, error) {
	aliasID := r.Header.Get("X-Dev-Alias-Id")
	if aliasID == "" {
		return models.Actor{}, fmt.Errorf("missing bearer token")
	}
	return models.Actor{
		AliasID:             aliasID,
		EligibilityVerified: r.Header.Get("X-Dev-Eligibility-Verified") == "true",
	}, nil
}
