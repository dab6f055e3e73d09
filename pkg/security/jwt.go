package security

import (
	"fmt"
	"strconv"
	"time"

	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWT signs a token carrying the actor claims.
func GenerateJWT(secret []byte, actor models.Actor, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userID": strconv.FormatInt(actor.ID, 10),
		"role":   actor.Role.String(),
		"exp":    time.Now().Add(ttl).Unix(),
	}
	if actor.RegionID != nil {
		claims["regionID"] = strconv.FormatInt(*actor.RegionID, 10)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(secret []byte, tokenString string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return models.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, fmt.Errorf("invalid claims")
	}

	id, err := claimInt(claims, "userID")
	if err != nil {
		return models.Actor{}, err
	}
	roleName, _ := claims["role"].(string)
	role := roles.Role(roleName)
	if !role.IsValid() {
		return models.Actor{}, fmt.Errorf("unknown role %q", roleName)
	}

	actor := models.Actor{ID: id, Role: role}
	if _, ok := claims["regionID"]; ok {
		regionID, err := claimInt(claims, "regionID")
		if err != nil {
			return models.Actor{}, err
		}
		actor.RegionID = &regionID
	}

	return actor, nil
}

// claimInt accepts both string and numeric claims.
func claimInt(claims jwt.MapClaims, key string) (int64, error) {
	switch v := claims[key].(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not a number", key)
		}
		return id, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s claim missing", key)
	}
}
