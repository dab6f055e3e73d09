package security

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// JWTMiddleware validates the bearer token and stores the actor.
func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		actor, err := parseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
	c.Set("userID", actor.ID)
	c.Set("role", actor.Role)
}

func CurrentActor(c *gin.Context) (models.Actor, error) {
	value, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, fmt.Errorf("no authenticated actor")
	}
	actor, ok := value.(models.Actor)
	if !ok {
		return models.Actor{}, fmt.Errorf("invalid actor format")
	}
	return actor, nil
}

// Authorize ensures the actor has at least the required role.
func Authorize(requiredRole roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil || !actor.Role.HasPermission(requiredRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			return
		}

		c.Next()
	}
}

// RequireApprover gates request review on the approval capability.
func RequireApprover() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil || !roles.CanApprove(actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: approval requires supervisor or admin", "code": "forbidden"})
			return
		}

		c.Next()
	}
}

// AuthorizeOwnerOr lets a technician through for their own :param id and
// anyone else only with the given role.
func AuthorizeOwnerOr(param string, role roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			return
		}

		ownerID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
			return
		}

		if actor.ID != ownerID && !actor.Role.HasPermission(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			return
		}

		c.Next()
	}
}
