package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

// ActorKey is the gin context key holding the authenticated user's id.
const ActorKey = "actor_user_id"

// ActorClaims is the subset of the auth layer's token we care about: the
// user id that activity-log rows attribute actions to.
type ActorClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Actor reads the access token the external auth layer issued, from the
// cookie it sets or from a bearer header, and stashes the user id in the
// request context. Requests without a valid token proceed as the system
// actor; this middleware never rejects.
func Actor(secret, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = "access_token"
	}

	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		tokenString, err := c.Cookie(cookieName)
		if err != nil || tokenString == "" {
			header := c.GetHeader("Authorization")
			tokenString = strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				tokenString = ""
			}
		}
		if tokenString == "" {
			c.Next()
			return
		}

		claims := &ActorClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Debug().Err(err).Msg("request carried an invalid access token, proceeding unattributed")
			c.Next()
			return
		}

		if claims.UserID > 0 {
			c.Set(ActorKey, claims.UserID)
		}
		c.Next()
	}
}

// ActorID extracts the authenticated user id set by Actor, or nil when the
// request ran as the system actor.
func ActorID(c *gin.Context) *int64 {
	v, ok := c.Get(ActorKey)
	if !ok {
		return nil
	}
	id, ok := v.(int64)
	if !ok {
		return nil
	}
	return &id
}
