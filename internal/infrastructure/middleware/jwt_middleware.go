package middleware

import (
	"net/http"
	"strings"

	"sms_campaign_server/pkg/errorx"
	"sms_campaign_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// OperatorKey is the gin context key holding the authenticated operator.
const OperatorKey = "operator"

// JWTAuth requires a valid access token, from the Authorization header or,
// for websocket upgrades where browsers cannot set headers, the token query parameter.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed bearer token")
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "token expired or invalid")
			return
		}
		if claims.Subject != "access_token" {
			abortUnauthorized(c, "an access token is required")
			return
		}

		c.Set(OperatorKey, claims.Operator)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}
