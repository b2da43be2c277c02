package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/config"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

// AccessClaims carries the principal through the HS256 access token. The
// role and admin flags are embedded so policy checks need no user lookup.
type AccessClaims struct {
	jwt.StandardClaims
	Username  string `json:"username"`
	Role      string `json:"role"`
	Staff     bool   `json:"staff"`
	Superuser bool   `json:"superuser"`
}

// IssueToken signs an access token for an authenticated user.
func IssueToken(user *model.User) (string, error) {
	ttl := config.GetDuration("auth.tokenTTL")
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := AccessClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
		Username:  user.Username,
		Role:      string(user.Role),
		Staff:     user.IsStaff,
		Superuser: user.IsSuperuser,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetString("auth.jwtSecret")))
}

// ParseToken validates a signed access token and returns its claims.
func ParseToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.GetString("auth.jwtSecret")), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or wrong claims type")
	}
	return claims, nil
}

// Auth resolves the request principal from the Authorization header. A
// missing or invalid token leaves the request anonymous; endpoints that
// require authentication deny through their policies, not here.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.Next()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims, err := ParseToken(tokenString)
		if err != nil {
			logger.Warn("Rejecting invalid token, continuing anonymous",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			c.Next()
			return
		}

		role, err := model.ParseRole(claims.Role)
		if err != nil {
			logger.Warn("Token carries unknown role, continuing anonymous",
				zap.String("role", claims.Role),
				zap.String("userID", claims.Subject))
			c.Next()
			return
		}

		principal := &model.User{
			ID:          claims.Subject,
			Username:    claims.Username,
			Role:        role,
			IsActive:    true,
			IsStaff:     claims.Staff,
			IsSuperuser: claims.Superuser,
		}
		c.Set(util.PrincipalKey, principal)
		c.Next()
	}
}
