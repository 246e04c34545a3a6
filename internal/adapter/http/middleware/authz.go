package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/codigix/Furnituredemo/configs"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

const callerKey = "caller"

type Authz struct {
	cfg configs.Config
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{cfg: cfg}
}

// RequireUser validates the bearer token and stores the caller
// identity (subject + admin flag) in the gin context.
func (a *Authz) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := a.authenticate(c)
		if !ok {
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// RequireAdmin validates the token like RequireUser and rejects
// non-admin callers. Both checks run before the handler; the chain
// only advances once the caller is known to be an admin.
func (a *Authz) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := a.authenticate(c)
		if !ok {
			return
		}
		if !caller.IsAdmin {
			forbidden(c, "insufficient_scope", "admin role required")
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// authenticate parses and validates the bearer token. On failure the
// request is aborted with a 401 and ok is false.
func (a *Authz) authenticate(c *gin.Context) (usecase.Caller, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		unauth(c, "invalid_request", "missing bearer token")
		return usecase.Caller{}, false
	}

	raw := strings.TrimPrefix(auth, "Bearer ")
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.cfg.Security.JWTSecret), nil
	}, jwt.WithLeeway(30*time.Second)) // small clock skew

	if err != nil || !token.Valid {
		unauth(c, "invalid_token", "invalid jwt")
		return usecase.Caller{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		unauth(c, "invalid_token", "claims parsing error")
		return usecase.Caller{}, false
	}
	if claims["iss"] != a.cfg.Security.Issuer || claims["aud"] != a.cfg.Security.Audience {
		unauth(c, "invalid_token", "iss/aud mismatch")
		return usecase.Caller{}, false
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		unauth(c, "invalid_token", "missing subject")
		return usecase.Caller{}, false
	}
	isAdmin, _ := claims["adm"].(bool)

	return usecase.Caller{UserID: sub, IsAdmin: isAdmin}, true
}

// CallerFrom returns the identity stored by RequireUser.
func CallerFrom(c *gin.Context) (usecase.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return usecase.Caller{}, false
	}
	caller, ok := v.(usecase.Caller)
	return caller, ok
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}

func forbidden(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code, "error_description": desc})
}
