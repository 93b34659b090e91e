package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ali-shok/employee-management/internal/shared/apperror"
	"github.com/Ali-shok/employee-management/internal/shared/contextutil"
	"github.com/Ali-shok/employee-management/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)
)

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Abort(c, err.HTTPStatus, err.Code, err.Message, nil)
}

// AuthMiddleware verifies an HMAC signed bearer token (or the access_token
// cookie) and exposes employee_id and role to the handlers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, ErrTokenExpired)
				return
			}
			abortWith(c, ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			return
		}

		employeeID := claimID(claims["employee_id"])
		if employeeID == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Employee ID not found in token", nil)
			return
		}

		role, _ := claims["role"].(string)

		c.Set("employee_id", employeeID)
		c.Set("role", role)
		c.Request = c.Request.WithContext(contextutil.WithEmployeeID(c.Request.Context(), employeeID))

		c.Next()
	}
}

// claimID accepts the employee id as a JSON string or number.
func claimID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		if id <= 0 || id != float64(int64(id)) {
			return ""
		}
		return strconv.FormatInt(int64(id), 10)
	default:
		return ""
	}
}
