package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IssueToken signs the HS256 token AuthMiddleware accepts.
func IssueToken(secret string, employeeID int64, role string, ttl time.Duration, now time.Time) (string, error) {
	if employeeID <= 0 {
		return "", errors.New("employee id must be positive")
	}
	claims := jwt.MapClaims{
		"employee_id": strconv.FormatInt(employeeID, 10),
		"role":        role,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
