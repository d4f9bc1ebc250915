// server/internal/auth/auth.go
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	// CoopID là hợp tác xã mà user thuộc về.
	CoopID string `json:"coopID"`
	// PrincipalID là danh tính dùng cho capability check của ledger và
	// (nếu bật) cho anchor identity trên Fabric.
	PrincipalID string `json:"principalID"`
	jwt.RegisteredClaims
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// JWT Generation
// JwtSecret được main gán từ config trước khi router chạy.
var JwtSecret []byte

func GenerateJWT(email, role, coopID, principalID string, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	expirationTime := time.Now().Add(expiration)
	claims := &JWTClaims{
		Email:       email,
		Role:        role,
		CoopID:      coopID,
		PrincipalID: principalID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtSecret)
}
