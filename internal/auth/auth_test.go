// server/internal/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("ca-phe-sach-2026")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("ca-phe-sach-2026", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateAndParseJWT(t *testing.T) {
	JwtSecret = []byte("test-secret")

	tokenString, err := GenerateJWT("alice@coop.vn", "roaster", "coop-daklak", "roaster-1a2b3c4d", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtSecret, nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not parse as valid: %v", err)
	}
	if claims.Role != "roaster" || claims.PrincipalID != "roaster-1a2b3c4d" || claims.CoopID != "coop-daklak" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}
