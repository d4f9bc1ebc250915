// server/internal/api/handlers/user_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"coffee-coop-ledger-api-server/config"
	"coffee-coop-ledger-api-server/internal/auth"
	"coffee-coop-ledger-api-server/internal/authz"
	"coffee-coop-ledger-api-server/internal/ca"
	"coffee-coop-ledger-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hyperledger/fabric-sdk-go/pkg/client/msp"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	DB    *mongo.Database
	Guard *authz.Guard
	Cfg   config.Config
	// CAService và Wallet chỉ khác nil khi bật anchor qua Fabric.
	CAService *ca.CAService
	Wallet    *gateway.Wallet
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"` // "admin", "roaster", "agronomist"
	CoopID   string `json:"coopID" binding:"required"`
	// Affiliation chỉ dùng khi bật anchor, ví dụ: "coffeecoop.daklak"
	Affiliation string `json:"affiliation"`
}

// Login xác thực email/password và trả về JWT.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
		return
	}

	expiration, err := time.ParseDuration(h.Cfg.JWT.Expiration)
	if err != nil {
		expiration = 24 * time.Hour
	}
	token, err := auth.GenerateJWT(user.Email, user.Role, user.CoopID, user.PrincipalID, expiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"role":        user.Role,
		"principalID": user.PrincipalID,
	})
}

// CreateUser tạo user mới: lưu Mongo, nạp lại bảng capability, và (nếu
// bật anchor) đăng ký identity Fabric tương ứng.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("users")
	count, err := collection.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	// 1. Tạo Principal ID duy nhất
	principalID := fmt.Sprintf("%s-%s", req.Role, uuid.New().String()[:8])

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	newUser := models.User{
		Email:       req.Email,
		Name:        req.Name,
		Password:    hashedPassword,
		Role:        req.Role,
		CoopID:      req.CoopID,
		Status:      "active",
		PrincipalID: principalID,
	}
	if _, err := collection.InsertOne(context.Background(), newUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// 2. Nạp lại bảng principal -> capability cho ledger guard
	if err := h.Guard.Refresh(context.Background()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User created but failed to refresh capability table", "details": err.Error()})
		return
	}

	// 3. Nếu bật anchor: đăng ký và ghi danh identity Fabric cho user
	if h.CAService != nil && h.Wallet != nil {
		attributes := []msp.Attribute{
			{Name: "role", Value: req.Role, ECert: true},
			{Name: "coopID", Value: req.CoopID, ECert: true},
		}
		secret, err := h.CAService.RegisterUser(principalID, req.Affiliation, attributes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user with CA", "details": err.Error()})
			return
		}
		cert, key, err := h.CAService.EnrollUser(principalID, secret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enroll user with CA", "details": err.Error()})
			return
		}
		identity := gateway.NewX509Identity(h.Cfg.Fabric.OrgName+"MSP", string(cert), string(key))
		if err := h.Wallet.Put(principalID, identity); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save new identity to wallet", "details": err.Error()})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":      "success",
		"message":     "User created successfully",
		"principalID": principalID,
		"email":       req.Email,
	})
}
