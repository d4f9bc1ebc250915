// server/internal/database/seeder.go
package database

import (
	"context"
	"log"

	"coffee-coop-ledger-api-server/internal/auth"
	"coffee-coop-ledger-api-server/internal/authz"
	"coffee-coop-ledger-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeedSuperAdmin đảm bảo luôn có một tài khoản superadmin để bootstrap.
func SeedSuperAdmin(db *mongo.Database) error {
	userCollection := db.Collection("users")
	superAdminEmail := "superadmin@example.com"

	// Kiểm tra xem superadmin đã tồn tại chưa
	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": superAdminEmail})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Super admin already exists. Seeding skipped.")
		return nil
	}

	// Tạo superadmin nếu chưa có
	log.Println("Super admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword("superadminpassword") // Đặt một password mặc định
	if err != nil {
		return err
	}

	superAdmin := models.User{
		Email:       superAdminEmail,
		Name:        "Super Admin",
		Password:    hashedPassword,
		Role:        "superadmin",
		CoopID:      "system",
		Status:      "active",
		PrincipalID: "superadmin",
	}

	_, err = userCollection.InsertOne(context.Background(), superAdmin)
	if err != nil {
		return err
	}

	log.Println("Super admin seeded successfully.")
	return nil
}

// SeedRoleGrants ghi bảng role -> capability mặc định. Upsert theo role
// để lần chạy sau không nhân đôi, nhưng cũng không đè grant đã chỉnh tay.
func SeedRoleGrants(db *mongo.Database) error {
	collection := db.Collection("role_grants")

	for role, caps := range authz.DefaultGrants {
		count, err := collection.CountDocuments(context.Background(), bson.M{"role": role})
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		_, err = collection.InsertOne(context.Background(), models.RoleGrant{
			Role:         role,
			Capabilities: caps,
		})
		if err != nil {
			return err
		}
		log.Printf("Seeded default capabilities for role %q", role)
	}

	// Index cho event log: truy vấn theo seq và theo tên event.
	eventCollection := db.Collection("ledger_events")
	_, err := eventCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "seq", Value: -1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	return err
}
