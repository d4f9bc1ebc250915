// server/cmd/api/main.go
package main

import (
	"context"
	"log"

	"coffee-coop-ledger-api-server/config"
	"coffee-coop-ledger-api-server/internal/anchor"
	"coffee-coop-ledger-api-server/internal/api/routes"
	"coffee-coop-ledger-api-server/internal/auth"
	"coffee-coop-ledger-api-server/internal/authz"
	"coffee-coop-ledger-api-server/internal/ca"
	"coffee-coop-ledger-api-server/internal/database"
	"coffee-coop-ledger-api-server/internal/indexer"
	"coffee-coop-ledger-api-server/internal/ledger"
	"coffee-coop-ledger-api-server/internal/s3"
	"coffee-coop-ledger-api-server/internal/socket"

	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// 1. Nạp .env (nếu có) rồi load configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment and config file only")
	}
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	auth.JwtSecret = []byte(cfg.JWT.Secret)

	// 2. Kết nối MongoDB
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.Mongo.DBName)

	// 3. Seed superadmin và bảng capability mặc định
	if err := database.SeedSuperAdmin(db); err != nil {
		log.Fatalf("Failed to seed super admin: %v", err)
	}
	if err := database.SeedRoleGrants(db); err != nil {
		log.Fatalf("Failed to seed role grants: %v", err)
	}

	// 4. Nạp authorization guard cho ledger
	guard := authz.NewGuard(db)
	if err := guard.Refresh(context.Background()); err != nil {
		log.Fatalf("Failed to load capability table: %v", err)
	}

	// 5. WebSocket hub + event indexer (sink bắt buộc của mọi commit)
	wsHub := socket.NewHub()
	eventIndexer := indexer.New(db, wsHub)
	defer eventIndexer.Close()

	notifiers := ledger.Notifiers{eventIndexer}

	// 6. Anchor qua Fabric (tùy chọn)
	var caService *ca.CAService
	var fabricWallet *gateway.Wallet
	if cfg.Fabric.Enabled {
		fabricSetup, err := anchor.Initialize(cfg.Fabric)
		if err != nil {
			log.Fatalf("Failed to initialize Fabric anchor: %v", err)
		}
		defer fabricSetup.Gateway.Close()

		eventAnchor := anchor.NewAnchor(fabricSetup)
		defer eventAnchor.Close()
		notifiers = append(notifiers, eventAnchor)

		caService, err = ca.NewCAService(fabricSetup.SDK, cfg.Fabric.CAName, cfg.Fabric.OrgName, cfg.Fabric.UserName)
		if err != nil {
			log.Fatalf("Failed to create CA service: %v", err)
		}
		fabricWallet = fabricSetup.Wallet
	}

	// 7. Khởi tạo ledger core
	coreLedger := ledger.New(guard, notifiers)

	// 8. S3 uploader cho metadata/evidence
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to create S3 uploader: %v", err)
	}

	// 9. Truyền tất cả các thành phần cần thiết vào router
	router := routes.SetupRouter(coreLedger, guard, cfg, db, s3Uploader, wsHub, caService, fabricWallet)

	// 10. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
