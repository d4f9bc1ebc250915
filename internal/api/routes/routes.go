// server/internal/api/routes/routes.go
package routes

import (
	"coffee-coop-ledger-api-server/config"
	"coffee-coop-ledger-api-server/internal/api/handlers"
	"coffee-coop-ledger-api-server/internal/api/middleware"
	"coffee-coop-ledger-api-server/internal/authz"
	"coffee-coop-ledger-api-server/internal/ca"
	"coffee-coop-ledger-api-server/internal/ledger"
	"coffee-coop-ledger-api-server/internal/s3"
	"coffee-coop-ledger-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter nhận vào các thành phần phụ thuộc và thiết lập các route
func SetupRouter(
	coreLedger *ledger.Ledger,
	guard *authz.Guard,
	cfg config.Config,
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
	caService *ca.CAService, // nil khi không bật anchor
	fabricWallet *gateway.Wallet, // nil khi không bật anchor
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	// Khởi tạo các handlers
	batchHandler := &handlers.BatchHandler{Ledger: coreLedger, Cfg: cfg}
	projectHandler := &handlers.ProjectHandler{Ledger: coreLedger}
	userHandler := &handlers.UserHandler{DB: db, Guard: guard, Cfg: cfg, CAService: caService, Wallet: fabricWallet}
	eventHandler := &handlers.EventHandler{DB: db}
	metadataHandler := &handlers.MetadataHandler{S3Uploader: s3Uploader}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// Route cho WebSocket
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === CÁC ROUTE KHÔNG YÊU CẦU XÁC THỰC ===

		// Nhóm API authentication
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// Nhóm API công khai (Public)
		public := apiV1.Group("/")
		{
			// API truy xuất nguồn gốc batch, không cần JWT
			public.GET("/batches/:id", batchHandler.GetBatch)
			public.GET("/batches/:id/exists", batchHandler.BatchExists)
		}

		// === CÁC ROUTE YÊU CẦU XÁC THỰC (PROTECTED) ===

		// Nhóm API quản trị, yêu cầu vai trò "superadmin"
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize("superadmin"))
		{
			admin.POST("/users", userHandler.CreateUser)
		}

		// Nhóm các API nghiệp vụ chính, yêu cầu các vai trò cụ thể.
		// Ledger guard vẫn kiểm tra capability riêng cho từng principal;
		// middleware ở đây chỉ chặn sớm theo role.
		businessRoutes := apiV1.Group("/")
		businessRoutes.Use(middleware.Authenticate())
		businessRoutes.Use(middleware.Authorize("admin", "roaster", "agronomist", "superadmin"))
		{
			// Batch registry
			batches := businessRoutes.Group("/batches")
			{
				batches.GET("/", batchHandler.GetActiveBatches)
				batches.GET("/:id/custody", batchHandler.GetCustody)

				createBatchRoutes := batches.Group("/")
				createBatchRoutes.Use(middleware.Authorize("admin", "superadmin"))
				{
					createBatchRoutes.POST("/", batchHandler.CreateBatch)
				}

				roastRoutes := batches.Group("/")
				roastRoutes.Use(middleware.Authorize("roaster", "superadmin"))
				{
					roastRoutes.POST("/:id/roast", batchHandler.RoastBatch)
				}
			}

			// Greenfield projects
			projects := businessRoutes.Group("/projects")
			{
				projects.GET("/:id", projectHandler.GetProject)
				projects.GET("/:id/batch-view", projectHandler.GetProjectBatchView)

				createProjectRoutes := projects.Group("/")
				createProjectRoutes.Use(middleware.Authorize("admin", "superadmin"))
				{
					createProjectRoutes.POST("/", projectHandler.CreateProject)
				}

				advanceRoutes := projects.Group("/")
				advanceRoutes.Use(middleware.Authorize("agronomist", "admin", "superadmin"))
				{
					advanceRoutes.POST("/:id/advance", projectHandler.AdvanceStage)
				}
			}

			// Event index (read side)
			businessRoutes.GET("/events", eventHandler.ListEvents)

			// Metadata/evidence upload
			businessRoutes.POST("/metadata", metadataHandler.UploadMetadata)
		}
	}

	return router
}
