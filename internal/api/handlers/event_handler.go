// server/internal/api/handlers/event_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"coffee-coop-ledger-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventHandler struct {
	DB *mongo.Database
}

// ListEvents trả về change event đã commit, mới nhất trước, lọc được
// theo tên event. Đây là read side của event index; ledger không bao giờ
// đọc lại từ đây.
func (h *EventHandler) ListEvents(c *gin.Context) {
	filter := bson.M{}
	if name := c.Query("name"); name != "" {
		filter["name"] = name
	}

	limit := int64(100)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}}).SetLimit(limit)
	cursor, err := h.DB.Collection("ledger_events").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query events"})
		return
	}
	defer cursor.Close(context.Background())

	var events []models.LedgerEvent
	if err = cursor.All(context.Background(), &events); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode events"})
		return
	}

	if events == nil {
		events = []models.LedgerEvent{}
	}

	c.JSON(http.StatusOK, events)
}
