// server/internal/api/handlers/batch_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"coffee-coop-ledger-api-server/config"
	"coffee-coop-ledger-api-server/internal/ledger"

	"github.com/gin-gonic/gin"
)

type BatchHandler struct {
	Ledger *ledger.Ledger
	Cfg    config.Config
}

// CreateBatchRequest defines the structure for the batch creation request.
type CreateBatchRequest struct {
	ProductionDate  time.Time `json:"productionDate" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ExpiryDate      time.Time `json:"expiryDate" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Quantity        int64     `json:"quantity" binding:"required"`
	PricePerUnit    int64     `json:"pricePerUnit" binding:"required"`
	CollateralValue int64     `json:"collateralValue"`
	MetadataRef     string    `json:"metadataRef" binding:"required"`
}

// RoastBatchRequest defines the structure for the roasting conversion request.
type RoastBatchRequest struct {
	InputQuantity          int64  `json:"inputQuantity" binding:"required"`
	ExpectedOutputQuantity int64  `json:"expectedOutputQuantity" binding:"required"`
	RoastProfileRef        string `json:"roastProfileRef" binding:"required"`
}

// CreateBatch handles the API endpoint for registering a new green batch.
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := c.GetString("user_principal_id")

	batchID, err := h.Ledger.CreateBatch(
		principal,
		req.ProductionDate,
		req.ExpiryDate,
		req.Quantity,
		req.PricePerUnit,
		req.CollateralValue,
		req.MetadataRef,
	)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "batchID": batchID})
}

// RoastBatch handles the API endpoint for the green -> roasted conversion.
// Batch thành phẩm thuộc custody của chính principal gọi API.
func (h *BatchHandler) RoastBatch(c *gin.Context) {
	sourceID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch id"})
		return
	}

	var req RoastBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := c.GetString("user_principal_id")
	shelfLife := time.Duration(h.Cfg.Roasting.ShelfLifeDays) * 24 * time.Hour

	roastedID, err := h.Ledger.ConvertToRoasted(principal, ledger.RoastRequest{
		SourceBatchID:   sourceID,
		InputQuantity:   req.InputQuantity,
		OutputQuantity:  req.ExpectedOutputQuantity,
		RoasterIdentity: principal,
		RoastProfileRef: req.RoastProfileRef,
		RoastedAt:       time.Now(),
		ShelfLife:       shelfLife,
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":         "success",
		"sourceBatchID":  sourceID,
		"roastedBatchID": roastedID,
	})
}

// GetBatch handles the public trace endpoint for a single batch.
func (h *BatchHandler) GetBatch(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch id"})
		return
	}

	batch, err := h.Ledger.GetBatch(id)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// BatchExists là pure lookup cho các hệ thống đối chiếu collateral.
func (h *BatchHandler) BatchExists(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch id"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"batchID": id, "exists": h.Ledger.BatchExists(id)})
}

// GetCustody trả về bảng holder -> quantity của một batch.
func (h *BatchHandler) GetCustody(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch id"})
		return
	}

	custody, err := h.Ledger.CustodyOf(id)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"batchID": id, "custody": custody})
}

// GetActiveBatches liệt kê các batch còn inventory.
func (h *BatchHandler) GetActiveBatches(c *gin.Context) {
	ids := h.Ledger.ActiveBatchIDs()
	batches := make([]ledger.Batch, 0, len(ids))
	for _, id := range ids {
		if b, err := h.Ledger.GetBatch(id); err == nil {
			batches = append(batches, b)
		}
	}
	c.JSON(http.StatusOK, batches)
}

func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}
