// server/internal/api/handlers/project_handler.go
package handlers

import (
	"net/http"
	"time"

	"coffee-coop-ledger-api-server/internal/ledger"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	Ledger *ledger.Ledger
}

// CreateProjectRequest defines the structure for the greenfield project creation request.
type CreateProjectRequest struct {
	MetadataRef     string    `json:"metadataRef" binding:"required"`
	PlantingDate    time.Time `json:"plantingDate" binding:"required"`
	MaturityDate    time.Time `json:"maturityDate" binding:"required"`
	ProjectedYield  int64     `json:"projectedYield" binding:"required"`
	CollateralValue int64     `json:"collateralValue"`
}

// AdvanceStageRequest defines the structure for the stage advance request.
// NewStage được truyền nguyên vẹn cho ledger: stage ngoài phạm vi hay đi
// lùi là StateError của core, không phải lỗi binding.
type AdvanceStageRequest struct {
	NewStage     int    `json:"newStage"`
	UpdatedYield int64  `json:"updatedYield" binding:"required"`
	EvidenceRef  string `json:"evidenceRef" binding:"required"`
}

// CreateProject handles the API endpoint for registering a greenfield project.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := c.GetString("user_principal_id")

	projectID, err := h.Ledger.CreateProject(
		principal,
		req.MetadataRef,
		req.PlantingDate,
		req.MaturityDate,
		req.ProjectedYield,
		req.CollateralValue,
	)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "projectID": projectID})
}

// AdvanceStage handles the API endpoint for moving a project forward in
// its investment stage. Evidence đã phải được upload trước (POST
// /metadata) và ref của nó đi kèm request.
func (h *ProjectHandler) AdvanceStage(c *gin.Context) {
	projectID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	var req AdvanceStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := c.GetString("user_principal_id")

	err = h.Ledger.AdvanceStage(principal, projectID, ledger.Stage(req.NewStage), req.UpdatedYield, req.EvidenceRef)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"projectID": projectID,
		"newStage":  ledger.Stage(req.NewStage).String(),
	})
}

// GetProject trả về project kèm tên stage cho dễ đọc.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	project, err := h.Ledger.GetProject(projectID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project, "stageName": project.Stage.String()})
}

// GetProjectBatchView trả về hình chiếu dạng batch của project, cho các
// consumer phía collateral chỉ hiểu batch.
func (h *ProjectHandler) GetProjectBatchView(c *gin.Context) {
	projectID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	view, err := h.Ledger.ProjectBatchView(projectID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
