// server/internal/api/handlers/batch_handler_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"coffee-coop-ledger-api-server/config"
	"coffee-coop-ledger-api-server/internal/authz"
	"coffee-coop-ledger-api-server/internal/ledger"

	"github.com/gin-gonic/gin"
)

// testRouter dựng router tối thiểu với một middleware giả gán principal,
// bỏ qua JWT để test handler độc lập với auth.
func testRouter(principal string, coreLedger *ledger.Ledger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_principal_id", principal)
		c.Next()
	})

	batchHandler := &BatchHandler{
		Ledger: coreLedger,
		Cfg:    config.Config{Roasting: config.RoastingConfig{ShelfLifeDays: 180}},
	}
	router.POST("/batches", batchHandler.CreateBatch)
	router.POST("/batches/:id/roast", batchHandler.RoastBatch)
	router.GET("/batches/:id", batchHandler.GetBatch)
	router.GET("/batches/:id/custody", batchHandler.GetCustody)

	projectHandler := &ProjectHandler{Ledger: coreLedger}
	router.POST("/projects", projectHandler.CreateProject)
	router.POST("/projects/:id/advance", projectHandler.AdvanceStage)
	return router
}

func testCoreLedger() *ledger.Ledger {
	guard := authz.StaticGuard{
		"admin-1": {
			ledger.CapCreateBatch,
			ledger.CapRoastBatch,
			ledger.CapCreateProject,
			ledger.CapAdvanceProject,
		},
	}
	return ledger.New(guard, nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndRoastOverHTTP(t *testing.T) {
	router := testRouter("admin-1", testCoreLedger())

	w := doJSON(t, router, http.MethodPost, "/batches", gin.H{
		"productionDate":  "2026-03-01T00:00:00Z",
		"expiryDate":      "2027-03-01T00:00:00Z",
		"quantity":        1000,
		"pricePerUnit":    5,
		"collateralValue": 3000,
		"metadataRef":     "sha256:abc",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create batch: status %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/batches/1/roast", gin.H{
		"inputQuantity":          1000,
		"expectedOutputQuantity": 800,
		"roastProfileRef":        "sha256:profile",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("roast batch: status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		RoastedBatchID uint64 `json:"roastedBatchID"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode roast response: %v", err)
	}
	if resp.RoastedBatchID != 2 {
		t.Errorf("roastedBatchID = %d, want 2", resp.RoastedBatchID)
	}

	// Batch rang mới thuộc custody của principal gọi API.
	w = doJSON(t, router, http.MethodGet, "/batches/2/custody", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get custody: status %d", w.Code)
	}
	var custodyResp struct {
		Custody map[string]int64 `json:"custody"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &custodyResp); err != nil {
		t.Fatalf("failed to decode custody response: %v", err)
	}
	if custodyResp.Custody["admin-1"] != 800 {
		t.Errorf("custody = %v, want admin-1 holding 800", custodyResp.Custody)
	}
}

func TestLedgerErrorMapping(t *testing.T) {
	router := testRouter("admin-1", testCoreLedger())

	// Validation -> 400
	w := doJSON(t, router, http.MethodPost, "/batches", gin.H{
		"productionDate":  "2027-03-01T00:00:00Z",
		"expiryDate":      "2026-03-01T00:00:00Z",
		"quantity":        100,
		"pricePerUnit":    5,
		"collateralValue": 100,
		"metadataRef":     "sha256:abc",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("inverted dates: status %d, want 400", w.Code)
	}

	// NotFound -> 404
	w = doJSON(t, router, http.MethodGet, "/batches/99", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing batch: status %d, want 404", w.Code)
	}

	// State -> 409 (rang không hao)
	w = doJSON(t, router, http.MethodPost, "/batches", gin.H{
		"productionDate":  "2026-03-01T00:00:00Z",
		"expiryDate":      "2027-03-01T00:00:00Z",
		"quantity":        100,
		"pricePerUnit":    5,
		"collateralValue": 100,
		"metadataRef":     "sha256:abc",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("setup batch: status %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/batches/1/roast", gin.H{
		"inputQuantity":          100,
		"expectedOutputQuantity": 100,
		"roastProfileRef":        "sha256:profile",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("lossless roast: status %d, want 409", w.Code)
	}

	// Stage ngoài phạm vi phải đi tới ledger và trả 409 (StateError),
	// không bị binding chặn thành 400.
	w = doJSON(t, router, http.MethodPost, "/projects", gin.H{
		"metadataRef":    "sha256:proj",
		"plantingDate":   "2026-01-15T00:00:00Z",
		"maturityDate":   "2029-01-15T00:00:00Z",
		"projectedYield": 5000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("setup project: status %d, body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodPost, "/projects/1/advance", gin.H{
		"newStage":     9,
		"updatedYield": 5000,
		"evidenceRef":  "sha256:ev",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("out-of-range stage: status %d, want 409", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/projects/1/advance", gin.H{
		"newStage":     -1,
		"updatedYield": 5000,
		"evidenceRef":  "sha256:ev",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("negative stage: status %d, want 409", w.Code)
	}

	// Authorization -> 403
	unauthorized := testRouter("nobody", testCoreLedger())
	w = doJSON(t, unauthorized, http.MethodPost, "/batches", gin.H{
		"productionDate":  "2026-03-01T00:00:00Z",
		"expiryDate":      "2027-03-01T00:00:00Z",
		"quantity":        100,
		"pricePerUnit":    5,
		"collateralValue": 100,
		"metadataRef":     "sha256:abc",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("unauthorized principal: status %d, want 403", w.Code)
	}
}
