// server/internal/api/handlers/errors.go
package handlers

import (
	"net/http"

	"coffee-coop-ledger-api-server/internal/ledger"

	"github.com/gin-gonic/gin"
)

// respondLedgerError dịch error kind của ledger sang HTTP status.
// Validation -> 400, NotFound -> 404, State -> 409, Authorization -> 403.
func respondLedgerError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		status = http.StatusBadRequest
	case ledger.KindNotFound:
		status = http.StatusNotFound
	case ledger.KindState:
		status = http.StatusConflict
	case ledger.KindAuthorization:
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
