package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
)

func recordRespondError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/sales", nil)
	respondError(c, "respond.go", "test", err)
	return w
}

// Every error the models layer raises for bad client input must come back as
// a client status, never a 500.
func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing product reference", fmt.Errorf("product: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{"missing customer reference", fmt.Errorf("customer: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{"invalid payment method", fmt.Errorf("%w: invalid payment method", utils.ErrorValidation), http.StatusBadRequest},
		{"non-positive qty", fmt.Errorf("%w: item qty must be greater than zero", utils.ErrorValidation), http.StatusBadRequest},
		{"negative amount", fmt.Errorf("%w: discount cannot be negative", utils.ErrorValidation), http.StatusBadRequest},
		{"in-use delete guard", fmt.Errorf("%w: vendor is used by products", utils.ErrorValidation), http.StatusBadRequest},
		{"grand total mismatch", fmt.Errorf("%w: grand total mismatch: client sent 1, server computed 2", utils.ErrorValidation), http.StatusBadRequest},
		{"duplicate value", fmt.Errorf("sku: %w", utils.ErrorDuplicate), http.StatusConflict},
		{"insufficient stock", &utils.InsufficientStockError{
			ProductId: 1,
			Requested: decimal.NewFromInt(5),
			Available: decimal.NewFromInt(2),
		}, http.StatusBadRequest},
		{"managed movement", models.ErrMovementManaged, http.StatusBadRequest},
		{"managed ledger entry", models.ErrLedgerEntryManaged, http.StatusBadRequest},
		{"unknown error", fmt.Errorf("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := recordRespondError(tc.err)
			if w.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tc.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

// Unknown errors must not leak internals to the client.
func TestRespondErrorHidesInternalDetails(t *testing.T) {
	w := recordRespondError(fmt.Errorf("dial tcp 10.0.0.5:3306: connection refused"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "internal server error") {
		t.Fatalf("expected generic message, got %s", body)
	}
	if strings.Contains(body, "10.0.0.5") {
		t.Fatalf("internal detail leaked: %s", body)
	}
}
