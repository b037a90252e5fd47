package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
	"ladle/internal/infrastructure/http/v1/middleware"
)

// History without a configured audit trail answers 404, not a panic
// turned into a 500 by the recovery middleware.
func TestStockHistoryWithoutAuditTrail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	handler := NewStockHandler(NewBaseHandler(), nil, nil)
	router.GET("/stock/:id/history", handler.History)

	req := httptest.NewRequest(http.MethodGet, "/stock/"+id.New().String()+"/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeNotFound, body.Code)
}
