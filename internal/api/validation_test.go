package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	SlotID string `json:"slotId" binding:"required" validate:"required"`
	TTLMs  *int64 `json:"ttlMs" binding:"omitempty,gt=0" validate:"omitempty,gt=0"`
}

func bind(t *testing.T, body string) (*httptest.ResponseRecorder, bool, sampleRequest) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/locks", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req sampleRequest
	ok := BindJSON(c, &req)
	return w, ok, req
}

func TestBindJSON(t *testing.T) {
	_, ok, req := bind(t, `{"slotId":"slot-1","ttlMs":60000}`)
	require.True(t, ok)
	assert.Equal(t, "slot-1", req.SlotID)
	assert.Equal(t, int64(60000), *req.TTLMs)

	w, ok, _ := bind(t, `{"ttlMs":0}`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.NotEmpty(t, body.Details)

	w, ok, _ = bind(t, `{"slotId":`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestValidateStruct(t *testing.T) {
	negative := int64(-5)
	errs := ValidateStruct(sampleRequest{TTLMs: &negative})
	require.Len(t, errs, 2)
	assert.Equal(t, "SlotID is required", errs[0].Message)
	assert.Equal(t, "gt", errs[1].Tag)

	assert.Empty(t, ValidateStruct(sampleRequest{SlotID: "slot-1"}))
}
