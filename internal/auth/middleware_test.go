package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ChannelMiddleware(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := GetChannelID(c)
		c.String(http.StatusOK, id)
	})
	r.POST("/payments/captured", RequireRole(RolePayments), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestChannelMiddlewareHeaders(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Empty header", "", http.StatusUnauthorized},
		{"Invalid format", "Token abc", http.StatusUnauthorized},
		{"Empty token", "Bearer ", http.StatusUnauthorized},
		{"Garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}

	router := setupRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestChannelMiddlewareSetsChannel(t *testing.T) {
	token, err := GenerateChannelToken("hudle", RolePartner, testSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	setupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hudle", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	router := setupRouter()

	partner, _ := GenerateChannelToken("hudle", RolePartner, testSecret, time.Hour)
	payments, _ := GenerateChannelToken("razorpay", RolePayments, testSecret, time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/captured", nil)
	req.Header.Set("Authorization", "Bearer "+partner)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/payments/captured", nil)
	req.Header.Set("Authorization", "Bearer "+payments)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RequireRole(RoleDesk)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestGetChannelID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetChannelID(c)
	assert.False(t, ok)

	SetChannelID(c, "desk", RoleDesk)
	id, ok := GetChannelID(c)
	assert.True(t, ok)
	assert.Equal(t, "desk", id)
}
