package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/constructora/backend/internal/infrastructure/auth"
	"github.com/constructora/backend/internal/infrastructure/cache"
	"github.com/constructora/backend/internal/infrastructure/config"
	"github.com/constructora/backend/internal/infrastructure/logger"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		assert.Equal(t, GetRequestID(c), logger.GetRequestID(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestJWTAuth(t *testing.T) {
	svc := auth.NewJWTService(config.AuthConfig{Secret: "test-secret-key-at-least-32-chars"})
	valid, err := svc.Sign("u-1", "Laura Gómez", time.Hour)
	require.NoError(t, err)
	expired, err := svc.Sign("u-1", "Laura Gómez", -time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(zap.NewNop()), JWTAuth(JWTMiddlewareConfig{
		Verifier:  svc,
		Enabled:   true,
		SkipPaths: []string{"/health"},
	}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api", func(c *gin.Context) {
		assert.Equal(t, GetActor(c), logger.GetActor(c.Request.Context()))
		c.String(http.StatusOK, GetActor(c))
	})

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantErr  string
		wantBody string
	}{
		{"skipped path", "/health", "", http.StatusOK, "", ""},
		{"missing header", "/api", "", http.StatusUnauthorized, dto.ErrCodeTokenInvalid, ""},
		{"not bearer", "/api", "Basic abc", http.StatusUnauthorized, dto.ErrCodeTokenInvalid, ""},
		{"expired", "/api", "Bearer " + expired, http.StatusUnauthorized, dto.ErrCodeTokenExpired, ""},
		{"valid", "/api", "Bearer " + valid, http.StatusOK, "", "Laura Gómez"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				resp := decode(t, w)
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantErr, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.RequestID)
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestJWTAuth_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(JWTAuth(JWTMiddlewareConfig{}))
	r.GET("/api", func(c *gin.Context) { c.String(http.StatusOK, GetActor(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, defaultActor, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set(DevActorHeader, "Cartera")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "Cartera", w.Body.String())
}

func TestIdempotencyKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	status := http.StatusCreated
	r := gin.New()
	r.Use(IdempotencyKey(store, time.Hour, zap.NewNop()))
	r.POST("/abonos", func(c *gin.Context) { c.Status(status) })

	post := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/abonos", nil)
		if key != "" {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post("k-1").Code)
	w := post("k-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_REQUEST", decode(t, w).Error.Code)

	// no header means no deduplication
	assert.Equal(t, http.StatusCreated, post("").Code)
	assert.Equal(t, http.StatusCreated, post("").Code)

	// failed requests release their key
	status = http.StatusUnprocessableEntity
	assert.Equal(t, http.StatusUnprocessableEntity, post("k-2").Code)
	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, post("k-2").Code)

	assert.Equal(t, http.StatusBadRequest, post(strings.Repeat("x", maxIdempotencyKeyLength+1)).Code)
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/x", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"nota":"`+strings.Repeat("a", 64)+`"}`))
	req.ContentLength = 74
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, decode(t, w).Error.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSWithConfig(CORSConfig{AllowOrigins: []string{"https://cartera.constructora.co"}, AllowMethods: []string{"GET", "POST"}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://cartera.constructora.co")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cartera.constructora.co", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://otro.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type bindTarget struct {
	Fuente string `json:"fuente" binding:"required,fuente"`
	Paso   string `json:"paso" binding:"omitempty,step"`
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var req bindTarget
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	send := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body)))
		return w
	}

	w := send(`{"fuente":"LOTERIA","paso":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "fuente", resp.Error.Details[0].Field)
	assert.Equal(t, "paso", resp.Error.Details[1].Field)

	w = send(`{"fuente":`)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
}
