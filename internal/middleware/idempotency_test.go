package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

const (
	testCacheKey = "idemp:/leave/requests/:employeeId:5:abc"
	testLockKey  = testCacheKey + ":lock"
)

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).SetVal(`{"id":11}`)

	called := false
	r := gin.New()
	r.POST("/leave/requests/:employeeId", withIdentity("5", "employee"), Idempotency(rdb), func(c *gin.Context) {
		called = true
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/leave/requests/5", nil)
	req.Header.Set(IdempotencyHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, `{"ok":true,"data":{"id":11}}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_AcquiresLock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).RedisNil()
	mock.ExpectSetNX(testLockKey, "locked", idempotencyLockTTL).SetVal(true)

	var gotCache, gotLock string
	r := gin.New()
	r.POST("/leave/requests/:employeeId", withIdentity("5", "employee"), Idempotency(rdb), func(c *gin.Context) {
		gotCache = c.GetString(IdempotencyCacheKey)
		gotLock = c.GetString(IdempotencyLockKey)
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/leave/requests/5", nil)
	req.Header.Set(IdempotencyHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, testCacheKey, gotCache)
	assert.Equal(t, testLockKey, gotLock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ConcurrentDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).RedisNil()
	mock.ExpectSetNX(testLockKey, "locked", idempotencyLockTTL).SetVal(false)

	r := gin.New()
	r.POST("/leave/requests/:employeeId", withIdentity("5", "employee"), Idempotency(rdb), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/leave/requests/5", nil)
	req.Header.Set(IdempotencyHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PROCESSING")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_RedisDownFallsThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).SetErr(errors.New("connection refused"))

	r := gin.New()
	r.POST("/leave/requests/:employeeId", withIdentity("5", "employee"), Idempotency(rdb), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/leave/requests/5", nil)
	req.Header.Set(IdempotencyHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_NoKeySkips(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()

	r := gin.New()
	r.POST("/leave/requests/:employeeId", Idempotency(rdb), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leave/requests/5", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
