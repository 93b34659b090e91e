package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLive(t *testing.T) {
	w := serve(NewHandler(nil, nil, zap.NewNop()), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"status":"ok"}}`, w.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		assert.NoError(t, err)
		defer db.Close()
		rdb, redisMock := redismock.NewClientMock()

		dbMock.ExpectPing()
		redisMock.ExpectPing().SetVal("PONG")

		w := serve(NewHandler(db, rdb, zap.NewNop()), "/readyz")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, dbMock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("database down", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		assert.NoError(t, err)
		defer db.Close()

		dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))

		w := serve(NewHandler(db, nil, zap.NewNop()), "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("redis down", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		assert.NoError(t, err)
		defer db.Close()
		rdb, redisMock := redismock.NewClientMock()

		dbMock.ExpectPing()
		redisMock.ExpectPing().SetErr(errors.New("dial tcp: i/o timeout"))

		w := serve(NewHandler(db, rdb, zap.NewNop()), "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
