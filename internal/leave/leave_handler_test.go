package leave_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ali-shok/employee-management/internal/leave"
	leaveerrors "github.com/Ali-shok/employee-management/internal/leave/errors"
	leaveMock "github.com/Ali-shok/employee-management/internal/leave/mock"
	"github.com/Ali-shok/employee-management/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newLeaveRouter(h *leave.Handler, identity gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/leave", identity)
	g.GET("/balance/:employeeId", h.GetBalance)
	g.POST("/requests/:employeeId", h.Submit)
	g.GET("/requests", h.ListAll)
	g.GET("/requests/:employeeId", h.ListByEmployee)
	g.PUT("/requests/:id", h.UpdateStatus)
	g.DELETE("/requests/:id", h.Delete)
	return r
}

func asReviewer(c *gin.Context) {
	c.Set("employee_id", "1")
	c.Set("role", "hr")
	c.Next()
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLeaveHandler_GetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	r := newLeaveRouter(leave.NewHandler(svc, nil, zap.NewNop()), asReviewer)

	t.Run("ok", func(t *testing.T) {
		svc.EXPECT().GetBalance(gomock.Any(), int64(7)).
			Return(leave.BalanceResponse{EmployeeID: 7, Year: 2026, Allotment: 28, Used: 5, Balance: 23}, nil)

		w := doJSON(r, http.MethodGet, "/leave/balance/7", "")
		assert.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		assert.True(t, env.Ok)
		assert.JSONEq(t, `{"employee_id":7,"year":2026,"allotment":28,"used":5,"balance":23}`, string(env.Data))
	})

	t.Run("non numeric id", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/leave/balance/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("opaque persistence failure", func(t *testing.T) {
		svc.EXPECT().GetBalance(gomock.Any(), int64(8)).Return(leave.BalanceResponse{}, errors.New("pq: connection refused"))

		w := doJSON(r, http.MethodGet, "/leave/balance/8", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestLeaveHandler_Submit(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		r := newLeaveRouter(leave.NewHandler(svc, nil, zap.NewNop()), asReviewer)

		svc.EXPECT().Submit(gomock.Any(), int64(7), leave.SubmitLeaveRequest{StartDate: "2026-03-01", EndDate: "2026-03-05", Reason: "trip"}).
			Return(leave.LeaveResponse{ID: 31, EmployeeID: 7, StartDate: "2026-03-01", EndDate: "2026-03-05", Reason: "trip", Status: "pending"}, nil)

		w := doJSON(r, http.MethodPost, "/leave/requests/7", `{"start_date":"2026-03-01","end_date":"2026-03-05","reason":"trip"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp leave.LeaveResponse
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
		assert.Equal(t, int64(31), resp.ID)
	})

	t.Run("missing dates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		r := newLeaveRouter(leave.NewHandler(svc, nil, zap.NewNop()), asReviewer)

		w := doJSON(r, http.MethodPost, "/leave/requests/7", `{"reason":"trip"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("unknown employee", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		r := newLeaveRouter(leave.NewHandler(svc, nil, zap.NewNop()), asReviewer)

		svc.EXPECT().Submit(gomock.Any(), int64(404), gomock.Any()).Return(leave.LeaveResponse{}, leaveerrors.ErrEmployeeNotFound)

		w := doJSON(r, http.MethodPost, "/leave/requests/404", `{"start_date":"2026-03-01","end_date":"2026-03-05"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("caches the response for the idempotency key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		rdb, mock := redismock.NewClientMock()

		withKeys := func(c *gin.Context) {
			c.Set("employee_id", "7")
			c.Set(middleware.IdempotencyCacheKey, "idemp:k")
			c.Set(middleware.IdempotencyLockKey, "idemp:k:lock")
			c.Next()
		}
		r := newLeaveRouter(leave.NewHandler(svc, rdb, zap.NewNop()), withKeys)

		created := leave.LeaveResponse{ID: 31, EmployeeID: 7, StartDate: "2026-03-01", EndDate: "2026-03-05", Status: "pending"}
		svc.EXPECT().Submit(gomock.Any(), int64(7), gomock.Any()).Return(created, nil)

		payload, _ := json.Marshal(created)
		mock.ExpectSet("idemp:k", payload, 24*time.Hour).SetVal("OK")
		mock.ExpectDel("idemp:k:lock").SetVal(1)

		w := doJSON(r, http.MethodPost, "/leave/requests/7", `{"start_date":"2026-03-01","end_date":"2026-03-05"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeaveHandler_ListAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	r := newLeaveRouter(leave.NewHandler(svc, nil, zap.NewNop()), asReviewer)

	items := make([]leave.LeaveWithBalanceResponse, 0, 12)
	for i := 1; i <= 12; i++ {
		items = append(items, leave.LeaveWithBalanceResponse{ID: int64(i), EmployeeID: 1, Balance: 28})
	}
	svc.EXPECT().ListAll(gomock.Any()).Return(items, nil)

	w := doJSON(r, http.MethodGet, "/leave/requests?page=2&page_size=5", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var page []leave.LeaveWithBalanceResponse
	assert.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page, 5)
	assert.Equal(t, int64(6), page[0].ID)
	assert.JSONEq(t, `{"total":12,"totalPages":3,"page":2,"pageSize":5}`, string(env.Meta))
}

func TestLeaveHandler_ListByEmployee(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	r := newLeaveRouter(leave.NewHandler(svc, nil, zap.NewNop()), asReviewer)

	svc.EXPECT().ListByEmployee(gomock.Any(), int64(4)).
		Return([]leave.EmployeeLeaveResponse{{ID: 9, EmployeeName: "Heba Said", Status: "pending"}}, nil)

	w := doJSON(r, http.MethodGet, "/leave/requests/4", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Heba Said")
}

func TestLeaveHandler_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	r := newLeaveRouter(leave.NewHandler(svc, nil, zap.NewNop()), asReviewer)

	t.Run("approved", func(t *testing.T) {
		svc.EXPECT().UpdateStatus(gomock.Any(), "1", int64(12), leave.UpdateStatusRequest{Status: "approved"}).
			Return(leave.LeaveResponse{ID: 12, Status: "approved"}, nil)

		w := doJSON(r, http.MethodPut, "/leave/requests/12", `{"status":"approved"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown status never reaches the service", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/leave/requests/12", `{"status":"bananas"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeEnvelope(t, w).Error.Message, "status must be one of")
	})

	t.Run("missing request", func(t *testing.T) {
		svc.EXPECT().UpdateStatus(gomock.Any(), "1", int64(404), gomock.Any()).
			Return(leave.LeaveResponse{}, leaveerrors.ErrLeaveNotFound)

		w := doJSON(r, http.MethodPut, "/leave/requests/404", `{"status":"rejected"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeaveHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	r := newLeaveRouter(leave.NewHandler(svc, nil, zap.NewNop()), asReviewer)

	svc.EXPECT().Delete(gomock.Any(), int64(777)).Return(nil)

	w := doJSON(r, http.MethodDelete, "/leave/requests/777", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, string(decodeEnvelope(t, w).Data))
}
