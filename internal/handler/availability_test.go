package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/repository"
	"github.com/pontdesarts/lovelock/internal/service"
)

// stubLocks satisfies service.LockStore for read-only handler tests;
// only GetByID is reachable here.
type stubLocks struct {
	service.LockStore
	locks map[uint64]*model.Lock
}

func (s *stubLocks) GetByID(_ context.Context, id uint64) (*model.Lock, error) {
	l, ok := s.locks[id]
	if !ok {
		return nil, repository.ErrLockNotFound
	}
	return l, nil
}

func getAvailability(t *testing.T, h *AvailabilityHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/locks/availability"+query, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Check(e.NewContext(req, rec)))
	return rec
}

func TestAvailabilityCheckEndpoint(t *testing.T) {
	owner := "owner-1"
	price := int64(25000)
	locks := &stubLocks{locks: map[uint64]*model.Lock{
		100: {ID: 100, OwnerID: &owner, Status: model.StatusActive},
		101: {ID: 101, OwnerID: &owner, Status: model.StatusActive, GoldenAssetPriceCents: &price},
	}}
	h := NewAvailabilityHandler(service.NewAvailabilityService(locks))

	rec := getAvailability(t, h, "?lockId=42")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":true,"status":"free"}`, rec.Body.String())

	rec = getAvailability(t, h, "?lockId=100")
	assert.JSONEq(t, `{"available":false,"status":"taken"}`, rec.Body.String())

	rec = getAvailability(t, h, "?lockId=101")
	assert.JSONEq(t, `{"available":true,"status":"resale","price":25000}`, rec.Body.String())

	// Golden number with no row at all.
	rec = getAvailability(t, h, "?lockId=7")
	assert.JSONEq(t, `{"available":false,"status":"taken"}`, rec.Body.String())
}

func TestAvailabilityCheckRejectsBadParam(t *testing.T) {
	h := NewAvailabilityHandler(service.NewAvailabilityService(&stubLocks{}))

	for _, q := range []string{"", "?lockId=", "?lockId=abc", "?lockId=0", "?lockId=-3"} {
		rec := getAvailability(t, h, q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", q)
	}
}
