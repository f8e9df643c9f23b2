package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skillswap-api/internal/dto"
	"github.com/noah-isme/skillswap-api/internal/middleware"
	"github.com/noah-isme/skillswap-api/internal/models"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type swapServiceMock struct {
	createResp *dto.SwapResponse
	createErr  error
	listResp   []dto.SwapResponse
	listErr    error
	getResp    *dto.SwapResponse
	getErr     error
	acceptResp *dto.SwapResponse
	acceptErr  error
	deleteErr  error

	lastActor  string
	lastFilter models.SwapFilter
	lastAccept dto.AcceptSwapRequest
}

func (m *swapServiceMock) Create(ctx context.Context, req dto.CreateSwapRequest, actorID string) (*dto.SwapResponse, error) {
	m.lastActor = actorID
	return m.createResp, m.createErr
}

func (m *swapServiceMock) List(ctx context.Context, filter models.SwapFilter, actorID string) ([]dto.SwapResponse, *models.Pagination, error) {
	m.lastActor = actorID
	m.lastFilter = filter
	return m.listResp, models.NewPagination(filter.Page, filter.PageSize, len(m.listResp)), m.listErr
}

func (m *swapServiceMock) Get(ctx context.Context, id, actorID string) (*dto.SwapResponse, error) {
	m.lastActor = actorID
	return m.getResp, m.getErr
}

func (m *swapServiceMock) Update(ctx context.Context, id, actorID string, req dto.UpdateSwapRequest) (*dto.SwapResponse, error) {
	return m.getResp, m.getErr
}

func (m *swapServiceMock) Delete(ctx context.Context, id, actorID string) error {
	m.lastActor = actorID
	return m.deleteErr
}

func (m *swapServiceMock) Accept(ctx context.Context, id, actorID string, req dto.AcceptSwapRequest) (*dto.SwapResponse, error) {
	m.lastActor = actorID
	m.lastAccept = req
	return m.acceptResp, m.acceptErr
}

func (m *swapServiceMock) Reject(ctx context.Context, id, actorID string, req dto.ResolveSwapRequest) (*dto.SwapResponse, error) {
	return m.acceptResp, m.acceptErr
}

func (m *swapServiceMock) Cancel(ctx context.Context, id, actorID string, req dto.ResolveSwapRequest) (*dto.SwapResponse, error) {
	return m.acceptResp, m.acceptErr
}

func (m *swapServiceMock) Complete(ctx context.Context, id, actorID string) (*dto.SwapResponse, error) {
	return m.acceptResp, m.acceptErr
}

func testClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "alice", Role: models.RoleUser}
}

func sampleSwapResponse() *dto.SwapResponse {
	return &dto.SwapResponse{
		SwapRequest: models.SwapRequest{ID: "swap-1", RequesterID: "alice", RecipientID: "bob", Status: models.SwapStatusPending},
	}
}

func TestSwapHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &swapServiceMock{createResp: sampleSwapResponse()}
	h := NewSwapHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.CreateSwapRequest{
		RecipientID:  "7bfa0c56-9d1a-4f1e-8a07-0f5d54a7f001",
		SkillOffered: "Spanish",
		SkillWanted:  "Guitar",
		LearningMode: models.LearningModeOnline,
		Duration:     dto.SwapDuration{EstimatedHours: 10, Timeframe: models.TimeframeFlexible},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/swaps", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims())

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "alice", mockSvc.lastActor)
}

func TestSwapHandlerCreateWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSwapHandler(&swapServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/swaps", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSwapHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSwapHandler(&swapServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/swaps", bytes.NewBufferString(`{"recipient_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims())

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwapHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &swapServiceMock{listResp: []dto.SwapResponse{*sampleSwapResponse()}}
	h := NewSwapHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/swaps?role=sent&status=pending&skill=guitar&page=2&page_size=10", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims())

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sent", mockSvc.lastFilter.Role)
	require.NotNil(t, mockSvc.lastFilter.Status)
	assert.Equal(t, models.SwapStatusPending, *mockSvc.lastFilter.Status)
	assert.Equal(t, "guitar", mockSvc.lastFilter.Skill)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
	assert.Equal(t, 10, mockSvc.lastFilter.PageSize)
}

func TestSwapHandlerAcceptForwardsMeetingDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	accepted := sampleSwapResponse()
	accepted.Status = models.SwapStatusAccepted
	mockSvc := &swapServiceMock{acceptResp: accepted}
	h := NewSwapHandler(mockSvc, nil)

	payload := []byte(`{"meeting_details":"Tuesdays 18:00"}`)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/swaps/swap-1/accept", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "swap-1"}}
	c.Set(middleware.ContextUserKey, testClaims())

	h.Accept(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tuesdays 18:00", mockSvc.lastAccept.MeetingDetails)
}

func TestSwapHandlerAcceptEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &swapServiceMock{acceptResp: sampleSwapResponse()}
	h := NewSwapHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/swaps/swap-1/accept", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "swap-1"}}
	c.Set(middleware.ContextUserKey, testClaims())

	h.Accept(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSwapHandlerAcceptForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &swapServiceMock{acceptErr: appErrors.ErrForbidden}
	h := NewSwapHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/swaps/swap-1/accept", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "swap-1"}}
	c.Set(middleware.ContextUserKey, testClaims())

	h.Accept(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSwapHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &swapServiceMock{getErr: appErrors.ErrNotFound}
	h := NewSwapHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/swaps/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextUserKey, testClaims())

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSwapHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &swapServiceMock{}
	h := NewSwapHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/swaps/swap-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "swap-1"}}
	c.Set(middleware.ContextUserKey, testClaims())

	h.Delete(c)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "alice", mockSvc.lastActor)
}
