package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/GlebRadaev/gigmarket/internal/dto"
	"github.com/GlebRadaev/gigmarket/pkg/auth"
	"github.com/GlebRadaev/gigmarket/pkg/utils"
	"github.com/GlebRadaev/gigmarket/pkg/validate"
)

func NewMock(t *testing.T) (*ContractHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func newRequest(method, target, body string, userID int, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	ctx := req.Context()
	if userID != 0 {
		ctx = context.WithValue(ctx, auth.UserIDKey, userID)
		ctx = context.WithValue(ctx, auth.RoleKey, string(domain.RoleClient))
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func sampleContract() *domain.Contract {
	return &domain.Contract{
		ID:           3,
		TaskID:       12,
		BidID:        34,
		ClientID:     1,
		FreelancerID: 2,
		Title:        "Marketing site",
		Budget:       decimal.NewFromInt(1000),
		Status:       domain.ContractOngoing,
		Milestones: []domain.Milestone{
			{ID: 7, Position: 1, Title: "Wireframes", Cost: decimal.NewFromInt(400), Status: domain.MilestoneUnpaid},
			{ID: 8, Position: 2, Title: "Build", Cost: decimal.NewFromInt(600), Status: domain.MilestoneUnpaid},
		},
	}
}

const createBody = `{"task_id":12,"bid_id":34,"freelancer_id":2,"title":"Marketing site","budget":1000,
"milestones":[{"title":"Wireframes","cost":400},{"title":"Build","cost":600}]}`

func TestCreateHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          string
		userID        int
		prepareMock   func()
		expectedCode  int
		expectedError string
		expectedField string
	}{
		{
			name:   "Contract created",
			body:   createBody,
			userID: 1,
			prepareMock: func() {
				service.EXPECT().
					Create(gomock.Any(), 1, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ int, c *domain.Contract) (*domain.Contract, error) {
						assert.Equal(t, 2, c.FreelancerID)
						assert.Len(t, c.Milestones, 2)
						assert.True(t, c.Budget.Equal(decimal.NewFromInt(1000)))
						return sampleContract(), nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:          "Not authorized",
			body:          createBody,
			prepareMock:   func() {},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Unauthorized",
		},
		{
			name:          "Invalid request body",
			body:          `{"task_id":`,
			userID:        1,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name: "Budget does not match milestones",
			body: `{"task_id":12,"bid_id":34,"freelancer_id":2,"title":"Marketing site","budget":1200,
"milestones":[{"title":"Wireframes","cost":400},{"title":"Build","cost":600}]}`,
			userID:        1,
			prepareMock:   func() {},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "milestones: sum of milestone costs 1000.00 does not match budget 1200.00",
			expectedField: "milestones",
		},
		{
			name:          "Missing task",
			body:          `{"bid_id":34,"freelancer_id":2,"title":"Marketing site","budget":400,"milestones":[{"title":"Wireframes","cost":400}]}`,
			userID:        1,
			prepareMock:   func() {},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "task_id: is required",
			expectedField: "task_id",
		},
		{
			name:   "Freelancer caller",
			body:   createBody,
			userID: 2,
			prepareMock: func() {
				service.EXPECT().Create(gomock.Any(), 2, gomock.Any()).Return(nil, domain.ErrForbidden)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "Forbidden",
		},
		{
			name:   "Unknown freelancer",
			body:   createBody,
			userID: 1,
			prepareMock: func() {
				service.EXPECT().Create(gomock.Any(), 1, gomock.Any()).Return(nil, domain.ErrFreelancerNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "freelancer not found",
		},
		{
			name:   "Bid already used",
			body:   createBody,
			userID: 1,
			prepareMock: func() {
				service.EXPECT().Create(gomock.Any(), 1, gomock.Any()).Return(nil, domain.ErrBidAlreadyUsed)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "contract for this bid already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := newRequest(http.MethodPost, "/api/contracts", tt.body, tt.userID, nil)
			rr := httptest.NewRecorder()

			handler.Create(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
				assert.Equal(t, tt.expectedField, resp.Field)
				return
			}
			var resp dto.ContractResponseDTO
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, 3, resp.ID)
			assert.Equal(t, "ongoing", resp.Status)
			require.Len(t, resp.Milestones, 2)
			assert.Equal(t, 40.0, resp.Milestones[0].EstimatedFee)
			assert.Equal(t, 360.0, resp.Milestones[0].EstimatedNet)
		})
	}
}

func TestGetHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		id            string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Party reads contract",
			id:   "3",
			prepareMock: func() {
				service.EXPECT().Get(gomock.Any(), 1, 3).Return(sampleContract(), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid id",
			id:            "abc",
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid id",
		},
		{
			name: "Not found",
			id:   "99",
			prepareMock: func() {
				service.EXPECT().Get(gomock.Any(), 1, 99).Return(nil, domain.ErrContractNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "contract not found",
		},
		{
			name: "Stranger",
			id:   "3",
			prepareMock: func() {
				service.EXPECT().Get(gomock.Any(), 1, 3).Return(nil, domain.ErrForbidden)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := newRequest(http.MethodGet, "/api/contracts/"+tt.id, "", 1, map[string]string{"id": tt.id})
			rr := httptest.NewRecorder()

			handler.Get(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			}
		})
	}
}

func TestListHandler(t *testing.T) {
	handler, service := NewMock(t)

	t.Run("Contracts of the caller", func(t *testing.T) {
		service.EXPECT().List(gomock.Any(), 1).Return([]domain.Contract{*sampleContract()}, nil)

		rr := httptest.NewRecorder()
		handler.List(rr, newRequest(http.MethodGet, "/api/contracts", "", 1, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp []dto.ContractResponseDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "Marketing site", resp[0].Title)
	})

	t.Run("Completed contract listed without milestones", func(t *testing.T) {
		c := *sampleContract()
		c.Milestones = nil
		c.Status = domain.ContractCompleted
		service.EXPECT().List(gomock.Any(), 1).Return([]domain.Contract{c}, nil)

		rr := httptest.NewRecorder()
		handler.List(rr, newRequest(http.MethodGet, "/api/contracts", "", 1, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp []dto.ContractResponseDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "completed", resp[0].Status)
	})

	t.Run("Empty list", func(t *testing.T) {
		service.EXPECT().List(gomock.Any(), 1).Return(nil, nil)

		rr := httptest.NewRecorder()
		handler.List(rr, newRequest(http.MethodGet, "/api/contracts", "", 1, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("Repository failure", func(t *testing.T) {
		service.EXPECT().List(gomock.Any(), 1).Return(nil, errors.New("db down"))

		rr := httptest.NewRecorder()
		handler.List(rr, newRequest(http.MethodGet, "/api/contracts", "", 1, nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestEditHandler(t *testing.T) {
	handler, service := NewMock(t)

	body := `{"title":"Marketing site","budget":1000,"milestones":[{"id":7,"title":"Wireframes","cost":400},{"title":"Build","cost":600}]}`

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Contract edited",
			body: body,
			prepareMock: func() {
				service.EXPECT().
					Edit(gomock.Any(), 1, 3, gomock.Any()).
					DoAndReturn(func(_ context.Context, _, _ int, changes *domain.Contract) (*domain.Contract, error) {
						require.Len(t, changes.Milestones, 2)
						assert.Equal(t, 7, changes.Milestones[0].ID)
						assert.Equal(t, 0, changes.Milestones[1].ID)
						return sampleContract(), nil
					})
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Locked milestone changed",
			body: body,
			prepareMock: func() {
				service.EXPECT().
					Edit(gomock.Any(), 1, 3, gomock.Any()).
					Return(nil, domain.NewValidationError("milestones", "milestone 7 is locked"))
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "milestones: milestone 7 is locked",
		},
		{
			name: "Concurrent update",
			body: body,
			prepareMock: func() {
				service.EXPECT().Edit(gomock.Any(), 1, 3, gomock.Any()).Return(nil, domain.ErrConcurrentUpdate)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "contract was modified concurrently",
		},
		{
			name:          "Budget mismatch",
			body:          `{"title":"Marketing site","budget":900,"milestones":[{"title":"Build","cost":600}]}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "milestones: sum of milestone costs 600.00 does not match budget 900.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := newRequest(http.MethodPut, "/api/contracts/3", tt.body, 1, map[string]string{"id": "3"})
			rr := httptest.NewRecorder()

			handler.Edit(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			}
		})
	}
}

func TestPaymentsHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Payments(gomock.Any(), 2, 3).Return([]domain.Payment{
		{
			ID:          1,
			MilestoneID: 7,
			Gross:       decimal.NewFromInt(400),
			PlatformFee: decimal.NewFromInt(40),
			Net:         decimal.NewFromInt(360),
			Currency:    "usd",
			TransferID:  "tr_1",
		},
	}, nil)

	rr := httptest.NewRecorder()
	handler.Payments(rr, newRequest(http.MethodGet, "/api/contracts/3/payments", "", 2, map[string]string{"id": "3"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []dto.PaymentResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 360.0, resp[0].Net)
	assert.Equal(t, "tr_1", resp[0].TransferID)
}

func TestSchemaHandler(t *testing.T) {
	handler, _ := NewMock(t)

	for _, name := range []string{"contract", "submission", "rejection", "payment"} {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.Schema(rr, newRequest(http.MethodGet, "/api/schema/"+name, "", 0, map[string]string{"name": name}))

			assert.Equal(t, http.StatusOK, rr.Code)
			var schema validate.Schema
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&schema))
			assert.Equal(t, name, schema.Name)
			assert.NotEmpty(t, schema.Fields)
		})
	}

	t.Run("contract carries budget rule", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.Schema(rr, newRequest(http.MethodGet, "/api/schema/contract", "", 0, map[string]string{"name": "contract"}))

		var schema validate.Schema
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&schema))
		require.Len(t, schema.Rules, 1)
		assert.Equal(t, "budget", schema.Rules[0].Name)
	})

	t.Run("unknown", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.Schema(rr, newRequest(http.MethodGet, "/api/schema/order", "", 0, map[string]string{"name": "order"}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), fmt.Sprintf("%q", "Unknown schema"))
	})
}
