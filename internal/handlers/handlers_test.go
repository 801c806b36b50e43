package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	_ "github.com/GlebRadaev/gigmarket/docs"
	"github.com/GlebRadaev/gigmarket/internal/handlers/auth"
	"github.com/GlebRadaev/gigmarket/internal/handlers/contracts"
	"github.com/GlebRadaev/gigmarket/internal/handlers/milestones"
	"github.com/GlebRadaev/gigmarket/internal/service"
	pkgauth "github.com/GlebRadaev/gigmarket/pkg/auth"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	services := &service.Services{
		AuthService:      auth.NewMockService(ctrl),
		ContractService:  contracts.NewMockService(ctrl),
		MilestoneService: milestones.NewMockService(ctrl),
	}

	h := New(services)
	assert.NotNil(t, h, "Handlers should not be nil")
	assert.NotNil(t, h.ContractHandler)
	assert.NotNil(t, h.MilestoneHandler)
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthHandler := NewMockAuthHandler(ctrl)
	mockContractHandler := NewMockContractHandler(ctrl)
	mockMilestoneHandler := NewMockMilestoneHandler(ctrl)
	mockJWT := pkgauth.NewMockJWTServiceInterface(ctrl)

	mockAuthHandler.EXPECT().Register(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuthHandler.EXPECT().Login(gomock.Any(), gomock.Any()).AnyTimes()
	mockContractHandler.EXPECT().Create(gomock.Any(), gomock.Any()).AnyTimes()
	mockContractHandler.EXPECT().List(gomock.Any(), gomock.Any()).AnyTimes()
	mockContractHandler.EXPECT().Get(gomock.Any(), gomock.Any()).AnyTimes()
	mockContractHandler.EXPECT().Edit(gomock.Any(), gomock.Any()).AnyTimes()
	mockContractHandler.EXPECT().Payments(gomock.Any(), gomock.Any()).AnyTimes()
	mockContractHandler.EXPECT().Schema(gomock.Any(), gomock.Any()).AnyTimes()
	mockMilestoneHandler.EXPECT().Pay(gomock.Any(), gomock.Any()).AnyTimes()
	mockMilestoneHandler.EXPECT().Submit(gomock.Any(), gomock.Any()).AnyTimes()
	mockMilestoneHandler.EXPECT().Accept(gomock.Any(), gomock.Any()).AnyTimes()
	mockMilestoneHandler.EXPECT().Reject(gomock.Any(), gomock.Any()).AnyTimes()

	mockJWT.EXPECT().ValidateToken("good").Return(&pkgauth.Claims{UserID: 1, Role: "client"}, nil).AnyTimes()
	mockJWT.EXPECT().ValidateToken("bad").Return(nil, pkgauth.ErrInvalidToken).AnyTimes()

	h := &Handlers{
		AuthHandler:      mockAuthHandler,
		ContractHandler:  mockContractHandler,
		MilestoneHandler: mockMilestoneHandler,
	}

	router := chi.NewRouter()
	h.InitRoutes(router, mockJWT, []string{"http://localhost:3000"})

	tests := []struct {
		method string
		url    string
		token  string
		status int
	}{
		{"POST", "/api/user/register", "", http.StatusOK},
		{"POST", "/api/user/login", "", http.StatusOK},
		{"GET", "/api/schema/contract", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"POST", "/api/contracts", "", http.StatusUnauthorized},
		{"GET", "/api/contracts", "", http.StatusUnauthorized},
		{"GET", "/api/contracts/3", "", http.StatusUnauthorized},
		{"PUT", "/api/contracts/3", "", http.StatusUnauthorized},
		{"GET", "/api/contracts/3/payments", "", http.StatusUnauthorized},
		{"POST", "/api/contracts/3/milestones/7/pay", "", http.StatusUnauthorized},
		{"POST", "/api/contracts/3/milestones/7/submit", "", http.StatusUnauthorized},
		{"POST", "/api/contracts/3/milestones/7/accept", "", http.StatusUnauthorized},
		{"POST", "/api/contracts/3/milestones/7/reject", "", http.StatusUnauthorized},
		{"GET", "/api/contracts", "bad", http.StatusUnauthorized},
		{"POST", "/api/contracts", "good", http.StatusOK},
		{"GET", "/api/contracts", "good", http.StatusOK},
		{"GET", "/api/contracts/3", "good", http.StatusOK},
		{"PUT", "/api/contracts/3", "good", http.StatusOK},
		{"GET", "/api/contracts/3/payments", "good", http.StatusOK},
		{"POST", "/api/contracts/3/milestones/7/pay", "good", http.StatusOK},
		{"POST", "/api/contracts/3/milestones/7/submit", "good", http.StatusOK},
		{"POST", "/api/contracts/3/milestones/7/accept", "good", http.StatusOK},
		{"POST", "/api/contracts/3/milestones/7/reject", "good", http.StatusOK},
		{"DELETE", "/api/contracts/3", "good", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url+" "+tt.token, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestInitRoutes_CORS(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthHandler := NewMockAuthHandler(ctrl)
	mockJWT := pkgauth.NewMockJWTServiceInterface(ctrl)
	mockJWT.EXPECT().ValidateToken(gomock.Any()).Return(nil, errors.New("unused")).AnyTimes()

	h := &Handlers{
		AuthHandler:      mockAuthHandler,
		ContractHandler:  NewMockContractHandler(ctrl),
		MilestoneHandler: NewMockMilestoneHandler(ctrl),
	}
	router := chi.NewRouter()
	h.InitRoutes(router, mockJWT, []string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/api/user/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/user/login", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
