package server_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-launchpad/internal/api/middleware"
	"github.com/feral-file/ff-launchpad/internal/api/server"
	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	coord := mocks.NewMockCoordinator(ctrl)
	logos := mocks.NewMockLogoProcessor(ctrl)

	srv := server.New(server.Config{
		Auth: middleware.AuthConfig{APIKeys: []string{"key"}},
	}, coord, logos)
	router := srv.Router()

	// Health is public and carries a request id
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.REQUEST_ID_HEADER))

	// Owner routes go through the coordinator
	coord.EXPECT().GetAsset(gomock.Any(), "owner-1").Return(nil, domain.ErrNotFound)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/owner-1/asset", nil)
	req.Header.Set("Authorization", "ApiKey key")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown routes
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tokens", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
