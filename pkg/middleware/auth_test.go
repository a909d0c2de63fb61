package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage/mocks"
)

func TestRequireApiKey(t *testing.T) {
	store := &mocks.Storage{}
	store.On("GetPlayerByApiKey", mock.Anything, "key-1").Return(&models.Player{
		Name:   "@buyer",
		Region: models.RegionNA,
		ApiKey: "key-1",
	}, nil)
	store.On("TouchPlayer", mock.Anything, "@buyer", mock.Anything).Return(nil)

	var seen *models.Player
	handler := RequireApiKey(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PlayerFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/v1/sync", nil)
	req.Header.Set(ApiKeyHeader, "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, seen)
	assert.Equal(t, "@buyer", seen.Name)
}

func TestRequireApiKeyMissing(t *testing.T) {
	store := &mocks.Storage{}
	handler := RequireApiKey(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("POST", "/api/v1/sync", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	store.AssertNotCalled(t, "GetPlayerByApiKey", mock.Anything, mock.Anything)
}

func TestRequireApiKeyUnknown(t *testing.T) {
	store := &mocks.Storage{}
	store.On("GetPlayerByApiKey", mock.Anything, "bogus").Return(nil, storage.ErrPlayerNotFound)

	handler := RequireApiKey(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("POST", "/api/v1/sync", nil)
	req.Header.Set(ApiKeyHeader, "bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
