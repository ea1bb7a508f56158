package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/utils"
	"github.com/mpapenbr/simlap-service-go/testsupport/memrepos"
)

func TestMiddleware(t *testing.T) {
	store := memrepos.New()
	_, err := store.User().Create(context.Background(), &model.DbUser{
		Name:     "driver",
		APIToken: utils.HashAPIToken("secret"),
	})
	require.NoError(t, err)

	var seen *model.DbUser
	h := NewMiddleware(WithUserCache(NewUserCache(store.User(), time.Minute)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

	tests := []struct {
		name       string
		header     http.Header
		wantStatus int
	}{
		{"api-token header", http.Header{"Api-Token": {"secret"}}, http.StatusNoContent},
		{"bearer", http.Header{"Authorization": {"Bearer secret"}}, http.StatusNoContent},
		{"no token", http.Header{}, http.StatusUnauthorized},
		{"unknown token", http.Header{"Api-Token": {"other"}}, http.StatusUnauthorized},
		{"basic auth", http.Header{"Authorization": {"Basic c2VjcmV0"}}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/usage", http.NoBody)
			req.Header = tt.header
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "driver", seen.Name)
			} else {
				assert.Nil(t, seen)
				assert.JSONEq(t,
					`{"error":"Unauthorized","message":"authentication required"}`,
					rec.Body.String())
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	u := &model.DbUser{ID: 5}
	assert.Same(t, u, FromContext(NewContext(context.Background(), u)))
}
