// Package auth resolves the api token of a request to a user.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/http/respond"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/api"
	"github.com/mpapenbr/simlap-service-go/pkg/utils"
	"github.com/mpapenbr/simlap-service-go/pkg/utils/cache/loadercache"
)

const (
	tokenHeader  = "api-token"
	bearerPrefix = "Bearer "
)

var ErrUnauthenticated = errors.New("authentication required")

type myCtxTypeKey int

func FromContext(ctx context.Context) *model.DbUser {
	if u, ok := ctx.Value(myCtxTypeKey(0)).(*model.DbUser); ok {
		return u
	}
	return nil
}

func NewContext(ctx context.Context, u *model.DbUser) context.Context {
	return context.WithValue(ctx, myCtxTypeKey(0), u)
}

// NewUserCache caches users by the hash of their api token.
func NewUserCache(
	repo api.UserRepository,
	ttl time.Duration,
) loadercache.Cache[string, model.DbUser] {
	return loadercache.New(
		loadercache.WithExpiration[string, model.DbUser](ttl),
		loadercache.WithLoader[string, model.DbUser](
			func(ctx context.Context, hashed string) (*model.DbUser, error) {
				return repo.LoadByToken(ctx, hashed)
			}),
		loadercache.WithLogger[string, model.DbUser](log.Default().Named("http.auth.cache")),
	)
}

type (
	Option     func(*middleware)
	middleware struct {
		users loadercache.Cache[string, model.DbUser]
		l     *log.Logger
	}
)

func WithUserCache(c loadercache.Cache[string, model.DbUser]) Option {
	return func(m *middleware) {
		m.users = c
	}
}

// NewMiddleware returns a middleware that rejects requests without a valid
// token with 401. The token is read from the api-token header or from
// an Authorization bearer header.
func NewMiddleware(opts ...Option) func(http.Handler) http.Handler {
	m := &middleware{l: log.Default().Named("http.auth")}
	for _, opt := range opts {
		opt(m)
	}
	return m.wrap
}

func (m *middleware) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authenticate(r)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, respond.ErrorBody{
				Error:   "Unauthorized",
				Message: err.Error(),
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), user)))
	})
}

func (m *middleware) authenticate(r *http.Request) (*model.DbUser, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	user, err := m.users.Get(r.Context(), utils.HashAPIToken(token))
	if err != nil {
		if !errors.Is(err, repository.ErrNoData) {
			m.l.Error("error authenticating", log.ErrorField(err))
		}
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func TokenFromRequest(r *http.Request) string {
	if t := r.Header.Get(tokenHeader); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}
	return ""
}
