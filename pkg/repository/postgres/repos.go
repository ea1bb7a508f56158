//nolint:whitespace // can't make both editor and linter happy
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/api"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/lapanalysis"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/usage"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/user"
)

type (
	executor struct {
		pool *pgxpool.Pool
	}
	pgRepositories struct {
		lapAnalysis *lapAnalysisRepo
		usage       *usageRepo
		user        *userRepo
	}
	lapAnalysisRepo struct{ executor }
	usageRepo       struct{ executor }
	userRepo        struct{ executor }
)

var (
	_ api.Repositories          = (*pgRepositories)(nil)
	_ api.LapAnalysisRepository = (*lapAnalysisRepo)(nil)
	_ api.UsageRepository       = (*usageRepo)(nil)
	_ api.UserRepository        = (*userRepo)(nil)
)

func NewRepositoriesFromPool(pool *pgxpool.Pool) api.Repositories {
	e := executor{pool: pool}
	return &pgRepositories{
		lapAnalysis: &lapAnalysisRepo{e},
		usage:       &usageRepo{e},
		user:        &userRepo{e},
	}
}

func (r *pgRepositories) LapAnalysis() api.LapAnalysisRepository { return r.lapAnalysis }
func (r *pgRepositories) Usage() api.UsageRepository             { return r.usage }
func (r *pgRepositories) User() api.UserRepository               { return r.user }

// conn prefers a transaction stored in the context over the pool
func (e executor) conn(ctx context.Context) repository.Querier {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return e.pool
}

func (r *lapAnalysisRepo) Create(ctx context.Context, item *model.DbLapAnalysis) (
	int, error,
) {
	return lapanalysis.Create(ctx, r.conn(ctx), item)
}

func (r *lapAnalysisRepo) LoadByID(ctx context.Context, id, userID int) (
	*model.DbLapAnalysis, error,
) {
	return lapanalysis.LoadByID(ctx, r.conn(ctx), id, userID)
}

func (r *lapAnalysisRepo) LoadHistory(ctx context.Context, userID, limit int) (
	[]*model.LapAnalysisHeader, error,
) {
	return lapanalysis.LoadHistory(ctx, r.conn(ctx), userID, limit)
}

func (r *lapAnalysisRepo) LoadStats(ctx context.Context, userID int) (
	*model.UserStats, error,
) {
	return lapanalysis.LoadStats(ctx, r.conn(ctx), userID)
}

func (r *lapAnalysisRepo) DeleteByID(ctx context.Context, id int) (int, error) {
	return lapanalysis.DeleteByID(ctx, r.conn(ctx), id)
}

func (r *usageRepo) Load(ctx context.Context, userID int, month string) (
	*model.DbUsage, error,
) {
	return usage.Load(ctx, r.conn(ctx), userID, month)
}

func (r *usageRepo) Increment(ctx context.Context, userID int, month string) (
	*model.DbUsage, error,
) {
	return usage.Increment(ctx, r.conn(ctx), userID, month)
}

func (r *userRepo) Create(ctx context.Context, u *model.DbUser) (*model.DbUser, error) {
	return user.Create(ctx, r.conn(ctx), u)
}

func (r *userRepo) LoadByID(ctx context.Context, id int) (*model.DbUser, error) {
	return user.LoadByID(ctx, r.conn(ctx), id)
}

func (r *userRepo) LoadByToken(ctx context.Context, token string) (*model.DbUser, error) {
	return user.LoadByToken(ctx, r.conn(ctx), token)
}
