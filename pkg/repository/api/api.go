package api

import (
	"context"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

type Repositories interface {
	LapAnalysis() LapAnalysisRepository
	Usage() UsageRepository
	User() UserRepository
}

type LapAnalysisRepository interface {
	Create(ctx context.Context, item *model.DbLapAnalysis) (int, error)
	// LoadByID returns repository.ErrNoData if the analysis does not exist
	// or belongs to another user.
	LoadByID(ctx context.Context, id, userID int) (*model.DbLapAnalysis, error)
	// LoadHistory returns the newest analyses first.
	LoadHistory(ctx context.Context, userID, limit int) ([]*model.LapAnalysisHeader, error)
	LoadStats(ctx context.Context, userID int) (*model.UserStats, error)
	DeleteByID(ctx context.Context, id int) (int, error)
}

type UsageRepository interface {
	// Load returns a zero count if there is no entry for that month.
	Load(ctx context.Context, userID int, month string) (*model.DbUsage, error)
	Increment(ctx context.Context, userID int, month string) (*model.DbUsage, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.DbUser) (*model.DbUser, error)
	LoadByID(ctx context.Context, id int) (*model.DbUser, error)
	LoadByToken(ctx context.Context, token string) (*model.DbUser, error)
}

type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
