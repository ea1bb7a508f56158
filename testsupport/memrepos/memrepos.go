// Package memrepos provides in-memory repositories for tests that don't need
// a database.
package memrepos

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/api"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/lapanalysis"
)

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	analyses []model.DbLapAnalysis
	usage    map[usageKey]int
	users    []model.DbUser
	// FailCreate makes LapAnalysis().Create fail with this error
	FailCreate error
}

type (
	usageKey struct {
		userID int
		month  string
	}
	lapAnalysisRepo struct{ s *Store }
	usageRepo       struct{ s *Store }
	userRepo        struct{ s *Store }
)

var (
	_ api.Repositories          = (*Store)(nil)
	_ api.TransactionManager    = (*Store)(nil)
	_ api.LapAnalysisRepository = lapAnalysisRepo{}
	_ api.UsageRepository       = usageRepo{}
	_ api.UserRepository        = userRepo{}
)

func New() *Store {
	return &Store{now: time.Now, usage: map[usageKey]int{}}
}

// WithClock sets the time used for created_at values.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) LapAnalysis() api.LapAnalysisRepository { return lapAnalysisRepo{s} }
func (s *Store) Usage() api.UsageRepository             { return usageRepo{s} }
func (s *Store) User() api.UserRepository               { return userRepo{s} }

// RunInTx restores the previous state if fn fails.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	analyses := slices.Clone(s.analyses)
	usage := make(map[usageKey]int, len(s.usage))
	for k, v := range s.usage {
		usage[k] = v
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.analyses = analyses
		s.usage = usage
		s.mu.Unlock()
		return err
	}
	return nil
}

// SetUsage presets the usage counter of a user
func (s *Store) SetUsage(userID int, month string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[usageKey{userID, month}] = count
}

func (r lapAnalysisRepo) Create(_ context.Context, item *model.DbLapAnalysis) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreate != nil {
		return 0, r.s.FailCreate
	}
	stored := *item
	stored.ID = len(r.s.analyses) + 1
	stored.CreatedAt = r.s.now()
	r.s.analyses = append(r.s.analyses, stored)
	return stored.ID, nil
}

func (r lapAnalysisRepo) LoadByID(_ context.Context, id, userID int) (
	*model.DbLapAnalysis, error,
) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.analyses {
		if r.s.analyses[i].ID == id && r.s.analyses[i].UserID == userID {
			ret := r.s.analyses[i]
			return &ret, nil
		}
	}
	return nil, repository.ErrNoData
}

func (r lapAnalysisRepo) LoadHistory(_ context.Context, userID, limit int) (
	[]*model.LapAnalysisHeader, error,
) {
	if limit <= 0 {
		limit = lapanalysis.DefaultHistoryLimit
	}
	items := r.byUser(userID)
	slices.SortFunc(items, func(a, b model.DbLapAnalysis) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	ret := []*model.LapAnalysisHeader{}
	for i := range items[:min(limit, len(items))] {
		ret = append(ret, &model.LapAnalysisHeader{
			ID:        items[i].ID,
			SimType:   items[i].SimType,
			TrackName: items[i].TrackName,
			CarName:   items[i].CarName,
			LapTime:   items[i].LapTime,
			CreatedAt: items[i].CreatedAt,
		})
	}
	return ret, nil
}

func (r lapAnalysisRepo) LoadStats(_ context.Context, userID int) (*model.UserStats, error) {
	items := r.byUser(userID)
	ret := &model.UserStats{TotalAnalyses: len(items), RecentTracks: []model.TrackCount{}}
	counts := map[string]int{}
	for i := range items {
		if ret.BestLap == nil || items[i].LapTime < ret.BestLap.LapTime {
			ret.BestLap = &model.BestLap{
				TrackName: items[i].TrackName,
				CarName:   items[i].CarName,
				LapTime:   items[i].LapTime,
			}
		}
		counts[items[i].TrackName]++
	}
	for track, n := range counts {
		ret.RecentTracks = append(ret.RecentTracks, model.TrackCount{TrackName: track, Count: n})
	}
	slices.SortFunc(ret.RecentTracks, func(a, b model.TrackCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.TrackName, b.TrackName)
	})
	ret.RecentTracks = ret.RecentTracks[:min(5, len(ret.RecentTracks))]
	return ret, nil
}

func (r lapAnalysisRepo) DeleteByID(_ context.Context, id int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := len(r.s.analyses)
	r.s.analyses = slices.DeleteFunc(r.s.analyses, func(a model.DbLapAnalysis) bool {
		return a.ID == id
	})
	return before - len(r.s.analyses), nil
}

func (r lapAnalysisRepo) byUser(userID int) []model.DbLapAnalysis {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ret := []model.DbLapAnalysis{}
	for i := range r.s.analyses {
		if r.s.analyses[i].UserID == userID {
			ret = append(ret, r.s.analyses[i])
		}
	}
	return ret
}

func (r usageRepo) Load(_ context.Context, userID int, month string) (*model.DbUsage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return &model.DbUsage{
		UserID:        userID,
		Month:         month,
		AnalysesCount: r.s.usage[usageKey{userID, month}],
	}, nil
}

func (r usageRepo) Increment(_ context.Context, userID int, month string) (
	*model.DbUsage, error,
) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := usageKey{userID, month}
	r.s.usage[key]++
	return &model.DbUsage{UserID: userID, Month: month, AnalysesCount: r.s.usage[key]}, nil
}

func (r userRepo) Create(_ context.Context, u *model.DbUser) (*model.DbUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *u
	stored.ID = len(r.s.users) + 1
	if stored.SubscriptionTier == "" {
		stored.SubscriptionTier = model.TierFree
	}
	stored.CreatedAt = r.s.now()
	r.s.users = append(r.s.users, stored)
	return &stored, nil
}

func (r userRepo) LoadByID(_ context.Context, id int) (*model.DbUser, error) {
	return r.find(func(u *model.DbUser) bool { return u.ID == id })
}

func (r userRepo) LoadByToken(_ context.Context, token string) (*model.DbUser, error) {
	return r.find(func(u *model.DbUser) bool { return u.APIToken == token })
}

func (r userRepo) find(match func(u *model.DbUser) bool) (*model.DbUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.users {
		if match(&r.s.users[i]) {
			ret := r.s.users[i]
			return &ret, nil
		}
	}
	return nil, repository.ErrNoData
}
