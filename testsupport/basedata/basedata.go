package basedata

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	lapanalysisrepos "github.com/mpapenbr/simlap-service-go/pkg/repository/lapanalysis"
	userrepos "github.com/mpapenbr/simlap-service-go/pkg/repository/user"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

func SampleUser() *model.DbUser {
	return &model.DbUser{
		Name:             "testuser",
		APIToken:         "testtoken",
		SubscriptionTier: model.TierFree,
	}
}

func SampleMetrics() *model.LapMetrics {
	return &model.LapMetrics{
		SimType:      "iracing",
		TrackName:    "Spa-Francorchamps",
		CarName:      "GT3",
		TotalRecords: 3,
		LapTime:      138.5,
		MaxSpeed:     280,
		MinSpeed:     70,
		AvgSpeed:     171.2,
		MaxThrottle:  1,
		MaxBrake:     0.97,
		BrakingPoints: []model.BrakingEvent{
			{Time: 12.5, Speed: 270, Brake: 0.97, Index: 1},
		},
		AccelPoints: []model.AccelerationEvent{
			{Time: 0, Speed: 140, Throttle: 1, Index: 0},
		},
		Corners: []model.CornerEvent{
			{Time: 14, Speed: 90, Steering: 0.7, Index: 2},
		},
		DataPoints: []model.Sample{
			{Time: 0, Speed: 140, Throttle: 1},
			{Time: 12.5, Speed: 270, Brake: 0.97},
			{Time: 14, Speed: 90, Throttle: 0.2, Steering: -0.7},
		},
	}
}

func SampleAnalysis() *model.AnalysisResult {
	improvement := 0.4
	return &model.AnalysisResult{
		Insights: "Lap Time: 2:18.500",
		Recommendations: []model.Recommendation{
			{
				Priority: model.PriorityMedium, Category: model.CategoryConsistency,
				Title: "Focus on Consistency", Description: "more laps",
			},
			{
				Priority: model.PriorityLow, Category: model.CategorySetup,
				Title: "Setup Optimization", Description: "setup",
			},
		},
		AnalysisType:         model.AnalysisTypeRuleBased,
		EstimatedImprovement: &improvement,
	}
}

func SampleLapAnalysis(userID int) *model.DbLapAnalysis {
	m := SampleMetrics()
	return &model.DbLapAnalysis{
		UserID:    userID,
		SimType:   m.SimType,
		TrackName: m.TrackName,
		CarName:   m.CarName,
		LapTime:   m.LapTime,
		Metrics:   *m,
		Analysis:  *SampleAnalysis(),
	}
}

func CreateSampleUser(db *pgxpool.Pool) *model.DbUser {
	ctx := context.Background()
	var ret *model.DbUser
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		var err error
		ret, err = userrepos.Create(ctx, tx, SampleUser())
		return err
	})
	if err != nil {
		log.Fatalf("createSampleUser: %v\n", err)
	}
	return ret
}

// CreateSampleLapAnalysis stores a sample analysis for a newly created user
func CreateSampleLapAnalysis(db *pgxpool.Pool) (*model.DbUser, int) {
	ctx := context.Background()
	u := CreateSampleUser(db)
	var id int
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		var err error
		id, err = lapanalysisrepos.Create(ctx, tx, SampleLapAnalysis(u.ID))
		return err
	})
	if err != nil {
		log.Fatalf("createSampleLapAnalysis: %v\n", err)
	}
	return u, id
}
