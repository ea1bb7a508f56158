package model

import "time"

type (
	Priority     string
	Category     string
	AnalysisType string
)

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	CategorySpeed        Category = "speed"
	CategoryBraking      Category = "braking"
	CategoryAcceleration Category = "acceleration"
	CategoryCornering    Category = "cornering"
	CategoryConsistency  Category = "consistency"
	CategorySetup        Category = "setup"
	CategoryGeneral      Category = "general"
)

const (
	AnalysisTypeRuleBased AnalysisType = "rule_based"
	AnalysisTypeAI        AnalysisType = "ai_powered"
)

type Recommendation struct {
	Priority    Priority `json:"priority"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

type AnalysisResult struct {
	Insights        string           `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	AnalysisType    AnalysisType     `json:"analysisType"`
	// only present for rule based analysis
	EstimatedImprovement *float64 `json:"estimatedImprovement,omitempty"`
}

type SectorResult struct {
	SectorIndex       int     `json:"sectorIndex"` // 0-based
	UserAvgSpeed      float64 `json:"userAvgSpeed"`
	ReferenceAvgSpeed float64 `json:"referenceAvgSpeed"`
	SpeedDifference   float64 `json:"speedDifference"`
	EstimatedTimeLost float64 `json:"estimatedTimeLost"` // unit: seconds
}

type SectorComparison struct {
	TimeDifference     float64        `json:"timeDifference"`
	AvgSpeedDifference float64        `json:"avgSpeedDifference"`
	Sectors            []SectorResult `json:"sectors"`
}

// DbLapAnalysis is a stored analysis. Metrics and Analysis are persisted as
// json blobs.
type DbLapAnalysis struct {
	ID        int            `json:"id"`
	UserID    int            `json:"userId"`
	SimType   string         `json:"simType"`
	TrackName string         `json:"trackName"`
	CarName   string         `json:"carName"`
	LapTime   float64        `json:"lapTime"`
	Metrics   LapMetrics     `json:"telemetryData"`
	Analysis  AnalysisResult `json:"analysis"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LapAnalysisHeader is the list view of a stored analysis
type LapAnalysisHeader struct {
	ID        int       `json:"id"`
	SimType   string    `json:"simType"`
	TrackName string    `json:"trackName"`
	CarName   string    `json:"carName"`
	LapTime   float64   `json:"lapTime"`
	CreatedAt time.Time `json:"createdAt"`
}

type BestLap struct {
	TrackName string  `json:"trackName"`
	CarName   string  `json:"carName"`
	LapTime   float64 `json:"lapTime"`
}

type TrackCount struct {
	TrackName string `json:"trackName"`
	Count     int    `json:"count"`
}

type UserStats struct {
	TotalAnalyses int          `json:"totalAnalyses"`
	BestLap       *BestLap     `json:"bestLap"`
	RecentTracks  []TrackCount `json:"recentTracks"`
}

// AnalysisEvent is published after an analysis was stored
type AnalysisEvent struct {
	ID                   int          `json:"id"`
	UserID               int          `json:"userId"`
	SimType              string       `json:"simType"`
	TrackName            string       `json:"trackName"`
	CarName              string       `json:"carName"`
	LapTime              float64      `json:"lapTime"`
	AnalysisType         AnalysisType `json:"analysisType"`
	EstimatedImprovement *float64     `json:"estimatedImprovement,omitempty"`
	CreatedAt            time.Time    `json:"createdAt"`
}
