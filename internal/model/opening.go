package model

import "time"

// Opening is a placed wall-penetration instance.
type Opening struct {
	ID         string             `json:"id"`
	Template   string             `json:"template"`
	HostWallID string             `json:"host_wall_id"`
	LevelID    string             `json:"level_id"`
	Position   Point3D            `json:"position"`
	Structural bool               `json:"structural"`
	Parameters map[string]float64 `json:"parameters"`
}

// NewOpening creates a non-structural opening with every declared parameter
// set to zero.
func NewOpening(template, wallID, levelID string, position Point3D, parameters []string) Opening {
	params := make(map[string]float64, len(parameters))
	for _, p := range parameters {
		params[p] = 0
	}
	return Opening{
		ID:         newID(),
		Template:   template,
		HostWallID: wallID,
		LevelID:    levelID,
		Position:   position,
		Parameters: params,
	}
}

// Size returns the values of the named width and height parameters.
func (o Opening) Size(widthParam, heightParam string) (w, h float64) {
	return o.Parameters[widthParam], o.Parameters[heightParam]
}

// Placement records one opening created by a batch.
type Placement struct {
	OpeningID string  `json:"opening_id"`
	RunID     string  `json:"run_id"`
	WallID    string  `json:"wall_id"`
	LevelID   string  `json:"level_id"`
	Proximity float64 `json:"proximity"`
	Position  Point3D `json:"position"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// FailureStage names where in the pipeline a failure happened.
type FailureStage string

const (
	StageScan    FailureStage = "scan"
	StageLevel   FailureStage = "level"
	StagePlace   FailureStage = "place"
	StageSection FailureStage = "section"
)

// HitFailure records a run or hit that could not produce an opening.
// WallID is empty for run-level failures.
type HitFailure struct {
	RunID     string       `json:"run_id"`
	WallID    string       `json:"wall_id,omitempty"`
	Proximity float64      `json:"proximity,omitempty"`
	Stage     FailureStage `json:"stage"`
	Reason    string       `json:"reason"`
}

// BatchState is a state of the placement batch.
type BatchState string

const (
	BatchNotStarted BatchState = "not_started"
	BatchScopeOpen  BatchState = "scope_open"
	BatchScanning   BatchState = "scanning"
	BatchPlacing    BatchState = "placing"
	BatchCommitted  BatchState = "committed"
	BatchAborted    BatchState = "aborted"
)

// BatchResult is the outcome of one placement batch.
type BatchResult struct {
	ID          string       `json:"id"`
	Document    string       `json:"document"`
	State       BatchState   `json:"state"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	RunsScanned int          `json:"runs_scanned"`
	HitsFound   int          `json:"hits_found"`
	Placements  []Placement  `json:"placements"`
	Failures    []HitFailure `json:"failures"`
}

// OpeningCount returns the number of openings that persisted. An aborted
// batch persists nothing.
func (r BatchResult) OpeningCount() int {
	if r.State != BatchCommitted {
		return 0
	}
	return len(r.Placements)
}

func NewBatchResult(document string) BatchResult {
	return BatchResult{
		ID:        newID(),
		Document:  document,
		State:     BatchNotStarted,
		StartedAt: time.Now().UTC(),
	}
}
