package model

// FailurePolicy decides what a placement fault does to the batch.
type FailurePolicy string

const (
	// PolicyCollect rolls back only the failing placement, records it and
	// commits everything else.
	PolicyCollect FailurePolicy = "collect"
	// PolicyFailFast aborts the whole batch on the first fault; nothing is
	// committed.
	PolicyFailFast FailurePolicy = "fail-fast"
)

func (p FailurePolicy) Valid() bool {
	return p == PolicyCollect || p == PolicyFailFast
}

// Settings holds the batch configuration.
type Settings struct {
	CompanionTitle  string        `json:"companion_title"`  // Substring matched against open document titles
	TemplateName    string        `json:"template_name"`    // Substring matched against generic-model template families
	WidthParameter  string        `json:"width_parameter"`  // Instance parameter receiving the opening width
	HeightParameter string        `json:"height_parameter"` // Instance parameter receiving the opening height
	FailurePolicy   FailurePolicy `json:"failure_policy"`
	ScanWorkers     int           `json:"scan_workers"` // Parallel ray-cast workers; 1 scans sequentially
	TransactionName string        `json:"transaction_name"`
}

func DefaultSettings() Settings {
	return Settings{
		CompanionTitle:  "ИОС",
		TemplateName:    "Отверстие в стене",
		WidthParameter:  "Ширина",
		HeightParameter: "Высота",
		FailurePolicy:   PolicyCollect,
		ScanWorkers:     1,
		TransactionName: "Place wall openings",
	}
}
