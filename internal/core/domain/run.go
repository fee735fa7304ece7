package domain

import (
	"time"
	// Named zones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"
)

// RunContext carries the paths, time zone, thresholds and budgets of a run.
// It is built once from configuration and passed explicitly to every stage.
type RunContext struct {
	// Location is the time zone the window is computed in.
	Location *time.Location

	// WindowDays is the window length.
	WindowDays int

	// LookbackDays is how far back ingestion asks the store to search
	// before documents are narrowed to the window.
	LookbackDays int

	// TwoStageThreshold is the document count above which ranking runs.
	TwoStageThreshold int

	// FallbackHigh and FallbackMedium size the positional fallback tiers.
	FallbackHigh   int
	FallbackMedium int

	// DetailCap and BriefCap bound how many documents each tier passes on.
	DetailCap int
	BriefCap  int

	// DetailBodyBytes and BriefBodyBytes truncate document bodies per tier.
	DetailBodyBytes int
	BriefBodyBytes  int

	// MaxChunkBytes is the delivery chunk ceiling.
	MaxChunkBytes int

	// ArtifactDir holds generated briefs and their delivery records.
	ArtifactDir string

	// MirrorDir receives a second copy of each brief when set.
	MirrorDir string

	// ContextDir holds team overview and meeting notes.
	ContextDir string

	// WebBaseURL prefixes the deep link in the delivery header.
	WebBaseURL string

	// HistoryCount is how many previous briefs feed the generation prompt.
	HistoryCount int

	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// DefaultRunContext returns the standard weekly configuration.
func DefaultRunContext() RunContext {
	loc, err := time.LoadLocation("America/Denver")
	if err != nil {
		loc = time.UTC
	}
	return RunContext{
		Location:          loc,
		WindowDays:        7,
		LookbackDays:      30,
		TwoStageThreshold: 20,
		FallbackHigh:      15,
		FallbackMedium:    10,
		DetailCap:         20,
		BriefCap:          10,
		DetailBodyBytes:   3000,
		BriefBodyBytes:    500,
		MaxChunkBytes:     3800,
		HistoryCount:      3,
	}
}

// Clock returns the current instant in the run's time zone.
func (rc RunContext) Clock() time.Time {
	now := time.Now
	if rc.Now != nil {
		now = rc.Now
	}
	loc := rc.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// RunStats counts what each stage did. Per-item failures surface here, not as errors.
type RunStats struct {
	Listed      int
	Fetched     int
	FetchErrors int
	Skipped     int
	Unique      int
	InWindow    int
	Detailed    int
	Brief       int
	Dropped     int
	Fallback    bool
	TwoStage    bool
}

// Brief is a generated artifact.
type Brief struct {
	// ArtifactID is the window end date, YYYY-MM-DD.
	ArtifactID string

	// Path is set once the artifact is stored.
	Path string

	Window      Window
	Content     string
	GeneratedAt time.Time
}

// Artifact is a stored brief as listed by the artifact store.
type Artifact struct {
	ID      string
	Path    string
	ModTime time.Time
}

// RunOptions adjusts a single pipeline run.
type RunOptions struct {
	// DryRun stops after selection; nothing is generated, stored or posted.
	DryRun bool

	// NoPost stores the artifact without delivering it.
	NoPost bool
}

// RunReport summarises a pipeline run.
type RunReport struct {
	RunID     string
	Window    Window
	Stats     RunStats
	Selection *Selection
	Brief     *Brief
	Delivery  *DeliveryOutcome
	StartedAt time.Time
	EndedAt   time.Time
}
