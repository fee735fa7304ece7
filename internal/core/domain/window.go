package domain

import "time"

// Window is the trailing time interval that scopes a run.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether ms falls inside the window, both ends inclusive.
func (w Window) Contains(ms int64) bool {
	return ms >= w.Start.UnixMilli() && ms <= w.End.UnixMilli()
}

// FilterMode selects how ingestion limits messages by time.
type FilterMode int

const (
	// FilterAll applies no time filter.
	FilterAll FilterMode = iota
	// FilterTrailingDays delegates a trailing-days filter to the store query.
	FilterTrailingDays
	// FilterSince keeps messages strictly newer than a cutoff, client-side.
	FilterSince
)

// TimeFilter describes the time scope of an ingestion request.
type TimeFilter struct {
	Mode FilterMode

	// Days is the trailing window length for FilterTrailingDays.
	Days int

	// CutoffMillis is the exclusive lower bound for FilterSince.
	CutoffMillis int64
}

// AllTime returns a filter that keeps everything.
func AllTime() TimeFilter {
	return TimeFilter{Mode: FilterAll}
}

// TrailingDays returns a store-side trailing-days filter.
func TrailingDays(days int) TimeFilter {
	return TimeFilter{Mode: FilterTrailingDays, Days: days}
}

// Since returns a client-side filter excluding anything at or before cutoff.
func Since(cutoff time.Time) TimeFilter {
	return TimeFilter{Mode: FilterSince, CutoffMillis: cutoff.UnixMilli()}
}

// Keep reports whether a message received at ms passes the filter.
func (f TimeFilter) Keep(ms int64) bool {
	if f.Mode == FilterSince {
		return ms > f.CutoffMillis
	}
	return true
}
