package domain

// Tier is the priority bucket assigned to a document.
type Tier int

const (
	// TierUnassigned documents are dropped from generation input.
	TierUnassigned Tier = iota
	// TierHigh documents receive detailed treatment.
	TierHigh
	// TierMedium documents receive brief treatment.
	TierMedium
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "unassigned"
	}
}

// PriorityAssignment maps document indices to tiers.
// Indices refer to positions in the ingested, newest-first document list.
type PriorityAssignment struct {
	High   []int
	Medium []int

	// Fallback is true when the tiers were derived positionally
	// because the ranking reply could not be used.
	Fallback bool
}

// TierOf returns the tier of the document at index i.
func (p PriorityAssignment) TierOf(i int) Tier {
	for _, h := range p.High {
		if h == i {
			return TierHigh
		}
	}
	for _, m := range p.Medium {
		if m == i {
			return TierMedium
		}
	}
	return TierUnassigned
}

// Tally counts the tiers of the first n documents.
func (p PriorityAssignment) Tally(n int) map[Tier]int {
	counts := make(map[Tier]int, 3)
	for i := 0; i < n; i++ {
		counts[p.TierOf(i)]++
	}
	return counts
}

// HeaderProjection is the lightweight per-document view sent to the ranking oracle.
type HeaderProjection struct {
	Index  int    `yaml:"index" json:"index"`
	Title  string `yaml:"title" json:"title"`
	Source string `yaml:"source" json:"source"`
	Date   string `yaml:"date" json:"date"`
}

// DetailedDoc is a high-tier document prepared for generation.
type DetailedDoc struct {
	Title  string `yaml:"title"`
	Source string `yaml:"source"`
	Date   string `yaml:"date"`
	Text   string `yaml:"text"`
	URL    string `yaml:"url,omitempty"`
}

// BriefDoc is a medium-tier document prepared for generation.
type BriefDoc struct {
	Title     string `yaml:"title"`
	Source    string `yaml:"source"`
	Date      string `yaml:"date"`
	BriefText string `yaml:"brief_text"`
}

// Selection is the output of the relevance pipeline.
type Selection struct {
	Detailed   []DetailedDoc
	Brief      []BriefDoc
	Assignment PriorityAssignment

	// TwoStage is true when the ranking stage ran.
	TwoStage bool

	// Dropped counts documents outside both capped tiers.
	Dropped int
}
