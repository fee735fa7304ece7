package domain

import "time"

// DeliveryState tracks progress through the threaded post sequence.
type DeliveryState string

const (
	StateNotPosted      DeliveryState = "NOT_POSTED"
	StateRootPosted     DeliveryState = "ROOT_POSTED"
	StateChildrenPosted DeliveryState = "CHILDREN_POSTED"
	StateSourcesPosted  DeliveryState = "SOURCES_POSTED"
	StateComplete       DeliveryState = "COMPLETE"
)

// DeliveryRecord proves an artifact's whole post sequence succeeded.
// Its existence alone gates re-delivery; the other fields are informational.
type DeliveryRecord struct {
	ArtifactID  string    `json:"artifact_id,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
	Channel     string    `json:"channel,omitempty"`
	ThreadID    string    `json:"thread_id,omitempty"`
	ChunkCount  int       `json:"chunk_count,omitempty"`
}

// DeliveryRequest is everything the delivery engine needs for one artifact.
type DeliveryRequest struct {
	// ArtifactID identifies the stored artifact (its date stamp).
	ArtifactID string

	// ArtifactPath is where the artifact lives. The record is stored beside it.
	ArtifactPath string

	// Content is the generated brief in markdown.
	Content string

	// Window is the coverage window. A nil window gets a timestamp header.
	Window *Window
}

// DeliveryOutcome reports the result of a delivery attempt.
type DeliveryOutcome struct {
	State    DeliveryState
	ThreadID string

	// Replies counts posted chunk replies, excluding the sources reply.
	Replies int

	// AlreadyDelivered is true when an existing record short-circuited delivery.
	AlreadyDelivered bool

	Record *DeliveryRecord
}
