// Package services implements the driving port interfaces.
// Services hold the pipeline logic (ingestion, selection, generation,
// delivery and scheduling) and reach the outside world only through
// driven ports.
package services
