package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driving"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

// Ensure BriefService implements the interface.
var _ driving.BriefRunner = (*BriefService)(nil)

const noTeamContext = "No team context available."

// BriefService runs the weekly pipeline end to end:
// window, ingest, select, generate, store, deliver.
type BriefService struct {
	ingestor    *Ingestor
	prioritiser *Prioritiser
	generator   *Generator
	artifacts   driven.ArtifactStore
	deliverer   *Deliverer
	team        driven.ContextSource

	query        string
	contextQuery string
	rc           domain.RunContext
}

// BriefConfig names the queries a run uses.
type BriefConfig struct {
	// Query selects newsletters.
	Query string

	// ContextQuery selects team context mail. Empty disables it.
	ContextQuery string

	Run domain.RunContext
}

// NewBriefService creates the orchestrator.
// deliverer and team are optional; without a deliverer runs never post.
func NewBriefService(
	cfg BriefConfig,
	ingestor *Ingestor,
	prioritiser *Prioritiser,
	generator *Generator,
	artifacts driven.ArtifactStore,
	deliverer *Deliverer,
	team driven.ContextSource,
) *BriefService {
	return &BriefService{
		ingestor:     ingestor,
		prioritiser:  prioritiser,
		generator:    generator,
		artifacts:    artifacts,
		deliverer:    deliverer,
		team:         team,
		query:        cfg.Query,
		contextQuery: cfg.ContextQuery,
		rc:           cfg.Run,
	}
}

// Run executes one pipeline run. Any stage error aborts the run and names its stage.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *BriefService) Run(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error) {
	now := s.rc.Clock()
	report := &domain.RunReport{
		RunID:     uuid.New().String(),
		Window:    ComputeWindow(now, s.rc.Location, s.rc.WindowDays),
		StartedAt: now,
	}
	defer func() { report.EndedAt = s.rc.Clock() }()

	logger.Section("Weekly brief " + report.RunID)
	logger.Info("coverage window: %s", report.Window.Label)

	// 1. Ingest a wider lookback, then narrow to the window.
	docs, stats, err := s.ingestor.Fetch(ctx, domain.TrailingDays(s.rc.LookbackDays), s.query)
	report.Stats = stats
	if err != nil {
		return report, err
	}
	inWindow := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if report.Window.Contains(d.InternalDate) {
			inWindow = append(inWindow, d)
		}
	}
	report.Stats.InWindow = len(inWindow)
	logger.Info("%d documents in %s window (%d unique in lookback)", len(inWindow), report.Window.Label, stats.Unique)

	if len(inWindow) == 0 {
		logger.Warn("no documents in window, nothing to generate")
		return report, nil
	}

	// 2. Team context.
	teamContext := s.teamContext(ctx)

	// 3. Select.
	sel, err := s.prioritiser.Select(ctx, inWindow, teamContext, s.rc)
	if err != nil {
		return report, err
	}
	report.Selection = sel
	report.Stats.TwoStage = sel.TwoStage
	report.Stats.Fallback = sel.Assignment.Fallback
	report.Stats.Detailed = len(sel.Detailed)
	report.Stats.Brief = len(sel.Brief)
	report.Stats.Dropped = sel.Dropped

	if opts.DryRun {
		logger.Info("dry run: stopping before generation")
		return report, nil
	}

	// 4. Generate and store.
	content, err := s.generator.Generate(ctx, report.Window, sel, teamContext, s.rc)
	if err != nil {
		return report, err
	}
	brief := &domain.Brief{
		ArtifactID:  now.Format("2006-01-02"),
		Window:      report.Window,
		Content:     content,
		GeneratedAt: now,
	}
	path, err := s.artifacts.Save(ctx, brief)
	if err != nil {
		return report, domain.NewStageError("store", domain.KindPersistence, err)
	}
	brief.Path = path
	report.Brief = brief
	logger.Info("brief saved: %s", path)

	// 5. Deliver.
	if opts.NoPost || s.deliverer == nil {
		return report, nil
	}
	outcome, err := s.deliverer.Deliver(ctx, domain.DeliveryRequest{
		ArtifactID:   brief.ArtifactID,
		ArtifactPath: path,
		Content:      content,
		Window:       &report.Window,
	})
	report.Delivery = outcome
	return report, err
}

// Post delivers a previously stored artifact.
func (s *BriefService) Post(ctx context.Context, artifactID string) (*domain.DeliveryOutcome, error) {
	if s.deliverer == nil {
		return nil, domain.ErrDeliveryNotConfigured
	}
	content, path, err := s.artifacts.Load(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", artifactID, err)
	}
	return s.deliverer.Deliver(ctx, domain.DeliveryRequest{
		ArtifactID:   artifactID,
		ArtifactPath: path,
		Content:      content,
	})
}

// teamContext joins the context files with any recent context mail.
// Context is best effort; failures are logged and skipped.
func (s *BriefService) teamContext(ctx context.Context) string {
	var parts []string

	if s.team != nil {
		text, err := s.team.TeamContext(ctx)
		if err != nil {
			logger.Warn("team context: %v", err)
		} else if text != "" {
			parts = append(parts, text)
		}
	}

	if s.contextQuery != "" {
		mail, err := s.ingestor.FetchContext(ctx, domain.TrailingDays(s.rc.WindowDays), s.contextQuery)
		if err != nil {
			logger.Warn("context mail: %v", err)
		}
		if len(mail) > 0 {
			entries := make([]string, 0, len(mail))
			for _, m := range mail {
				entries = append(entries, fmt.Sprintf("MAIL %s (%s):\n%s", m.Title, m.DateOnly(), m.Text))
			}
			parts = append(parts, "RECENT CONTEXT MAIL:\n"+strings.Join(entries, "\n---\n"))
		}
	}

	if len(parts) == 0 {
		return noTeamContext
	}
	return strings.Join(parts, "\n\n")
}

// Elapsed returns how long the reported run took.
func Elapsed(report *domain.RunReport) time.Duration {
	if report == nil || report.EndedAt.IsZero() {
		return 0
	}
	return report.EndedAt.Sub(report.StartedAt)
}
