// Command pulse-brief produces a weekly AI newsletter brief and posts it to Slack.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pulse-brief/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/pulse-brief/internal/adapters/driven/config/file"
	slackadapter "github.com/custodia-labs/pulse-brief/internal/adapters/driven/slack"
	storagefile "github.com/custodia-labs/pulse-brief/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/pulse-brief/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pulse-brief/internal/adapters/driving/cli"
	"github.com/custodia-labs/pulse-brief/internal/adapters/driving/oauth"
	"github.com/custodia-labs/pulse-brief/internal/connectors/google"
	"github.com/custodia-labs/pulse-brief/internal/connectors/google/gmail"
	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/core/services"
	"github.com/custodia-labs/pulse-brief/internal/logger"
	"github.com/custodia-labs/pulse-brief/internal/normalisers/html"
	"github.com/custodia-labs/pulse-brief/internal/postprocessors"
	"github.com/custodia-labs/pulse-brief/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env in the working directory wins over the one in the config dir.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires adapters into services for one command.
func bootstrap(opts cli.GlobalOptions) (*cli.Services, error) {
	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = configfile.DefaultDir(); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("load %s/.env: %v", dir, err)
	}

	configStore, err := configfile.NewConfigStore(dir)
	if err != nil {
		return nil, err
	}
	settingsService := services.NewSettingsService(configStore, dir)

	settings, err := settingsService.Get()
	if err != nil {
		// Settings stay reachable so the bad value can be fixed.
		return &cli.Services{Settings: settingsService, SetupErr: err}, nil
	}
	rc := settings.Run

	consent := &oauth.GmailConsent{
		CredentialsFile: settings.Gmail.CredentialsFile,
		TokenFile:       settings.Gmail.TokenFile,
	}

	prompts, err := configfile.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, err
	}
	// Loading once lays down the default templates so the watcher has a directory.
	if _, err := prompts.Load(driven.PromptRankSystem); err != nil {
		logger.Warn("prompts: %v", err)
	}

	messages := gmail.NewLazyStore(func(ctx context.Context) (driven.MessageStore, error) {
		return connectGmail(ctx, configStore, settings.Gmail)
	})
	ingestor := services.NewIngestor(messages, html.New(), services.WithLinkResolver(gmail.ResolveWebURL))

	llm, err := ai.CreateLLMService(settings.LLM)
	if err != nil {
		logger.Debug("llm unavailable: %v", err)
		llm = ai.Unavailable(err)
	}

	artifacts := storagefile.NewArtifactStore(rc.ArtifactDir, rc.MirrorDir)
	prioritiser := services.NewPrioritiser(llm, prompts, services.WithRankModel(settings.LLM.RankModel))
	generator := services.NewGenerator(llm, prompts, artifacts, services.WithGenerateModel(settings.LLM.Model))

	deliverer, err := newDeliverer(settingsService, settings, rc)
	if err != nil {
		_ = llm.Close()
		return nil, err
	}

	brief := services.NewBriefService(
		services.BriefConfig{
			Query:        settings.Gmail.Query,
			ContextQuery: settings.Gmail.ContextQuery,
			Run:          rc,
		},
		ingestor,
		prioritiser,
		generator,
		artifacts,
		deliverer,
		storagefile.NewContextStore(rc.ContextDir),
	)

	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		_ = llm.Close()
		return nil, err
	}
	scheduler := services.NewScheduler(settingsService.SchedulerConfig(), store.SchedulerStore(), brief)

	return &cli.Services{
		Brief:     brief,
		Scheduler: scheduler,
		Inspector: scheduler,
		Settings:  settingsService,
		Watcher:   configfile.NewPromptWatcher(prompts.Dir(), prompts),
		Gmail:     consent,
		Close: func() error {
			return errors.Join(llm.Close(), store.Close())
		},
	}, nil
}

// newDeliverer returns nil, nil when Slack is not configured; runs then store
// briefs without posting them.
func newDeliverer(
	settingsService *services.SettingsService,
	settings *domain.Settings,
	rc domain.RunContext,
) (*services.Deliverer, error) {
	target, err := slackadapter.New(slackadapter.Config{
		Token:   settings.Slack.Token,
		Channel: settings.Slack.Channel,
	})
	if errors.Is(err, domain.ErrDeliveryNotConfigured) {
		logger.Debug("slack delivery disabled: %v", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	names, cfg, err := settingsService.DeliveryPipeline()
	if err != nil {
		return nil, err
	}
	pipeline, err := postprocessors.BuildPipeline(registry, names, cfg)
	if err != nil {
		return nil, err
	}

	return services.NewDeliverer(
		target,
		storagefile.NewRecordStore(),
		chunker.New(chunker.WithMaxBytes(rc.MaxChunkBytes)),
		pipeline,
		services.WithWebBaseURL(rc.WebBaseURL),
	), nil
}

// connectGmail builds the Gmail message store from the cached token.
func connectGmail(ctx context.Context, cs driven.ConfigStore, gs domain.GmailSettings) (driven.MessageStore, error) {
	oauthCfg, err := google.LoadConfig(gs.CredentialsFile)
	if err != nil {
		return nil, err
	}
	ts, err := google.NewTokenSource(ctx, oauthCfg, gs.TokenFile)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewGmailService(ctx, ts)
	if err != nil {
		return nil, err
	}

	cfg := gmail.ParseConfig(cs)
	if gs.PageSize > 0 {
		cfg.PageSize = gs.PageSize
	}
	return gmail.NewStore(svc, cfg, google.NewRateLimiter(google.DefaultGmailRateLimit)), nil
}
