package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

type mockBriefRunner struct {
	report  *domain.RunReport
	outcome *domain.DeliveryOutcome
	err     error

	gotOpts     domain.RunOptions
	gotArtifact string
}

func (m *mockBriefRunner) Run(_ context.Context, opts domain.RunOptions) (*domain.RunReport, error) {
	m.gotOpts = opts
	return m.report, m.err
}

func (m *mockBriefRunner) Post(_ context.Context, artifactID string) (*domain.DeliveryOutcome, error) {
	m.gotArtifact = artifactID
	return m.outcome, m.err
}

type mockScheduler struct {
	started bool
	stopped bool
	err     error
}

func (m *mockScheduler) Start(context.Context) error {
	m.started = true
	return m.err
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

type mockInspector struct {
	tasks   []domain.ScheduledTask
	history []domain.TaskResult
	err     error

	gotTask  string
	gotLimit int
	reset    []string
}

func (m *mockInspector) Tasks(context.Context) ([]domain.ScheduledTask, error) {
	return m.tasks, m.err
}

func (m *mockInspector) History(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.gotTask = taskID
	m.gotLimit = limit
	return m.history, m.err
}

func (m *mockInspector) Reset(_ context.Context, taskID string) error {
	if m.err != nil {
		return m.err
	}
	m.reset = append(m.reset, taskID)
	return nil
}

type mockSettings struct {
	settings *domain.Settings
	values   map[string]string
	setErr   error
}

func (m *mockSettings) Get() (*domain.Settings, error) {
	if m.settings == nil {
		return nil, errors.New("no settings")
	}
	return m.settings, nil
}

func (m *mockSettings) Set(key, raw string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = raw
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"llm.provider", "slack.channel"}
}

type mockWatcher struct {
	watched chan struct{}
}

func (m *mockWatcher) Watch(ctx context.Context) error {
	close(m.watched)
	<-ctx.Done()
	return ctx.Err()
}

// execute runs the root command with args against s and returns its output.
func execute(t *testing.T, s *Services, stdin string, args ...string) (string, error) {
	t.Helper()

	setServices(s)
	prevBootstrap := bootstrap
	bootstrap = nil
	runOpts = domain.RunOptions{}
	historyLimit = 10
	t.Cleanup(func() {
		setServices(nil)
		bootstrap = prevBootstrap
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func testSettings(t *testing.T) *domain.Settings {
	t.Helper()
	rc := domain.DefaultRunContext()
	rc.ArtifactDir = "/home/u/.pulse-brief/briefs"
	rc.ContextDir = "/home/u/.pulse-brief/context"
	require.NotNil(t, rc.Location)
	return &domain.Settings{
		Gmail: domain.GmailSettings{
			Query:           "label:ai-newsletters",
			CredentialsFile: "/home/u/.pulse-brief/credentials.json",
			TokenFile:       "/home/u/.pulse-brief/token.json",
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProviderAnthropic,
			APIKey:   "sk-ant-1234567890abcdef",
		},
		Slack:                 domain.SlackSettings{Channel: "#ai-brief"},
		Run:                   rc,
		ScheduleIntervalHours: 168,
	}
}

type mockAuthoriser struct {
	called bool
	err    error
}

func (m *mockAuthoriser) Authorise(_ context.Context, out io.Writer) error {
	m.called = true
	_, _ = io.WriteString(out, "visit https://accounts.example/auth\n")
	return m.err
}
