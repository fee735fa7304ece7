package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func weeklyTask(now time.Time) *domain.ScheduledTask {
	return &domain.ScheduledTask{
		ID:          domain.TaskIDWeeklyBrief,
		Name:        "Weekly Brief",
		Interval:    7 * 24 * time.Hour,
		LastRun:     now.Add(-time.Hour),
		NextRun:     now.Add(167 * time.Hour),
		LastSuccess: now.Add(-time.Hour),
		Enabled:     true,
	}
}

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	ctx := context.Background()
	ss := setupTestStore(t).SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	task := weeklyTask(now)
	require.NoError(t, ss.SaveTask(ctx, task))

	got, err := ss.GetTask(ctx, domain.TaskIDWeeklyBrief)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.Name, got.Name)
	assert.Equal(t, task.Interval, got.Interval)
	assert.True(t, got.Enabled)
	assert.Empty(t, got.LastError)
	assert.True(t, task.LastRun.Equal(got.LastRun))
	assert.True(t, task.NextRun.Equal(got.NextRun))
	assert.True(t, task.LastSuccess.Equal(got.LastSuccess))
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	got, err := setupTestStore(t).SchedulerStore().GetTask(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_SaveTask_Upserts(t *testing.T) {
	ctx := context.Background()
	ss := setupTestStore(t).SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	task := weeklyTask(now)
	require.NoError(t, ss.SaveTask(ctx, task))

	task.LastError = "slack: channel_not_found"
	task.Enabled = false
	task.Interval = 24 * time.Hour
	require.NoError(t, ss.SaveTask(ctx, task))

	got, err := ss.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "slack: channel_not_found", got.LastError)
	assert.False(t, got.Enabled)
	assert.Equal(t, 24*time.Hour, got.Interval)

	tasks, err := ss.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSchedulerStore_SaveTask_Nil(t *testing.T) {
	err := setupTestStore(t).SchedulerStore().SaveTask(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerStore_ListTasks_OrderedByID(t *testing.T) {
	ctx := context.Background()
	ss := setupTestStore(t).SchedulerStore()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, ss.SaveTask(ctx, &domain.ScheduledTask{ID: id, Name: id, Interval: time.Hour}))
	}

	tasks, err := ss.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "alpha", tasks[0].ID)
	assert.Equal(t, "mid", tasks[1].ID)
	assert.Equal(t, "zeta", tasks[2].ID)
}

func TestSchedulerStore_ListTasks_Empty(t *testing.T) {
	tasks, err := setupTestStore(t).SchedulerStore().ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSchedulerStore_DeleteTask(t *testing.T) {
	ctx := context.Background()
	ss := setupTestStore(t).SchedulerStore()

	require.NoError(t, ss.SaveTask(ctx, weeklyTask(time.Now())))
	require.NoError(t, ss.DeleteTask(ctx, domain.TaskIDWeeklyBrief))

	got, err := ss.GetTask(ctx, domain.TaskIDWeeklyBrief)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error.
	assert.NoError(t, ss.DeleteTask(ctx, domain.TaskIDWeeklyBrief))
}

func TestSchedulerStore_RecordResult_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	ss := setupTestStore(t).SchedulerStore()

	base := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		errMsg := ""
		if i == 1 {
			errMsg = "llm: timeout"
		}
		require.NoError(t, ss.RecordResult(ctx, &domain.TaskResult{
			TaskID:         domain.TaskIDWeeklyBrief,
			StartedAt:      start,
			EndedAt:        start.Add(90 * time.Second),
			Success:        errMsg == "",
			Error:          errMsg,
			ItemsProcessed: 10 + i,
		}))
	}

	history, err := ss.GetTaskHistory(ctx, domain.TaskIDWeeklyBrief, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.True(t, history[0].StartedAt.Equal(base.Add(48*time.Hour)))
	assert.Equal(t, 12, history[0].ItemsProcessed)
	assert.True(t, history[0].Success)

	assert.False(t, history[1].Success)
	assert.Equal(t, "llm: timeout", history[1].Error)
	assert.True(t, history[1].EndedAt.Equal(base.Add(24*time.Hour+90*time.Second)))

	limited, err := ss.GetTaskHistory(ctx, domain.TaskIDWeeklyBrief, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSchedulerStore_RecordResult_Nil(t *testing.T) {
	err := setupTestStore(t).SchedulerStore().RecordResult(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerStore_GetTaskHistory_UnknownTask(t *testing.T) {
	history, err := setupTestStore(t).SchedulerStore().GetTaskHistory(context.Background(), "nope", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSchedulerStore_PruneHistory_PerTask(t *testing.T) {
	ctx := context.Background()
	ss := setupTestStore(t).SchedulerStore()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		for _, id := range []string{"a", "b"} {
			start := base.Add(time.Duration(i) * time.Hour)
			require.NoError(t, ss.RecordResult(ctx, &domain.TaskResult{
				TaskID: id, StartedAt: start, EndedAt: start, Success: true, ItemsProcessed: i,
			}))
		}
	}

	require.NoError(t, ss.PruneHistory(ctx, 2))

	for _, id := range []string{"a", "b"} {
		history, err := ss.GetTaskHistory(ctx, id, 0)
		require.NoError(t, err)
		require.Len(t, history, 2, "task %s", id)
		assert.Equal(t, 4, history[0].ItemsProcessed)
		assert.Equal(t, 3, history[1].ItemsProcessed)
	}
}

func TestSchedulerStore_ZeroTimesRoundTrip(t *testing.T) {
	ctx := context.Background()
	ss := setupTestStore(t).SchedulerStore()

	require.NoError(t, ss.SaveTask(ctx, &domain.ScheduledTask{ID: "fresh", Name: "Fresh", Interval: time.Hour}))

	got, err := ss.GetTask(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, got.LastRun.IsZero())
	assert.True(t, got.NextRun.IsZero())
	assert.True(t, got.LastSuccess.IsZero())
	assert.False(t, got.Enabled)
}

func TestFormatNullableTime(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))

	ts := time.Date(2026, 10, 19, 8, 30, 0, 0, time.FixedZone("PT", -7*3600))
	assert.Equal(t, "2026-10-19T15:30:00Z", formatNullableTime(ts))
}

func TestParseNullableTime(t *testing.T) {
	assert.True(t, parseNullableTime(sql.NullString{}).IsZero())
	assert.True(t, parseNullableTime(sql.NullString{String: "garbage", Valid: true}).IsZero())

	got := parseNullableTime(sql.NullString{String: "2026-10-19T15:30:00Z", Valid: true})
	assert.Equal(t, time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC), got)
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", nullString("x"))
}

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}
