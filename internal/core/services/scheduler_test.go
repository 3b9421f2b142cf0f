package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// --- Mock implementations for scheduler testing ---

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	saveErr  error
	listErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	// Return a copy
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	out := make([]domain.TaskResult, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, results[i])
	}
	return out, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return m.pruneErr
}

func (m *mockSchedulerStore) resultCount(taskID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results[taskID])
}

// mockAuth implements driving.AuthService for the token refresh task.
type mockAuth struct {
	mu         sync.Mutex
	session    *domain.AuthSession
	refreshErr error
	refreshes  int
}

func (m *mockAuth) Login(context.Context, domain.Credentials) (*domain.AuthUser, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockAuth) Register(context.Context, domain.RegisterRequest) (*domain.AuthUser, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockAuth) Logout(context.Context) error { return nil }

func (m *mockAuth) CurrentUser(context.Context) (*domain.AuthUser, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockAuth) Session(context.Context) (*domain.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *mockAuth) RefreshAccessToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return m.refreshErr
}

func (m *mockAuth) OnLogout(func(context.Context, string)) {}

func (m *mockAuth) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}

// Ensure mocks implement interfaces
var _ driven.SchedulerStore = (*mockSchedulerStore)(nil)
var _ driving.AuthService = (*mockAuth)(nil)

func expiringSession(in time.Duration) *domain.AuthSession {
	return &domain.AuthSession{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(in),
	}
}

// ==================== Scheduler Tests ====================

func TestNewScheduler(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newMockSchedulerStore()

	scheduler := NewScheduler(config, store, &mockAuth{}, nil)

	require.NotNil(t, scheduler)
	assert.Equal(t, config.Enabled, scheduler.config.Enabled)
}

func TestScheduler_StartStop(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newMockSchedulerStore()

	scheduler := NewScheduler(config, store, &mockAuth{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	err := scheduler.Stop()
	require.NoError(t, err)

	wg.Wait()
}

func TestScheduler_Disabled(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	config.Enabled = false
	store := newMockSchedulerStore()

	scheduler := NewScheduler(config, store, &mockAuth{}, nil)

	// Returns immediately without creating tasks
	require.NoError(t, scheduler.Start(context.Background()))
	tasks, err := store.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	// Stop without starting should be safe
	err := scheduler.Stop()
	require.NoError(t, err)
}

func TestScheduler_DoubleStart(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newMockSchedulerStore()

	scheduler := NewScheduler(config, store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	// Second start should return immediately (already running)
	err := scheduler.Start(context.Background())
	assert.NoError(t, err)

	cancel()
	scheduler.Stop() //nolint:errcheck
	wg.Wait()
}

func TestScheduler_InitialiseTasks(t *testing.T) {
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)

	ctx := context.Background()
	require.NoError(t, scheduler.initialiseTasks(ctx))

	refresh, err := store.GetTask(ctx, domain.TaskIDTokenRefresh)
	require.NoError(t, err)
	require.NotNil(t, refresh)
	assert.Equal(t, "Token Refresh", refresh.Name)
	assert.Equal(t, 5*time.Minute, refresh.Interval)
	assert.True(t, refresh.Enabled)

	status, err := store.GetTask(ctx, domain.TaskIDDocumentStatus)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, "Document Status", status.Name)
}

func TestScheduler_InitialiseTasks_SkipsUnconfigured(t *testing.T) {
	config := domain.SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]domain.TaskConfig{
			domain.TaskIDDocumentStatus: {Enabled: true, Interval: time.Second},
		},
	}
	store := newMockSchedulerStore()
	scheduler := NewScheduler(config, store, nil, nil)

	ctx := context.Background()
	require.NoError(t, scheduler.initialiseTasks(ctx))

	refresh, err := store.GetTask(ctx, domain.TaskIDTokenRefresh)
	require.NoError(t, err)
	assert.Nil(t, refresh)
}

func TestScheduler_EnsureTask_UpdateInterval(t *testing.T) {
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)
	ctx := context.Background()

	taskCfg := domain.TaskConfig{
		Enabled:  true,
		Interval: 1 * time.Hour,
	}
	require.NoError(t, scheduler.ensureTask(ctx, "test-task", "Test Task", taskCfg))

	taskCfg.Interval = 2 * time.Hour
	taskCfg.Enabled = false
	require.NoError(t, scheduler.ensureTask(ctx, "test-task", "Test Task", taskCfg))

	task, err := store.GetTask(ctx, "test-task")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, task.Interval)
	assert.False(t, task.Enabled)
}

func TestScheduler_TokenRefresh(t *testing.T) {
	tests := []struct {
		name      string
		session   *domain.AuthSession
		refreshes int
	}{
		{name: "signed out", session: nil, refreshes: 0},
		{name: "opaque token", session: &domain.AuthSession{AccessToken: "a", RefreshToken: "r"}, refreshes: 0},
		{name: "no refresh token", session: &domain.AuthSession{AccessToken: "a", Expiry: time.Now().Add(time.Minute)}, refreshes: 0},
		{name: "far from expiry", session: expiringSession(time.Hour), refreshes: 0},
		{name: "expiring soon", session: expiringSession(5 * time.Minute), refreshes: 1},
		{name: "already expired", session: expiringSession(-time.Minute), refreshes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuth{session: tt.session}
			scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), auth, nil)

			n, err := scheduler.runTokenRefresh(context.Background(), 5*time.Minute)
			require.NoError(t, err)
			assert.Equal(t, tt.refreshes, n)
			assert.Equal(t, tt.refreshes, auth.refreshCount())
		})
	}
}

func TestScheduler_TokenRefresh_NilAuth(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	n, err := scheduler.runTokenRefresh(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler_RunNow_RecordsFailure(t *testing.T) {
	auth := &mockAuth{
		session:    expiringSession(time.Minute),
		refreshErr: domain.ErrTokenRefreshFailed,
	}
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, auth, nil)
	ctx := context.Background()

	result, err := scheduler.RunNow(ctx, domain.TaskIDTokenRefresh)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "token refresh failed")

	task, err := store.GetTask(ctx, domain.TaskIDTokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, result.Error, task.LastError)
	assert.True(t, task.NextRun.After(result.EndedAt))

	history, err := scheduler.History(ctx, domain.TaskIDTokenRefresh, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
}

func TestScheduler_RunNow_DocumentStatus(t *testing.T) {
	api := newFakeDocumentAPI()
	api.script("a", domain.StatusCompleted)
	api.script("b", domain.StatusIndexing)
	tracker := NewDocumentTracker(api)
	tracker.Track(
		domain.Document{ID: "a", Status: domain.StatusEmbedding},
		domain.Document{ID: "b", Status: domain.StatusChunking},
		domain.Document{ID: "c", Status: domain.StatusCompleted},
	)

	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, tracker)

	result, err := scheduler.RunNow(context.Background(), domain.TaskIDDocumentStatus)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ItemsProcessed)
	assert.Equal(t, 1, tracker.InFlight())
	assert.Zero(t, api.getCount("c"))
}

func TestScheduler_DocumentStatus_NothingInFlight(t *testing.T) {
	api := newFakeDocumentAPI()
	tracker := NewDocumentTracker(api)
	tracker.Track(domain.Document{ID: "done", Status: domain.StatusCompleted})

	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, tracker)

	n, err := scheduler.runDocumentStatus(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, api.getCount("done"))
}

func TestScheduler_DocumentStatus_IdleRunsNotRecorded(t *testing.T) {
	api := newFakeDocumentAPI()
	tracker := NewDocumentTracker(api)
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, tracker)
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDDocumentStatus,
		Name:     "Document Status",
		Interval: 2 * time.Second,
		NextRun:  time.Now().Add(-time.Second),
		Enabled:  true,
	}))

	for i := 0; i < 3; i++ {
		scheduler.checkAndRunDueTasks(ctx)
		scheduler.wg.Wait()
	}
	assert.Zero(t, store.resultCount(domain.TaskIDDocumentStatus))
	task, err := store.GetTask(ctx, domain.TaskIDDocumentStatus)
	require.NoError(t, err)
	assert.True(t, task.LastRun.IsZero())

	api.script("a", domain.StatusCompleted)
	tracker.Track(domain.Document{ID: "a", Status: domain.StatusEmbedding})

	scheduler.checkAndRunDueTasks(ctx)
	scheduler.wg.Wait()
	assert.Equal(t, 1, store.resultCount(domain.TaskIDDocumentStatus))
	assert.Zero(t, tracker.InFlight())
}

func TestScheduler_RunNow_RecordsIdleRun(t *testing.T) {
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)

	result, err := scheduler.RunNow(context.Background(), domain.TaskIDDocumentStatus)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, store.resultCount(domain.TaskIDDocumentStatus))
}

func TestScheduler_UnknownTask(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)
	ctx := context.Background()

	_, err := scheduler.RunNow(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = scheduler.History(ctx, "nope", 5)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScheduler_CheckAndRunDueTasks(t *testing.T) {
	auth := &mockAuth{session: expiringSession(time.Minute)}
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, auth, nil)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDTokenRefresh,
		Name:     "Token Refresh",
		Interval: time.Hour,
		NextRun:  now.Add(-1 * time.Minute), // Already past due
		Enabled:  true,
	}))
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDDocumentStatus,
		Name:     "Document Status",
		Interval: time.Hour,
		NextRun:  now.Add(time.Hour),
		Enabled:  true,
	}))

	scheduler.checkAndRunDueTasks(ctx)
	scheduler.wg.Wait()

	assert.Equal(t, 1, auth.refreshCount())
	assert.Equal(t, 1, store.resultCount(domain.TaskIDTokenRefresh))
	assert.Zero(t, store.resultCount(domain.TaskIDDocumentStatus))
}

func TestScheduler_CheckAndRunDueTasks_SkipsDisabled(t *testing.T) {
	auth := &mockAuth{session: expiringSession(time.Minute)}
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, auth, nil)
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDTokenRefresh,
		Interval: time.Hour,
		NextRun:  time.Now().Add(-time.Minute),
		Enabled:  false,
	}))

	scheduler.checkAndRunDueTasks(ctx)
	scheduler.wg.Wait()

	assert.Zero(t, auth.refreshCount())
}

func TestScheduler_RunTask_SkipsOverlap(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	require.True(t, scheduler.claim(domain.TaskIDTokenRefresh))
	_, err := scheduler.RunNow(context.Background(), domain.TaskIDTokenRefresh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	scheduler.release(domain.TaskIDTokenRefresh)
	_, err = scheduler.RunNow(context.Background(), domain.TaskIDTokenRefresh)
	require.NoError(t, err)
}

func TestScheduler_RunTask_UnknownTaskID(t *testing.T) {
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)

	task := &domain.ScheduledTask{
		ID:      "unknown-task",
		Name:    "Unknown",
		Enabled: true,
	}

	// This should just record a failure, not panic
	scheduler.runTask(context.Background(), task)
	scheduler.wg.Wait()

	history, err := store.GetTaskHistory(context.Background(), "unknown-task", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
}
