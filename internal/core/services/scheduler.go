package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is the number of results kept per task.
const historyRetention = 100

var schedLog = logger.With("scheduler")

// taskNames are the display names of the built-in tasks.
var taskNames = map[string]string{
	domain.TaskIDTokenRefresh:   "Token Refresh",
	domain.TaskIDDocumentStatus: "Document Status",
}

// Scheduler runs background tasks on a ticker and persists their state.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	auth    driving.AuthService
	tracker driving.DocumentTracker

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	active  map[string]bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. auth and tracker may be nil, which
// turns their task into a no-op.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	auth driving.AuthService,
	tracker driving.DocumentTracker,
) *Scheduler {
	return &Scheduler{
		config:  config,
		store:   store,
		auth:    auth,
		tracker: tracker,
		active:  make(map[string]bool),
	}
}

// Start runs the scheduler loop. It blocks until Stop is called or ctx is
// done. A disabled scheduler returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		schedLog.Debug("disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		schedLog.Warn("failed to initialise tasks: %v", err)
	}

	err := s.run(ctx, stopCh)
	s.wg.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return err
}

// Stop ends the loop and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running || s.stopCh == nil {
		s.mu.Unlock()
		return nil
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Tasks returns the persisted tasks.
func (s *Scheduler) Tasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	if err := s.initialiseTasks(ctx); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx)
}

// History returns recent results for a task, newest first.
func (s *Scheduler) History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	if _, ok := taskNames[taskID]; !ok {
		return nil, fmt.Errorf("%w: unknown task %q", domain.ErrNotFound, taskID)
	}
	return s.store.GetTaskHistory(ctx, taskID, limit)
}

// RunNow executes a task synchronously and records its result.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	if _, ok := taskNames[taskID]; !ok {
		return nil, fmt.Errorf("%w: unknown task %q", domain.ErrNotFound, taskID)
	}
	if err := s.initialiseTasks(ctx); err != nil {
		return nil, err
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		cfg := s.config.GetTaskConfig(taskID)
		task = &domain.ScheduledTask{ID: taskID, Name: taskNames[taskID], Interval: cfg.Interval}
		if err := s.store.SaveTask(ctx, task); err != nil {
			return nil, err
		}
	}

	if !s.claim(taskID) {
		return nil, fmt.Errorf("task %s is already running", taskID)
	}
	defer s.release(taskID)
	return s.execute(ctx, task), nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for _, id := range []string{domain.TaskIDTokenRefresh, domain.TaskIDDocumentStatus} {
		cfg := s.config.GetTaskConfig(id)
		if cfg.Interval <= 0 {
			continue
		}
		if err := s.ensureTask(ctx, id, taskNames[id], cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		if task.Interval == cfg.Interval && task.Enabled == cfg.Enabled {
			return nil
		}
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	tick := s.config.TickInterval
	if tick <= 0 {
		tick = time.Second
	}

	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks starts every enabled task whose next run has come.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		schedLog.Warn("failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, &task)
		}
	}
}

// runTask executes a task in the background unless it is still running.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	if s.idle(task.ID) {
		return
	}
	if !s.claim(task.ID) {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(task.ID)
		s.execute(ctx, task)
	}()
}

// idle reports whether a scheduled run would do nothing. Idle runs are
// skipped without touching the store, so the task stays due and runs on
// the first tick with work.
func (s *Scheduler) idle(id string) bool {
	if id != domain.TaskIDDocumentStatus {
		return false
	}
	return s.tracker == nil || s.tracker.InFlight() == 0
}

func (s *Scheduler) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[id] {
		return false
	}
	s.active[id] = true
	return true
}

func (s *Scheduler) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, id)
}

// execute runs the task body, then persists state and history.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) *domain.TaskResult {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDTokenRefresh:
		result.ItemsProcessed, err = s.runTokenRefresh(ctx, task.Interval)
	case domain.TaskIDDocumentStatus:
		result.ItemsProcessed, err = s.runDocumentStatus(ctx)
	default:
		err = fmt.Errorf("unknown task %q", task.ID)
	}

	result.EndedAt = time.Now()
	if err != nil {
		result.Error = err.Error()
		task.LastError = err.Error()
		schedLog.Debug("%s failed: %v", task.ID, err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		schedLog.Warn("failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		schedLog.Warn("failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
		schedLog.Warn("failed to prune history: %v", pruneErr)
	}
	return result
}

// runTokenRefresh refreshes the access token when it expires before the
// task runs again. Sessions with an opaque token are left to the
// reactive refresh on 401.
func (s *Scheduler) runTokenRefresh(ctx context.Context, interval time.Duration) (int, error) {
	if s.auth == nil {
		return 0, nil
	}
	session, err := s.auth.Session(ctx)
	if err != nil {
		return 0, err
	}
	if !session.IsAuthenticated() || !session.HasRefreshToken() || session.Expiry.IsZero() {
		return 0, nil
	}
	if !session.ExpiresWithin(2 * interval) {
		return 0, nil
	}
	if err := s.auth.RefreshAccessToken(ctx); err != nil {
		return 0, err
	}
	return 1, nil
}

// runDocumentStatus advances the tracker while documents are in flight.
func (s *Scheduler) runDocumentStatus(ctx context.Context) (int, error) {
	if s.tracker == nil || s.tracker.InFlight() == 0 {
		return 0, nil
	}
	return s.tracker.Tick(ctx)
}
