package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulseplan/pulseplan-api/internal/dto"
	"github.com/pulseplan/pulseplan-api/internal/models"
	appErrors "github.com/pulseplan/pulseplan-api/pkg/errors"
	"github.com/pulseplan/pulseplan-api/pkg/jobs"
)

type taskStore interface {
	Create(ctx context.Context, task *models.AnalysisTask) error
	GetByID(ctx context.Context, id string) (*models.AnalysisTask, error)
	GetActiveByUser(ctx context.Context, userID string, taskType models.TaskType) (*models.AnalysisTask, error)
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus, details string, completedAt *time.Time) error
	FailStaleInProgress(ctx context.Context, cutoff time.Time, details string) (int64, error)
	ListPending(ctx context.Context, limit int) ([]models.AnalysisTask, error)
}

type engagementStore interface {
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.EngagementRecord, error)
}

type slotWriter interface {
	ReplaceForUser(ctx context.Context, userID string, slots []models.OptimalSlot) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// AnalysisServiceConfig carries the pipeline tunables.
type AnalysisServiceConfig struct {
	ScoreScale        float64
	ConfidenceSamples int
	TopSlotsPerDay    int
	MaxRecords        int
	StaleTaskCeiling  time.Duration
}

// AnalysisService orchestrates the analysis task lifecycle: create or
// dedupe per user, run the aggregation+ranking pipeline off the request
// path, and expose status for polling.
type AnalysisService struct {
	tasks   taskStore
	records engagementStore
	slots   slotWriter
	queue   jobDispatcher
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     AnalysisServiceConfig

	// Serializes create-or-dedupe decisions per user so a user can
	// never end up with two simultaneously active tasks.
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

// NewAnalysisService constructs the orchestrator.
func NewAnalysisService(tasks taskStore, records engagementStore, slots slotWriter, queue jobDispatcher, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg AnalysisServiceConfig) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = 500
	}
	if cfg.StaleTaskCeiling <= 0 {
		cfg.StaleTaskCeiling = 5 * time.Minute
	}
	return &AnalysisService{
		tasks:   tasks,
		records: records,
		slots:   slots,
		queue:   queue,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		locks:   make(map[string]*sync.Mutex),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *AnalysisService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// RequestAnalysis creates a new analysis task for the user or, when one
// is already active and force is false, returns the existing task id
// with alreadyRunning set. With force, the active task is failed as
// superseded before the new one is created.
func (s *AnalysisService) RequestAnalysis(ctx context.Context, userID string, force bool) (*dto.AnalysisAccepted, bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	active, err := s.tasks.GetActiveByUser(ctx, userID, models.TaskTypeEngagementAnalysis)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active analysis")
	}

	if active != nil {
		if !force {
			return &dto.AnalysisAccepted{TaskID: active.ID, Status: active.Status}, true, nil
		}
		now := s.now()
		if err := s.tasks.UpdateStatus(ctx, active.ID, models.TaskStatusFailed, "superseded by new request", &now); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to supersede active analysis")
		}
	}

	task := &models.AnalysisTask{
		UserID:   userID,
		TaskType: models.TaskTypeEngagementAnalysis,
		Status:   models.TaskStatusPending,
		Details:  "queued for analysis",
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create analysis task")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: task.ID, Type: string(task.TaskType), UserID: userID}); err != nil {
		now := s.now()
		if updateErr := s.tasks.UpdateStatus(ctx, task.ID, models.TaskStatusFailed, "failed to enqueue analysis", &now); updateErr != nil {
			s.logger.Sugar().Warnw("failed to mark task failed after enqueue error", "task_id", task.ID, "error", updateErr)
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue analysis task")
	}

	return &dto.AnalysisAccepted{TaskID: task.ID, Status: task.Status}, false, nil
}

// Handle runs one analysis job off the request path. Pipeline errors
// are captured as task state and never propagate to the queue.
func (s *AnalysisService) Handle(ctx context.Context, job jobs.Job) error {
	start := s.now()

	task, err := s.tasks.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Sugar().Warnw("analysis job references unknown task", "task_id", job.ID)
			return nil
		}
		return err
	}
	if task.Status.Terminal() {
		// Superseded while waiting in the queue.
		return nil
	}

	if err := s.tasks.UpdateStatus(ctx, task.ID, models.TaskStatusInProgress, "analyzing engagement history", nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	records, err := s.records.ListRecentByUser(ctx, task.UserID, s.cfg.MaxRecords)
	if err != nil {
		s.failTask(ctx, task.ID, fmt.Errorf("load engagement history: %w", err))
		return nil
	}

	grid := AggregateEngagement(records)
	slots := RankSlots(grid, RankerConfig{
		ScoreScale:        s.cfg.ScoreScale,
		ConfidenceSamples: s.cfg.ConfidenceSamples,
		TopSlotsPerDay:    s.cfg.TopSlotsPerDay,
	}, s.now())

	if err := s.slots.ReplaceForUser(ctx, task.UserID, slots); err != nil {
		s.failTask(ctx, task.ID, fmt.Errorf("persist slots: %w", err))
		return nil
	}

	now := s.now()
	details := fmt.Sprintf("generated %d slots from %d posts", len(slots), grid.ValidRecords)
	if err := s.tasks.UpdateStatus(ctx, task.ID, models.TaskStatusCompleted, details, &now); err != nil {
		// A forced supersede may have already finalized the row; the
		// persisted slots stay valid either way.
		s.logger.Sugar().Warnw("failed to mark analysis completed", "task_id", task.ID, "error", err)
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("slots:%s:*", task.UserID))
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("insights:%s:*", task.UserID))
	}
	s.metrics.ObserveAnalysisRun("success", s.now().Sub(start))
	return nil
}

func (s *AnalysisService) failTask(ctx context.Context, taskID string, cause error) {
	now := s.now()
	if err := s.tasks.UpdateStatus(ctx, taskID, models.TaskStatusFailed, cause.Error(), &now); err != nil {
		s.logger.Sugar().Warnw("failed to mark analysis failed", "task_id", taskID, "error", err)
	}
	s.metrics.ObserveAnalysisRun("failure", 0)
	s.logger.Sugar().Warnw("analysis run failed", "task_id", taskID, "error", cause)
}

// GetStatus returns the caller's task with a derived completion flag and
// a human-readable message. A task stuck in_progress beyond the stale
// ceiling is presented as failed even before the sweeper rewrites it.
func (s *AnalysisService) GetStatus(ctx context.Context, userID, taskID string) (*dto.AnalysisStatusResponse, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "analysis task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load analysis task")
	}
	if task.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "analysis task not found")
	}

	presented := *task
	if presented.Status == models.TaskStatusInProgress && s.now().Sub(presented.CreatedAt) > s.cfg.StaleTaskCeiling {
		presented.Status = models.TaskStatusFailed
		presented.Details = "analysis timed out"
	}

	return &dto.AnalysisStatusResponse{
		Task:        &presented,
		IsCompleted: presented.Status == models.TaskStatusCompleted,
		Message:     statusMessage(&presented),
	}, nil
}

// SweepStale rewrites tasks stuck in_progress beyond the ceiling so
// polling always reaches a terminal, explainable state.
func (s *AnalysisService) SweepStale(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.StaleTaskCeiling)
	swept, err := s.tasks.FailStaleInProgress(ctx, cutoff, "analysis timed out")
	if err != nil {
		s.logger.Sugar().Warnw("stale task sweep failed", "error", err)
		return
	}
	if swept > 0 {
		s.logger.Sugar().Infow("stale analysis tasks failed", "count", swept)
	}
}

// RecoverPending replays queued tasks after a process restart.
func (s *AnalysisService) RecoverPending(ctx context.Context) {
	pending, err := s.tasks.ListPending(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover pending analysis tasks", "error", err)
		return
	}
	for _, task := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: task.ID, Type: string(task.TaskType), UserID: task.UserID}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending task", "task_id", task.ID, "error", err)
		}
	}
}

func statusMessage(task *models.AnalysisTask) string {
	switch task.Status {
	case models.TaskStatusPending:
		return "Your analysis is queued and will start shortly."
	case models.TaskStatusInProgress:
		return "Analyzing your engagement history. Check back in a moment."
	case models.TaskStatusCompleted:
		return "Analysis complete. Fresh posting recommendations are ready."
	case models.TaskStatusFailed:
		if task.Details != "" {
			return fmt.Sprintf("Analysis did not finish: %s", task.Details)
		}
		return "Analysis did not finish."
	default:
		return "Unknown analysis status."
	}
}
