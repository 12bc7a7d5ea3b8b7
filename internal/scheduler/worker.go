package scheduler

import (
	"context"
	"fmt"
	"time"

	"salesops_backend/internal/events"
	"salesops_backend/internal/followups/repository"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/config"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	pool   *pgxpool.Pool
	repo   *repository.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		pool:   pool,
		repo:   repository.New(),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowupReminder, w.handleFollowupReminder)

	return w, nil
}

// handleFollowupReminder fires the reminder event if the follow-up is still
// pending and still due at the time the task was scheduled for. A completed,
// deleted or rescheduled follow-up drops the task silently.
func (w *Worker) handleFollowupReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowupReminderPayload(task)
	if err != nil {
		return err
	}

	followupID, err := uuid.Parse(payload.FollowupID)
	if err != nil {
		return err
	}
	dueAt, err := time.Parse(time.RFC3339, payload.DueAt)
	if err != nil {
		return err
	}

	followup, err := w.repo.GetByID(ctx, w.pool, followupID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}

	if followup.IsDone {
		return nil
	}
	if followup.ScheduledAt == nil || !followup.ScheduledAt.Equal(dueAt) {
		return nil
	}

	if w.bus == nil {
		return nil
	}

	var assignedTo uuid.UUID
	if followup.AssignedTo != nil {
		assignedTo = *followup.AssignedTo
	}

	return w.bus.PublishSync(ctx, events.FollowupReminderDue{
		BaseEvent:  events.NewBaseEvent(),
		FollowupID: followup.ID,
		LeadID:     followup.LeadID,
		AssignedTo: assignedTo,
		DueAt:      dueAt,
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
