package scheduler

import (
	"context"
	"fmt"

	"recovery_crm_backend/internal/events"
	"recovery_crm_backend/internal/schedules"
	"recovery_crm_backend/platform/config"
	"recovery_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes reminder tasks and marks schedules due.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *schedules.Repository
	bus    events.Bus
	log    *logger.Logger
}

// NewWorker builds the asynq server and registers task handlers.
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
		repo:   schedules.NewRepository(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	scheduleUUID, err := uuid.Parse(payload.ScheduleUUID)
	if err != nil {
		return err
	}

	schedule, err := w.repo.MarkDue(ctx, scheduleUUID)
	if err != nil {
		return err
	}
	if schedule == nil {
		// Cancelled or already handled between enqueue and fire.
		return nil
	}

	if w.bus == nil {
		return nil
	}
	return w.bus.PublishSync(ctx, events.ScheduleDue{
		BaseEvent:    events.NewBaseEvent(),
		ScheduleID:   schedule.ID,
		ScheduleUUID: schedule.UUID,
		LeadID:       schedule.LeadID,
		LeadUUID:     schedule.LeadUUID,
		SellerID:     schedule.SellerID,
		ScheduledAt:  schedule.ScheduledAt,
	})
}

// Run serves tasks until ctx is cancelled.
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
