package scheduler

import (
	"context"
	"fmt"

	"leasing_portal_backend/internal/config"
	"leasing_portal_backend/internal/email"
	"leasing_portal_backend/internal/notifications/repository"
	"leasing_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes delivery tasks: it loads the notification with its
// manager and property context, sends the email and flips the row to sent.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	sender email.Sender
	log    *logger.Logger

	dashboardURL string
}

func NewWorker(cfg *config.Config, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.AsynqQueue
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		repo:         repository.New(pool),
		sender:       sender,
		log:          log,
		dashboardURL: cfg.AppBaseURL + "/notifications",
	}

	mux.HandleFunc(TaskNotificationDeliver, w.handleNotificationDeliver)

	return w, nil
}

func (w *Worker) handleNotificationDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationDeliverPayload(task)
	if err != nil {
		return err
	}

	notificationID, err := uuid.Parse(payload.NotificationID)
	if err != nil {
		return err
	}

	view, err := w.repo.GetForDelivery(ctx, notificationID)
	if err != nil {
		return err
	}

	// Redelivered tasks find the row already sent.
	if view.Status != repository.StatusPending {
		return nil
	}

	err = w.sender.SendLeadNotification(ctx, view.ManagerEmail, email.LeadNotificationData{
		ManagerFirstName: view.ManagerFirstName,
		PropertyName:     view.PropertyName,
		NotificationType: view.NotificationType,
		LeadScore:        view.LeadScore,
		DashboardURL:     w.dashboardURL,
	})
	if err != nil {
		return err
	}

	if err := w.repo.MarkSent(ctx, notificationID); err != nil {
		return err
	}

	w.log.Info("notification delivered",
		"notificationId", notificationID,
		"type", view.NotificationType)
	return nil
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
		w.log.Error("delivery worker stopped", "error", err)
	}
}
