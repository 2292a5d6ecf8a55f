package cron

import (
	"context"
	"fmt"
	"time"

	"mindease/config"
	"mindease/services/reconciliation"
	"mindease/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection for background booking retries.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReconcileWorker runs the booking retry worker in the background. The
// returned server is shut down by the caller.
func InitReconcileWorker(svc *reconciliation.Service, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				tasks.ReconcileQueue: 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReconcileBooking, handleReconcileTask(svc, logger))

	go monitorRedisConnection(logger)

	go func() {
		logger.Info("[ReconcileWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("[ReconcileWorker] failed to start worker",
					zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(err))
				if attempts == maxAttempts {
					logger.Error("[ReconcileWorker] max retry attempts reached, booking retries disabled")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

// handleReconcileTask only fails for payloads it cannot decode. A failed
// task is archived under its incident's task id and would block every later
// enqueue for that incident, so retry errors are logged and the sweeper
// tries again.
func handleReconcileTask(svc *reconciliation.Service, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseReconcilePayload(task)
		if err != nil {
			logger.Warn("[ReconcileHandler] invalid payload", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		logger.Info("[ReconcileHandler] retrying booking", zap.String("incident", p.IncidentID))
		if err := svc.Retry(ctx, p.IncidentID); err != nil {
			logger.Error("[ReconcileHandler] booking retry errored, left for next sweep",
				zap.String("incident", p.IncidentID), zap.Error(err))
		}
		return nil
	}
}

// monitorRedisConnection pings the queue Redis periodically to detect failures at runtime.
func monitorRedisConnection(logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ctx := context.Background()
	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("[ReconcileWorker] Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
