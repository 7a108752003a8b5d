package serverApp

import (
	"context"
	"fmt"
	"time"

	database "paysofter-checkout/internal/pkg/db"
	"paysofter-checkout/internal/pkg/logger"
	"paysofter-checkout/internal/pkg/rabbitmq"
	"paysofter-checkout/internal/pkg/redis"
	s3aws "paysofter-checkout/internal/pkg/storage/s3"
	"paysofter-checkout/internal/repository"
	settlementRepo "paysofter-checkout/internal/repository/settlement"
	settlementWorker "paysofter-checkout/internal/worker/settlement"

	"github.com/panjf2000/ants/v2"
)

// InitWorker starts the background consumers on a shared pool.
func InitWorker(
	ctx context.Context,
	redisClient redis.IRedis,
	db *database.Database,
	rb *rabbitmq.ConnectionManager,
	publisher *rabbitmq.Publisher,
	s3 s3aws.Is3,
) {
	poolOpts := ants.Options{
		ExpiryDuration: time.Hour,
		PreAlloc:       true,
		Nonblocking:    true,
		PanicHandler: func(i interface{}) {
			logger.Error.Printf("Worker panic: %v\n", i)
		},
	}

	pool, err := ants.NewPool(100, ants.WithOptions(poolOpts))
	if err != nil {
		panic(fmt.Errorf("failed to create worker pool: %w", err))
	}
	defer pool.Release()

	rp := repository.IRepository{
		Settlement: settlementRepo.NewRepo(db),
	}

	worker := settlementWorker.NewWorker(ctx, rb, rp, s3)
	err = pool.Submit(func() {
		if err := worker.Subscribe(); err != nil {
			logger.Error.Printf("Failed to initialize settlement worker: %v\n", err)
		}
	})
	if err != nil {
		panic(fmt.Errorf("failed to submit task to pool: %w", err))
	}
}
