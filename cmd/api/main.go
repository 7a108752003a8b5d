package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	config "paysofter-checkout/configs"
	database "paysofter-checkout/internal/pkg/db"
	"paysofter-checkout/internal/pkg/helper"
	"paysofter-checkout/internal/pkg/logger"
	"paysofter-checkout/internal/pkg/paysofter"
	"paysofter-checkout/internal/pkg/rabbitmq"
	"paysofter-checkout/internal/pkg/redis"
	s3aws "paysofter-checkout/internal/pkg/storage/s3"
	"paysofter-checkout/internal/pkg/validation"
	serverApp "paysofter-checkout/internal/server"

	"github.com/gin-gonic/gin"
)

// @title           Paysofter Checkout API
// @version         1.0
// @description     Embeddable checkout session API for Paysofter payments

// @contact.name    API Support
// @contact.url     http://www.swagger.io/support
// @contact.email   support@swagger.io

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath        /api
func main() {
	logger.Setup()

	env, err := config.GetEnv()
	if err != nil {
		logger.Error.Println("Error getting environment", err)
		panic(err)
	}

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	// Setup Redis
	redisClient, err := setupRedis(ctx, env)
	if err != nil {
		logger.Error.Println("Error setting up Redis", err)
		cancel()
		return
	}

	// Setup RabbitMQ
	rabbit, err := setupRabbitMQ(ctx, env)
	if err != nil {
		logger.Error.Println("Error setting up RabbitMQ", err)
		cancel()
		return
	}

	// Setup Database
	db, err := setupDB(env)
	if err != nil {
		logger.Error.Println("Error setting up Database", err)
		cancel()
		return
	}

	// Setup S3 receipt storage (optional)
	s3 := setupS3(ctx, redisClient)

	// Setup Paysofter Client
	psClient := setupPaysofter(env)

	// Setup Server
	setupServer(&config.SetupServerDto{
		Rds:    redisClient,
		Env:    env,
		Ctx:    &ctx,
		Cancel: cancel,
		Db:     db,
		Wg:     &wg,
		Rb:     rabbit,
		S3:     s3,
		Ps:     psClient,
	})
}

func setupRedis(ctx context.Context, env *config.Config) (redis.IRedis, error) {
	return redis.Setup(ctx, &redis.Config{
		Host:     env.RedisHost,
		Username: env.RedisUser,
		Port:     env.RedisPort,
		Password: env.RedisPass,
		PoolSize: env.RedisPoolSize,
	})
}

func setupRabbitMQ(ctx context.Context, env *config.Config) (*rabbitmq.ConnectionManager, error) {
	return rabbitmq.NewConnectionManager(ctx, &rabbitmq.Config{
		Username: env.RabbitUser,
		Password: env.RabbitPass,
		Host:     env.RabbitHost,
		Port:     env.RabbitPort,
	})
}

func setupDB(env *config.Config) (*database.Database, error) {
	return database.Setup(&database.Config{
		Host:     env.DBHost,
		Port:     env.DBPort,
		User:     env.DBUser,
		Password: env.DBPass,
		Database: env.DBName,
		SSLMode:  "disable",
		Driver:   "postgres",
	})
}

func setupS3(ctx context.Context, rds redis.IRedis) s3aws.Is3 {
	bucket := helper.GetEnv("AWS_BUCKET_NAME")
	if bucket == "" {
		logger.Info.Println("AWS_BUCKET_NAME not set, receipt uploads disabled")
		return nil
	}

	client, err := s3aws.NewS3Client(ctx, s3aws.S3Config{
		AWSRegion:          helper.GetEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     helper.GetEnv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: helper.GetEnv("AWS_SECRET_ACCESS_KEY"),
	}, bucket, rds)
	if err != nil {
		logger.Error.Println("Error setting up S3, receipt uploads disabled", err)
		return nil
	}
	return client
}

func setupPaysofter(env *config.Config) paysofter.IClient {
	return paysofter.Setup(&paysofter.Config{
		BaseURL:        env.PaysofterAPIURL,
		RequestTimeout: env.PaysofterTimeout,
	})
}

func setupServer(payload *config.SetupServerDto) {
	rds := payload.Rds
	env := payload.Env
	ctx := payload.Ctx
	cancel := payload.Cancel
	wg := payload.Wg
	rb := payload.Rb
	db := payload.Db
	s3 := payload.S3
	ps := payload.Ps

	defer func() {
		if rds != nil {
			_ = rds.Close()
		}
		cancel()
		wg.Wait()
	}()

	err := validation.Setup()
	if err != nil {
		logger.Error.Println("Failed to setup validation")
		panic(err)
	}

	e := gin.Default()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", env.AppPort),
		Handler: e,
	}

	publisher, err := rabbitmq.NewPublisher(*ctx, rb)
	if err != nil {
		panic(err)
	}

	serverApp.Setup(e, *ctx, wg, db, rds, rb, publisher, s3, ps, env.AppBaseURL)
	if env.AppEnv != "development" {
		serverApp.InitWorker(*ctx, rds, db, rb, publisher, s3)
	}

	go func() {
		logger.HTTP.Println("========= Server Started =========")
		logger.HTTP.Println("=========", env.AppPort, "=========")
		if err := server.ListenAndServe(); err != nil {
			logger.Error.Println("Server error:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	logger.HTTP.Println("========= Server Shutting Down =========")
	_ = server.Shutdown(*ctx)
}
