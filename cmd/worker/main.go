package main

import (
	"context"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"wardrobeapi/config"
	"wardrobeapi/dbhelper"
	"wardrobeapi/logging"
	"wardrobeapi/services"
	"wardrobeapi/tasks"
)

func runScheduler(redis asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	entries := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "@every 15m",
			task: tasks.NewExpireStaleTryOnTask(),
			desc: "Expire stale try-on generations",
		},
	}

	for _, entry := range entries {
		entryID, err := scheduler.Register(entry.cron, entry.task, asynq.Queue(tasks.QueueGenerate))
		if err != nil {
			logging.Logger().Error("failed to register scheduled task", "task", entry.desc, "error", err)
			os.Exit(1)
		}
		logging.Logger().Info("registered scheduled task", "task", entry.desc, "entry_id", entryID, "cron", entry.cron)
	}

	if err := scheduler.Run(); err != nil {
		logging.Logger().Error("scheduler failed", "error", err)
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	logging.Logger().Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config", err)
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
		fatal("sentry.Init failed", err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx := context.Background()
	db, err := dbhelper.SetupDB(cfg)
	if err != nil {
		fatal("failed to open database", err)
	}
	llm, err := services.NewGoogleLLMProcessor(ctx, cfg.GoogleAPIKey, cfg.ImageModel, cfg.TextModel)
	if err != nil {
		fatal("failed to initialize AI provider", err)
	}

	handler := &tasks.TryOnHandler{
		DB:         db,
		LLM:        llm,
		BucketName: cfg.R2BucketName,
		Timeout:    cfg.ProviderTimeout,
	}
	if cfg.StorageEnabled() {
		storage, err := services.NewAWSService(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret)
		if err != nil {
			fatal("[Queue] failed to initialize object storage", err)
		}
		handler.Storage = storage
	}

	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		// try-ons still complete, users just do not get a push
		logging.Logger().Warn("firebase is not configured, push notifications disabled", "error", err)
		app = nil
	}
	handler.Notifier = services.NewFirebaseNotifier(app, db)

	redis := asynq.RedisClientOpt{Addr: cfg.AsyncBrokerAddress}
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			tasks.QueueGenerate: 7,
		},
	})

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeTryOnGeneration, handler)
	mux.HandleFunc(tasks.TypeExpireStaleTryOn, expireStaleTryOns(db))

	go runScheduler(redis)
	if err := srv.Run(mux); err != nil {
		fatal("worker stopped", err)
	}
}

func expireStaleTryOns(db *gorm.DB) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		_, err := tasks.ExpireStaleTryOns(ctx, db, time.Now())
		return err
	}
}
