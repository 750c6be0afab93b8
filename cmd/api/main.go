package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"wardrobeapi/config"
	"wardrobeapi/controllers"
	"wardrobeapi/dbhelper"
	"wardrobeapi/logging"
	"wardrobeapi/services"
)

const release = "wardrobeapi@1.0.0"

func main() {
	app := &cli.App{
		Name:  "wardrobeapi",
		Usage: "Digital wardrobe API",
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		logging.Logger().Error("wardrobeapi stopped", "error", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := dbhelper.SetupDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update database tables",
		Action: func(c *cli.Context) error {
			_, db, err := setup()
			if err != nil {
				return err
			}
			if err := dbhelper.MigrateAll(db); err != nil {
				return err
			}
			logging.Logger().Info("migrations applied")
			return nil
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Apply migrations before serving"},
			&cli.Float64Flag{Name: "rate-limit", Value: 3, Usage: "Requests per second allowed per client"},
		},
		Action: func(c *cli.Context) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			if c.Bool("migrate") {
				if err := dbhelper.MigrateAll(db); err != nil {
					return err
				}
			}

			err = sentry.Init(sentry.ClientOptions{
				Dsn:              cfg.SentryDSN,
				Environment:      cfg.Env,
				Release:          release,
				TracesSampleRate: 1.0,
			})
			if err != nil {
				return fmt.Errorf("sentry.Init: %w", err)
			}
			defer sentry.Flush(2 * time.Second)

			ctx := context.Background()
			llm, err := services.NewGoogleLLMProcessor(ctx, cfg.GoogleAPIKey, cfg.ImageModel, cfg.TextModel)
			if err != nil {
				return fmt.Errorf("init AI provider: %w", err)
			}

			var (
				awsService services.AWSServiceProvider
				urlCache   services.URLCacheServiceProvider
				weather    services.WeatherProvider
			)
			if cfg.StorageEnabled() {
				storage, err := services.NewAWSService(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret)
				if err != nil {
					return fmt.Errorf("init object storage: %w", err)
				}
				cache, err := services.NewURLCacheService(storage, cfg.R2BucketName)
				if err != nil {
					return fmt.Errorf("init url cache: %w", err)
				}
				awsService, urlCache = storage, cache
			} else {
				logging.Logger().Warn("object storage is not configured, images are kept inline")
			}
			if cfg.WeatherAPIKey != "" {
				weather = services.NewWeatherAPIClient(cfg.WeatherAPIKey)
			}

			asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.AsyncBrokerAddress})
			defer asynqClient.Close()

			e := controllers.SetupServer(cfg, db, llm, awsService, urlCache, weather, asynqClient)
			e.HideBanner = true
			e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(c.Float64("rate-limit")))))
			e.Use(middleware.Recover())
			e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

			logging.Logger().Info("starting api", "port", cfg.Port, "env", cfg.Env)
			return e.Start(":" + cfg.Port)
		},
	}
}
