package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vroo/hr-tracker/internal/config"
	"github.com/vroo/hr-tracker/internal/handler"
	"github.com/vroo/hr-tracker/internal/notifier"
	"github.com/vroo/hr-tracker/internal/repository/postgres"
	"github.com/vroo/hr-tracker/internal/router"
	"github.com/vroo/hr-tracker/internal/scheduler"
	candidatesvc "github.com/vroo/hr-tracker/internal/service/candidate"
	employeesvc "github.com/vroo/hr-tracker/internal/service/employee"
	subscribersvc "github.com/vroo/hr-tracker/internal/service/subscriber"
	"github.com/vroo/hr-tracker/pkg/circuitbreaker"
	"github.com/vroo/hr-tracker/pkg/logger"
	"github.com/vroo/hr-tracker/pkg/messaging"
	redisbroker "github.com/vroo/hr-tracker/pkg/messaging/redis"
	"github.com/vroo/hr-tracker/pkg/metrics"
	"github.com/vroo/hr-tracker/pkg/validator"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	if err := validator.RegisterBindings(); err != nil {
		log.Fatal(err, "failed to register binding rules")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	candidateRepo := postgres.NewCandidateRepository(db)
	employeeRepo := postgres.NewEmployeeRepository(db)
	subscriberRepo := postgres.NewSubscriberRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)
	jobStateRepo := postgres.NewJobStateRepository(db)

	candidateService := candidatesvc.NewService(candidateRepo, employeeRepo, log)
	employeeService := employeesvc.NewService(employeeRepo)
	subscriberService := subscribersvc.NewService(subscriberRepo)

	tg := notifier.WithBreaker(
		notifier.NewTelegramClient(cfg.Telegram),
		circuitbreaker.New(circuitbreaker.Settings{
			Name:        "telegram",
			MaxFailures: 5,
			Timeout:     time.Minute,
		}),
	)

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redisbroker.NewRedisBroker(cfg.Redis.URL, &log.ZL)
		if err != nil {
			log.Fatal(err, "failed to connect to redis")
		}
		defer broker.Close()
	}

	sched, err := scheduler.New(cfg.Scheduler, scheduler.Deps{
		Candidates: candidateRepo,
		Employees:  employeeRepo,
		Reminders:  reminderRepo,
		JobState:   jobStateRepo,
		Subs:       subscriberService,
		Notifier:   tg,
		Broker:     broker,
		Logger:     log,
		Metrics:    metrics.New("hr_tracker", prometheus.DefaultRegisterer),
	})
	if err != nil {
		log.Fatal(err, "failed to create scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sched.Start(ctx)

	engine := router.New(router.Handlers{
		Candidate: handler.NewCandidateHandler(candidateService, log),
		Employee:  handler.NewEmployeeHandler(employeeService),
		Telegram:  handler.NewTelegramHandler(subscriberService, tg, cfg.Telegram.BotToken, log),
		Jira:      handler.NewJiraHandler(candidateService, log),
		Reminder:  handler.NewReminderHandler(sched),
		Health:    handler.NewHealthHandler(db),
	}, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.ZL.Info().Int("port", cfg.Server.Port).Msg("api server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "graceful shutdown failed")
	}
}
