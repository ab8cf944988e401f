// reminderd runs the reminder scheduler without the API surface, for
// deployments that split the HTTP tier from the background loop. Extra
// replicas are harmless: the dedup claim guarantees a single send per
// interview regardless of how many loops are polling.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vroo/hr-tracker/internal/config"
	"github.com/vroo/hr-tracker/internal/notifier"
	"github.com/vroo/hr-tracker/internal/repository/postgres"
	"github.com/vroo/hr-tracker/internal/scheduler"
	subscribersvc "github.com/vroo/hr-tracker/internal/service/subscriber"
	"github.com/vroo/hr-tracker/pkg/circuitbreaker"
	"github.com/vroo/hr-tracker/pkg/logger"
	"github.com/vroo/hr-tracker/pkg/messaging"
	redisbroker "github.com/vroo/hr-tracker/pkg/messaging/redis"
	"github.com/vroo/hr-tracker/pkg/metrics"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

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
		Candidates: postgres.NewCandidateRepository(db),
		Employees:  postgres.NewEmployeeRepository(db),
		Reminders:  postgres.NewReminderRepository(db),
		JobState:   postgres.NewJobStateRepository(db),
		Subs:       subscribersvc.NewService(postgres.NewSubscriberRepository(db)),
		Notifier:   tg,
		Broker:     broker,
		Logger:     log,
		Metrics:    metrics.New("hr_tracker_reminderd", prometheus.DefaultRegisterer),
	})
	if err != nil {
		log.Fatal(err, "failed to create scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tiny sidecar listener for liveness probes and metrics scrapes.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: ":9091", Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "health listener failed")
		}
	}()

	sched.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "health listener shutdown failed")
	}
}
