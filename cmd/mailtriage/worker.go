package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mqcontracts "mailtriage/contracts/mq"
	"mailtriage/internal/mqhandler"
	"mailtriage/internal/repository"
	"mailtriage/pkg/db"
	"mailtriage/pkg/mq"
	"mailtriage/pkg/redis"
	"mailtriage/pkg/util"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume email.received events and triage them",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()
			log := a.logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("Starting mailtriage worker...")

			// Redis
			rdb, err := redis.NewRedisClient(ctx, a.cfg.Redis)
			if err != nil {
				return err
			}
			defer rdb.Close()

			deduper := util.NewDeduper(rdb, a.cfg.Worker.DedupTTL, log)
			retryCounter := util.NewRetryCounter(rdb, a.cfg.Worker.DedupTTL)

			// DB
			pool, err := db.NewConnection(ctx, a.cfg.DB, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := repository.NewOutcomeRepository(pool)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}

			// email.triaged publisher
			publisher, err := mq.NewPublisher(a.cfg.MQ.URL)
			if err != nil {
				return err
			}
			defer publisher.Close()

			svc, closeSvc, err := a.services()
			if err != nil {
				return err
			}
			defer closeSvc()

			handler := mqhandler.NewEmailReceivedTriageHandler(
				a.pipeline(svc),
				repo,
				publisher,
				deduper,
				retryCounter,
				log,
			)

			log.Info("Init consumer", zap.String("queue", a.cfg.Worker.Queue))
			consumer, err := mq.NewConsumer(a.cfg.MQ.URL, a.cfg.Worker.Queue, mqcontracts.RoutingEmailReceived, log)
			if err != nil {
				return err
			}
			defer consumer.Close()
			consumer.SetHandler(handler.Handle)

			// metrics
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Metrics server failed", zap.Error(err))
				}
			}()

			consumeErr := make(chan error, 1)
			go func() { consumeErr <- consumer.StartConsuming(ctx) }()

			log.Info("Worker running", zap.String("metrics_addr", a.cfg.Metrics.Addr))

			select {
			case <-ctx.Done():
				log.Info("Shutting down mailtriage worker gracefully...")
			case err = <-consumeErr:
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Error("Consumer stopped", zap.Error(err))
				} else {
					err = nil
				}
			}

			// 停止消费者
			consumer.Stop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				log.Warn("Metrics server shutdown", zap.Error(serr))
			}

			log.Info("mailtriage worker shutdown complete")
			return err
		},
	}
}
