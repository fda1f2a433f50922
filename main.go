package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/config"
	"github.com/yeremiapane/table-ordering/database"
	"github.com/yeremiapane/table-ordering/realtime"
	"github.com/yeremiapane/table-ordering/repository"
	"github.com/yeremiapane/table-ordering/router"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if cfg.UsesDevSecret() {
		log.Warn("JWT_SECRET is not set, using the development secret")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	db, err := database.Open(cfg.DB, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.DB.Seed {
		if err := database.Seed(db, log); err != nil {
			return err
		}
	}

	hub := realtime.NewHub(log, cfg.CORS.Origins)
	defer hub.Close()

	sinks := []realtime.Sink{hub}
	if cfg.AMQPURL != "" {
		fanout, err := realtime.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.WithError(err).Warn("event fanout disabled, could not reach the broker")
		} else {
			defer fanout.Close()
			sinks = append(sinks, fanout)
			log.WithField("exchange", cfg.AMQPExchange).Info("mirroring realtime events to AMQP")
		}
	}
	broadcaster := realtime.NewBroadcaster(log, sinks...)

	menuRepo := repository.NewMenuRepository(db)
	tableRepo := repository.NewTableRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokens := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	deps := router.Deps{
		Config:      cfg,
		Log:         log,
		DB:          db,
		Tokens:      tokens,
		Hub:         hub,
		Menu:        services.NewMenuService(menuRepo),
		Tables:      services.NewTableService(tableRepo, broadcaster, log),
		Sessions:    services.NewSessionService(sessionRepo, tableRepo, orderRepo, broadcaster, log, cfg.Session.InactivityTimeout),
		Orders:      services.NewOrderService(orderRepo, sessionRepo, tableRepo, menuRepo, broadcaster, log),
		Assignments: services.NewAssignmentService(tableRepo, userRepo, broadcaster, log),
		Auth:        services.NewAuthService(userRepo, tokens, log),
	}

	sweeper := services.NewSessionSweeper(sessionRepo, tableRepo, log)
	sweeper.Interval = cfg.Session.SweepInterval
	sweeper.InactivityTimeout = cfg.Session.InactivityTimeout
	sweeper.PaymentGrace = cfg.Session.PaymentGrace
	sweeper.Start()
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port": cfg.Port,
			"env":  cfg.Env,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Websocket connections are hijacked and not tracked by Shutdown.
	hub.Close()
	return srv.Shutdown(shutdownCtx)
}
