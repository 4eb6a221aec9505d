package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ms-transactions/internal/auth"
	"ms-transactions/internal/config"
	"ms-transactions/internal/coupons"
	couponapi "ms-transactions/internal/coupons/api"
	coupondb "ms-transactions/internal/coupons/db"
	"ms-transactions/internal/database"
	"ms-transactions/internal/database/migrations"
	"ms-transactions/internal/discount"
	"ms-transactions/internal/events"
	eventapi "ms-transactions/internal/events/api"
	eventdb "ms-transactions/internal/events/db"
	"ms-transactions/internal/inventory"
	"ms-transactions/internal/kafka"
	"ms-transactions/internal/lock"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/metrics"
	"ms-transactions/internal/notification"
	"ms-transactions/internal/pass"
	"ms-transactions/internal/scheduler"
	"ms-transactions/internal/sse"
	"ms-transactions/internal/sweeper"
	"ms-transactions/internal/transaction"
	txapi "ms-transactions/internal/transaction/api"
	txdb "ms-transactions/internal/transaction/db"
	"ms-transactions/internal/utils"
	"ms-transactions/internal/vouchers"
	voucherapi "ms-transactions/internal/vouchers/api"
	voucherdb "ms-transactions/internal/vouchers/db"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Transaction Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	bunDB, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
			MigrationsDir: cfg.Database.MigrationsDir,
			AutoMigrate:   true,
		}, log)
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("MIGRATE", fmt.Sprintf("Failed to run migrations: %v", err))
		}
		log.Info("MIGRATE", "Database schema is up to date")
	}

	// --- Notifications ---
	emitter := sse.NewTransactionEventEmitter()
	fanout := notification.NewFanout(log, emitter)

	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topics.TransactionStatus, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.TransactionStatus, log)
		defer producer.Close()
		fanout.Add(producer)
		log.Info("KAFKA", "Kafka producer initialized, email is sent by the notification worker")
	} else if cfg.Email.Enabled {
		client, err := notification.NewSMTPClient(cfg.Email)
		if err != nil {
			log.Fatal("EMAIL", fmt.Sprintf("Failed to create SMTP client: %v", err))
		}
		fanout.Add(notification.NewMailer(client, cfg.Email.From, cfg.Email.FromName))
		log.Info("EMAIL", "Kafka disabled, sending email in-process")
	}
	dispatcher := notification.NewDispatcher(fanout, cfg.Notify.QueueSize, cfg.Notify.SendTimeout, log)

	// --- Purchase lock ---
	var purchaseLock transaction.PurchaseLock
	redisClient, err := lock.Connect(ctx, cfg.Redis.Addr, log)
	if err != nil {
		log.Warn("REDIS", fmt.Sprintf("Purchase lock disabled: %v", err))
	} else {
		defer redisClient.Close()
		purchaseLock = lock.NewRedis(redisClient, cfg.Redis.PurchaseLockTTL, log)
	}

	// --- Services ---
	ledger := inventory.NewLedger()
	transactions := &txdb.DB{Bun: bunDB}
	couponStore := &coupondb.DB{Bun: bunDB}
	voucherStore := &voucherdb.DB{Bun: bunDB}

	sw := sweeper.New(transactions, couponStore, ledger, dispatcher, log)
	transactionService := transaction.NewTransactionService(
		transactions,
		couponStore,
		ledger,
		discount.NewResolver(voucherStore, couponStore, log),
		sw,
		purchaseLock,
		dispatcher,
		transaction.SettingsFromConfig(cfg),
		log,
	)

	passes, err := pass.NewGenerator(cfg.Pass.SecretKey)
	if err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid pass secret: %v", err))
	}

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		log.Fatal("AUTH", fmt.Sprintf("Failed to set up token verification: %v", err))
	}

	transactionHandler := &txapi.Handler{
		TransactionService: transactionService,
		Emitter:            emitter,
		Passes:             passes,
		Logger:             log,
	}
	couponHandler := &couponapi.Handler{
		CouponService: coupons.NewCouponService(couponStore, cfg.Expiration.CouponMonths, log),
		Logger:        log,
	}
	voucherHandler := &voucherapi.Handler{
		VoucherService: vouchers.NewVoucherService(voucherStore, log),
		Logger:         log,
	}
	eventHandler := &eventapi.Handler{
		EventService: events.NewEventService(&eventdb.DB{Bun: bunDB}, ledger, log),
		Logger:       log,
	}

	// --- Router ---
	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := bunDB.PingContext(r.Context()); err != nil {
			utils.WriteError(w, r, log, fmt.Errorf("database unreachable: %w", err))
			return
		}
		utils.WriteSuccess(w, http.StatusOK, "ok", nil)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier, log))
		log.Info("AUTH", "Token middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			r.Route("/transactions", transactionHandler.Routes)
			r.Route("/coupons", couponHandler.Routes)
			r.Route("/vouchers", voucherHandler.Routes)
			r.Route("/events", eventHandler.Routes)
		})
		log.Info("ROUTER", "Routes registered under /api")
	})

	// --- Background sweep ---
	sched, err := scheduler.New(sw, cfg.Sweeper.Interval, log)
	if err != nil {
		log.Fatal("SCHEDULER", err.Error())
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatal("SCHEDULER", err.Error())
	}

	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
		// no WriteTimeout: SSE streams stay open
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Transaction Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	if err := sched.Shutdown(); err != nil {
		log.Error("SCHEDULER", fmt.Sprintf("Scheduler shutdown failed: %v", err))
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Transaction Service shutdown complete")
	}

	if err := dispatcher.Close(ctxShutdown); err != nil {
		log.Warn("NOTIFY", err.Error())
	}
}
