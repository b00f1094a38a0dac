// Command server wires configuration, storage, the notification pipeline and
// the partnership services into one HTTP process. Business logic lives in the
// internal service packages; main only assembles and supervises.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	abonnementstore "kolabo/internal/abonnement/store"
	jwttoken "kolabo/internal/jwt_token"
	"kolabo/internal/notification/cache"
	"kolabo/internal/notification/events"
	notifhandler "kolabo/internal/notification/handler"
	notifmetrics "kolabo/internal/notification/metrics"
	notifservice "kolabo/internal/notification/service"
	notifstore "kolabo/internal/notification/store/notification"
	prefstore "kolabo/internal/notification/store/preference"
	parthandler "kolabo/internal/partnership/handler"
	partmetrics "kolabo/internal/partnership/metrics"
	partservice "kolabo/internal/partnership/service"
	informationstore "kolabo/internal/partnership/store/information"
	pagestore "kolabo/internal/partnership/store/page"
	transactionstore "kolabo/internal/partnership/store/transaction"
	"kolabo/internal/platform/config"
	"kolabo/internal/platform/httpserver"
	"kolabo/internal/platform/logger"
	platformmetrics "kolabo/internal/platform/metrics"
	"kolabo/internal/platform/middleware"
	"kolabo/internal/platform/postgres"
	platformredis "kolabo/internal/platform/redis"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient == nil {
		log.Info("redis not configured, unread count cache disabled")
	} else {
		defer redisClient.Close()
	}
	unreadCache := cache.NewUnreadCounts(redisClient, cfg.UnreadCountTTL)

	// Stores.
	abonnements := abonnementstore.NewPostgres(db)
	pages := pagestore.NewPostgres(db)
	informations := informationstore.NewPostgres(db)
	transactions := transactionstore.NewPostgres(db)
	notifications := notifstore.NewPostgres(db)
	preferences := prefstore.NewPostgres(db)

	// Metrics.
	platformMetrics := platformmetrics.New()
	partnershipMetrics := partmetrics.New(prometheus.DefaultRegisterer)
	notificationMetrics := notifmetrics.New(prometheus.DefaultRegisterer)

	// Notification pipeline. The event stream is optional: without brokers
	// dispatch still persists, it just does not fan out.
	dispatcherOpts := []notifservice.DispatcherOption{
		notifservice.WithUnreadCache(unreadCache),
		notifservice.WithDispatchMetrics(notificationMetrics),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafka(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("kafka publisher setup failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		dispatcherOpts = append(dispatcherOpts, notifservice.WithPublisher(publisher))
	} else {
		log.Info("kafka not configured, notification events disabled")
	}
	dispatcher := notifservice.NewDispatcher(notifications, preferences, log, dispatcherOpts...)
	queries := notifservice.NewQueryService(notifications, log,
		notifservice.WithQueryUnreadCache(unreadCache),
		notifservice.WithQueryMetrics(notificationMetrics),
	)
	preferenceService := notifservice.NewPreferenceService(preferences, log)

	// Partnership services, with the dispatcher as their notifier.
	pageService := partservice.NewPageService(pages, abonnements, log,
		partservice.WithPageNotifier(dispatcher),
		partservice.WithPageMetrics(partnershipMetrics),
	)
	informationService := partservice.NewInformationService(informations, pages, abonnements, log,
		partservice.WithInformationNotifier(dispatcher),
		partservice.WithInformationMetrics(partnershipMetrics),
	)
	transactionService := partservice.NewTransactionService(transactions, pages, abonnements, log,
		partservice.WithTxRunner(db),
		partservice.WithTransactionNotifier(dispatcher),
		partservice.WithTransactionMetrics(partnershipMetrics),
	)

	validator := jwttoken.NewJWTService(cfg.JWTSigningKey, "kolabo", "kolabo-api")
	router := newRouter(log, platformMetrics, validator,
		parthandler.New(pageService, informationService, transactionService, log),
		notifhandler.New(queries, preferenceService, log),
	)

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

type registrar interface {
	Register(r chi.Router)
}

// newRouter assembles the middleware chain and mounts every domain handler.
func newRouter(log *slog.Logger, m *platformmetrics.Metrics, validator middleware.ActorValidator, handlers ...registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(m))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireActor(validator, log))
		for _, h := range handlers {
			h.Register(r)
		}
	})
	return r
}
