package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"

	"buildnchill-shop/internal/analytics"
	analytics_api "buildnchill-shop/internal/analytics/api"
	"buildnchill-shop/internal/auth"
	"buildnchill-shop/internal/auth/auth_api"
	"buildnchill-shop/internal/catalog"
	"buildnchill-shop/internal/catalog/catalog_api"
	catalogdb "buildnchill-shop/internal/catalog/db"
	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/contact"
	"buildnchill-shop/internal/contact/contact_api"
	contactdb "buildnchill-shop/internal/contact/db"
	"buildnchill-shop/internal/database"
	"buildnchill-shop/internal/datastore"
	"buildnchill-shop/internal/discord"
	"buildnchill-shop/internal/kafka"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/mcstatus"
	"buildnchill-shop/internal/order"
	orderdb "buildnchill-shop/internal/order/db"
	"buildnchill-shop/internal/order/order_api"
	orderlock "buildnchill-shop/internal/order/redis"
	"buildnchill-shop/internal/payment"
	"buildnchill-shop/internal/realtime"
	"buildnchill-shop/internal/site"
	sitedb "buildnchill-shop/internal/site/db"
	"buildnchill-shop/internal/site/site_api"
	"buildnchill-shop/internal/sse"
	"buildnchill-shop/internal/storage"
	"buildnchill-shop/internal/utils"
)

// infra groups the shared backends; Redis-backed ones fall back to
// in-process versions when Redis is off or unreachable.
type infra struct {
	db       *bun.DB
	redis    *redis.Client
	bus      realtime.Bus
	sessions auth.SessionStore
	locker   order.Locker
	kafka    kafka.Publisher
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Info("REDIS", "Redis disabled, using in-process bus, sessions and locks")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis at %s unreachable, falling back to in-process: %v", cfg.Addr, err))
		client.Close()
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return client
}

func connectKafka(cfg config.KafkaConfig, log *logger.Logger) kafka.Publisher {
	if !cfg.Enabled {
		log.Info("KAFKA", "Kafka disabled, domain events are not published")
		return kafka.NoopPublisher{}
	}
	if err := kafka.EnsureTopicsExist(cfg.Brokers, cfg.Topics.All(), log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}
	log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Brokers))
	return kafka.NewProducer(cfg.Brokers, log)
}

func setupInfra(ctx context.Context, cfg *config.Config, log *logger.Logger) (*infra, error) {
	bunDB, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Prepare(ctx, bunDB, cfg.Database.Driver); err != nil {
			bunDB.Close()
			return nil, fmt.Errorf("prepare schema: %w", err)
		}
		log.Info("DATABASE", "Schema is up to date")
	}
	if err := database.SeedSingletons(ctx, bunDB, cfg.Site); err != nil {
		bunDB.Close()
		return nil, err
	}

	in := &infra{db: bunDB, kafka: connectKafka(cfg.Kafka, log)}
	if in.redis = connectRedis(ctx, cfg.Redis, log); in.redis != nil {
		in.bus = realtime.NewRedisBus(in.redis, cfg.Redis.Channel, log)
		in.sessions = auth.NewRedisSessions(in.redis)
		in.locker = orderlock.NewRedis(in.redis, log)
	} else {
		in.bus = realtime.NewMemoryBus()
		in.sessions = auth.NewMemorySessions()
		in.locker = orderlock.NewMemory()
	}
	return in, nil
}

func (in *infra) Close() {
	if err := in.kafka.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "kafka close: %v\n", err)
	}
	if in.redis != nil {
		in.redis.Close()
	}
	in.db.Close()
}

// accessLog logs every request through the category logger.
func accessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.LogAPI(r.Method, r.URL.Path, status, time.Since(start))
		})
	}
}

func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	log := logger.NewLogger("shop-service")
	defer log.Close()

	log.Info("APP", "Starting BuildnChill shop service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in, err := setupInfra(ctx, cfg, log)
	if err != nil {
		log.Fatal("APP", err.Error())
	}
	defer in.Close()

	// --- Outbound clients ---
	shopWebhook := discord.New(cfg.Discord.ShopWebhookURL, cfg.Discord.Timeout)
	contactWebhook := discord.New(cfg.Discord.ContactWebhookURL, cfg.Discord.Timeout)
	statusClient := mcstatus.NewClient(cfg.Status.APIBaseURL, cfg.Status.DefaultPort, cfg.Status.Timeout)

	backend, err := storage.NewBackend(cfg.Storage)
	if err != nil {
		log.Fatal("STORAGE", err.Error())
	}
	images := storage.NewImageStore(backend, cfg.Storage.MaxUploadSize)
	log.Info("STORAGE", fmt.Sprintf("Image uploads go to the %s backend", cfg.Storage.Backend))

	// --- Services ---
	catalogService := catalog.NewService(&catalogdb.DB{Bun: in.db}, images, in.bus, log)

	orderService := order.NewOrderService(&orderdb.DB{Bun: in.db}, catalogService, payment.NewQRGenerator(cfg.Payment), shopWebhook, log)
	orderService.Kafka = in.kafka
	orderService.Topics = cfg.Kafka.Topics
	orderService.Changes = in.bus
	orderService.Lock = in.locker
	orderService.MentionUserID = cfg.Discord.MentionUserID

	contactService := contact.NewService(&contactdb.DB{Bun: in.db}, images, contactWebhook, log)
	contactService.Kafka = in.kafka
	contactService.Topic = cfg.Kafka.Topics.ContactCreated
	contactService.Changes = in.bus
	contactService.MentionUserID = cfg.Discord.MentionUserID

	siteService := site.NewService(&sitedb.DB{Bun: in.db}, cfg.Site, in.bus, log)
	analyticsService := analytics.NewService(analytics.NewDB(in.db), log)

	// --- Global data store ---
	emitter := sse.NewChangeEmitter()
	store := datastore.New(siteService, contactService, statusClient, in.bus, log)
	store.Sink = emitter
	store.PollInterval = cfg.Status.PollInterval
	contactService.State = store

	authManager := auth.NewManager(auth.NewEnvVerifier(cfg.Auth), in.sessions, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, log)
	authManager.State = store

	if err := store.Start(ctx); err != nil {
		log.Warn("STORE", fmt.Sprintf("Initial load incomplete: %v", err))
	}

	// --- Handlers ---
	catalogHandler := catalog_api.NewHandler(catalogService, log)
	orderHandler := order_api.NewHandler(orderService, log)
	contactHandler := contact_api.NewHandler(contactService, log)
	siteHandler := site_api.NewHandler(siteService, store, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)
	authHandler := auth_api.NewHandler(authManager, log)
	streamHandler := sse.NewHandler(emitter, log, sse.PublicTables)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(accessLog(log))
	r.Use(cors(cfg.Server.AllowedOrigin))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(r.Context(), in.db); err != nil {
			utils.WriteError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
		utils.WriteSuccess(w, http.StatusOK, "OK", map[string]bool{"loading": store.Loading()})
	})

	if cfg.Storage.Backend == storage.BackendLocal {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.UploadDir))))
	}

	// --- Public Routes ---
	r.Route("/api", func(r chi.Router) {
		siteHandler.RegisterPublicRoutes(r)
		r.Get("/stream", streamHandler.Stream)
		r.Route("/shop", func(r chi.Router) {
			catalogHandler.RegisterPublicRoutes(r)
			orderHandler.RegisterPublicRoutes(r)
		})
		r.Route("/contacts", contactHandler.RegisterPublicRoutes)
		r.Post("/auth/login", authHandler.Login)
		log.Info("ROUTER", "Public routes registered under /api")

		// --- Protected Routes ---
		r.Route("/admin", func(r chi.Router) {
			r.Use(authManager.Middleware)
			r.Post("/logout", authHandler.Logout)
			analyticsHandler.RegisterAdminRoutes(r)
			orderHandler.RegisterAdminRoutes(r)
			catalogHandler.RegisterAdminRoutes(r)
			siteHandler.RegisterAdminRoutes(r)
			r.Route("/contacts", contactHandler.RegisterAdminRoutes)
			log.Info("ROUTER", "Admin routes registered under /api/admin")
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		// no WriteTimeout: it would cut the event stream
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Shop service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Shop service shutdown complete")
	}
}
