package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/tgrbin/relay/internal/config"
	"github.com/tgrbin/relay/internal/database"
	postgresrepo "github.com/tgrbin/relay/internal/repository/postgres"
	"github.com/tgrbin/relay/internal/service"
	"github.com/tgrbin/relay/internal/storage"
	"github.com/tgrbin/relay/internal/transport/http/handlers"
	"github.com/tgrbin/relay/internal/transport/http/middleware"
	"github.com/tgrbin/relay/internal/transport/ws"
)

func main() {
	godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	// Database
	pool, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database")
	}
	defer pool.Close()
	log.Info().Msg("connected to database")

	// Storage backend is fixed for the lifetime of the process.
	store, err := buildStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing storage backend")
	}
	log.Info().Str("backend", cfg.StorageBackend).Msg("storage ready")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	channelRepo := postgresrepo.NewChannelRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	membershipRepo := postgresrepo.NewMembershipRepo(pool)
	presenceRepo := postgresrepo.NewPresenceRepo(pool)
	attachmentRepo := postgresrepo.NewAttachmentRepo(pool)

	// Services
	userService := service.NewUserService(userRepo, membershipRepo)
	channelService := service.NewChannelService(channelRepo, membershipRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, channelRepo, attachmentRepo)
	membershipService := service.NewMembershipService(membershipRepo, channelRepo, userRepo)
	presenceService := service.NewPresenceService(presenceRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, store)

	// Handlers
	userHandler := handlers.NewUserHandler(userService, log)
	channelHandler := handlers.NewChannelHandler(channelService, log)
	messageHandler := handlers.NewMessageHandler(messageService, log)
	membershipHandler := handlers.NewMembershipHandler(membershipService, log)
	presenceHandler := handlers.NewPresenceHandler(presenceService, log)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService, log)

	identity := middleware.Identity()

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Users
	mux.HandleFunc("POST /api/v1/users", userHandler.Create)
	mux.Handle("GET /api/v1/users/{id}", identity(http.HandlerFunc(userHandler.Get)))
	mux.Handle("DELETE /api/v1/users/{id}", identity(http.HandlerFunc(userHandler.Delete)))

	// Channels
	mux.Handle("GET /api/v1/channels", identity(http.HandlerFunc(channelHandler.ListVisible)))
	mux.Handle("POST /api/v1/channels", identity(http.HandlerFunc(channelHandler.CreatePublic)))
	mux.Handle("POST /api/v1/channels/private", identity(http.HandlerFunc(channelHandler.CreatePrivate)))
	mux.Handle("PATCH /api/v1/channels/{id}", identity(http.HandlerFunc(channelHandler.Update)))
	mux.Handle("DELETE /api/v1/channels/{id}", identity(http.HandlerFunc(channelHandler.Delete)))
	mux.Handle("GET /api/v1/channels/{id}/participants", identity(http.HandlerFunc(channelHandler.Participants)))

	// Messages
	mux.Handle("GET /api/v1/channels/{id}/messages", identity(http.HandlerFunc(messageHandler.List)))
	mux.Handle("POST /api/v1/channels/{id}/messages", identity(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("PATCH /api/v1/messages/{id}", identity(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/messages/{id}", identity(http.HandlerFunc(messageHandler.Delete)))

	// Read markers
	mux.Handle("POST /api/v1/memberships", identity(http.HandlerFunc(membershipHandler.Create)))
	mux.Handle("POST /api/v1/channels/{id}/read", identity(http.HandlerFunc(membershipHandler.MarkRead)))

	// Presence
	mux.Handle("POST /api/v1/presence/heartbeat", identity(http.HandlerFunc(presenceHandler.Heartbeat)))
	mux.Handle("GET /api/v1/users/{id}/presence", identity(http.HandlerFunc(presenceHandler.Status)))
	mux.HandleFunc("GET /ws/heartbeat", ws.ServeHeartbeat(presenceService, log))

	// Attachments
	mux.Handle("POST /api/v1/attachments", identity(http.HandlerFunc(attachmentHandler.Upload)))
	mux.Handle("GET /api/v1/attachments/{id}", identity(http.HandlerFunc(attachmentHandler.Get)))
	mux.Handle("GET /api/v1/attachments/{id}/download", identity(http.HandlerFunc(attachmentHandler.Download)))
	mux.Handle("DELETE /api/v1/attachments/{id}", identity(http.HandlerFunc(attachmentHandler.Delete)))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info().Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func buildStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		client, err := minio.New(cfg.S3Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
			Secure: cfg.S3UseSSL,
			Region: cfg.S3Region,
		})
		if err != nil {
			return nil, err
		}
		expiry := time.Duration(cfg.PresignExpirySeconds) * time.Second
		return storage.NewS3Store(client, cfg.S3Bucket, expiry), nil
	default:
		return storage.NewLocalStore(cfg.StorageRoot)
	}
}
