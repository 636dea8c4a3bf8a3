package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ngo-connect-api/internal/config"
	"github.com/ngo-connect-api/internal/infrastructure/dynamo"
	"github.com/ngo-connect-api/internal/infrastructure/gemini"
	jwtinfra "github.com/ngo-connect-api/internal/infrastructure/jwt"
	s3infra "github.com/ngo-connect-api/internal/infrastructure/s3"
	"github.com/ngo-connect-api/internal/infrastructure/smtp"
	"github.com/ngo-connect-api/internal/infrastructure/sns"
	"github.com/ngo-connect-api/internal/realtime"
	transporthttp "github.com/ngo-connect-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider is optional; auth routes degrade if keys are missing.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for post images and avatars.
	var s3Store *s3infra.Store
	if cfg.S3BucketName != "" {
		s3Store = s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)
	} else {
		log.Println("WARN: S3 bucket not configured, image uploads disabled")
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS topic fan-out is optional.
	var topicPublisher sns.Publisher
	if pub, err := sns.NewPublisher(cfg); err == nil {
		topicPublisher = pub
	} else {
		log.Printf("WARN: SNS publisher not available: %v", err)
	}

	hub := realtime.NewHub(slog.Default())

	deps := &transporthttp.Deps{
		IndividualRepo:   dynamo.NewIndividualRepo(dynamoClient, cfg.DynamoTables.Individuals),
		NGORepo:          dynamo.NewNGORepo(dynamoClient, cfg.DynamoTables.NGOs),
		PostRepo:         dynamo.NewPostRepo(dynamoClient, cfg.DynamoTables.Posts),
		CommentRepo:      dynamo.NewCommentRepo(dynamoClient, cfg.DynamoTables.Comments),
		ChatRepo:         dynamo.NewChatRepo(dynamoClient, cfg.DynamoTables.Chats),
		MessageRepo:      dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		VolunteerRepo:    dynamo.NewVolunteerRepo(dynamoClient, cfg.DynamoTables.Volunteers),
		S3Store:          s3Store,
		Mailer:           mailer,
		TopicPublisher:   topicPublisher,
		JWTProvider:      jwtProvider,
		LLM:              gemini.NewClient(cfg),
		Hub:              hub,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// No global ReadTimeout: websocket connections stay open indefinitely
	// and manage their own deadlines. WriteTimeout must outlive the rewrite
	// endpoint's upstream budget.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
