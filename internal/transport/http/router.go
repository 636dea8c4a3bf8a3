package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ngo-connect-api/internal/application/auth"
	"github.com/ngo-connect-api/internal/application/chat"
	"github.com/ngo-connect-api/internal/application/notification"
	"github.com/ngo-connect-api/internal/application/post"
	"github.com/ngo-connect-api/internal/application/profile"
	"github.com/ngo-connect-api/internal/application/rewrite"
	"github.com/ngo-connect-api/internal/application/volunteer"
	"github.com/ngo-connect-api/internal/config"
	"github.com/ngo-connect-api/internal/infrastructure/dynamo"
	"github.com/ngo-connect-api/internal/infrastructure/gemini"
	jwtinfra "github.com/ngo-connect-api/internal/infrastructure/jwt"
	s3infra "github.com/ngo-connect-api/internal/infrastructure/s3"
	"github.com/ngo-connect-api/internal/infrastructure/smtp"
	"github.com/ngo-connect-api/internal/infrastructure/sns"
	"github.com/ngo-connect-api/internal/realtime"
	"github.com/ngo-connect-api/internal/transport/http/handler"
	appmiddleware "github.com/ngo-connect-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router. JWTProvider,
// S3Store, Mailer, TopicPublisher and LLM may be nil when the matching
// credentials are absent; the affected features degrade instead of failing.
type Deps struct {
	IndividualRepo   *dynamo.IndividualRepo
	NGORepo          *dynamo.NGORepo
	PostRepo         *dynamo.PostRepo
	CommentRepo      *dynamo.CommentRepo
	ChatRepo         *dynamo.ChatRepo
	MessageRepo      *dynamo.MessageRepo
	NotificationRepo *dynamo.NotificationRepo
	VolunteerRepo    *dynamo.VolunteerRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	TopicPublisher   sns.Publisher
	JWTProvider      *jwtinfra.Provider
	LLM              gemini.Generator
	Hub              *realtime.Hub
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second with a burst of 10 for sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	// The rewrite endpoint fans out to a paid upstream; keep it tighter.
	rewriteRL := appmiddleware.NewRateLimiter(rate.Limit(1), 5)

	// Optional deps are handed over as interfaces so a missing one stays a
	// plain nil inside the services.
	var broadcast realtime.Publisher
	if deps.Hub != nil {
		broadcast = deps.Hub
	}
	var signer interface {
		Sign(userID, kind, name string) (string, error)
	}
	if deps.JWTProvider != nil {
		signer = deps.JWTProvider
	}
	var images interface {
		UploadBase64(ctx context.Context, key, data string) (string, error)
	}
	if deps.S3Store != nil {
		images = deps.S3Store
	}

	authSvc := auth.NewService(deps.IndividualRepo, deps.NGORepo, signer, deps.Mailer)
	profileSvc := profile.NewService(deps.IndividualRepo, deps.NGORepo, images)
	postSvc := post.NewService(deps.PostRepo, deps.CommentRepo, deps.NotificationRepo, images, broadcast, deps.TopicPublisher)
	chatSvc := chat.NewService(deps.ChatRepo, deps.MessageRepo, chat.NewDirectory(deps.IndividualRepo, deps.NGORepo), broadcast)
	notifSvc := notification.NewService(deps.NotificationRepo)
	volunteerSvc := volunteer.NewService(deps.VolunteerRepo, deps.PostRepo, deps.NotificationRepo, deps.Mailer)
	rewriteSvc := rewrite.NewService(deps.LLM)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	profileH := handler.NewProfileHandler(profileSvc)
	postH := handler.NewPostHandler(postSvc)
	chatH := handler.NewChatHandler(chatSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	volunteerH := handler.NewVolunteerHandler(volunteerSvc)
	rewriteH := handler.NewRewriteHandler(rewriteSvc)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/individual/register", authH.RegisterIndividual)
		r.With(sensitiveRL.Limit).Post("/individual/login", authH.LoginIndividual)
		r.With(sensitiveRL.Limit).Post("/ngo/register", authH.RegisterNGO)
		r.With(sensitiveRL.Limit).Post("/ngo/login", authH.LoginNGO)
		r.With(rewriteRL.Limit).Post("/ai/rewrite", rewriteH.Rewrite)

		r.Get("/individual/profile/{id}", profileH.GetIndividual)
		r.Get("/ngo/profile/{id}", profileH.GetNGO)
		r.Get("/post-events", postH.ListEvents)
		r.Get("/post-vlogs", postH.ListVlogs)
		r.Get("/posts/{id}", postH.Get)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Put("/individual/profile/{id}", profileH.UpdateIndividual)
			r.Put("/ngo/profile/{id}", profileH.UpdateNGO)

			r.Post("/post-events", postH.CreateEvent)
			r.Post("/post-vlogs", postH.CreateVlog)
			r.Post("/posts/{id}/like", postH.ToggleLike)
			r.Post("/posts/{id}/comments", postH.AddComment)
			r.Get("/posts/{id}/volunteers", volunteerH.ListForEvent)
			r.Post("/volunteer/register", volunteerH.Register)

			r.Post("/chats", chatH.Open)
			r.Get("/chats", chatH.List)
			r.Get("/chats/{id}/messages", chatH.History)
			r.Post("/chats/{id}/messages", chatH.Send)
			r.Patch("/chats/{id}/seen", chatH.MarkSeen)

			r.Get("/notifications", notifH.List)
			r.Post("/notifications/read-all", notifH.MarkAllRead)
			r.Patch("/notifications/{id}/read", notifH.MarkRead)
		})
	})

	if deps.Hub != nil {
		wsH := handler.NewWSHandler(deps.Hub, originChecker(cfg.AllowedOrigins))
		r.Get("/ws", wsH.Serve)
	}

	return r
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
