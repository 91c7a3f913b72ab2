package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "signing-backend/internal/auth"
	"signing-backend/internal/documents"
	"signing-backend/internal/notifications"
	"signing-backend/internal/projects"
	"signing-backend/internal/queue"
	"signing-backend/internal/services/health"
	"signing-backend/internal/shared/config"
	"signing-backend/internal/shared/server"
	"signing-backend/internal/shared/server/middleware"
	"signing-backend/internal/shared/storage/db"
	"signing-backend/internal/shared/storage/object"
	localstore "signing-backend/internal/shared/storage/object/local"
	s3store "signing-backend/internal/shared/storage/object/s3"
	"signing-backend/internal/signatures"
	"signing-backend/internal/signrequests"
	"signing-backend/internal/users"
)

// App holds shared dependencies for the API and the notification worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	// Notifier is what request handlers use. Delivery sends directly and is
	// what the worker uses for queued notifications.
	Notifier notifications.Dispatcher
	Delivery notifications.Dispatcher

	UsersService        *users.Service
	ProjectsService     *projects.Service
	DocumentsService    *documents.Service
	SignaturesService   *signatures.Service
	SignRequestsService *signrequests.Service
	HealthService       *health.Service

	UsersHandler        *users.Handler
	ProjectsHandler     *projects.Handler
	DocumentsHandler    *documents.Handler
	SignaturesHandler   *signatures.Handler
	SignRequestsHandler *signrequests.Handler
	PublicHandler       *signrequests.PublicHandler
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.NotifyMode) == "" {
		cfg.NotifyMode = "log"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	app.Delivery = NewDelivery(cfg)
	app.Notifier = buildNotifier(cfg, queueClient, app.Delivery)

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		Health:             app.HealthService,
		UserHandler:        app.UsersHandler,
		ProjectHandler:     app.ProjectsHandler,
		DocumentHandler:    app.DocumentsHandler,
		SignatureHandler:   app.SignaturesHandler,
		SignRequestHandler: app.SignRequestsHandler,
		PublicSigning:      app.PublicHandler,
		PublicSigningPaths: signrequests.PublicPaths,
		GoogleAuth:         app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	// Deployed environments migrate through cmd/migrate.
	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.NotifyQueueURL) == "" {
		if cfg.NotifyMode == "queue" && !isDevLike(cfg.Env) {
			return nil, fmt.Errorf("NOTIFY_MODE=queue requires NOTIFY_SQS_QUEUE_URL")
		}
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.NotifyQueueURL)
}

// NewDelivery picks the dispatcher that actually reaches recipients. The
// worker uses it directly since it needs no database.
func NewDelivery(cfg config.Config) notifications.Dispatcher {
	if strings.TrimSpace(cfg.EmailFunctionURL) != "" {
		return notifications.NewHTTPDispatcher(cfg.EmailFunctionURL, cfg.EmailFunctionKey)
	}
	return notifications.LogDispatcher{}
}

func buildNotifier(cfg config.Config, queueClient queue.Client, delivery notifications.Dispatcher) notifications.Dispatcher {
	switch cfg.NotifyMode {
	case "queue":
		if queueClient == nil {
			log.Printf("bootstrap: notify queue not configured; delivering inline")
			return delivery
		}
		return &notifications.QueueDispatcher{
			Queue:     queueClient,
			RequestID: middleware.RequestIDFromRequestContext,
		}
	case "http":
		return delivery
	default:
		return notifications.LogDispatcher{}
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var (
		userRepo        users.Repo
		projectRepo     projects.Repo
		docRepo         documents.DocumentsRepo
		signatureRepo   signatures.Repo
		signRequestRepo signrequests.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		projectRepo = &projects.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
		signatureRepo = &signatures.PGRepo{DB: app.DB}
		signRequestRepo = &signrequests.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		projectRepo = projects.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
		signatureRepo = signatures.NewMemoryRepo()
		signRequestRepo = signrequests.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo)
	projectSvc := projects.NewService(projectRepo)
	docSvc := &documents.Service{Repo: docRepo, Projects: projectSvc}
	signatureSvc := &signatures.Service{
		Repo:        signatureRepo,
		Store:       app.Store,
		Documents:   docSvc,
		Projects:    projectSvc,
		Notifier:    app.Notifier,
		AdminEmails: app.Config.AdminNotifyEmails,
	}
	signRequestSvc := &signrequests.Service{
		Repo:           signRequestRepo,
		Signatures:     signatureSvc,
		Documents:      docSvc,
		Projects:       projectSvc,
		Notifier:       app.Notifier,
		TTL:            app.Config.SignatureRequestTTL,
		SigningBaseURL: app.Config.PublicSigningBaseURL,
	}
	if len(app.Config.AdminNotifyEmails) == 0 {
		log.Printf("bootstrap: ADMIN_NOTIFY_EMAILS empty; fully signed notices will not be sent")
	}

	app.UsersService = userSvc
	app.ProjectsService = projectSvc
	app.DocumentsService = docSvc
	app.SignaturesService = signatureSvc
	app.SignRequestsService = signRequestSvc
	app.HealthService = health.NewService(app.DB)

	app.UsersHandler = users.NewHandler(userSvc)
	app.ProjectsHandler = projects.NewHandler(projectSvc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.SignaturesHandler = signatures.NewHandler(signatureSvc)
	app.SignRequestsHandler = signrequests.NewHandler(signRequestSvc)
	app.PublicHandler = signrequests.NewPublicHandler(signRequestSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		userSvc,
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)

	if app.SignaturesHandler == nil || app.PublicHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
