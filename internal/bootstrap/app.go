package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"casedocs-backend/internal/bulkdocs"
	"casedocs-backend/internal/casedocs"
	"casedocs-backend/internal/classifier"
	"casedocs-backend/internal/classifier/bedrock"
	"casedocs-backend/internal/doctypes"
	"casedocs-backend/internal/processing"
	"casedocs-backend/internal/shared/config"
	"casedocs-backend/internal/shared/server"
	"casedocs-backend/internal/shared/storage/db"
)

// App holds the wired application dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	DocsRepo  casedocs.Repo
	TypesRepo doctypes.Repo

	Classifier   classifier.Client
	Registry     *processing.Registry
	Orchestrator *processing.Orchestrator

	Lifecycle *casedocs.Service
	Bulk      *bulkdocs.Service
}

// Build prepares all dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var docsRepo casedocs.Repo
	var typesRepo doctypes.Repo
	if sqlDB != nil {
		docsRepo = &casedocs.PGRepo{DB: sqlDB}
		typesRepo = &doctypes.PGRepo{DB: sqlDB}
	} else {
		docsRepo = casedocs.NewMemoryRepo()
		typesRepo = doctypes.NewMemoryRepo()
	}

	client, err := buildClassifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry, err := processing.BuildRegistry(ctx, typesRepo)
	if err != nil {
		return nil, fmt.Errorf("build label registry: %w", err)
	}

	orch := &processing.Orchestrator{
		Client:   client,
		Registry: registry,
		Timeout:  cfg.ClassifyTimeout,
	}

	lifecycle := &casedocs.Service{Repo: docsRepo, Types: typesRepo}
	bulk := &bulkdocs.Service{
		Docs:    lifecycle,
		Orch:    orch,
		Workers: cfg.ClassifyWorkers,
	}

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		DocsRepo:     docsRepo,
		TypesRepo:    typesRepo,
		Classifier:   client,
		Registry:     registry,
		Orchestrator: orch,
		Lifecycle:    lifecycle,
		Bulk:         bulk,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		CaseDocs: casedocs.NewHandler(lifecycle),
		Bulk:     bulkdocs.NewHandler(bulk),
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

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

// buildClassifier wires the remote classifier. Without an AWS region there
// is nothing to call, so a placeholder that fails in-band is used instead.
func buildClassifier(ctx context.Context, cfg config.Config) (classifier.Client, error) {
	if strings.TrimSpace(cfg.AWSRegion) == "" {
		if !isDevLike(cfg.Env) {
			return nil, fmt.Errorf("AWS_REGION is required")
		}
		log.Printf("bootstrap: AWS_REGION empty; classification calls will fail in-band")
		return classifier.Placeholder{}, nil
	}

	client, err := bedrock.New(ctx, cfg.AWSRegion, cfg.BedrockModelID)
	if err != nil {
		return nil, err
	}
	if cfg.BreakerDisabled {
		return client, nil
	}
	return classifier.NewBreaker(client), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
