package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"pressline-backend/internal/config"
	infraCache "pressline-backend/internal/infrastructure/cache"
	"pressline-backend/internal/infrastructure/database"
	"pressline-backend/internal/infrastructure/queue"
	"pressline-backend/internal/infrastructure/storage"
	"pressline-backend/pkg/cache"
	"pressline-backend/pkg/jwt"

	// Campaign domain
	campaignHandler "pressline-backend/internal/domains/campaign/handler"
	campaignJob "pressline-backend/internal/domains/campaign/job"
	campaignRepo "pressline-backend/internal/domains/campaign/repository"
	campaignService "pressline-backend/internal/domains/campaign/service"

	// Domain directory
	domainHandler "pressline-backend/internal/domains/domain/handler"
	domainRepo "pressline-backend/internal/domains/domain/repository"
	domainService "pressline-backend/internal/domains/domain/service"

	// Generation
	"pressline-backend/internal/domains/generation/provider/gemini"
	"pressline-backend/internal/domains/generation/provider/openai"
	genService "pressline-backend/internal/domains/generation/service"

	// Job queue
	jobHandler "pressline-backend/internal/domains/jobqueue/handler"
	jobRepo "pressline-backend/internal/domains/jobqueue/repository"
	jobService "pressline-backend/internal/domains/jobqueue/service"

	// Publication
	pubHandler "pressline-backend/internal/domains/publication/handler"
	pubRepo "pressline-backend/internal/domains/publication/repository"
	pubService "pressline-backend/internal/domains/publication/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Struct này là "root" của dependency graph
// Pattern: Service Locator + Dependency Injection
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	// Lifecycle: Singleton (1 instance duy nhất trong app lifetime)

	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	Archive     *storage.ArchiveStorage // nil khi MinIO không available (non-critical)
	AsynqClient *asynq.Client
	TaskClient  *queue.TaskClient

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================

	DomainRepo      domainRepo.RepositoryInterface
	PublicationRepo pubRepo.RepositoryInterface
	CampaignRepo    campaignRepo.CampaignRepositoryInterface
	JobRepo         jobRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	DomainService   domainService.ServiceInterface
	Orchestrator    genService.Orchestrator
	SlugAllocator   pubService.SlugAllocator
	Writer          pubService.Writer
	SlugMigrator    pubService.SlugMigrator
	JobQueue        jobService.QueueInterface
	JobPoller       *jobService.Poller
	CampaignService campaignService.ServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	DomainHandler      *domainHandler.DomainHandler
	CampaignHandler    *campaignHandler.CampaignHandler
	PublicationHandler *pubHandler.PublicationHandler
	JobHandler         *jobHandler.JobHandler
}

// NewContainer tạo và initialize toàn bộ dependency graph
//
// QUAN TRỌNG: Thứ tự initialization:
// 1. Config (không phụ thuộc gì)
// 2. Infrastructure (DB, Cache, MinIO, Asynq) - phụ thuộc Config
// 3. Repositories - phụ thuộc Infrastructure
// 4. Services - phụ thuộc Repositories
// 5. Handlers - phụ thuộc Services
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Redis failure không critical - domain lookups fall through
			// to Postgres
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.Auth.Secret)

	// ========================================
	// STEP 4: INITIALIZE ARCHIVE STORAGE (MinIO)
	// ========================================
	log.Println("📦 Connecting to MinIO archive...")

	archive, err := storage.NewArchiveStorage(cfg.MinIO)
	if err != nil {
		// Archive là best-effort audit trail, không chặn startup
		log.Printf("⚠️  MinIO archive unavailable (non-critical): %v", err)
	} else {
		c.Archive = archive
		log.Println("✅ MinIO archive ready")
	}

	// ========================================
	// STEP 5: INITIALIZE ASYNQ CLIENT
	// ========================================
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	c.TaskClient = queue.NewTaskClient(c.AsynqClient)
	log.Println("✅ Asynq client ready")

	// ========================================
	// STEP 6: REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")
	c.initRepositories()
	log.Println("✅ Repositories initialized")

	// ========================================
	// STEP 7: SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	log.Println("✅ Services initialized")

	// ========================================
	// STEP 8: HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.DomainRepo = domainRepo.NewPostgresRepository(pool)
	c.PublicationRepo = pubRepo.NewPostgresRepository(pool)
	c.CampaignRepo = campaignRepo.NewPostgresCampaignRepository(pool)
	c.JobRepo = jobRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() error {
	cfg := c.Config

	// ----------------------------------------
	// DOMAIN DIRECTORY
	// ----------------------------------------
	c.DomainService = domainService.NewDomainService(c.DomainRepo, c.Cache)

	// ----------------------------------------
	// GENERATION ORCHESTRATOR
	// ----------------------------------------
	// Providers được thử đúng theo thứ tự PROVIDER_ORDER
	providers, err := c.buildProviders()
	if err != nil {
		return err
	}

	var archiver genService.Archiver
	if c.Archive != nil {
		archiver = c.Archive
	}
	c.Orchestrator = genService.NewOrchestrator(providers, cfg.Pipeline.MinLengthRatio, archiver)

	// ----------------------------------------
	// PUBLICATION
	// ----------------------------------------
	c.SlugAllocator = pubService.NewSlugAllocator(c.PublicationRepo)
	c.Writer = pubService.NewWriter(c.PublicationRepo, c.SlugAllocator)
	c.SlugMigrator = pubService.NewSlugMigrator(c.PublicationRepo)

	// ----------------------------------------
	// DURABLE JOB QUEUE
	// ----------------------------------------
	c.JobQueue = jobService.NewQueueService(c.JobRepo)
	c.JobPoller = jobService.NewPoller(c.JobQueue,
		campaignJob.NewCommentExecutor(cfg.Pipeline.CommentEndpointURL),
	)

	// ----------------------------------------
	// CAMPAIGN (resume controller)
	// ----------------------------------------
	c.CampaignService = campaignService.NewCampaignService(
		c.CampaignRepo,
		c.DomainService,
		c.Orchestrator,
		c.Writer,
		c.PublicationRepo,
		c.JobQueue,
		c.TaskClient,
		cfg.Pipeline,
	)

	return nil
}

// buildProviders dựng provider chain theo config order. Provider thiếu API
// key vẫn được giữ trong chain - orchestrator sẽ disable nó ở lần auth
// failure đầu tiên.
func (c *Container) buildProviders() ([]genService.RankedProvider, error) {
	cfg := c.Config
	providers := make([]genService.RankedProvider, 0, len(cfg.Providers.Order))

	for _, id := range cfg.Providers.Order {
		switch id {
		case "openai":
			providers = append(providers, genService.RankedProvider{
				Provider: openai.NewClient(cfg.Providers.OpenAI),
				Timeout:  cfg.Providers.OpenAI.Timeout,
			})
		case "gemini":
			client, err := gemini.NewClient(context.Background(), cfg.Providers.Gemini)
			if err != nil {
				log.Printf("⚠️  Gemini client init failed, provider skipped: %v", err)
				continue
			}
			providers = append(providers, genService.RankedProvider{
				Provider: client,
				Timeout:  cfg.Providers.Gemini.Timeout,
			})
		default:
			return nil, fmt.Errorf("unknown provider in PROVIDER_ORDER: %q", id)
		}
	}

	if len(providers) == 0 {
		log.Println("⚠️  No content providers configured - campaigns will exhaust immediately")
	}
	return providers, nil
}

func (c *Container) initHandlers() {
	c.DomainHandler = domainHandler.NewDomainHandler(c.DomainService)
	c.CampaignHandler = campaignHandler.NewCampaignHandler(c.CampaignService)
	c.PublicationHandler = pubHandler.NewPublicationHandler(
		c.DomainService,
		c.Orchestrator,
		c.Writer,
		c.SlugMigrator,
		c.PublicationRepo,
		c.Config.Pipeline.WordTarget,
	)
	c.JobHandler = jobHandler.NewJobHandler(c.JobQueue, c.Config.Pipeline.JobStaleAfter)
}

// Cleanup dọn dẹp resources khi shutdown
// Gọi trong graceful shutdown của server
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close Asynq client: %v", err)
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
