package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taskhive/taskhive/api/audit"
	"github.com/taskhive/taskhive/api/config"
	"github.com/taskhive/taskhive/api/controller"
	"github.com/taskhive/taskhive/api/dao"
	"github.com/taskhive/taskhive/api/db"
	logger "github.com/taskhive/taskhive/api/logging"
	pdp_engine "github.com/taskhive/taskhive/api/pdp/engine"
	"github.com/taskhive/taskhive/api/router"
	"github.com/taskhive/taskhive/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize audit trail
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository, config.GetInt("audit.queueSize"))
	defer auditService.Close()

	// Initialize DAOs
	userDAO := dao.NewUserDAO(db.Neo4jDriver)
	projectDAO := dao.NewProjectDAO(db.Neo4jDriver)
	taskDAO := dao.NewTaskDAO(db.Neo4jDriver)
	policyDAO := dao.NewPolicyDAO(db.Neo4jDriver)

	// Initialize the decision engine
	engine := pdp_engine.NewAuthorizationEngine(
		userDAO,
		projectDAO,
		taskDAO,
		policyDAO,
		auditService,
		pdp_engine.Options{
			PolicyCacheTTL: config.GetDuration("authz.policyCacheTTL"),
			LookupTimeout:  config.GetDuration("authz.lookupTimeout"),
		},
	)

	// Local invalidations fan out to the other instances over Redis; remote
	// ones are applied to this instance's cache.
	eventBus.Subscribe(util.EventPolicyInvalidated, func(ctx context.Context, event util.Event) error {
		policyID, _ := event.Payload.(string)
		return db.PublishPolicyInvalidation(ctx, policyID)
	})
	eventBus.Subscribe(util.EventPolicyCacheClear, func(ctx context.Context, event util.Event) error {
		return db.PublishPolicyInvalidation(ctx, "")
	})
	db.SubscribePolicyInvalidations(ctx, func(policyID string) {
		if policyID == "" {
			engine.ClearPolicyCache()
			return
		}
		engine.InvalidatePolicyCache(policyID)
	})

	// Initialize controllers
	authController := controller.NewAuthController(engine, eventBus)
	auditController := controller.NewAuditController(auditService)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: router.SetupRouter(engine, authController, auditController),
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
