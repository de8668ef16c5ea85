package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hd-tickets/config"
	"hd-tickets/internal/cache"
	"hd-tickets/internal/database"
	"hd-tickets/internal/handler"
	"hd-tickets/internal/notifier"
	"hd-tickets/internal/platform"
	"hd-tickets/internal/queue"
	"hd-tickets/internal/repository"
	"hd-tickets/internal/scraper"
	"hd-tickets/internal/service"
	"hd-tickets/internal/worker"
	"hd-tickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.WithComponent("server")

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	// repositories
	ticketRepo := repository.NewScrapedTicketRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// scraping pipeline
	cacheManager := cache.NewSearchCacheManager(rdb)
	clients := []platform.Client{
		platform.NewStubHubClient(cfg.Scraping.StubHubBaseURL, cfg.Scraping.RequestTimeout),
		platform.NewTicketmasterClient(cfg.Scraping.TicketmasterBaseURL, cfg.Scraping.TicketmasterAPIKey, cfg.Scraping.RequestTimeout),
		platform.NewViagogoClient(cfg.Scraping.ViagogoBaseURL, cfg.Scraping.RequestTimeout),
	}
	orchestrator := scraper.NewOrchestrator(clients, cacheManager, cfg.Scraping.SearchCacheTTL)
	ingest := service.NewIngestService(ticketRepo)

	// alert engine and notification pipeline
	hostname, _ := os.Hostname()
	matchQueue, err := queue.NewRedisStreamMatchQueue(rdb, hostname, nil)
	if err != nil {
		log.Fatal("failed to initialize match queue", zap.Error(err))
	}
	scorer := service.NewMatchScorer()
	alerts := service.NewAlertService(
		alertRepo,
		orchestrator,
		scorer,
		ingest,
		matchQueue,
		cfg.Scraping.MatchThreshold,
		cfg.Scraping.AlertCheckInterval,
	)
	mux := notifier.NewMultiplexer(
		notifier.NewEmailNotifier(cfg.Notifier),
		notifier.NewSMSNotifier(cfg.Notifier),
		notifier.NewPushNotifier(cfg.Notifier),
		notifier.NewSlackNotifier(cfg.Notifier),
	)

	// purchases
	purchases := service.NewPurchaseService(pool, purchaseRepo, ticketRepo, userRepo, cfg.Fees, cfg.Subscription)

	// background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	scheduler := worker.NewScrapeScheduler(cacheManager, orchestrator, ingest, cfg.Scraping.ScheduleTTL)
	if err := worker.NewNotificationWorker(matchQueue, mux).Start(workerCtx); err != nil {
		log.Fatal("failed to start notification worker", zap.Error(err))
	}
	if err := worker.NewAlertScheduler(alerts, cfg.Scraping.AlertCheckInterval).Start(workerCtx); err != nil {
		log.Fatal("failed to start alert scheduler", zap.Error(err))
	}
	if err := scheduler.Start(workerCtx); err != nil {
		log.Fatal("failed to start scrape scheduler", zap.Error(err))
	}

	// HTTP surface
	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewTicketHandler(orchestrator, ingest).RegisterRoutes(router)
	handler.NewAlertHandler(alerts).RegisterRoutes(router)
	handler.NewPurchaseHandler(purchases).RegisterRoutes(router)
	handler.NewAdminHandler(orchestrator, scheduler).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// wait for SIGINT/SIGTERM, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	stopWorkers()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
