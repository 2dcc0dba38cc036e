package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tunestream/internal/config"
	apphttp "tunestream/internal/http"
	"tunestream/internal/indexer"
	"tunestream/internal/jobs"
	"tunestream/internal/magnet"
	"tunestream/internal/musicbrainz"
	"tunestream/internal/preload"
	"tunestream/internal/rank"
	"tunestream/internal/repository"
	"tunestream/internal/repository/sqlite"
	"tunestream/internal/service"
	"tunestream/internal/storage"
	"tunestream/internal/swarm"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	searchCache := sqlite.NewSearchCacheRepository(db, time.Duration(cfg.SearchCache.TTLMinutes)*time.Minute)
	if err := searchCache.Init(ctx); err != nil {
		logger.Fatalf("init search cache: %v", err)
	}

	engine, err := swarm.NewEngine(swarm.EngineConfig{
		DataDir: cfg.Swarm.DataDir,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatalf("start swarm engine: %v", err)
	}

	registry := swarm.NewRegistry(engine, swarm.RegistryConfig{
		ReadyTimeout: time.Duration(cfg.Swarm.ReadyTimeoutSeconds) * time.Second,
		Logger:       logger,
	})

	resolver := magnet.NewResolver(time.Duration(cfg.Resolver.TimeoutSeconds)*time.Second, logger)
	indexerClient := indexer.NewClient(cfg.Indexer.BaseURL, cfg.Indexer.APIKey, time.Duration(cfg.Indexer.TimeoutSeconds)*time.Second, logger)

	metadataClient := musicbrainz.NewClient(musicbrainz.Config{
		BaseURL:   cfg.Metadata.BaseURL,
		UserAgent: cfg.Metadata.UserAgent,
		Timeout:   time.Duration(cfg.Metadata.TimeoutSeconds) * time.Second,
		Logger:    logger,
	})
	coverArtClient := musicbrainz.NewCoverArtClient(cfg.CoverArt.BaseURL, time.Duration(cfg.CoverArt.TimeoutSeconds)*time.Second, logger)

	preloadStore := preload.NewMemoryStore(time.Duration(cfg.Preload.CacheTTLMinutes) * time.Minute)
	preloader := preload.NewPreloader(indexerClient, resolver, registry, preloadStore, preload.Config{
		TopN:   cfg.Preload.TopN,
		Logger: logger,
	})

	orchestrator := jobs.NewOrchestrator(jobs.Config{
		Retention: time.Duration(cfg.Jobs.RetentionMinutes) * time.Minute,
		Logger:    logger,
	})

	var exporter service.TrackExporter
	if cfg.Export.Bucket != "" {
		storageSvc, err := buildStorage(ctx, cfg)
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		exporter = service.NewTrackExporter(registry, storageSvc, cfg.Export.Bucket, cfg.Export.KeyPrefix, logger)
		logger.Infof("track export enabled, bucket %s (region %s)", cfg.Export.Bucket, cfg.Export.Region)
	} else {
		logger.Info("track export disabled, no bucket configured")
	}

	rankCfg := rank.DefaultConfig()
	if cfg.Ranking.SizePenaltyMB > 0 {
		rankCfg.SizePenaltyThreshold = int64(cfg.Ranking.SizePenaltyMB) << 20
	}

	torrentService := service.NewTorrentService(indexerClient, resolver, registry, orchestrator, searchCache, exporter, service.TorrentServiceConfig{
		ProbeTimeout:   time.Duration(cfg.Swarm.ProbeTimeoutSecs) * time.Second,
		ListingTimeout: time.Duration(cfg.Swarm.ListingTimeoutSecs) * time.Second,
		Ranking:        rankCfg,
		Logger:         logger,
	})
	musicService := service.NewMusicService(metadataClient, coverArtClient, preloader, preloadStore, logger)

	go purgeSearchCache(ctx, searchCache, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(musicService, torrentService)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	orchestrator.Shutdown()
	preloadStore.Close()
	registry.Clear()
	engine.Close()

	logger.Info("bye")
}

func purgeSearchCache(ctx context.Context, cache repository.SearchCacheRepository, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := cache.PurgeExpired(ctx); err != nil {
				logger.Warnf("purge search cache: %v", err)
			}
		}
	}
}

func buildStorage(ctx context.Context, cfg config.Config) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Export.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Export.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Export.Endpoint)
			o.UsePathStyle = true
		}
	})
	return storage.NewS3Service(client), nil
}
