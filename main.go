package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"mediapedia/api"
	"mediapedia/config"
	"mediapedia/handlers"
	"mediapedia/internal/metrics"
	"mediapedia/services/cache"
	"mediapedia/services/launcher"
	"mediapedia/services/metadata"
	"mediapedia/services/trending"
)

func main() {
	configFlag := flag.String("config", "", "path to settings.json (overrides MEDIAPEDIA_CONFIG)")
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("mediapedia starting...")

	// Determine config path (flag, env or default)
	configPath := strings.TrimSpace(*configFlag)
	if configPath == "" {
		configPath = os.Getenv("MEDIAPEDIA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			defer fileWriter.Close()
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			slog.SetDefault(slog.New(slog.NewTextHandler(multiWriter, nil)))
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	if dir := filepath.Dir(settings.Cache.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create cache directory %s: %v", dir, err)
		}
	}
	store, err := cache.NewStore(settings.Cache.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open cache: %v", err)
	}
	defer store.Close()

	httpOpts := metadata.HTTPOptions{
		Client:      &http.Client{Timeout: time.Duration(settings.Providers.TimeoutSeconds) * time.Second},
		MinInterval: time.Duration(settings.Providers.MinIntervalMs) * time.Millisecond,
	}
	if redisURL := strings.TrimSpace(settings.Providers.RedisURL); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("ignoring invalid redis url", "error", err)
		} else {
			client := redis.NewClient(opts)
			defer client.Close()
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := client.Ping(pingCtx).Err(); err != nil {
				slog.Warn("redis response cache unavailable, continuing without it", "error", err)
			} else {
				httpOpts.Cache = metadata.NewRedisResponseCache(client)
				log.Printf("[metadata] shared response cache enabled at %s", opts.Addr)
			}
			cancel()
		}
	}

	keys, err := cfgManager.GetKeys()
	if err != nil {
		log.Fatalf("failed to read provider keys: %v", err)
	}
	omdbClient := metadata.NewOMDbClient(keys.OMDbKey, settings.Providers.OMDbBaseURL, httpOpts)
	tmdbClient := metadata.NewTMDBClient(keys.TMDBKey, settings.Providers.TMDBBaseURL, settings.Providers.ImageBaseURL, httpOpts)

	ttl := time.Duration(settings.Cache.TTLDays) * 24 * time.Hour
	reconciler := metadata.NewService(store, omdbClient, tmdbClient, ttl)

	trendingService := trending.NewService(store, tmdbClient, cfgManager, trending.Options{
		RefreshInterval: time.Duration(settings.Trending.RefreshHours) * time.Hour,
		CheckInterval:   time.Duration(settings.Trending.CheckIntervalMinutes) * time.Minute,
		TTL:             ttl,
	})

	launcherService := launcher.NewService(store, cfgManager, omdbClient, tmdbClient, reconciler, trendingService, launcher.Options{
		Debounce:       time.Duration(settings.Search.DebounceMs) * time.Millisecond,
		Limit:          settings.Search.Limit,
		FuzzyThreshold: settings.Search.FuzzyThreshold,
		TTL:            ttl,
	})
	defer launcherService.Close()

	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	seedWatchRegion(initCtx, store, settings.Providers.WatchRegion)
	if err := launcherService.Init(initCtx); err != nil {
		initCancel()
		log.Fatalf("failed to initialise launcher: %v", err)
	}
	initCancel()

	if err := trendingService.Start(context.Background()); err != nil {
		log.Printf("[trending] failed to start refresh loop: %v", err)
	}

	r := mux.NewRouter()
	api.Register(r, handlers.NewLauncherHandler(launcherService), handlers.NewSettingsHandler(cfgManager), registry)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := trendingService.Stop(shutdownCtx); err != nil {
		log.Printf("[trending] shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// seedWatchRegion stores the configured region as the watch-region preference the
// first time the app runs against a cache that has none.
func seedWatchRegion(ctx context.Context, store *cache.Store, region string) {
	if strings.TrimSpace(region) == "" {
		return
	}
	if _, ok, err := store.GetSetting(ctx, launcher.SettingWatchRegion); err != nil || ok {
		return
	}
	if err := store.SetSetting(ctx, launcher.SettingWatchRegion, launcher.NormalizeRegion(region)); err != nil {
		slog.Warn("failed to seed watch region", "error", err)
	}
}
