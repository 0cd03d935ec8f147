package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/scottdrichards/photrix/internal/api"
	"github.com/scottdrichards/photrix/internal/config"
	"github.com/scottdrichards/photrix/internal/derivative"
	"github.com/scottdrichards/photrix/internal/ffmpeg"
	"github.com/scottdrichards/photrix/internal/indexer"
	"github.com/scottdrichards/photrix/internal/indexstore"
	"github.com/scottdrichards/photrix/internal/logger"
	"github.com/scottdrichards/photrix/internal/status"
	"github.com/scottdrichards/photrix/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ./config/photrix.yaml)")
	port := flag.Int("port", 8080, "Port to listen on")
	mediaPath := flag.String("media", "", "Override media root from config")
	dev := flag.Bool("dev", false, "Expose internal error detail in API responses")
	flag.Parse()

	cfgPath := *configPath
	if cfgPath == "" {
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			cfgPath = envPath
		} else {
			cfgPath = "config/photrix.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("warning: could not load config from %s: %v", cfgPath, err)
		cfg = config.DefaultConfig()
	}
	if envRoot := os.Getenv("MEDIA_ROOT"); envRoot != "" {
		cfg.MediaRoot = envRoot
	}
	if *mediaPath != "" {
		cfg.MediaRoot = *mediaPath
	}

	logger.Init(cfg.LogLevel)

	if _, err := os.Stat(cfg.MediaRoot); os.IsNotExist(err) {
		log.Fatalf("media root does not exist: %s", cfg.MediaRoot)
	}

	logger.Info("starting photrix",
		"media_root", cfg.MediaRoot,
		"config", cfgPath,
		"index_file", cfg.IndexFile,
		"cache_root", cfg.CacheRoot,
	)

	idxStore := indexstore.New(cfg.IndexFile)
	idx := indexer.New(cfg.MediaRoot, idxStore, cfg.FFprobePath, cfg.ProcessingWorkers, cfg.Watch, cfg.AwaitWriteFinish)

	cache := derivative.NewCache(cfg.CacheRoot, cfg.CacheMaxBytes)
	encoder := ffmpeg.NewEncoder(cfg.FFmpegPath)
	manager := derivative.NewManager(cache, encoder, cfg.QueueWorkers, func(relativePath string) (string, error) {
		return idx.AbsPath(relativePath)
	})

	jobStore, err := store.Open(cfg.QueueDBFile)
	if err != nil {
		log.Fatalf("failed to open job ledger: %v", err)
	}
	defer jobStore.Close()

	reporter := status.NewReporter(idx, manager.Queue(), cfg.IndexFile, manager)
	handler := api.NewHandler(idx, manager, reporter, cfg.MediaRoot, *dev)
	router := api.WithCORS(api.NewRouter(handler), cfg.CORSOrigin, cfg.CORSAllowCredentials)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.Restore(jobStore, manager.Queue(), manager.Remember); err != nil {
		log.Printf("warning: failed to restore job ledger: %v", err)
	}
	store.Persist(ctx, manager.Queue(), jobStore, manager.SourceFor)

	idx.Start(ctx)
	manager.Start(ctx)
	defer manager.Stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
		idx.Stop(true)
		manager.Stop()
		server.Close()
	}()

	logger.Info("listening", "port", *port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("stopped")
}
