package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"djradar/cache"
	"djradar/config"
	"djradar/core/discovery"
	"djradar/core/launcher"
	"djradar/core/store"
	"djradar/core/youtube"
	"djradar/db"
	"djradar/logger"
	"djradar/model"
	"djradar/repository"
	"djradar/storage"

	"github.com/gorilla/mux"
)

// Start wires the whole service together and runs the HTTP server until
// interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(
		&model.User{},
		&model.DJ{},
		&model.Subscription{},
		&model.SavedSet{},
		&model.Playlist{},
		&model.Clip{},
	); err != nil {
		logger.Fatal("failed to migrate database", logger.ErrorField(err))
	}

	// Redis only caches upstream metadata; the service runs without it.
	var detailCache discovery.DetailCache
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, video detail caching disabled", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
		detailCache = cache.NewVideoDetailCache(db.RedisClient)
	}

	// Object storage is optional too; avatar uploads fail cleanly
	// without it.
	if err := storage.InitMinio(cfg); err != nil {
		logger.Warn("MinIO unavailable, DJ image uploads disabled", logger.ErrorField(err))
	}

	keywords := discovery.NewKeywordList()
	if cfg.KeywordsFile != "" {
		watcher, err := keywords.Watch(cfg.KeywordsFile)
		if err != nil {
			logger.Warn("failed to watch keywords file",
				logger.String("path", cfg.KeywordsFile), logger.ErrorField(err))
		} else {
			defer watcher.Close()
		}
	}

	ytClient := youtube.NewClient(cfg.YouTubeAPIKey, cfg.YouTubeBaseURL)
	classifier := discovery.NewClassifier(cfg.MinSetDurationMin, keywords)
	pipeline := discovery.NewPipeline(ytClient, classifier, detailCache, cfg.SearchMaxPages, cfg.SearchPageSize)

	repos := store.Repos{
		DJs:           repository.NewMySQLDJRepository(),
		Subscriptions: repository.NewMySQLSubscriptionRepository(),
		SavedSets:     repository.NewMySQLSavedSetRepository(),
		Playlists:     repository.NewMySQLPlaylistRepository(),
		Clips:         repository.NewMySQLClipRepository(),
	}
	registry := store.NewRegistry(repos, pipeline,
		time.Duration(cfg.DJRefreshTimeoutSec)*time.Second, cfg.NewSetWindowDays)

	apiHandler := NewAPIHandler(cfg, registry,
		repository.NewMySQLUserRepository(),
		repos.DJs, pipeline, launcher.New(nil))

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(RequestIDMiddleware)

	// Auth
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", apiHandler.AuthMiddleware(apiHandler.LogoutHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/me", apiHandler.AuthMiddleware(apiHandler.MeHandler)).Methods(http.MethodGet)

	// DJ tracking
	router.HandleFunc("/api/djs", apiHandler.AuthMiddleware(apiHandler.GetTrackedDJsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/djs", apiHandler.AuthMiddleware(apiHandler.SubscribeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/djs/{name}", apiHandler.AuthMiddleware(apiHandler.UnsubscribeHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/djs/{name}/image", apiHandler.AuthMiddleware(apiHandler.UploadDJImageHandler)).Methods(http.MethodPost)

	// Discovery
	router.HandleFunc("/api/refresh", apiHandler.AuthMiddleware(apiHandler.RefreshHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/refresh/stream", apiHandler.AuthMiddleware(apiHandler.RefreshStreamHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/search", apiHandler.AuthMiddleware(apiHandler.SearchHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/library/discovered", apiHandler.AuthMiddleware(apiHandler.GetDiscoveryLibraryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/library/new", apiHandler.AuthMiddleware(apiHandler.GetNewSetsHandler)).Methods(http.MethodGet)

	// Saved sets
	router.HandleFunc("/api/saved-sets", apiHandler.AuthMiddleware(apiHandler.GetSavedSetsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/saved-sets", apiHandler.AuthMiddleware(apiHandler.SaveSetHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/saved-sets/{videoId}", apiHandler.AuthMiddleware(apiHandler.UnsaveSetHandler)).Methods(http.MethodDelete)

	// Playlists and clips
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{name}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/clips", apiHandler.AuthMiddleware(apiHandler.AddClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/clips/{id}", apiHandler.AuthMiddleware(apiHandler.RemoveClipHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/leaks", apiHandler.AuthMiddleware(apiHandler.GetLeaksHandler)).Methods(http.MethodGet)

	// Player
	router.HandleFunc("/api/player", apiHandler.AuthMiddleware(apiHandler.GetPlayerHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player", apiHandler.AuthMiddleware(apiHandler.UpdatePlayerHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/open", apiHandler.AuthMiddleware(apiHandler.OpenHandler)).Methods(http.MethodPost)

	// Danger zone
	router.HandleFunc("/api/data", apiHandler.AuthMiddleware(apiHandler.ClearAllHandler)).Methods(http.MethodDelete)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", logger.ErrorField(err))
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
