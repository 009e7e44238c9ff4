package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/stackshelf/backend/config"
	"github.com/stackshelf/backend/handlers"
	"github.com/stackshelf/backend/middleware"
	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/service"
	"github.com/stackshelf/backend/store"
)

func main() {
	_ = godotenv.Load()
	config.ValidateEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("mongodb indexes:", err)
	}

	aggregator := service.NewAggregator(db, db)
	recorder := service.NewRecorder(db, aggregator)

	generator := service.NewGenerator(db)
	generator.MaxBooks = cfg.MaxRankingBooks
	generator.TTLs = cfg.RankingTTLs
	cache := service.NewRankingCache(db, generator)

	fetcher := service.NewDevtoFetcher(cfg.FetchTags, cfg.FetchPerPage)
	runner := service.NewBatchRunner(db, fetcher, recorder, cfg.MinConfidence, cfg.IndicatorWords)
	digest := service.NewDigestService(db, cache, db, cfg.DigestEncryptionKey, cfg.DigestTopN)

	scheduler := service.NewScheduler()
	scheduler.Add("mention-batch", cfg.BatchInterval, func(ctx context.Context) error {
		run, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		if err := digest.Send(ctx, run.ID); err != nil && !errors.Is(err, service.ErrDigestNotConfigured) {
			log.Println("digest:", err)
		}
		return nil
	})
	scheduler.Add("ranking-sweep", cfg.SweepInterval, func(ctx context.Context) error {
		_, err := cache.Sweep(ctx)
		return err
	})
	scheduler.Start(ctx)
	defer scheduler.Stop()

	authHandler := &handlers.AuthHandler{
		DB:           db,
		JWTSecret:    cfg.JWTSecret,
		DefaultEmail: cfg.AdminEmail,
		DefaultPass:  cfg.AdminPass,
	}
	rankingsHandler := &handlers.RankingsHandler{Cache: cache}
	booksHandler := &handlers.BooksHandler{DB: db}
	articlesHandler := &handlers.ArticlesHandler{DB: db}
	adminHandler := &handlers.AdminHandler{DB: db, Runner: runner, Sweeper: cache}
	digestHandler := &handlers.DigestHandler{DB: db, Sender: digest, EncKey: cfg.DigestEncryptionKey}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to stackshelf."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Get("/rankings", rankingsHandler.Get)
		r.Get("/books", booksHandler.List)
		r.Get("/books/{id}", booksHandler.Get)
		r.Get("/books/{id}/mentions", booksHandler.Mentions)
		r.Get("/articles", articlesHandler.List)
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			// Any authenticated user may read the operational state.
			r.Get("/admin/batch/runs", adminHandler.ListBatchRuns)
			r.Get("/admin/digest/config", digestHandler.GetConfig)
			// Mutations need the admin role.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/books", booksHandler.Create)
				r.Patch("/books/{id}/status", booksHandler.PatchStatus)
				r.Post("/admin/batch/run", adminHandler.RunBatch)
				r.Post("/admin/rankings/sweep", adminHandler.SweepRankings)
				r.Put("/admin/digest/config", digestHandler.SaveConfig)
				r.Post("/admin/digest/send", digestHandler.SendNow)
			})
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
