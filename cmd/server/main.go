package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"joyeria_admin/internal/cache"
	"joyeria_admin/internal/catalog"
	"joyeria_admin/internal/config"
	"joyeria_admin/internal/gateway"
	"joyeria_admin/internal/routes"
	"joyeria_admin/internal/session"
	"joyeria_admin/internal/workspace"
)

const workspaceMaxIdle = 2 * time.Hour

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.SessionSecret == "" {
		log.Fatal("❌ SESSION_SECRET manquant dans .env")
	}

	rdb := connectRedis(cfg)
	var store session.Store = session.NewMemoryStore()
	if rdb != nil {
		store = session.NewRedisStore(rdb, session.DefaultTTL)
	}

	reg := workspace.NewRegistry(
		gateway.New(cfg.APIBaseURL, cfg.GatewayTimeout),
		store,
		catalog.NewListCache(rdb, catalog.ProductListCacheTTL),
		cfg.PageSize,
	)

	r := routes.NewRouter(routes.Deps{
		Registry:    reg,
		Cookies:     newCookieStore(cfg),
		Redis:       rdb,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sweepWorkspaces(ctx, reg)

	go func() {
		log.Println("🚀 Console d'administration lancée sur le port", cfg.Port, "(API:", cfg.APIBaseURL+")")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur arrêté: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Arrêt forcé: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Println("👋 Serveur arrêté")
}

// connectRedis retourne nil si Redis est injoignable : sessions en mémoire, sans cache ni limite de connexion
func connectRedis(cfg *config.Config) *redis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := cache.Connect(ctx, cfg.RedisHost, cfg.RedisPassword)
	if err != nil {
		log.Printf("⚠️ %v, sessions en mémoire", err)
		return nil
	}
	log.Println("✅ Connecté à Redis", cfg.RedisHost)
	return rdb
}

func newCookieStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/admin",
		MaxAge:   int(session.DefaultTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func sweepWorkspaces(ctx context.Context, reg *workspace.Registry) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := reg.Sweep(workspaceMaxIdle); n > 0 {
				slog.Info("workspaces inactifs libérés", "count", n)
			}
		}
	}
}
