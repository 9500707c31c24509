package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"matchserver/internal/admission"
	"matchserver/internal/changestream"
	"matchserver/internal/config"
	"matchserver/internal/identity"
	"matchserver/internal/loghandler"
	"matchserver/internal/matcher"
	"matchserver/internal/notifier"
	"matchserver/internal/profile"
	"matchserver/internal/queueindex"
	"matchserver/internal/session"
	"matchserver/internal/ws"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		if err2 := godotenv.Load("server/.env"); err2 != nil {
			log.Print("No .env file found; using environment variables.")
		}
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))

	cfg := config.Load()
	if cfg.IdentityJWKSBaseURL == "" {
		log.Fatal("IDENTITY_JWKS_BASE_URL is not set; refusing to start with no way to verify players")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queueStore, err := queueindex.NewPGStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("queueindex: %v", err)
	}
	defer queueStore.Close()

	profileStore, err := profile.NewPGStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("profile: %v", err)
	}
	defer profileStore.Close()

	stream, err := changestream.NewRedisStream(ctx, cfg.RedisURL, cfg.StreamShardCount)
	if err != nil {
		log.Fatalf("changestream: %v", err)
	}
	defer stream.Close()

	sessions, err := session.NewBinding(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	defer sessions.Shutdown()

	verifier, err := identity.NewVerifier(cfg.IdentityJWKSBaseURL)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}

	gateway := admission.New(profileStore, queueStore, stream, sessions, cfg.DefaultRating, cfg.Step, cfg.TimeControls)

	hub := ws.NewHub(gateway, verifier)
	notify := notifier.New(sessions, hub)
	pool := matcher.NewPool(queueStore, notify, cfg.Step, cfg.MaxRange)

	consumers := make([]changestream.Consumer, cfg.StreamShardCount)
	hostname, _ := os.Hostname()
	for shard := 0; shard < cfg.StreamShardCount; shard++ {
		consumerName := fmt.Sprintf("%s-%d", hostname, shard)
		consumers[shard] = stream.Consumer(shard, consumerName, cfg.StreamClaimIdleDuration)
	}

	go pool.Run(ctx, consumers)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http server shutdown error", "tag", "main", "err", err)
		}
	}()

	slog.Info("matchserver listening", "tag", "main", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %v", err)
	}
}
