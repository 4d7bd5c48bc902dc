// api-server 请假与居家办公申请管理服务
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leavedesk/internal/apiserver/server"
	"leavedesk/internal/config"
	"leavedesk/internal/shared/cache"
	redisCache "leavedesk/internal/shared/cache/redis"
	"leavedesk/internal/shared/eventbus"
	redisBus "leavedesk/internal/shared/eventbus/redis"
	"leavedesk/internal/shared/objstore"
	"leavedesk/internal/shared/storage"
	"leavedesk/internal/shared/storage/driver/postgres"
	"leavedesk/internal/shared/storage/driver/sqlite"
	"leavedesk/internal/shared/storage/mongostore"
	"leavedesk/internal/shared/storage/repository"
)

func main() {
	cfg := config.Load()
	log.Printf("Starting api-server: %s", cfg)

	// 持久化存储
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Redis：员工目录缓存 + 事件总线（未配置时退化为进程内实现）
	var c cache.Cache = cache.NewNoOpCache()
	var bus eventbus.Bus = eventbus.NewMemoryBus()
	if cfg.RedisURL != "" {
		rc, err := redisCache.NewCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect redis cache: %v", err)
		}
		defer rc.Close()
		c = rc

		rb, err := redisBus.NewBus(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect redis event bus: %v", err)
		}
		bus = rb
		log.Printf("Redis enabled: %s", cfg.RedisURL)
	}
	defer bus.Close()

	// MinIO：可选的附件对象存储
	var objects *objstore.Client
	if cfg.MinIO.Endpoint != "" {
		objects, err = objstore.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("Failed to create minio client: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := objects.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to ensure minio bucket: %v", err)
		}
		cancel()
		log.Printf("MinIO attachment offload enabled: %s", cfg.MinIO.Endpoint)
	}

	srv := server.New(cfg, store, c, bus, objects)

	// WebSocket 事件网关广播循环
	gatewayCtx, gatewayCancel := context.WithCancel(context.Background())
	defer gatewayCancel()
	go srv.Gateway().Run(gatewayCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅停机
	done := make(chan struct{})
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down api-server...")

		gatewayCancel()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("HTTP shutdown error: %v", err)
		}
		close(done)
	}()

	log.Printf("api-server listening on :%s", cfg.APIPort)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
	<-done
	log.Println("api-server stopped")
}

// openStore 按配置的后端打开持久化存储
func openStore(cfg *config.Config) (storage.PersistentStore, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repository.NewStore(db, sqlite.NewDialect())
	case config.BackendPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewStore(db, postgres.NewDialect())
	default:
		return mongostore.NewStore(cfg.MongoURI, cfg.MongoDB)
	}
}
