package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"timetrack/internal/config"
	"timetrack/internal/mailer"
	"timetrack/internal/notify"
	"timetrack/internal/queue"
	"timetrack/internal/store"
)

// Worker consumes notification messages and sends them as email.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.QueueBackend != "redis" {
		log.Fatalf("worker needs QUEUE_BACKEND=redis, got %q", cfg.QueueBackend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		log.Printf("warning: redis at %s not reachable, will keep retrying", cfg.RedisAddr)
	}

	sender := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	d := notify.NewDispatcher(queue.NewRedisQueue(redisClient.Client, queue.DefaultKey), sender)

	log.Println("worker started, waiting for messages...")
	if err := d.Run(ctx); err != nil {
		log.Fatalf("worker: %v", err)
	}
	log.Println("worker stopped")
}
