package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kenway45/TLA-Attendance-site/internal/config"
	"github.com/Kenway45/TLA-Attendance-site/internal/queue"
	"github.com/Kenway45/TLA-Attendance-site/internal/store"
)

// Worker consumes check-in notices off the queue and writes the audit trail,
// keeping the submission request path synchronous and small.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "attendance:checkins")
	}

	notices, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("audit worker started, waiting for check-ins...")
	for notice := range notices {
		log.Printf("checkin event=%s (%s) reg=%s at %s",
			notice.EventID, notice.EventName, notice.RegNumber, notice.ArrivalTime)
	}

	log.Println("audit worker stopped")
}
