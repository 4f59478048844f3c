package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rvosen/mealbell/internal/database"
	"github.com/rvosen/mealbell/internal/logging"
	"github.com/rvosen/mealbell/internal/push"
	"github.com/rvosen/mealbell/internal/server"
)

func main() {
	port := os.Getenv("MEALBELL_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("MEALBELL_DB_PATH")
	if dbPath == "" {
		dbPath = "mealbell.db"
	}

	logger := logging.Setup(os.Getenv("MEALBELL_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("MEALBELL_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("MEALBELL_VAPID_PRIVATE_KEY"),
			Subscriber:      os.Getenv("MEALBELL_VAPID_SUBSCRIBER"),
		},
		DailyHour: envInt("MEALBELL_DAILY_HOUR", 18),
		Icon:      "/icons/icon-192.png",
		Badge:     "/icons/badge-72.png",
	}

	srv := server.New(db, cfg, logger)

	if sched := srv.Scheduler(); sched != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sched.Start(ctx)
		defer sched.Stop()
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("mealbell running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}
