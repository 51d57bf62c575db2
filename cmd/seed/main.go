// Package main resets a roster database to the first-run sample data.
//
// Every key is cleared, then each state manager loads, which writes its
// seed records back.
//
// Usage:
//
//	go run ./cmd/seed --storage sqlite --data-path ~/Roster/data
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rosterapp/roster/internal/config"
	"github.com/rosterapp/roster/internal/di/providers"
	"github.com/rosterapp/roster/internal/logger"
	"github.com/rosterapp/roster/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logs := logger.New(logger.Config{Level: logger.ParseLevel(cfg.Logger.Level), Environment: cfg.App.Environment})

	if cfg.Storage.Backend == config.BackendMemory {
		log.Fatal("Nothing to seed: the memory backend is not persisted")
	}

	st, err := providers.OpenBackend(cfg.Storage, logs.Logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := st.Clear(ctx); err != nil {
		log.Fatalf("Failed to clear storage: %v", err)
	}

	deps := service.Deps{Store: st, Logger: logs.Logger}
	chats := service.NewChatService(deps, service.ChatOptions{CurrentUserID: cfg.Chat.CurrentUserID})
	defer chats.Close()

	for name, load := range map[string]func(context.Context) error{
		"tags":    service.NewTagService(deps).Load,
		"members": service.NewMemberService(deps, nil).Load,
		"chats":   chats.Load,
	} {
		if err := load(ctx); err != nil {
			log.Fatalf("Failed to seed %s: %v", name, err)
		}
	}

	keys, err := st.Keys(ctx)
	if err != nil {
		log.Fatalf("Failed to list keys: %v", err)
	}
	fmt.Printf("Seeded %s storage at %s: %v\n", cfg.Storage.Backend, cfg.Storage.DataPath, keys)
}
