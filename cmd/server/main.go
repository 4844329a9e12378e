package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kyragit/Auto-DND/internal/config"
	"github.com/kyragit/Auto-DND/internal/dice"
	"github.com/kyragit/Auto-DND/internal/repositories/characters"
	"github.com/kyragit/Auto-DND/internal/repositories/maps"
	"github.com/kyragit/Auto-DND/internal/repositories/parties"
	fightsvc "github.com/kyragit/Auto-DND/internal/services/fight"
	partysvc "github.com/kyragit/Auto-DND/internal/services/party"
	worldsvc "github.com/kyragit/Auto-DND/internal/services/world"
	"github.com/kyragit/Auto-DND/internal/synchronizer"
	"github.com/kyragit/Auto-DND/internal/uuid"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		mapRepo   maps.Repository
		partyRepo parties.Repository
		charStore characters.Store

		redisClient *redis.Client
	)

	switch cfg.Storage.Backend {
	case config.StorageRedis:
		log.Printf("Connecting to Redis at: %s", cfg.Redis.Addr)
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
			cancel()
			log.Fatalf("Failed to connect to Redis: %v", pingErr)
		}
		cancel()
		log.Println("Successfully connected to Redis")

		mapRepo = maps.NewRedisRepository(&maps.RedisRepoConfig{Client: redisClient})
		partyRepo = parties.NewRedisRepository(&parties.RedisRepoConfig{Client: redisClient})
		charStore = characters.NewRedisStore(&characters.RedisStoreConfig{Client: redisClient})
	case config.StorageMemory:
		log.Println("Using in-memory repositories")
		mapRepo = maps.NewInMemoryRepository()
		partyRepo = parties.NewInMemoryRepository()
		charStore = characters.NewInMemoryStore()
	}

	registry := worldsvc.NewRegistry(&worldsvc.RegistryConfig{
		Repository: mapRepo,
	})

	partyService := partysvc.NewService(&partysvc.ServiceConfig{
		Repository:    partyRepo,
		Characters:    charStore,
		UUIDGenerator: uuid.NewGoogleUUIDGenerator(),
		HenchmanShare: cfg.Game.HenchmanShare,
	})

	hub := synchronizer.NewHub(&synchronizer.HubConfig{
		Registry: registry,
		Parties:  partyService,
	})

	fightService := fightsvc.NewService(&fightsvc.ServiceConfig{
		Registry:      registry,
		Party:         partyService,
		Roller:        dice.NewRandomRoller(),
		UUIDGenerator: uuid.NewGoogleUUIDGenerator(),
		Notifier:      hub,
	})
	hub.SetFights(fightService)

	log.Println("Campaign server is running. Press CTRL-C to exit.")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := registry.FlushAll(ctx); err != nil {
		log.Printf("Failed to flush maps: %v", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Failed to close Redis client: %v", err)
		}
	}
	log.Println("Shutdown complete.")
}
