package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/config"
	orderControllers "github.com/junaidrashid-git/fashionshop-api/controllers/order"
	"github.com/junaidrashid-git/fashionshop-api/events"
	"github.com/junaidrashid-git/fashionshop-api/idempotency"
	"github.com/junaidrashid-git/fashionshop-api/metrics"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"github.com/junaidrashid-git/fashionshop-api/routes"
	"github.com/junaidrashid-git/fashionshop-api/vnpay"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	cfg := config.Load()

	// Init DB
	db := initDatabase(cfg)

	// Auto-migrate all tables
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Order events: live admin feed, plus Kafka when brokers are configured
	hub := orderControllers.NewHub()
	publishers := events.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("❌ Kafka publisher setup failed: %v", err)
		}
		defer kafkaPub.Close()
		publishers = append(publishers, kafkaPub)
		log.Printf("📦 Publishing order events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}

	// Idempotency keys need Redis; without it checkout runs without replay protection
	var idem *idempotency.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️ Redis at %s unreachable, idempotency keys disabled: %v", cfg.RedisAddr, err)
		} else {
			idem = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
		}
		defer rdb.Close()
	}

	m := metrics.New()

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", idempotency.HeaderName},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(m.Middleware())

	// Setup routes
	routes.SetupRoutes(r, routes.NewDeps(db, cfg, publishers, m, hub, idem))

	// Fail bank transfers nobody finished
	go vnpay.NewSweeper(db, cfg.SweepInterval, cfg.SweepGrace, publishers, m).Run(ctx)

	// Start server
	log.Printf("🚀 Server running on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase(cfg config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	return db
}
