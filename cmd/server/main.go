package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/booking-api/internal/config"
	"github.com/careconnect/booking-api/internal/database"
	"github.com/careconnect/booking-api/internal/handler"
	"github.com/careconnect/booking-api/internal/queue"
	"github.com/careconnect/booking-api/internal/repository"
	"github.com/careconnect/booking-api/internal/router"
	"github.com/careconnect/booking-api/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// storage: MySQL when configured, in-memory otherwise
	var store repository.Store
	if cfg.UseDatabase() {
		db, err := database.Open(database.Params{
			User: cfg.DBUser, Pass: cfg.DBPass,
			Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		})
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		defer db.Close()
		store = repository.NewMySQLStore(db)
		log.Println("connected to mysql")
	} else {
		store = repository.NewMemoryStore()
		log.Println("DB_HOST not set; using in-memory store")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// notification consumer runs for the whole process lifetime
	go queue.StartNotificationConsumer()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:          cfg,
		Store:        store,
		Redis:        rdb,
		Users:        handler.NewUserHandler(store, cfg.RequestTimeout),
		Appointments: handler.NewAppointmentHandler(store, &service.EventPublisher{}, cfg.RequestTimeout),
		Availability: handler.NewAvailabilityHandler(store, cfg.RequestTimeout),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
