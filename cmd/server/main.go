package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/config"
	"github.com/evolvehq/studyspace/internal/database"
	"github.com/evolvehq/studyspace/internal/handler"
	"github.com/evolvehq/studyspace/internal/queue"
	"github.com/evolvehq/studyspace/internal/repository"
	"github.com/evolvehq/studyspace/internal/router"
	"github.com/evolvehq/studyspace/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	members := repository.NewMemberRepo(db)
	seats := repository.NewSeatRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	payments := repository.NewPaymentRepo(db)
	waiting := repository.NewWaitingRepo(db)
	expenses := repository.NewExpenseRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	settings := repository.NewSettingRepo(db)
	logs := repository.NewLogRepo(db)
	notifications := repository.NewNotificationRepo(db)
	locations := repository.NewLocationRepo(db)
	counters := repository.NewCounterRepo(db)

	var events service.EventPublisher
	if p := service.NewAMQPPublisher(cfg.AMQPURL); p != nil {
		events = p
		go queue.StartLifecycleConsumer(cfg.AMQPURL, notifications)
	} else {
		log.Println("rabbitmq disabled; lifecycle events will not be published")
	}

	lifecycle := service.NewLifecycle(seats, subs, payments, waiting, counters, logs, events)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.API{
		Cfg:           cfg,
		Redis:         rdb,
		Health:        handler.NewHealthHandler(db),
		Init:          handler.NewInitHandler(cfg, seats, users, locations),
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Members:       handler.NewMemberHandler(members, counters, users, logs),
		Seats:         handler.NewSeatHandler(seats),
		Subscriptions: handler.NewSubscriptionHandler(lifecycle, subs, payments, members, locations, users),
		Waiting:       handler.NewWaitingHandler(waiting, members, users, logs),
		Verify:        handler.NewVerifyHandler(members, subs, seats, locations),
		Expenses:      handler.NewExpenseHandler(expenses, users, logs),
		Settings:      handler.NewSettingHandler(settings, users, logs),
		Logs:          handler.NewLogHandler(logs),
		Users:         handler.NewUserHandler(cfg, users, tokens, logs),
		Notifications: handler.NewNotificationHandler(notifications),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
