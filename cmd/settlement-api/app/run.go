package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/RishiBuilds/soledrip-xr-platform/configs"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/cache"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/email"
	apihttp "github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/http"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/http/middleware"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/kafka"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/payment"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/queue"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/adapter/repo"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/logging"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)
	logger.Info("settlement-api: starting up")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	cancel()

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// provider clients, constructed once from config (no ambient state)
	provider := payment.NewStripeProvider(cfg.Stripe.SecretKey)
	var notifier *usecase.ConfirmOrder
	if cfg.Resend.APIKey != "" {
		sender := email.NewResendSender(cfg.Resend.APIKey, cfg.Resend.From)
		notifier = usecase.NewConfirmOrder(sender)
	} else {
		logger.Warn("resend api key not set; confirmation emails disabled")
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisCache(rdb, cfg.Cache.TTL)
	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// use cases
	verifyUC := usecase.NewVerifyOrder(provider, orderRepo, idem, notifier, producer)
	checkoutUC := usecase.NewCreateCheckout(provider, idem, cfg.Checkout.SuccessURL, cfg.Checkout.CancelURL)

	// reconciliation worker
	setupQueue(ch, provider, orderRepo, notifier)

	// back-office status feed
	setupKafkaListener(cfg, orderRepo, statusCache)

	// handlers + router + middleware
	h := apihttp.NewSettlementHandler(verifyUC, checkoutUC, orderRepo)
	wh := apihttp.NewWebhookHandler(verifyUC, cfg.Stripe.WebhookSecret)
	th := apihttp.NewTokenHandler(cfg)
	auth := middleware.NewAuthz(cfg)
	router := apihttp.NewRouter(h, wh, th, auth)

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
		_ = ch.Close()
		_ = conn.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel, provider usecase.CheckoutProvider, orderRepo usecase.OrderRepo, notifier *usecase.ConfirmOrder) {
	h := queue.NewReconcileHandler(provider, orderRepo, notifier)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(queue.ReconcileQueueName, queue.JSONHandler[usecase.ReconcileMsg]{HandleFunc: h.HandleReconcile})

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(cfg configs.Config, orderRepo usecase.OrderRepo, statusCache usecase.OrderCache) {
	if len(cfg.Kafka.Brokers) == 0 {
		logging.New("kafka").Warn("no kafka brokers configured; status feed disabled")
		return
	}
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		panic(err)
	}

	h := kafka.NewOrderStatusChangedHandler(orderRepo, statusCache)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.StatusTopic}, h.Handle)
	consumer.Logger = logging.New("kafka")

	go func() {
		if err := consumer.Start(context.Background()); err != nil && err != context.Canceled {
			logging.New("kafka").Error("status consumer stopped", "error", err.Error())
		}
	}()
}
