package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/codigix/Furnituredemo/configs"
	"github.com/codigix/Furnituredemo/internal/adapter/cache"
	httpadapter "github.com/codigix/Furnituredemo/internal/adapter/http"
	"github.com/codigix/Furnituredemo/internal/adapter/http/middleware"
	"github.com/codigix/Furnituredemo/internal/adapter/kafka"
	"github.com/codigix/Furnituredemo/internal/adapter/queue"
	"github.com/codigix/Furnituredemo/internal/adapter/repo"
	"github.com/codigix/Furnituredemo/internal/gateway"
	"github.com/codigix/Furnituredemo/internal/logging"
	"github.com/codigix/Furnituredemo/internal/notify"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

type App struct {
	cfg    configs.Config
	router *gin.Engine
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:         a.cfg.App.HTTPAddr,
		Handler:      a.router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}
	return srv.ListenAndServe()
}

// InitWithConfig constructs the whole object graph. The persistence
// gateway is built here and injected down; nothing keeps package
// level connections.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gw, err := gateway.Open(ctx, gateway.PoolConfig{
		DSN:             cfg.MySQL.DSN,
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = gw.Close()
		return nil, nil, err
	}

	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		_ = gw.Close()
		_ = rdb.Close()
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		_ = gw.Close()
		_ = rdb.Close()
		return nil, nil, err
	}

	producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		_ = conn.Close()
		_ = gw.Close()
		_ = rdb.Close()
		return nil, nil, err
	}

	logger.Info("storefront-api: starting up")

	// infra
	orderRepo := repo.NewMySQLOrderRepo(gw)
	productRepo := repo.NewMySQLProductRepo(gw)
	userRepo := repo.NewMySQLUserRepo(gw)
	cartRepo := repo.NewMySQLCartRepo(gw)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisStatusCache(rdb, cfg.Cache.StatusTTL)
	events := kafka.NewEventPublisher(producer, cfg.Kafka.TopicEvents)

	notifier, err := queue.NewRabbitNotifier(ch, logging.New("notify"))
	if err != nil {
		_ = conn.Close()
		_ = gw.Close()
		_ = rdb.Close()
		_ = producer.Close()
		return nil, nil, err
	}

	// mailer worker drains the notification queue
	mailer := notify.NewMailer(notify.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Attempts: cfg.SMTP.Attempts,
		Backoff:  cfg.SMTP.Backoff,
	}, logging.New("mailer"))
	if err := setupMailWorker(ch, mailer); err != nil {
		_ = conn.Close()
		_ = gw.Close()
		_ = rdb.Close()
		_ = producer.Close()
		return nil, nil, err
	}

	// services
	orders := usecase.NewOrders(orderRepo, cartRepo, userRepo, notifier, events, idem, statusCache, logging.New("orders"))
	users := usecase.NewUsers(userRepo)
	products := usecase.NewProducts(productRepo)
	carts := usecase.NewCarts(cartRepo, productRepo)

	// handlers + router
	oh := httpadapter.NewOrderHandler(orders)
	ph := httpadapter.NewProductHandler(products)
	uh := httpadapter.NewUserHandler(users, cfg)
	chh := httpadapter.NewCartHandler(carts)
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(oh, ph, uh, chh, authz)

	cleanup := func() {
		_ = ch.Close()
		_ = conn.Close()
		_ = producer.Close()
		_ = rdb.Close()
		_ = gw.Close()
	}

	return &App{cfg: cfg, router: router}, cleanup, nil
}

func setupMailWorker(ch *amqp.Channel, mailer *notify.Mailer) error {
	h := queue.NewMailJobHandler(mailer, logging.New("mail-worker"))

	router := queue.NewRouter(ch, logging.New("rmq-router"), queue.WithPrefetch(20), queue.WithRequeue(false))
	router.Register(queue.MailQueue, queue.JSONHandler[usecase.MailJob]{HandleFunc: h.HandleMail})

	return router.Start()
}
