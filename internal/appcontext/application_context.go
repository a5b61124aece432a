package appcontext

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/shopcore/internal/config"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/limiter"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/producer"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/relay"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/token"
	"github.com/RoyceAzure/lab/shopcore/internal/logger"
	"github.com/RoyceAzure/lab/shopcore/internal/metrics"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type ApplicationContext struct {
	Cf              *config.Config
	Logger          zerolog.Logger
	Store           *db.UnifiedDBImpl
	RedisClient     *redis.Client
	Idempotency     *redis_repo.IdempotencyRepo
	Producer        producer.Producer
	TokenMaker      token.Maker
	Limiter         limiter.ILimiter
	Metrics         *metrics.ServerMetrics
	CartService     service.ICartService
	CheckoutService service.ICheckoutService
	OrderService    service.IOrderService
	Relay           *relay.OutboxRelay
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	if cf == nil {
		return nil, config.ErrInvalidConfig
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		// 已建立的連線要釋放
		app.Shutdown(context.Background())
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpLogger,
		app.setUpDb,
		app.setUpRedis,
		app.setUpIdempotency,
		app.setUpProducer,
		app.setUpTokenMaker,
		app.setUpLimiter,
		app.setUpMetrics,
		app.setUpServices,
		app.setUpRelay,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (app *ApplicationContext) setUpLogger() error {
	app.Logger = logger.New(app.Cf.Env, app.Cf.LogLevel)
	app.Logger.Info().
		Str("server_port", app.Cf.ServerPort).
		Str("db_host", app.Cf.DbHost).
		Str("redis_addr", app.Cf.RedisAddr).
		Strs("kafka_brokers", app.Cf.KafkaBrokers).
		Str("order_topic", app.Cf.KafkaOrderTopic).
		Bool("checkout_verify_total", app.Cf.CheckoutVerifyTotal).
		Msg("config loaded")
	return nil
}

func (app *ApplicationContext) setUpDb() error {
	app.Logger.Info().Msg("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.Store = db.NewUnifiedDB(conn)
	if err := app.Store.InitMigrate(); err != nil {
		return err
	}
	app.Logger.Info().Msg("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	app.Logger.Info().Msg("Start setup redis client")
	app.RedisClient = redis.NewClient(&redis.Options{
		Addr:     app.Cf.RedisAddr,
		Password: app.Cf.RedisPassword,
		DB:       app.Cf.RedisDB,
	})
	if err := app.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}
	app.Logger.Info().Msg("Finish setup redis client")
	return nil
}

func (app *ApplicationContext) setUpIdempotency() error {
	app.Logger.Info().Msg("Start setup idempotency store")
	app.Idempotency = redis_repo.NewIdempotencyRepo(app.RedisClient, app.Cf.IdempotencyTTL, app.Cf.IdempotencyPendingTTL)
	app.Logger.Info().Msg("Finish setup idempotency store")
	return nil
}

func (app *ApplicationContext) setUpProducer() error {
	app.Logger.Info().Msg("Start setup kafka producer")
	p, err := producer.New(producer.Config{Brokers: app.Cf.KafkaBrokers}, app.Logger)
	if err != nil {
		return err
	}
	app.Producer = p
	app.Logger.Info().Msg("Finish setup kafka producer")
	return nil
}

func (app *ApplicationContext) setUpTokenMaker() error {
	app.Logger.Info().Msg("Start setup token maker")
	maker, err := token.NewJWTMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return err
	}
	app.TokenMaker = maker
	app.Logger.Info().Msg("Finish setup token maker")
	return nil
}

func (app *ApplicationContext) setUpLimiter() error {
	app.Logger.Info().Msg("Start setup rate limiter")
	app.Limiter = limiter.NewRsTokenBucket(app.RedisClient, &limiter.LimiterConfig{
		Capacity: app.Cf.RateLimitCapacity,
		RatePS:   app.Cf.RateLimitRatePS,
	}, app.Logger)
	app.Logger.Info().Msg("Finish setup rate limiter")
	return nil
}

func (app *ApplicationContext) setUpMetrics() error {
	app.Logger.Info().Msg("Start setup metrics")
	app.Metrics = metrics.NewServerMetrics(prometheus.NewRegistry())
	app.Logger.Info().Msg("Finish setup metrics")
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	app.Logger.Info().Msg("Start setup services")
	app.CartService = service.NewCartService(app.Store, service.NewCatalogReader(app.Store), app.Logger)
	app.CheckoutService = service.NewCheckoutService(app.Store, app.Logger,
		service.WithIdempotencyStore(app.Idempotency),
		service.WithCheckoutPolicy(service.CheckoutPolicy{VerifyTotal: app.Cf.CheckoutVerifyTotal}),
		service.WithOrderTopic(app.Cf.KafkaOrderTopic),
	)
	app.OrderService = service.NewOrderService(app.Store, app.Cf.KafkaOrderTopic, app.Logger)
	app.Logger.Info().Msg("Finish setup services")
	return nil
}

func (app *ApplicationContext) setUpRelay() error {
	app.Logger.Info().Msg("Start setup outbox relay")
	app.Relay = relay.NewOutboxRelay(app.Store, app.Producer, app.Cf.OutboxPollInterval, app.Cf.OutboxBatchSize, app.Logger)
	app.Logger.Info().Msg("Finish setup outbox relay")
	return nil
}

// Shutdown 依建立的反向順序關閉, 回傳所有錯誤
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	var errs []error
	if app.Producer != nil {
		if err := app.Producer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.Store != nil {
		if sqlDB, err := app.Store.GetDB().DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
