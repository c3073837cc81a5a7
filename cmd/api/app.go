package main

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/config"
	"github.com/MrJamesThe3rd/buildestimate/internal/conversion"
	conversionStore "github.com/MrJamesThe3rd/buildestimate/internal/conversion/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/database"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	estimateStore "github.com/MrJamesThe3rd/buildestimate/internal/estimate/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/event"
	"github.com/MrJamesThe3rd/buildestimate/internal/export"
	"github.com/MrJamesThe3rd/buildestimate/internal/importer"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/buildestimate/internal/invoice/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/lock"
	"github.com/MrJamesThe3rd/buildestimate/internal/logger"
	"github.com/MrJamesThe3rd/buildestimate/internal/sequence"
	sequenceStore "github.com/MrJamesThe3rd/buildestimate/internal/sequence/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/stats"
	statsStore "github.com/MrJamesThe3rd/buildestimate/internal/stats/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/unit"
	unitStore "github.com/MrJamesThe3rd/buildestimate/internal/unit/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
	userStore "github.com/MrJamesThe3rd/buildestimate/internal/user/store"
)

const eventQueueSize = 256

// app holds every service built from the configuration.
type app struct {
	db    *sql.DB
	redis *redis.Client

	dispatcher   *event.Dispatcher
	running      bool
	pubsubClient *pubsub.Client
	pubsub       *event.PubSubSink

	tokens      *auth.Tokens
	users       *user.Service
	units       *unit.Service
	estimates   *estimate.Service
	invoices    *invoice.Service
	conversions *conversion.Service
	imports     *importer.Service
	exports     *export.Service
	stats       *stats.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	a := &app{db: db}

	document.RegisterUnits(cfg.Units.Extra)

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
	}

	sinks := []event.Sink{event.NewLogSink(logger.WithComponent("events"))}

	if cfg.PubSub.ProjectID != "" && cfg.PubSub.Topic != "" {
		var opts []option.ClientOption
		if cfg.PubSub.CredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.PubSub.CredentialsJSON)))
		}

		client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("creating pubsub client: %w", err)
		}

		a.pubsubClient = client
		a.pubsub = event.NewPubSubSink(client, cfg.PubSub.Topic)
		sinks = append(sinks, a.pubsub)
	}

	a.dispatcher = event.NewDispatcher(logger.WithComponent("dispatcher"), eventQueueSize, sinks...)

	var locker conversion.Locker = lock.Noop{}
	if a.redis != nil {
		locker = lock.NewRedis(a.redis)
	}

	var cache stats.Cache
	if a.redis != nil {
		cache = stats.NewRedisCache(a.redis)
	}

	numbers := sequence.NewService(sequenceStore.New(db))

	a.tokens = auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	a.users = user.NewService(userStore.New(db), a.tokens, cfg.Phone.Region)
	a.units = unit.NewService(unitStore.New(db))
	a.estimates = estimate.NewService(estimateStore.New(db), numbers, a.users, a.dispatcher)
	a.invoices = invoice.NewService(invoiceStore.New(db), numbers, a.users, a.dispatcher, invoice.Config{
		DefaultDueIn: cfg.DefaultDueIn(),
		UPIID:        cfg.Payment.UPIID,
		MerchantName: cfg.Payment.MerchantName,
	})
	a.conversions = conversion.NewService(
		conversionStore.New(db),
		numbers,
		locker,
		a.dispatcher,
		cfg.DefaultDueIn(),
		logger.WithComponent("conversion"),
	)
	a.imports = importer.NewService(a.units)
	a.exports = export.NewService(a.invoices)
	a.stats = stats.NewService(statsStore.New(db), cache, logger.WithComponent("stats"))

	return a, nil
}

// runEvents starts the dispatcher worker. Cancel ctx and call a.close to
// drain it.
func (a *app) runEvents(ctx context.Context) {
	a.running = true
	go a.dispatcher.Run(ctx)
}

func (a *app) close() {
	log := logger.WithComponent("app")

	if a.running {
		a.dispatcher.Wait()
	}

	if a.pubsub != nil {
		a.pubsub.Stop()
		closeLogged(log, "pubsub", a.pubsubClient.Close)
	}

	if a.redis != nil {
		closeLogged(log, "redis", a.redis.Close)
	}

	closeLogged(log, "database", a.db.Close)
}

func closeLogged(log zerolog.Logger, what string, fn func() error) {
	if err := fn(); err != nil {
		log.Warn().Err(err).Str("resource", what).Msg("close failed")
	}
}
