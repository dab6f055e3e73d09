package container

import (
	"context"
	"database/sql"
	"fmt"

	auditLogRepo "fieldstock/internal/auditlog"
	"fieldstock/internal/config"
	"fieldstock/internal/inventory/catalog"
	inventorylog "fieldstock/internal/inventory/inventory_log"
	"fieldstock/internal/inventory/ledger"
	"fieldstock/internal/inventory/pools"
	"fieldstock/internal/inventory/requests"
	"fieldstock/internal/inventory/transfers"
	"fieldstock/internal/middleware"
	"fieldstock/internal/repository"
	"fieldstock/internal/repository/memory"
	"fieldstock/pkg/auditlog"
	"fieldstock/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	Registry        *prometheus.Registry
	HTTPMetrics     *metrics.HTTP
	Health          *middleware.Health
	AuditLog        *auditlog.Auditlog
	CatalogHandler  *catalog.CatalogHandler
	PoolHandler     *pools.PoolHandler
	LedgerHandler   *ledger.LedgerHandler
	RequestHandler  *requests.RequestHandler
	TransferHandler *transfers.TransferHandler
	AuditLogHandler *auditLogRepo.AuditLogHandler

	closers []func() error
}

// storage is the set of repositories the services are built on. Postgres
// and the in-memory store both fill it.
type storage struct {
	tx        repository.Transactor
	pools     pools.Repository
	ledger    ledger.Repository
	catalog   catalog.Repository
	requests  requests.Repository
	transfers transfers.TransferRepository
	auditSink auditlog.Sink
	auditRead auditLogRepo.ResourceLogReader
	health    middleware.HealthChecker
}

func postgresStorage(db *sql.DB) storage {
	repo := repository.NewRepository(db)
	auditRepo := auditLogRepo.NewRepository(repo)
	return storage{
		tx:        repo,
		pools:     pools.NewRepository(repo),
		ledger:    ledger.NewRepository(repo),
		catalog:   catalog.NewRepository(repo),
		requests:  requests.NewRepository(repo),
		transfers: transfers.NewRepository(repo),
		auditSink: auditRepo,
		auditRead: auditRepo,
		health:    db.PingContext,
	}
}

func memoryStorage(store *memory.Store) storage {
	return storage{
		tx:        store,
		pools:     store,
		ledger:    store,
		catalog:   store,
		requests:  store,
		transfers: store,
		auditSink: store,
		auditRead: store,
	}
}

// NewAppContainer wires repositories, services and handlers. A nil db
// selects the in-memory store.
func NewAppContainer(ctx context.Context, cfg *config.Config, db *sql.DB, logger *zap.Logger) (*Container, error) {
	var s storage
	if db != nil {
		s = postgresStorage(db)
	} else {
		logger.Warn("Using in-memory storage, state is lost on restart")
		s = memoryStorage(memory.NewStore())
	}

	c := &Container{Config: cfg, Logger: logger}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.HTTPMetrics = metrics.NewHTTP(c.Registry)
	ledgerMetrics := metrics.NewLedger(c.Registry)

	catalogRepo := s.catalog
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, catalog cache will fall back on every read", zap.Error(err))
		}
		catalogRepo = catalog.NewCachedRepository(catalogRepo, client, cfg.Catalog.CacheTTL, logger)
		c.closers = append(c.closers, client.Close)
	}

	sinks := []auditlog.Sink{s.auditSink}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		producer, err := auditLogRepo.NewKafkaProducer(brokers)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to set up Kafka audit sink: %w", err)
		}
		sink := auditLogRepo.NewKafkaSink(producer, cfg.Kafka.AuditTopic, logger)
		sinks = append(sinks, sink)
		c.closers = append(c.closers, sink.Close)
	}
	c.AuditLog = auditlog.NewAuditLog(logger, sinks...)
	log := inventorylog.NewInventoryLog(c.AuditLog)

	cat := catalog.NewCatalog(catalogRepo)
	ledgerService := ledger.NewService(s.tx, s.pools, s.ledger, cat, log, ledgerMetrics, logger)
	requestService := requests.NewService(s.tx, s.pools, s.requests, s.transfers, cat, log, ledgerMetrics, logger)
	transferService := transfers.NewService(s.tx, s.pools, s.transfers, cfg.Legacy.BatchWindow, log, ledgerMetrics, logger)

	c.Health = middleware.NewHealth(s.health, "1.0.0")
	c.CatalogHandler = catalog.NewHandler(cat, logger)
	c.PoolHandler = pools.NewHandler(pools.NewService(s.pools), logger)
	c.LedgerHandler = ledger.NewHandler(ledgerService, logger)
	c.RequestHandler = requests.NewHandler(requestService, logger)
	c.TransferHandler = transfers.NewHandler(transferService, logger)
	c.AuditLogHandler = auditLogRepo.NewHandler(s.auditRead, logger)

	return c, nil
}

// Close releases the optional Redis and Kafka clients.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
