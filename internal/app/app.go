// Package app собирает сервис корзины: хранилища, gRPC, HTTP-пробы и фоновые воркеры.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/foodtuck/internal/account"
	"github.com/vladislavdragonenkov/foodtuck/internal/cart"
	"github.com/vladislavdragonenkov/foodtuck/internal/catalog"
	"github.com/vladislavdragonenkov/foodtuck/internal/health"
	"github.com/vladislavdragonenkov/foodtuck/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/foodtuck/internal/metrics"
	grpcsvc "github.com/vladislavdragonenkov/foodtuck/internal/service/grpc"
	"github.com/vladislavdragonenkov/foodtuck/internal/service/idempotency"
	"github.com/vladislavdragonenkov/foodtuck/internal/service/outbox"
	"github.com/vladislavdragonenkov/foodtuck/internal/version"
	foodtuckv1 "github.com/vladislavdragonenkov/foodtuck/proto/foodtuck/v1"
)

const shutdownTimeout = 5 * time.Second

// Run запускает сервис и блокируется до отмены ctx или ошибки одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		return err
	}
	defer deps.close(logger)

	products, err := loadCatalog(cfg.CatalogSeedPath, logger)
	if err != nil {
		return err
	}

	cartMetrics := metrics.NewCartMetrics()
	outboxMetrics := metrics.NewOutboxMetrics()
	idempotencyMetrics := metrics.NewIdempotencyMetrics()

	// Без Kafka сервис работает дальше, но события корзины не пишутся в outbox.
	producer, _ := initKafkaProducer(cfg, logger)
	defer closeKafka(producer, logger)

	cartOptions := []cart.Option{cart.WithPersistTimeout(cfg.CartPersistTimeout)}
	if producer != nil {
		cartOptions = append(cartOptions, cart.WithEventSink(outbox.NewCartEventSink(deps.outboxRepo)))
	}
	registry := cart.NewRegistry(deps.cartStorage, logger.WithField("component", "cart-registry"), cartMetrics, cartOptions...)

	guard := idempotency.NewGuard(deps.idempotencyRepo,
		idempotency.WithGuardLogger(logger.WithField("component", "idempotency")),
		idempotency.WithTTL(cfg.IdempotencyTTL),
		idempotency.WithGuardMetrics(idempotencyMetrics),
	)
	accounts := account.NewService(deps.users, account.DefaultBcryptCost, logger.WithField("component", "account"))

	serviceLogger := logger.WithField("layer", "grpc")
	grpcServer, healthServer := newGRPCServer(
		grpcsvc.NewCartService(registry, products, guard, serviceLogger),
		grpcsvc.NewCatalogService(products, serviceLogger),
		grpcsvc.NewAccountService(accounts, serviceLogger),
		logger,
	)

	healthHandler := newHealthHandler(products, deps)
	httpServer := &http.Server{
		Handler:           newHTTPMux(healthHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}
	httpLis, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("listen metrics %s: %w", cfg.MetricsAddr, err)
	}

	var consumer *kafka.Consumer
	if producer != nil {
		consumer, err = initCatalogConsumer(cfg, products, producer, logger)
		if err != nil {
			logger.WithError(err).Warn("failed to create catalog consumer, catalog updates disabled")
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("gRPC сервер слушает %s", grpcLis.Addr())
		if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Infof("метрики и health checks доступны по адресу %s", httpLis.Addr())
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	cleanup := idempotency.NewCleanupWorker(deps.idempotencyRepo,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
		idempotency.WithMetrics(idempotencyMetrics),
	)
	g.Go(func() error {
		cleanup.Run(gctx)
		return nil
	})

	eviction := cart.NewEvictionWorker(registry,
		cart.WithEvictionLogger(logger.WithField("component", "cart-eviction")),
		cart.WithEvictionInterval(cfg.CartEvictInterval),
		cart.WithIdleTTL(cfg.CartIdleTTL),
	)
	g.Go(func() error {
		eviction.Run(gctx)
		return nil
	})

	if producer != nil {
		worker := outbox.NewWorker(deps.outboxRepo, kafka.NewOutboxPublisher(producer, cfg.KafkaCartEventsTopic),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
			outbox.WithMetrics(outboxMetrics),
		)
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}

	if consumer != nil {
		if err := consumer.Start(gctx); err != nil {
			logger.WithError(err).Warn("failed to start catalog consumer")
			consumer = nil
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")

		healthServer.Shutdown()
		stopGRPC(grpcServer, logger)
		shutdownHTTP(httpServer, logger)
		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				logger.WithError(err).Warn("failed to stop catalog consumer")
			}
		}
		return nil
	})

	err = g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// loadCatalog читает сид каталога; пустой путь даёт пустой каталог,
// который наполняется через топик обновлений.
func loadCatalog(path string, logger *log.Entry) (*catalog.MemoryRepository, error) {
	if strings.TrimSpace(path) == "" {
		logger.Warn("catalog seed path is empty, starting with empty catalog")
		return catalog.NewMemoryRepository(nil, nil), nil
	}

	repo, err := catalog.NewMemoryRepositoryFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog seed: %w", err)
	}
	logger.WithField("path", path).Info("catalog seed loaded")
	return repo, nil
}

// newGRPCServer регистрирует сервисы, метрики, health и reflection.
func newGRPCServer(
	carts foodtuckv1.CartServiceServer,
	catalogSvc foodtuckv1.CatalogServiceServer,
	accounts foodtuckv1.AccountServiceServer,
	logger *log.Entry,
) (*grpc.Server, *grpchealth.Server) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*promgrpc.ServerMetrics); ok2 {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	foodtuckv1.RegisterCartServiceServer(server, carts)
	foodtuckv1.RegisterCatalogServiceServer(server, catalogSvc)
	foodtuckv1.RegisterAccountServiceServer(server, accounts)
	grpcMetrics.InitializeMetrics(server)

	reflection.Register(server)

	healthServer := grpchealth.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range []string{
		foodtuckv1.CartService_ServiceDesc.ServiceName,
		foodtuckv1.CatalogService_ServiceDesc.ServiceName,
		foodtuckv1.AccountService_ServiceDesc.ServiceName,
	} {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	return server, healthServer
}

// newHealthHandler: каталог критичен для готовности, хранилище корзин нет,
// потому что корзина продолжает работать в памяти.
func newHealthHandler(products catalog.Repository, deps *runtimeDependencies) *health.Handler {
	handler := health.NewHandler(version.GetVersion())
	handler.RegisterChecker("catalog", health.NewPingChecker("catalog", health.PingFunc(func(ctx context.Context) error {
		_, err := products.ListProducts(ctx)
		return err
	}), 0, true))
	if deps.storagePinger != nil {
		handler.RegisterChecker("cart-storage", health.NewPingChecker("cart-storage", deps.storagePinger, 0, false))
	}
	return handler
}

func newHTTPMux(healthHandler *health.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	return mux
}

func stopGRPC(server *grpc.Server, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
