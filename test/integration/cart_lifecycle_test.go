package integration

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/vladislavdragonenkov/foodtuck/internal/cart"
	"github.com/vladislavdragonenkov/foodtuck/internal/catalog"
	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	grpcsvc "github.com/vladislavdragonenkov/foodtuck/internal/service/grpc"
	"github.com/vladislavdragonenkov/foodtuck/internal/service/idempotency"
	"github.com/vladislavdragonenkov/foodtuck/internal/service/outbox"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/file"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/memory"
	foodtuckv1 "github.com/vladislavdragonenkov/foodtuck/proto/foodtuck/v1"
)

const catalogSeed = "../../configs/catalog.yaml"

// recordingPublisher запоминает опубликованные события по порядку.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OutboxMessage
}

func (p *recordingPublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []domain.OutboxMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OutboxMessage(nil), p.events...)
}

// CartLifecycleTestSuite прогоняет корзину через gRPC-сервис, файловое
// хранилище, idempotency guard и outbox до публикации событий.
type CartLifecycleTestSuite struct {
	suite.Suite
	logger    *log.Entry
	dir       string
	products  catalog.Repository
	outbox    domain.OutboxRepository
	publisher *recordingPublisher
	worker    *outbox.Worker
	service   *grpcsvc.CartService
}

func (suite *CartLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	suite.logger = baseLogger.WithField("component", "integration-test")

	products, err := catalog.NewMemoryRepositoryFromFile(catalogSeed)
	require.NoError(suite.T(), err)
	suite.products = products

	suite.dir = suite.T().TempDir()
	suite.outbox = memory.NewOutboxRepository()
	suite.publisher = &recordingPublisher{}
	suite.worker = outbox.NewWorker(suite.outbox, suite.publisher, outbox.WithLogger(suite.logger))
	suite.service = suite.newService()
}

// newService собирает сервис поверх того же каталога файлов, как после рестарта процесса.
func (suite *CartLifecycleTestSuite) newService() *grpcsvc.CartService {
	storage, err := file.NewCartStorage(suite.dir)
	require.NoError(suite.T(), err)

	carts := cart.NewRegistry(storage, suite.logger, nil, cart.WithEventSink(outbox.NewCartEventSink(suite.outbox)))
	guard := idempotency.NewGuard(memory.NewIdempotencyRepository(), idempotency.WithGuardLogger(suite.logger))
	return grpcsvc.NewCartService(carts, suite.products, guard, suite.logger)
}

func sessionCtx(session string, pairs ...string) context.Context {
	md := metadata.Pairs(append([]string{"x-session-id", session}, pairs...)...)
	return metadata.NewIncomingContext(context.Background(), md)
}

func (suite *CartLifecycleTestSuite) TestCartLifecycle() {
	ctx := sessionCtx("browser-1")

	// 1. Две пиццы и лимонад из каталога
	resp, err := suite.service.AddProduct(ctx, &foodtuckv1.AddProductRequest{ProductId: "food-margherita", Quantity: 2})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "19", resp.GetCart().GetTotalPrice())

	resp, err = suite.service.AddProduct(ctx, &foodtuckv1.AddProductRequest{ProductId: "food-fresh-lime"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int32(3), resp.GetCart().GetTotalItems())

	// 2. Меняем количества
	_, err = suite.service.IncrementQuantity(ctx, &foodtuckv1.ItemRequest{Id: "food-fresh-lime"})
	require.NoError(suite.T(), err)
	resp, err = suite.service.DecrementQuantity(ctx, &foodtuckv1.ItemRequest{Id: "food-margherita"})
	require.NoError(suite.T(), err)

	cartState := resp.GetCart()
	require.Equal(suite.T(), int32(3), cartState.GetTotalItems())
	require.Equal(suite.T(), "12.5", cartState.GetTotalPrice())
	require.True(suite.T(), cartState.GetPersisted())
	require.Len(suite.T(), cartState.GetItems(), 2)
	require.Equal(suite.T(), "food-margherita", cartState.GetItems()[0].GetId())

	// 3. Outbox публикует события в порядке мутаций
	suite.worker.ProcessOnce(context.Background())

	events := suite.publisher.Events()
	types := make([]string, 0, len(events))
	for _, event := range events {
		require.Equal(suite.T(), outbox.AggregateCart, event.AggregateType)
		require.Equal(suite.T(), cart.StorageKey("browser-1"), event.AggregateID)
		types = append(types, event.EventType)
	}
	require.Equal(suite.T(), []string{
		string(domain.CartEventItemAdded),
		string(domain.CartEventItemAdded),
		string(domain.CartEventQuantityChanged),
		string(domain.CartEventQuantityChanged),
	}, types)

	var last domain.CartEvent
	require.NoError(suite.T(), json.Unmarshal(events[len(events)-1].Payload, &last))
	require.Equal(suite.T(), "food-margherita", last.ItemID)
	require.Equal(suite.T(), 1, last.Quantity)
	require.Equal(suite.T(), "12.5", last.TotalPrice.String())

	stats, err := suite.outbox.Stats()
	require.NoError(suite.T(), err)
	require.Zero(suite.T(), stats.PendingCount)
}

func (suite *CartLifecycleTestSuite) TestCartRestoredAfterRestart() {
	ctx := sessionCtx("browser-restart")

	_, err := suite.service.AddProduct(ctx, &foodtuckv1.AddProductRequest{ProductId: "food-caesar-salad"})
	require.NoError(suite.T(), err)
	_, err = suite.service.AddProduct(ctx, &foodtuckv1.AddProductRequest{ProductId: "food-chocolate-muffin", Quantity: 2})
	require.NoError(suite.T(), err)

	restarted := suite.newService()
	resp, err := restarted.GetCart(ctx, &emptypb.Empty{})
	require.NoError(suite.T(), err)

	cartState := resp.GetCart()
	require.Equal(suite.T(), int32(3), cartState.GetTotalItems())
	require.Equal(suite.T(), "15.5", cartState.GetTotalPrice())
	require.Equal(suite.T(), "food-caesar-salad", cartState.GetItems()[0].GetId())
	require.True(suite.T(), cartState.GetPersisted())
}

func (suite *CartLifecycleTestSuite) TestIdempotentAddIsAppliedOnce() {
	ctx := sessionCtx("browser-retry", "idempotency-key", "add-1")
	req := &foodtuckv1.AddProductRequest{ProductId: "food-burger-classic"}

	first, err := suite.service.AddProduct(ctx, req)
	require.NoError(suite.T(), err)
	second, err := suite.service.AddProduct(ctx, req)
	require.NoError(suite.T(), err)

	require.Equal(suite.T(), first.GetCart().GetTotalItems(), second.GetCart().GetTotalItems())
	require.Equal(suite.T(), int32(1), second.GetCart().GetTotalItems())

	// Тот же ключ с другим телом отклоняется
	_, err = suite.service.AddProduct(ctx, &foodtuckv1.AddProductRequest{ProductId: "food-margherita"})
	require.Equal(suite.T(), codes.FailedPrecondition, status.Code(err))

	suite.worker.ProcessOnce(context.Background())
	require.Len(suite.T(), suite.publisher.Events(), 1)
}

func (suite *CartLifecycleTestSuite) TestSessionsAreIsolated() {
	_, err := suite.service.AddProduct(sessionCtx("browser-a"), &foodtuckv1.AddProductRequest{ProductId: "food-margherita"})
	require.NoError(suite.T(), err)

	resp, err := suite.service.GetCart(sessionCtx("browser-b"), &emptypb.Empty{})
	require.NoError(suite.T(), err)
	require.Zero(suite.T(), resp.GetCart().GetTotalItems())
	require.Equal(suite.T(), "0", resp.GetCart().GetTotalPrice())

	resp, err = suite.service.ClearCart(sessionCtx("browser-a"), &emptypb.Empty{})
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), resp.GetCart().GetItems())
}

func (suite *CartLifecycleTestSuite) TestErrors() {
	_, err := suite.service.GetCart(context.Background(), &emptypb.Empty{})
	require.Equal(suite.T(), codes.InvalidArgument, status.Code(err))

	_, err = suite.service.AddProduct(sessionCtx("browser-err"), &foodtuckv1.AddProductRequest{ProductId: "food-unknown"})
	require.Equal(suite.T(), codes.NotFound, status.Code(err))

	resp, err := suite.service.RemoveFromCart(sessionCtx("browser-err"), &foodtuckv1.ItemRequest{Id: "food-unknown"})
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), resp.GetCart().GetItems())

	suite.worker.ProcessOnce(context.Background())
	require.Empty(suite.T(), suite.publisher.Events())
}

func TestCartLifecycleSuite(t *testing.T) {
	suite.Run(t, new(CartLifecycleTestSuite))
}
