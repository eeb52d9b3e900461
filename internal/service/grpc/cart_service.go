// Package grpcsvc реализует gRPC API витрины поверх корзин, каталога и аккаунтов.
package grpcsvc

import (
	"context"
	"encoding/json"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/vladislavdragonenkov/foodtuck/internal/cart"
	"github.com/vladislavdragonenkov/foodtuck/internal/catalog"
	"github.com/vladislavdragonenkov/foodtuck/internal/service/idempotency"
	foodtuckv1 "github.com/vladislavdragonenkov/foodtuck/proto/foodtuck/v1"
)

// CartService отдаёт корзину сессии из x-session-id.
type CartService struct {
	foodtuckv1.UnimplementedCartServiceServer

	carts   *cart.Registry
	catalog catalog.Repository
	guard   *idempotency.Guard
	logger  *log.Entry
}

// NewCartService конструирует сервис. guard == nil отключает idempotency-key.
func NewCartService(carts *cart.Registry, products catalog.Repository, guard *idempotency.Guard, logger *log.Entry) *CartService {
	if logger == nil {
		logger = log.WithField("component", "cart-service")
	}
	return &CartService{
		carts:   carts,
		catalog: products,
		guard:   guard,
		logger:  logger,
	}
}

// AddToCart добавляет позицию, переданную клиентом целиком. Превышение
// cart.MaxTotalItems отклоняется с InvalidArgument.
func (s *CartService) AddToCart(ctx context.Context, req *foodtuckv1.AddToCartRequest) (*foodtuckv1.CartResponse, error) {
	item, err := toDomainItem(req.GetItem())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return s.mutate(ctx, foodtuckv1.CartService_AddToCart_FullMethodName, req, func(store *cart.Store) (cart.Snapshot, error) {
		return store.TryAddToCart(ctx, item)
	})
}

// AddProduct добавляет товар каталога: name, price и первое изображение берутся из каталога.
func (s *CartService) AddProduct(ctx context.Context, req *foodtuckv1.AddProductRequest) (*foodtuckv1.CartResponse, error) {
	productID := strings.TrimSpace(req.GetProductId())
	if productID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	quantity := 1
	if req.Quantity != 0 {
		quantity = int(req.Quantity)
	}
	if quantity < 1 {
		return nil, status.Error(codes.InvalidArgument, "quantity must be > 0")
	}

	return s.mutate(ctx, foodtuckv1.CartService_AddProduct_FullMethodName, req, func(store *cart.Store) (cart.Snapshot, error) {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return cart.Snapshot{}, err
		}
		return store.TryAddToCart(ctx, product.ToCartItem(quantity))
	})
}

// RemoveFromCart удаляет позицию; неизвестный id не меняет корзину.
func (s *CartService) RemoveFromCart(ctx context.Context, req *foodtuckv1.ItemRequest) (*foodtuckv1.CartResponse, error) {
	id, err := itemID(req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, foodtuckv1.CartService_RemoveFromCart_FullMethodName, req, func(store *cart.Store) (cart.Snapshot, error) {
		return store.RemoveFromCart(ctx, id), nil
	})
}

// IncrementQuantity увеличивает количество позиции на 1.
func (s *CartService) IncrementQuantity(ctx context.Context, req *foodtuckv1.ItemRequest) (*foodtuckv1.CartResponse, error) {
	id, err := itemID(req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, foodtuckv1.CartService_IncrementQuantity_FullMethodName, req, func(store *cart.Store) (cart.Snapshot, error) {
		return store.TryIncrementQuantity(ctx, id)
	})
}

// DecrementQuantity уменьшает количество; позиция с количеством 1 удаляется.
func (s *CartService) DecrementQuantity(ctx context.Context, req *foodtuckv1.ItemRequest) (*foodtuckv1.CartResponse, error) {
	id, err := itemID(req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, foodtuckv1.CartService_DecrementQuantity_FullMethodName, req, func(store *cart.Store) (cart.Snapshot, error) {
		return store.DecrementQuantity(ctx, id), nil
	})
}

// ClearCart очищает корзину.
func (s *CartService) ClearCart(ctx context.Context, _ *emptypb.Empty) (*foodtuckv1.CartResponse, error) {
	return s.mutate(ctx, foodtuckv1.CartService_ClearCart_FullMethodName, struct{}{}, func(store *cart.Store) (cart.Snapshot, error) {
		return store.ClearCart(ctx), nil
	})
}

// GetCart возвращает текущее состояние корзины.
func (s *CartService) GetCart(ctx context.Context, _ *emptypb.Empty) (*foodtuckv1.CartResponse, error) {
	store, err := s.carts.Get(ctx, sessionID(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &foodtuckv1.CartResponse{Cart: toProtoCart(store.Snapshot())}, nil
}

func itemID(req *foodtuckv1.ItemRequest) (string, error) {
	id := strings.TrimSpace(req.GetId())
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "id is required")
	}
	return id, nil
}

// mutate применяет мутацию к корзине сессии. При наличии idempotency-key
// повтор того же запроса получает сохранённый ответ без повторной мутации.
func (s *CartService) mutate(
	ctx context.Context,
	method string,
	req any,
	apply func(store *cart.Store) (cart.Snapshot, error),
) (*foodtuckv1.CartResponse, error) {
	session := sessionID(ctx)
	store, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, toStatus(err)
	}

	run := func() (*foodtuckv1.CartResponse, error) {
		snapshot, err := apply(store)
		if err != nil {
			return nil, err
		}
		return &foodtuckv1.CartResponse{Cart: toProtoCart(snapshot)}, nil
	}

	key := idempotencyKey(ctx)
	if key == "" || s.guard == nil {
		resp, err := run()
		return resp, toStatus(err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		s.logger.WithError(err).WithField("method", method).Warn("failed to build idempotency request hash")
		return nil, status.Error(codes.Internal, "failed to initialize idempotency request")
	}

	var resp *foodtuckv1.CartResponse
	result, err := s.guard.Do(
		session+":"+key,
		idempotency.RequestHash([]byte(method), body),
		func() ([]byte, error) {
			r, err := run()
			if err != nil {
				return nil, err
			}
			resp = r
			return json.Marshal(r)
		},
		statusCodeOf,
	)
	if err != nil {
		return nil, toStatus(err)
	}
	if !result.Replayed {
		return resp, nil
	}

	replayed := &foodtuckv1.CartResponse{}
	if err := json.Unmarshal(result.Body, replayed); err != nil {
		s.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to decode cached idempotency response")
		return nil, status.Error(codes.Internal, "failed to decode cached idempotency response")
	}
	s.logger.WithFields(log.Fields{
		"method":          method,
		"idempotency_key": key,
	}).Debug("idempotent request replayed")
	return replayed, nil
}
