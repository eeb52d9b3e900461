package main

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	foodtuckv1 "github.com/vladislavdragonenkov/foodtuck/proto/foodtuck/v1"
)

// scenario — одна корзина одной синтетической сессии.
type scenario struct {
	client  foodtuckv1.CartServiceClient
	cfg     config
	col     *collector
	session string
	keyBase string
}

func newScenario(client foodtuckv1.CartServiceClient, cfg config, index int, runID string, col *collector) scenario {
	return scenario{
		client:  client,
		cfg:     cfg,
		col:     col,
		session: fmt.Sprintf("%s-%s-%d", cfg.sessionTag, runID, index),
		keyBase: fmt.Sprintf("lt-%s-%d", runID, index),
	}
}

func runScenario(client foodtuckv1.CartServiceClient, cfg config, index int, runID string, col *collector) error {
	started := time.Now()
	code := codes.OK
	defer func() {
		col.record(scenarioMethod, time.Since(started), code)
	}()

	if err := newScenario(client, cfg, index, runID, col).run(index); err != nil {
		code = grpcCode(err)
		return err
	}
	return nil
}

func (s scenario) run(index int) error {
	add := &foodtuckv1.AddProductRequest{ProductId: s.cfg.productID, Quantity: int32(s.cfg.quantity)}
	addKey := s.keyBase + "-add"

	cart, err := s.addProduct(add, addKey)
	if err != nil {
		return err
	}
	if err := expectTotalItems(cart, s.cfg.quantity); err != nil {
		return err
	}

	if shouldReplay(index, s.cfg.replayRate) {
		replayed, err := s.addProduct(add, addKey)
		if err != nil {
			return err
		}
		matched := replayed.GetTotalItems() == cart.GetTotalItems()
		s.col.recordReplay(matched)
		if !matched {
			return status.Errorf(codes.Internal, "replayed add changed cart: total_items %d -> %d",
				cart.GetTotalItems(), replayed.GetTotalItems())
		}
	}

	switch s.cfg.mode {
	case modeAddGet:
		if _, err := s.increment(s.cfg.productID, s.keyBase+"-inc"); err != nil {
			return err
		}
		current, err := s.getCart()
		if err != nil {
			return err
		}
		return expectTotalItems(current, s.cfg.quantity+1)
	case modeAddClear:
		cleared, err := s.clear(s.keyBase + "-clear")
		if err != nil {
			return err
		}
		return expectTotalItems(cleared, 0)
	default:
		return nil
	}
}

func (s scenario) callContext(key string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.timeout)
	pairs := []string{sessionHeader, s.session}
	if key != "" {
		pairs = append(pairs, idempotencyHeader, key)
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...), cancel
}

func (s scenario) addProduct(req *foodtuckv1.AddProductRequest, key string) (*foodtuckv1.Cart, error) {
	ctx, cancel := s.callContext(key)
	defer cancel()

	start := time.Now()
	resp, err := s.client.AddProduct(ctx, req)
	s.col.record("AddProduct", time.Since(start), grpcCode(err))
	return resp.GetCart(), err
}

func (s scenario) increment(id, key string) (*foodtuckv1.Cart, error) {
	ctx, cancel := s.callContext(key)
	defer cancel()

	start := time.Now()
	resp, err := s.client.IncrementQuantity(ctx, &foodtuckv1.ItemRequest{Id: id})
	s.col.record("IncrementQuantity", time.Since(start), grpcCode(err))
	return resp.GetCart(), err
}

func (s scenario) clear(key string) (*foodtuckv1.Cart, error) {
	ctx, cancel := s.callContext(key)
	defer cancel()

	start := time.Now()
	resp, err := s.client.ClearCart(ctx, &emptypb.Empty{})
	s.col.record("ClearCart", time.Since(start), grpcCode(err))
	return resp.GetCart(), err
}

func (s scenario) getCart() (*foodtuckv1.Cart, error) {
	ctx, cancel := s.callContext("")
	defer cancel()

	start := time.Now()
	resp, err := s.client.GetCart(ctx, &emptypb.Empty{})
	s.col.record("GetCart", time.Since(start), grpcCode(err))
	return resp.GetCart(), err
}

func expectTotalItems(cart *foodtuckv1.Cart, want int) error {
	if cart == nil {
		return status.Error(codes.Internal, "response returned empty cart")
	}
	if got := int(cart.GetTotalItems()); got != want {
		return status.Errorf(codes.Internal, "unexpected total_items: got %d want %d", got, want)
	}
	return nil
}

func grpcCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return status.Code(err)
}

// shouldReplay детерминированно выбирает replayRate процентов сценариев.
func shouldReplay(index, replayRate int) bool {
	if replayRate <= 0 {
		return false
	}
	if replayRate >= 100 {
		return true
	}
	return index%100 < replayRate
}
