package foodtuckv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	CartService_AddToCart_FullMethodName         = "/foodtuck.v1.CartService/AddToCart"
	CartService_AddProduct_FullMethodName        = "/foodtuck.v1.CartService/AddProduct"
	CartService_RemoveFromCart_FullMethodName    = "/foodtuck.v1.CartService/RemoveFromCart"
	CartService_IncrementQuantity_FullMethodName = "/foodtuck.v1.CartService/IncrementQuantity"
	CartService_DecrementQuantity_FullMethodName = "/foodtuck.v1.CartService/DecrementQuantity"
	CartService_ClearCart_FullMethodName         = "/foodtuck.v1.CartService/ClearCart"
	CartService_GetCart_FullMethodName           = "/foodtuck.v1.CartService/GetCart"
)

// CartServiceClient — клиент корзины. Сессия передаётся в metadata x-session-id.
type CartServiceClient interface {
	AddToCart(ctx context.Context, in *AddToCartRequest, opts ...grpc.CallOption) (*CartResponse, error)
	AddProduct(ctx context.Context, in *AddProductRequest, opts ...grpc.CallOption) (*CartResponse, error)
	RemoveFromCart(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*CartResponse, error)
	IncrementQuantity(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*CartResponse, error)
	DecrementQuantity(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*CartResponse, error)
	ClearCart(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*CartResponse, error)
	GetCart(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*CartResponse, error)
}

type cartServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCartServiceClient создаёт клиент CartService. Каждый вызов идёт с
// content-subtype CodecName ("json").
func NewCartServiceClient(cc grpc.ClientConnInterface) CartServiceClient {
	return &cartServiceClient{cc}
}

func (c *cartServiceClient) AddToCart(ctx context.Context, in *AddToCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, CartService_AddToCart_FullMethodName, in, opts)
}

func (c *cartServiceClient) AddProduct(ctx context.Context, in *AddProductRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, CartService_AddProduct_FullMethodName, in, opts)
}

func (c *cartServiceClient) RemoveFromCart(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, CartService_RemoveFromCart_FullMethodName, in, opts)
}

func (c *cartServiceClient) IncrementQuantity(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, CartService_IncrementQuantity_FullMethodName, in, opts)
}

func (c *cartServiceClient) DecrementQuantity(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, CartService_DecrementQuantity_FullMethodName, in, opts)
}

func (c *cartServiceClient) ClearCart(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, CartService_ClearCart_FullMethodName, in, opts)
}

func (c *cartServiceClient) GetCart(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, CartService_GetCart_FullMethodName, in, opts)
}

// CartServiceServer — серверная часть корзины.
type CartServiceServer interface {
	AddToCart(context.Context, *AddToCartRequest) (*CartResponse, error)
	AddProduct(context.Context, *AddProductRequest) (*CartResponse, error)
	RemoveFromCart(context.Context, *ItemRequest) (*CartResponse, error)
	IncrementQuantity(context.Context, *ItemRequest) (*CartResponse, error)
	DecrementQuantity(context.Context, *ItemRequest) (*CartResponse, error)
	ClearCart(context.Context, *emptypb.Empty) (*CartResponse, error)
	GetCart(context.Context, *emptypb.Empty) (*CartResponse, error)
	mustEmbedUnimplementedCartServiceServer()
}

// UnimplementedCartServiceServer отвечает Unimplemented на все методы.
type UnimplementedCartServiceServer struct{}

func (UnimplementedCartServiceServer) AddToCart(context.Context, *AddToCartRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddToCart not implemented")
}
func (UnimplementedCartServiceServer) AddProduct(context.Context, *AddProductRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddProduct not implemented")
}
func (UnimplementedCartServiceServer) RemoveFromCart(context.Context, *ItemRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveFromCart not implemented")
}
func (UnimplementedCartServiceServer) IncrementQuantity(context.Context, *ItemRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method IncrementQuantity not implemented")
}
func (UnimplementedCartServiceServer) DecrementQuantity(context.Context, *ItemRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DecrementQuantity not implemented")
}
func (UnimplementedCartServiceServer) ClearCart(context.Context, *emptypb.Empty) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClearCart not implemented")
}
func (UnimplementedCartServiceServer) GetCart(context.Context, *emptypb.Empty) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCart not implemented")
}
func (UnimplementedCartServiceServer) mustEmbedUnimplementedCartServiceServer() {}

// RegisterCartServiceServer регистрирует реализацию корзины.
func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartService_ServiceDesc, srv)
}

// CartService_ServiceDesc описывает foodtuck.v1.CartService.
var CartService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "foodtuck.v1.CartService",
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddToCart",
			Handler:    unaryHandler(CartService_AddToCart_FullMethodName, CartServiceServer.AddToCart),
		},
		{
			MethodName: "AddProduct",
			Handler:    unaryHandler(CartService_AddProduct_FullMethodName, CartServiceServer.AddProduct),
		},
		{
			MethodName: "RemoveFromCart",
			Handler:    unaryHandler(CartService_RemoveFromCart_FullMethodName, CartServiceServer.RemoveFromCart),
		},
		{
			MethodName: "IncrementQuantity",
			Handler:    unaryHandler(CartService_IncrementQuantity_FullMethodName, CartServiceServer.IncrementQuantity),
		},
		{
			MethodName: "DecrementQuantity",
			Handler:    unaryHandler(CartService_DecrementQuantity_FullMethodName, CartServiceServer.DecrementQuantity),
		},
		{
			MethodName: "ClearCart",
			Handler:    unaryHandler(CartService_ClearCart_FullMethodName, CartServiceServer.ClearCart),
		},
		{
			MethodName: "GetCart",
			Handler:    unaryHandler(CartService_GetCart_FullMethodName, CartServiceServer.GetCart),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodtuck/v1/cart_service",
}
