package foodtuckv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	CatalogService_ListProducts_FullMethodName = "/foodtuck.v1.CatalogService/ListProducts"
	CatalogService_GetProduct_FullMethodName   = "/foodtuck.v1.CatalogService/GetProduct"
	CatalogService_ListChefs_FullMethodName    = "/foodtuck.v1.CatalogService/ListChefs"
)

// CatalogServiceClient — клиент каталога.
type CatalogServiceClient interface {
	ListProducts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListProductsResponse, error)
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	ListChefs(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListChefsResponse, error)
}

type catalogServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogServiceClient создаёт клиент CatalogService. Каждый вызов идёт с
// content-subtype CodecName ("json").
func NewCatalogServiceClient(cc grpc.ClientConnInterface) CatalogServiceClient {
	return &catalogServiceClient{cc}
}

func (c *catalogServiceClient) ListProducts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, CatalogService_ListProducts_FullMethodName, in, opts)
}

func (c *catalogServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, CatalogService_GetProduct_FullMethodName, in, opts)
}

func (c *catalogServiceClient) ListChefs(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListChefsResponse, error) {
	return invoke[ListChefsResponse](ctx, c.cc, CatalogService_ListChefs_FullMethodName, in, opts)
}

// CatalogServiceServer — серверная часть каталога.
type CatalogServiceServer interface {
	ListProducts(context.Context, *emptypb.Empty) (*ListProductsResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error)
	ListChefs(context.Context, *emptypb.Empty) (*ListChefsResponse, error)
	mustEmbedUnimplementedCatalogServiceServer()
}

// UnimplementedCatalogServiceServer отвечает Unimplemented на все методы.
type UnimplementedCatalogServiceServer struct{}

func (UnimplementedCatalogServiceServer) ListProducts(context.Context, *emptypb.Empty) (*ListProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListProducts not implemented")
}
func (UnimplementedCatalogServiceServer) GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProduct not implemented")
}
func (UnimplementedCatalogServiceServer) ListChefs(context.Context, *emptypb.Empty) (*ListChefsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListChefs not implemented")
}
func (UnimplementedCatalogServiceServer) mustEmbedUnimplementedCatalogServiceServer() {}

// RegisterCatalogServiceServer регистрирует реализацию каталога.
func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogService_ServiceDesc, srv)
}

// CatalogService_ServiceDesc описывает foodtuck.v1.CatalogService.
var CatalogService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "foodtuck.v1.CatalogService",
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListProducts",
			Handler:    unaryHandler(CatalogService_ListProducts_FullMethodName, CatalogServiceServer.ListProducts),
		},
		{
			MethodName: "GetProduct",
			Handler:    unaryHandler(CatalogService_GetProduct_FullMethodName, CatalogServiceServer.GetProduct),
		},
		{
			MethodName: "ListChefs",
			Handler:    unaryHandler(CatalogService_ListChefs_FullMethodName, CatalogServiceServer.ListChefs),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodtuck/v1/catalog_service",
}
