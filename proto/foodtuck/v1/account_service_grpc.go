package foodtuckv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const AccountService_Signup_FullMethodName = "/foodtuck.v1.AccountService/Signup"

// AccountServiceClient — клиент регистрации.
type AccountServiceClient interface {
	Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SignupResponse, error)
}

type accountServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAccountServiceClient создаёт клиент AccountService. Каждый вызов идёт с
// content-subtype CodecName ("json").
func NewAccountServiceClient(cc grpc.ClientConnInterface) AccountServiceClient {
	return &accountServiceClient{cc}
}

func (c *accountServiceClient) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SignupResponse, error) {
	return invoke[SignupResponse](ctx, c.cc, AccountService_Signup_FullMethodName, in, opts)
}

// AccountServiceServer — серверная часть регистрации.
type AccountServiceServer interface {
	Signup(context.Context, *SignupRequest) (*SignupResponse, error)
	mustEmbedUnimplementedAccountServiceServer()
}

// UnimplementedAccountServiceServer отвечает Unimplemented на все методы.
type UnimplementedAccountServiceServer struct{}

func (UnimplementedAccountServiceServer) Signup(context.Context, *SignupRequest) (*SignupResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Signup not implemented")
}
func (UnimplementedAccountServiceServer) mustEmbedUnimplementedAccountServiceServer() {}

// RegisterAccountServiceServer регистрирует реализацию регистрации.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountService_ServiceDesc, srv)
}

// AccountService_ServiceDesc описывает foodtuck.v1.AccountService.
var AccountService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "foodtuck.v1.AccountService",
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Signup",
			Handler:    unaryHandler(AccountService_Signup_FullMethodName, AccountServiceServer.Signup),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodtuck/v1/account_service",
}
