package grpcsvc

import (
	"context"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/foodtuck/internal/account"
	foodtuckv1 "github.com/vladislavdragonenkov/foodtuck/proto/foodtuck/v1"
)

// AccountService регистрирует пользователей.
type AccountService struct {
	foodtuckv1.UnimplementedAccountServiceServer

	accounts *account.Service
	logger   *log.Entry
}

func NewAccountService(accounts *account.Service, logger *log.Entry) *AccountService {
	if logger == nil {
		logger = log.WithField("component", "account-service")
	}
	return &AccountService{accounts: accounts, logger: logger}
}

func (s *AccountService) Signup(ctx context.Context, req *foodtuckv1.SignupRequest) (*foodtuckv1.SignupResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	user, err := s.accounts.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		st := toStatus(err)
		if status.Code(st) == codes.Internal {
			s.logger.WithError(err).Error("signup failed")
		}
		return nil, st
	}

	return &foodtuckv1.SignupResponse{User: &foodtuckv1.User{
		Id:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}}, nil
}
