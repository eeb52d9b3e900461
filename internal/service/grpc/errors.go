package grpcsvc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/service/idempotency"
)

// toStatus переводит доменную ошибку в gRPC status.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	var replayed *idempotency.ReplayedError
	switch {
	case errors.As(err, &replayed):
		return status.Error(grpcCode(replayed.StatusCode), replayed.Message)
	case errors.Is(err, domain.ErrSessionRequired),
		errors.Is(err, domain.ErrSignupFieldsRequired),
		errors.Is(err, domain.ErrIdempotencyKeyRequired),
		errors.Is(err, domain.ErrCartQuantityLimit):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrIdempotencyRequestInProgress):
		return status.Error(codes.Aborted, err.Error())
	}

	if st, ok := status.FromError(err); ok {
		return st.Err()
	}
	return status.Error(codes.Internal, "internal error")
}

func grpcCode(value int) codes.Code {
	if value <= int(codes.OK) || value > int(codes.Unauthenticated) {
		return codes.Internal
	}
	return codes.Code(uint32(value))
}

func statusCodeOf(err error) int {
	return int(status.Code(toStatus(err)))
}
