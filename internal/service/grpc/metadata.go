package grpcsvc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

const (
	sessionHeader        = "x-session-id"
	idempotencyKeyHeader = "idempotency-key"
)

func readHeader(ctx context.Context, name string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for _, value := range md.Get(name) {
			if value = strings.TrimSpace(value); value != "" {
				return value
			}
		}
	}
	return ""
}

// sessionID возвращает идентификатор сессии (пустая строка, если его нет).
func sessionID(ctx context.Context) string {
	return readHeader(ctx, sessionHeader)
}

func idempotencyKey(ctx context.Context) string {
	return readHeader(ctx, idempotencyKeyHeader)
}
