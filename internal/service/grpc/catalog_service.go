package grpcsvc

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/vladislavdragonenkov/foodtuck/internal/catalog"
	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	foodtuckv1 "github.com/vladislavdragonenkov/foodtuck/proto/foodtuck/v1"
)

// CatalogService отдаёт каталог товаров и поваров.
type CatalogService struct {
	foodtuckv1.UnimplementedCatalogServiceServer

	repo   catalog.Repository
	logger *log.Entry
}

func NewCatalogService(repo catalog.Repository, logger *log.Entry) *CatalogService {
	if logger == nil {
		logger = log.WithField("component", "catalog-service")
	}
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) ListProducts(ctx context.Context, _ *emptypb.Empty) (*foodtuckv1.ListProductsResponse, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list products")
		return nil, toStatus(err)
	}

	resp := &foodtuckv1.ListProductsResponse{Products: make([]*foodtuckv1.Product, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, toProtoProduct(p))
	}
	return resp, nil
}

// GetProduct ищет товар по id, а если id не задан — по slug.
func (s *CatalogService) GetProduct(ctx context.Context, req *foodtuckv1.GetProductRequest) (*foodtuckv1.ProductResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var (
		product domain.Product
		err     error
	)
	switch id, slug := strings.TrimSpace(req.Id), strings.TrimSpace(req.Slug); {
	case id != "":
		product, err = s.repo.GetProduct(ctx, id)
	case slug != "":
		product, err = s.repo.GetProductBySlug(ctx, slug)
	default:
		return nil, status.Error(codes.InvalidArgument, "id or slug is required")
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &foodtuckv1.ProductResponse{Product: toProtoProduct(product)}, nil
}

func (s *CatalogService) ListChefs(ctx context.Context, _ *emptypb.Empty) (*foodtuckv1.ListChefsResponse, error) {
	chefs, err := s.repo.ListChefs(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list chefs")
		return nil, toStatus(err)
	}

	resp := &foodtuckv1.ListChefsResponse{Chefs: make([]*foodtuckv1.Chef, 0, len(chefs))}
	for _, c := range chefs {
		resp.Chefs = append(resp.Chefs, toProtoChef(c))
	}
	return resp, nil
}
