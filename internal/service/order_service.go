package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"decor-store/internal/model"
	"decor-store/internal/repository"
	"decor-store/internal/shipping"
	"decor-store/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	rates       ShippingRates
	validator   *validation.Validator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	rates ShippingRates,
	validator *validation.Validator,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		rates:       rates,
		validator:   validator,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// CreateOrder validates the request, prices every item from the catalogue and
// writes the order with its items in a single transaction. Items whose product
// no longer exists are skipped.
func (s *orderService) CreateOrder(ctx context.Context, principal *model.Principal, req *model.OrderRequest) (*model.Order, error) {
	if principal == nil || principal.UserID == "" {
		return nil, model.ErrUnauthorized
	}

	if err := s.validateOrderRequest(req); err != nil {
		s.logger.Debug().Err(err).Str("user_id", principal.UserID).Msg("order request rejected")
		return nil, err
	}

	productIDs := make([]int64, 0, len(req.Items))
	seen := make(map[int64]bool, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(productIDs)).Msg("failed to load products")
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          principal.UserID,
		Status:          model.OrderStatusPending,
		ShippingDetails: req.ShippingDetails,
		CreatedAt:       s.now().UTC(),
	}

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().
				Int("item_index", i).
				Int64("product_id", item.ProductID).
				Msg("skipping item for missing product")
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
	}

	if len(items) == 0 {
		return nil, model.NewValidationError("items", "none of the ordered products exist")
	}

	order.Total = total.Add(decimal.NewFromFloat(req.ShippingDetails.ShippingCost))

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", order.UserID).
		Int("item_count", len(items)).
		Str("total", order.Total.String()).
		Msg("order created")

	return order, nil
}

// GetByID retrieves an order with its items. Orders of other users are reported as not found.
func (s *orderService) GetByID(ctx context.Context, principal *model.Principal, id uuid.UUID) (*model.OrderWithItems, error) {
	if principal == nil || principal.UserID == "" {
		return nil, model.ErrUnauthorized
	}

	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil || order.UserID != principal.UserID {
		return nil, model.ErrOrderNotFound
	}

	if items == nil {
		items = []model.OrderItem{}
	}

	return &model.OrderWithItems{Order: *order, Items: items}, nil
}

func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewValidationError("", "request body is required")
	}

	if err := s.validator.Struct(req); err != nil {
		return err
	}

	sd := req.ShippingDetails
	cost, ok := s.rates.ServiceCost(sd.Courier, sd.Service, shipping.DefaultWeightGrams)
	if !ok {
		return model.NewValidationError("shippingDetails.service",
			fmt.Sprintf("service %s is not offered by courier %s", sd.Service, sd.Courier))
	}
	if !decimal.NewFromFloat(sd.ShippingCost).Round(2).Equal(decimal.NewFromFloat(cost).Round(2)) {
		return model.NewValidationError("shippingDetails.shippingCost",
			fmt.Sprintf("shipping cost does not match the %s %s quote", strings.ToUpper(sd.Courier), sd.Service))
	}

	return nil
}
