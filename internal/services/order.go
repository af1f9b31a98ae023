package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shoplite/apiserver/internal/store"
	"github.com/shoplite/apiserver/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderCreatedChannel is the event-bus channel order events are
// published on.
const OrderCreatedChannel = "orders.created"

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order types.Order, lines []store.OrderLine) (types.Order, error)
	List(ctx context.Context) ([]types.Order, error)
	Get(ctx context.Context, id int) (types.Order, error)
}

// EventPublisher publishes order events to the configured broker.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// OrderService is the order transaction engine: it validates a placement
// request, prices it, and persists the order graph atomically through
// the repository.
type OrderService struct {
	repo   OrderRepository
	events EventPublisher
	logger *zap.Logger
}

// NewOrderService constructs an OrderService. events may be nil to
// disable event publishing.
func NewOrderService(repo OrderRepository, events EventPublisher, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{repo: repo, events: events, logger: logger}
}

// PlaceOrderRequest is the payload for placing an order.
type PlaceOrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderItemRequest is a single requested line.
type OrderItemRequest struct {
	ProductID int `json:"product_id"`
	Qty       int `json:"qty"`
}

// OrderCreatedEvent is published after an order commits.
type OrderCreatedEvent struct {
	EventID       string            `json:"event_id"`
	OrderID       int               `json:"order_id"`
	CustomerEmail string            `json:"customer_email"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	Items         []types.OrderItem `json:"items"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Place validates the request and persists the order atomically.
//
// Request-shape problems and product problems (missing or inactive) are
// both reported as a *ValidationError listing every offending field, and
// in either case nothing is persisted. Items are priced in request
// order with fixed-point arithmetic.
func (s *OrderService) Place(ctx context.Context, req PlaceOrderRequest) (types.Order, error) {
	if verr := validatePlaceOrder(req); !verr.Empty() {
		return types.Order{}, verr
	}

	lines := make([]store.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, store.OrderLine{ProductID: item.ProductID, Qty: item.Qty})
	}

	order, err := s.repo.Create(ctx, types.Order{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
	}, lines)
	if err != nil {
		var rejected *store.OrderRejectedError
		if errors.As(err, &rejected) {
			return types.Order{}, rejectionToValidationError(rejected)
		}
		return types.Order{}, fmt.Errorf("place order: %w", err)
	}

	s.publishOrderCreated(ctx, order)
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]types.Order, error) {
	return s.repo.List(ctx)
}

func (s *OrderService) Get(ctx context.Context, id int) (types.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order types.Order) {
	if s.events == nil {
		return
	}

	event := OrderCreatedEvent{
		EventID:       uuid.NewString(),
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		TotalPrice:    order.TotalPrice,
		Items:         order.Items,
		CreatedAt:     order.CreatedAt,
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err), zap.Int("order_id", order.ID))
		return
	}

	// The order is already committed; a broker hiccup must not fail
	// the request.
	if _, err := s.events.Publish(ctx, OrderCreatedChannel, data, map[string]string{
		"event_type": OrderCreatedChannel,
	}); err != nil {
		s.logger.Error("publish order event", zap.Error(err), zap.Int("order_id", order.ID))
		return
	}

	s.logger.Info("order event published",
		zap.Int("order_id", order.ID),
		zap.String("event_id", event.EventID))
}

func validatePlaceOrder(req PlaceOrderRequest) *ValidationError {
	verr := NewValidationError()

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		verr.Add("customer_name", "The customer name field is required.")
	} else if len(name) > maxNameLength {
		verr.Add("customer_name", fmt.Sprintf("The customer name may not be greater than %d characters.", maxNameLength))
	}

	email := strings.TrimSpace(req.CustomerEmail)
	switch {
	case email == "":
		verr.Add("customer_email", "The customer email field is required.")
	case len(email) > maxNameLength:
		verr.Add("customer_email", fmt.Sprintf("The customer email may not be greater than %d characters.", maxNameLength))
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			verr.Add("customer_email", "The customer email must be a valid email address.")
		}
	}

	if len(req.Items) == 0 {
		verr.Add("items", "The items field is required.")
	}
	for i, item := range req.Items {
		if item.ProductID < 1 {
			verr.Add(fmt.Sprintf("items.%d.product_id", i), "The product id field is required.")
		}
		if item.Qty < 1 {
			verr.Add(fmt.Sprintf("items.%d.qty", i), "The qty must be at least 1.")
		}
	}

	return verr
}

func rejectionToValidationError(rejected *store.OrderRejectedError) *ValidationError {
	verr := NewValidationError()
	for _, issue := range rejected.Issues {
		switch issue.Reason {
		case store.ProductIssueMissing:
			verr.Add(fmt.Sprintf("items.%d.product_id", issue.Index), "The selected product id is invalid.")
		case store.ProductIssueInactive:
			verr.Add("items", fmt.Sprintf("Product %q is not available for purchase.", issue.ProductName))
		}
	}
	return verr
}
