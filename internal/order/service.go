package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Gusjafo/Light-Microservices/internal/clients"
	"github.com/Gusjafo/Light-Microservices/internal/contracts"
	"github.com/Gusjafo/Light-Microservices/internal/messaging"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = clients.ErrProductNotFound
)

// InsufficientStockError carries the stock available at admission time so the
// rejection reason can cite it.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, available: %d", e.Available)
}

// UserChecker and ProductChecker are the two synchronous admission
// collaborators, already wrapped in their retry/circuit-break policies.
type UserChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type ProductChecker interface {
	Get(ctx context.Context, productID string) (*clients.ProductSnapshot, error)
}

// Service runs order admission: validate, check user, check product stock,
// persist, then publish exactly one outcome event.
type Service struct {
	repo     Repository
	users    UserChecker
	products ProductChecker
	pub      messaging.Publisher
	logger   *log.Logger
}

func NewService(repo Repository, users UserChecker, products ProductChecker, pub messaging.Publisher, logger *log.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		products: products,
		pub:      pub,
		logger:   logger,
	}
}

// Create admits, persists and announces an order. Domain rejections publish
// OrderFailed before returning, so observers see every attempted order.
// Infrastructure failures (resilience.ErrUnavailable) publish nothing: the
// order was neither admitted nor rejected.
func (s *Service) Create(ctx context.Context, userID, productID string, quantity int) (*Order, error) {
	if quantity <= 0 {
		s.publishOrderFailed(ctx, "", userID, productID, quantity, ErrInvalidQuantity.Error())
		return nil, ErrInvalidQuantity
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user %s: %w", userID, err)
	}
	if !exists {
		s.publishOrderFailed(ctx, "", userID, productID, quantity, ErrUserNotFound.Error())
		return nil, ErrUserNotFound
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			s.publishOrderFailed(ctx, "", userID, productID, quantity, ErrProductNotFound.Error())
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("check product %s: %w", productID, err)
	}
	if product.Stock < quantity {
		rejection := &InsufficientStockError{Available: product.Stock}
		s.publishOrderFailed(ctx, "", userID, productID, quantity, rejection.Error())
		return nil, rejection
	}

	o := &Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Publish strictly after the row commits. A crash between commit and
	// publish loses the event; closing that gap needs a transactional outbox.
	ev := contracts.OrderCreated{
		EventType: contracts.EventTypeOrderCreated,
		EventID:   uuid.NewString(),
		OrderID:   o.ID,
		UserID:    o.UserID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		CreatedAt: o.CreatedAt,
	}
	if err := s.pub.PublishJSON(ctx, messaging.OrderCreatedRoutingKey, ev); err != nil {
		s.logger.Printf("publish OrderCreated for order %s: %v", o.ID, err)
	}

	return o, nil
}

func (s *Service) GetByID(ctx context.Context, orderID string) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) publishOrderFailed(ctx context.Context, orderID, userID, productID string, quantity int, reason string) {
	ev := contracts.OrderFailed{
		EventType: contracts.EventTypeOrderFailed,
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Reason:    reason,
		FailedAt:  time.Now().UTC(),
	}
	if err := s.pub.PublishJSON(ctx, messaging.OrderFailedRoutingKey, ev); err != nil {
		s.logger.Printf("publish OrderFailed (%s): %v", reason, err)
	}
}
