package services

import (
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/store"
)

// OrderService drives the order lifecycle: creation, retrieval, cancellation
// and status transitions. Every state-changing operation runs as exactly one
// store transaction; no partial stock mutation ever survives a failure.
type OrderService struct {
	Store   *store.Store
	Numbers *NumberGenerator
	Metrics *metrics.OrderMetrics
}

func NewOrderService(st *store.Store, numbers *NumberGenerator, m *metrics.OrderMetrics) *OrderService {
	return &OrderService{Store: st, Numbers: numbers, Metrics: m}
}

// Create validates the cart against live stock, persists the order with its
// line snapshots and decrements stock for every line, all in one commit. The
// persisted aggregate is reloaded for the response.
func (s *OrderService) Create(userID string, lines []CartLine) (domain.Order, error) {
	started := time.Now()
	var created domain.Order

	err := s.Store.WithTx(func(tx *store.Tx) error {
		if _, err := tx.Users.ByID(userID); err != nil {
			return err
		}

		order, err := AssembleOrder(tx.Products, userID, lines)
		if err != nil {
			return err
		}

		number, err := s.Numbers.Generate(tx.Orders.NumberExists)
		if err != nil {
			return err
		}
		order.Number = number

		if err := tx.Orders.Insert(&order); err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.Orders.InsertItem(&order.Items[i]); err != nil {
				return err
			}
		}

		// The guard already approved each line, but the decrement re-checks
		// stock in the same statement: if a concurrent order won the race,
		// this transaction loses cleanly and rolls back whole.
		for _, it := range order.Items {
			ok, err := tx.Products.DecrementStock(it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				s.Metrics.StockConflict()
				p, perr := tx.Products.Get(it.ProductID)
				if perr != nil {
					return perr
				}
				return domain.Conflictf("Insufficient stock for product %s. Available: %d, Requested: %d",
					it.ProductName, p.Stock, it.Quantity)
			}
		}

		created, err = tx.Orders.Get(order.ID)
		return err
	})
	if err != nil {
		s.Metrics.OrderRejected(string(domain.KindOf(err)))
		return domain.Order{}, err
	}

	s.Metrics.OrderCreated(time.Since(started))
	return created, nil
}

// Get fetches one order by id or by order number; ownership is always
// enforced on single-order reads.
func (s *OrderService) Get(userID, ref string) (domain.Order, error) {
	var (
		order domain.Order
		err   error
	)
	if strings.HasPrefix(ref, "ORD-") {
		order, err = s.Store.Orders.ByNumber(ref)
	} else {
		order, err = s.Store.Orders.Get(ref)
	}
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != userID {
		return domain.Order{}, domain.Authorizationf("You are not authorized to view this order")
	}
	return order, nil
}

// ListUserOrders returns the user's orders newest first, summarized.
func (s *OrderService) ListUserOrders(userID string) ([]store.OrderSummary, error) {
	if _, err := s.Store.Users.ByID(userID); err != nil {
		return nil, err
	}
	return s.Store.Orders.ListByUser(userID)
}

// Cancel flips a Pending order to Cancelled and restores stock for every
// line, exactly and symmetrically, in one transaction. Only the owner may
// cancel, and only while the order is still Pending.
func (s *OrderService) Cancel(userID, orderID string) error {
	err := s.Store.WithTx(func(tx *store.Tx) error {
		order, err := tx.Orders.Get(orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return domain.Authorizationf("You are not authorized to cancel this order")
		}
		if order.Status == domain.StatusCancelled {
			return domain.StateViolationf("Order is already cancelled")
		}
		if order.Status != domain.StatusPending {
			return domain.StateViolationf("Cannot cancel order with status '%s'. Only pending orders can be cancelled", order.Status)
		}

		if err := tx.Orders.UpdateStatus(order.ID, domain.StatusCancelled); err != nil {
			return err
		}
		for _, it := range order.Items {
			if err := tx.Products.RestoreStock(it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Metrics.OrderCancelled()
	return nil
}

// UpdateStatus is the administrative transition; it enforces only the
// explicit transition table (Cancelled is terminal) and never touches stock.
func (s *OrderService) UpdateStatus(orderID, newStatus string) (domain.Order, error) {
	status, err := domain.ParseOrderStatus(newStatus)
	if err != nil {
		return domain.Order{}, err
	}

	var updated domain.Order
	err = s.Store.WithTx(func(tx *store.Tx) error {
		order, err := tx.Orders.Get(orderID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(order.Status, status) {
			return domain.StateViolationf("Cannot change status of a %s order to %s", order.Status, status)
		}
		if err := tx.Orders.UpdateStatus(order.ID, status); err != nil {
			return err
		}
		updated, err = tx.Orders.Get(order.ID)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}
