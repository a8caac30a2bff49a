package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// DetailLine is one order line resolved against the menu catalog.
type DetailLine struct {
	ItemID         int64
	MenuItemName   string
	Quantity       int
	PricePerUnit   decimal.Decimal
	TotalPrice     decimal.Decimal
	Customizations *string
}

// Details is the order-with-items read view.
type Details struct {
	OrderID     int64
	TotalAmount decimal.Decimal
	Items       []DetailLine
}

// CustomerOrders is the customer-with-orders read view.
type CustomerOrders struct {
	CustomerID   int64
	CustomerName string
	TotalOrders  int
	Orders       []Order
}

// Details returns the order total plus each line resolved to its menu item
// name. Lines whose menu item no longer exists are skipped; that cannot
// happen while the catalog delete guard holds, but the view stays correct
// if it ever does.
func (s *Service) Details(ctx context.Context, orderID int64) (*Details, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines := make([]DetailLine, 0, len(items))
	for _, it := range items {
		mi, err := s.catalog.Get(ctx, it.MenuItemID)
		if err != nil {
			continue
		}

		perUnit := decimal.Zero
		if it.Quantity > 0 {
			perUnit = it.Price.Div(decimal.NewFromInt(int64(it.Quantity)))
		}
		lines = append(lines, DetailLine{
			ItemID:         it.ID,
			MenuItemName:   mi.Name,
			Quantity:       it.Quantity,
			PricePerUnit:   perUnit,
			TotalPrice:     it.Price,
			Customizations: it.Customizations,
		})
	}

	return &Details{
		OrderID:     o.ID,
		TotalAmount: o.TotalAmount,
		Items:       lines,
	}, nil
}

// CustomerOrders returns all orders placed by a customer along with the
// customer's name and an order count.
func (s *Service) CustomerOrders(ctx context.Context, customerID int64) (*CustomerOrders, error) {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	list, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &CustomerOrders{
		CustomerID:   c.ID,
		CustomerName: c.Name,
		TotalOrders:  len(list),
		Orders:       list,
	}, nil
}
