package model

import "time"

// Order describes one supply request exchanged with the peer.
type Order struct {
	ID              int64
	ExternalKey     string
	StatusID        int64
	SupplierID      int64
	Complete        *bool
	AdminApproved   *bool
	OrderedAt       *time.Time
	DeliveredAt     *time.Time
	QuantityShipped *int
	Lines           []OrderLine
}

// OrderLine associates an order with a catalog item.
type OrderLine struct {
	OrderID  int64
	ItemID   int64
	Quantity *int
}

// DeliveryUpdate carries the locally edited completion state of an order.
type DeliveryUpdate struct {
	OrderID     int64
	Complete    bool
	DeliveredAt time.Time
}

// StatusUpdate is the minimal view of an order pushed to the peer.
type StatusUpdate struct {
	RemoteID    any
	DeliveredAt *time.Time
	Complete    bool
}

// Known rows of the order status lookup table.
const (
	StatusPending  int64 = 1
	StatusApproved int64 = 2
	StatusRejected int64 = 3
)

// DateLayout is the wire format of order dates.
const DateLayout = "2006-01-02"
