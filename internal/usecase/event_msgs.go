package usecase

const (
	ReconcileItems = "items"
	ReconcileEmail = "email"
)

// Published on order.settled after a session is materialized.
type SettledMsg struct {
	OrderID   string `json:"orderId"`
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
	Total     string `json:"total"` // major units, 2dp
}

// Published on order.reconcile when a non-fatal settlement step failed.
// Kind is "items" (order exists, item insert failed) or "email"
// (confirmation send failed).
type ReconcileMsg struct {
	Kind      string `json:"kind"`
	OrderID   string `json:"orderId"`
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason"`
}

// Sent by the back-office on Kafka when an order transitions.
type OrderStatusChangedMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"` // e.g. "SHIPPED"
}
