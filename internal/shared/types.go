package shared

// Task type names shared between the API (producer) and worker (consumer).
const (
	TypeSendOrderConfirmation = "order:send_confirmation"
	TypeExpireLapsedCoupons   = "coupon:expire_lapsed"
)

// Queue names with their worker priorities configured in cmd/worker.
const (
	QueueOrders  = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)
