package usecase

// Published on the order event stream for downstream consumers
// (analytics, fulfillment dashboards).
type OrderCreatedEvent struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	Total   string `json:"total"`
	Lines   int    `json:"lines"`
}

type OrderStatusChangedEvent struct {
	OrderID string `json:"orderId"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// MailJob is the payload carried by the notification queue.
type MailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
