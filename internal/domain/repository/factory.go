package repository

// Factory describes access to the PostgreSQL backed repositories.
type Factory interface {
	Orders() OrderRepository
	Outbox() OutboxRepository
	Payments() PaymentRepository
	Notifications() NotificationRepository
}
