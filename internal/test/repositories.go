package test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/domain/repository"
)

// OutboxStub keeps outbox messages in memory. Repositories sharing an OutboxStub
// behave like tables of the same database.
type OutboxStub struct {
	mu       sync.Mutex
	next     int64
	messages []*model.OutboxMessage
	ClaimErr error
}

// NewOutboxStub constructs an empty outbox.
func NewOutboxStub() *OutboxStub {
	return &OutboxStub{}
}

func (o *OutboxStub) add(msgs ...model.OutboxMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, msg := range msgs {
		duplicate := false
		for _, existing := range o.messages {
			if existing.EventID == msg.EventID {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		o.next++
		msg.ID = o.next
		o.messages = append(o.messages, &msg)
	}
}

// ClaimBatch leases unpublished messages whose lease expired.
func (o *OutboxStub) ClaimBatch(_ context.Context, limit int, lease time.Duration) ([]model.OutboxMessage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ClaimErr != nil {
		return nil, o.ClaimErr
	}
	now := time.Now()
	var claimed []model.OutboxMessage
	for _, msg := range o.messages {
		if len(claimed) >= limit {
			break
		}
		if msg.PublishedAt != nil || (msg.LockedUntil != nil && msg.LockedUntil.After(now)) {
			continue
		}
		until := now.Add(lease)
		msg.LockedUntil = &until
		claimed = append(claimed, *msg)
	}
	return claimed, nil
}

// MarkPublished flags the message as delivered.
func (o *OutboxStub) MarkPublished(_ context.Context, id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, msg := range o.messages {
		if msg.ID == id {
			now := time.Now()
			msg.PublishedAt = &now
			msg.LockedUntil = nil
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// MarkFailed counts a failed attempt; the message stays leased until the lease expires.
func (o *OutboxStub) MarkFailed(_ context.Context, id int64, _ error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, msg := range o.messages {
		if msg.ID == id {
			msg.Attempts++
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// Messages returns a snapshot of all stored messages.
func (o *OutboxStub) Messages() []model.OutboxMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.OutboxMessage, 0, len(o.messages))
	for _, msg := range o.messages {
		out = append(out, *msg)
	}
	return out
}

// OrderRepositoryStub stores orders in memory.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	orders map[string]model.Order
	Outbox *OutboxStub

	CreateErr error
	FindErr   error
	// BeforeReplace runs before the version check and may return an error to inject.
	BeforeReplace func(order *model.Order) error
}

// NewOrderRepositoryStub constructs an order store writing events into outbox.
func NewOrderRepositoryStub(outbox *OutboxStub) *OrderRepositoryStub {
	if outbox == nil {
		outbox = NewOutboxStub()
	}
	return &OrderRepositoryStub{orders: make(map[string]model.Order), Outbox: outbox}
}

func (s *OrderRepositoryStub) Create(_ context.Context, order *model.Order, outbox ...model.OutboxMessage) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	s.orders[order.ID] = cloneOrder(*order)
	s.mu.Unlock()
	s.Outbox.add(outbox...)
	return nil
}

func (s *OrderRepositoryStub) FindByID(_ context.Context, id string) (*model.Order, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := cloneOrder(order)
	return &clone, nil
}

func (s *OrderRepositoryStub) Replace(_ context.Context, order *model.Order) error {
	if s.BeforeReplace != nil {
		if err := s.BeforeReplace(order); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[order.ID]
	if !ok || stored.Version != order.Version {
		return domainErrors.ErrConflict
	}
	order.Version++
	s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (s *OrderRepositoryStub) ListByUser(_ context.Context, userName string) ([]model.Order, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.orders {
		if order.UserName == userName {
			result = append(result, cloneOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (s *OrderRepositoryStub) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

// Put stores an order directly, bypassing the outbox.
func (s *OrderRepositoryStub) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = cloneOrder(order)
}

func cloneOrder(order model.Order) model.Order {
	order.Items = append([]model.OrderItem(nil), order.Items...)
	return order
}

// PaymentRepositoryStub stores payment decisions in memory.
type PaymentRepositoryStub struct {
	mu       sync.Mutex
	payments map[string]model.Payment
	Outbox   *OutboxStub
	Err      error
}

// NewPaymentRepositoryStub constructs a payment store writing events into outbox.
func NewPaymentRepositoryStub(outbox *OutboxStub) *PaymentRepositoryStub {
	if outbox == nil {
		outbox = NewOutboxStub()
	}
	return &PaymentRepositoryStub{payments: make(map[string]model.Payment), Outbox: outbox}
}

func (s *PaymentRepositoryStub) FindByOrder(_ context.Context, orderID string) (*model.Payment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

func (s *PaymentRepositoryStub) Record(_ context.Context, payment model.Payment, outcome model.OutboxMessage) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	if _, exists := s.payments[payment.OrderID]; exists {
		s.mu.Unlock()
		return false, nil
	}
	s.payments[payment.OrderID] = payment
	s.mu.Unlock()
	s.Outbox.add(outcome)
	return true, nil
}

// NotificationRepositoryStub stores notifications and recipients in memory.
type NotificationRepositoryStub struct {
	mu            sync.Mutex
	recipients    map[string]string
	notifications []*model.Notification
	Err           error
}

// NewNotificationRepositoryStub constructs an empty notification store.
func NewNotificationRepositoryStub() *NotificationRepositoryStub {
	return &NotificationRepositoryStub{recipients: make(map[string]string)}
}

func (s *NotificationRepositoryStub) SaveRecipient(_ context.Context, orderID, userName string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipients[orderID]; !ok {
		s.recipients[orderID] = userName
	}
	return nil
}

func (s *NotificationRepositoryStub) FindRecipient(_ context.Context, orderID string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.recipients[orderID]
	if !ok {
		return "", domainErrors.ErrRecipientUnknown
	}
	return name, nil
}

func (s *NotificationRepositoryStub) Create(_ context.Context, n *model.Notification) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.notifications {
		if existing.OrderID == n.OrderID && existing.Kind == n.Kind {
			return false, nil
		}
	}
	clone := *n
	s.notifications = append(s.notifications, &clone)
	return true, nil
}

func (s *NotificationRepositoryStub) ListPending(_ context.Context, orderID string) ([]model.Notification, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Notification
	for _, n := range s.notifications {
		if n.OrderID == orderID && n.Status == model.NotificationPending {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (s *NotificationRepositoryStub) Claim(_ context.Context, id, recipient string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			if n.Status != model.NotificationPending {
				return false, nil
			}
			n.Recipient = recipient
			n.Status = model.NotificationSending
			return true, nil
		}
	}
	return false, nil
}

func (s *NotificationRepositoryStub) UpdateStatus(_ context.Context, id, recipient string, status model.NotificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			n.Recipient = recipient
			n.Status = status
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// Notifications returns a snapshot of all stored notifications.
func (s *NotificationRepositoryStub) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, *n)
	}
	return out
}

// BasketRepositoryStub stores baskets in memory.
type BasketRepositoryStub struct {
	mu      sync.Mutex
	baskets map[string]model.Basket
	Err     error
	Deletes int
}

// NewBasketRepositoryStub constructs an empty basket store.
func NewBasketRepositoryStub() *BasketRepositoryStub {
	return &BasketRepositoryStub{baskets: make(map[string]model.Basket)}
}

func (s *BasketRepositoryStub) Get(_ context.Context, userName string) (*model.Basket, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.baskets[userName]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &b, nil
}

func (s *BasketRepositoryStub) Update(_ context.Context, basket *model.Basket) (*model.Basket, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if basket.UserName == "" {
		return nil, errors.New("basket owner is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	basket.UpdatedAt = time.Now().UTC()
	s.baskets[basket.UserName] = *basket
	return basket, nil
}

func (s *BasketRepositoryStub) Delete(_ context.Context, userName string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	delete(s.baskets, userName)
	return nil
}

var (
	_ repository.OutboxRepository       = (*OutboxStub)(nil)
	_ repository.OrderRepository        = (*OrderRepositoryStub)(nil)
	_ repository.PaymentRepository      = (*PaymentRepositoryStub)(nil)
	_ repository.NotificationRepository = (*NotificationRepositoryStub)(nil)
	_ repository.BasketRepository       = (*BasketRepositoryStub)(nil)
)
