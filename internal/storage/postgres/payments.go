package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
)

func (r *paymentRepository) FindByOrder(ctx context.Context, orderID string) (*model.Payment, error) {
	const query = `SELECT order_id, event_id, status, reason, decided_at FROM payments WHERE order_id=$1`
	var (
		p      model.Payment
		status string
	)
	err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&p.OrderID, &p.EventID, &status, &p.Reason, &p.DecidedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	p.Status = model.PaymentStatus(status)
	return &p, nil
}

func (r *paymentRepository) Record(ctx context.Context, payment model.Payment, outcome model.OutboxMessage) (bool, error) {
	const insertPayment = `INSERT INTO payments (order_id, event_id, status, reason, decided_at)
                           VALUES ($1, $2, $3, $4, $5)
                           ON CONFLICT (order_id) DO NOTHING`

	var created bool
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insertPayment, payment.OrderID, payment.EventID, string(payment.Status), payment.Reason, payment.DecidedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		created = true
		return insertOutboxTx(ctx, tx, outcome)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
