package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
)

func (r *notificationRepository) SaveRecipient(ctx context.Context, orderID, userName string) error {
	const query = `INSERT INTO notification_recipients (order_id, user_name) VALUES ($1, $2)
                   ON CONFLICT (order_id) DO NOTHING`
	_, err := r.storage.pool.Exec(ctx, query, orderID, userName)
	return err
}

func (r *notificationRepository) FindRecipient(ctx context.Context, orderID string) (string, error) {
	const query = `SELECT user_name FROM notification_recipients WHERE order_id=$1`
	var userName string
	if err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&userName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domainErrors.ErrRecipientUnknown
		}
		return "", err
	}
	return userName, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (bool, error) {
	const query = `INSERT INTO notifications (id, order_id, kind, recipient, message, status, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
                   ON CONFLICT (order_id, kind) DO NOTHING`
	tag, err := r.storage.pool.Exec(ctx, query, n.ID, n.OrderID, string(n.Kind), n.Recipient, n.Message, string(n.Status), n.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *notificationRepository) ListPending(ctx context.Context, orderID string) ([]model.Notification, error) {
	const query = `SELECT id, order_id, kind, recipient, message, status, created_at
                   FROM notifications WHERE order_id=$1 AND status=$2 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, orderID, string(model.NotificationPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Notification
	for rows.Next() {
		var (
			n      model.Notification
			kind   string
			status string
		)
		if err := rows.Scan(&n.ID, &n.OrderID, &kind, &n.Recipient, &n.Message, &status, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Kind = model.NotificationKind(kind)
		n.Status = model.NotificationStatus(status)
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *notificationRepository) Claim(ctx context.Context, id, recipient string) (bool, error) {
	const query = `UPDATE notifications SET recipient=$1, status=$2, updated_at=NOW()
                   WHERE id=$3 AND status=$4`
	tag, err := r.storage.pool.Exec(ctx, query, recipient, string(model.NotificationSending), id, string(model.NotificationPending))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, id, recipient string, status model.NotificationStatus) error {
	const query = `UPDATE notifications SET recipient=$1, status=$2, updated_at=NOW() WHERE id=$3`
	tag, err := r.storage.pool.Exec(ctx, query, recipient, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
