package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shopflow/choreography/internal/domain/model"
)

const insertOutbox = `INSERT INTO outbox (event_id, topic, key, payload, headers, created_at)
                      VALUES ($1, $2, $3, $4, $5, $6)
                      ON CONFLICT (event_id) DO NOTHING`

// insertOutboxTx stores messages in the caller's transaction.
func insertOutboxTx(ctx context.Context, tx pgx.Tx, messages ...model.OutboxMessage) error {
	for _, msg := range messages {
		headers, err := json.Marshal(msg.Headers)
		if err != nil {
			return fmt.Errorf("encode outbox headers: %w", err)
		}
		createdAt := msg.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.Exec(ctx, insertOutbox, msg.EventID, msg.Topic, msg.Key, msg.Payload, headers, createdAt); err != nil {
			return fmt.Errorf("insert outbox %s: %w", msg.Topic, err)
		}
	}
	return nil
}

func (r *outboxRepository) ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]model.OutboxMessage, error) {
	const selectQuery = `SELECT id, event_id, topic, key, payload, headers, attempts, created_at
                         FROM outbox
                         WHERE published_at IS NULL AND (locked_until IS NULL OR locked_until < $1)
                         ORDER BY id
                         LIMIT $2
                         FOR UPDATE SKIP LOCKED`
	const leaseQuery = `UPDATE outbox SET locked_until=$1 WHERE id=$2`

	var messages []model.OutboxMessage
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		rows, err := tx.Query(ctx, selectQuery, now, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				msg     model.OutboxMessage
				headers []byte
			)
			if err := rows.Scan(&msg.ID, &msg.EventID, &msg.Topic, &msg.Key, &msg.Payload, &headers, &msg.Attempts, &msg.CreatedAt); err != nil {
				return err
			}
			if len(headers) > 0 {
				if err := json.Unmarshal(headers, &msg.Headers); err != nil {
					return fmt.Errorf("decode outbox headers: %w", err)
				}
			}
			messages = append(messages, msg)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		lockedUntil := now.Add(lease)
		for i := range messages {
			if _, err := tx.Exec(ctx, leaseQuery, lockedUntil, messages[i].ID); err != nil {
				return err
			}
			messages[i].LockedUntil = &lockedUntil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id int64) error {
	const query = `UPDATE outbox SET published_at=NOW(), locked_until=NULL WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, id)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, cause error) error {
	const query = `UPDATE outbox SET attempts=attempts+1, last_error=$1 WHERE id=$2`
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := r.storage.pool.Exec(ctx, query, msg, id)
	return err
}
