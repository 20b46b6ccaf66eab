package model

import "time"

// OutboxMessage is an integration event stored alongside the state change it describes.
type OutboxMessage struct {
	ID          int64
	EventID     string
	Topic       string
	Key         string
	Payload     []byte
	Headers     map[string]string
	Attempts    int
	CreatedAt   time.Time
	LockedUntil *time.Time
	PublishedAt *time.Time
}
