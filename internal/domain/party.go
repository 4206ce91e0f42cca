package domain

import "time"

// Represents a group waiting in the queue.
// Queue order is arrival order; JoinAt records when the party joined.
type Party struct {
	ID     string
	Size   int
	Note   string
	JoinAt time.Time
}
