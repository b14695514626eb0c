// Package queue defines message payloads exchanged over the message
// broker and the background consumer that refreshes guild mirrors.
package queue

// SyncQueueName is the durable queue carrying mirror refresh requests.
const SyncQueueName = "inventory.sync"

// SyncRequestedEvent is published after any committed inventory
// mutation.  It is a trigger, not a delta: the consumer rebuilds the
// guild's mirror from the primary database, so duplicated or reordered
// deliveries converge to the same result.
type SyncRequestedEvent struct {
	GuildID     uint64 `json:"guild_id"`
	RequestedAt string `json:"requested_at"`
}
