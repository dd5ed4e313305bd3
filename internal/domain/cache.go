package domain

import "context"

// Cache is a best-effort key/value store for derived facts. A miss is a
// normal, expected condition; no durability or consistency is guaranteed.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Task names dispatched through the TaskScheduler.
const (
	TaskRefreshFeaturedSpeaker = "featured_speaker.refresh"
	TaskRefreshAnnouncement    = "announcement.refresh"
	TaskSendConfirmationEmail  = "email.conference_confirmation"
)

// TaskScheduler is the fire-and-forget deferred work port. Delivery is
// at-least-once, so handlers must be idempotent. Scheduling happens before
// or after the triggering mutation commits; a handler failure never rolls
// the trigger back.
type TaskScheduler interface {
	Schedule(ctx context.Context, task string, payload map[string]string) error
}

// TaskHandler processes one delivery of a scheduled task.
type TaskHandler func(ctx context.Context, payload map[string]string) error
