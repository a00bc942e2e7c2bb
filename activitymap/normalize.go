package activitymap

import (
	"context"
	"strconv"
	"strings"
	"time"

	blog "github.com/goliatone/go-blog"
)

const (
	// MetadataKeyEmail stores the address the event was recorded for
	MetadataKeyEmail = "email"
	// MetadataKeyOutcome stores success or failure, derived from the event type
	MetadataKeyOutcome = "outcome"
)

const (
	defaultChannel    = "auth"
	defaultObjectType = "user"
	defaultActorID    = "anonymous"
)

// Normalized is a transport agnostic activity shape for audit logs.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
	now           func() time.Time
}

// Normalize converts a blog.ActivityEvent into a Normalized record. Failed
// signups and logins for unknown emails have no user id, the actor falls back
// to "anonymous".
func Normalize(event blog.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	userID := ""
	if event.UserID > 0 {
		userID = strconv.FormatInt(event.UserID, 10)
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = options.now()
	}

	return Normalized{
		ActorID:    firstNonEmpty(userID, options.actorFallback),
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   userID,
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt.UTC(),
	}
}

// WithDefaultChannel sets the channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor id used when the event has no user.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

func withClock(now func() time.Time) Option {
	return func(opts *normalizeOptions) {
		if now != nil {
			opts.now = now
		}
	}
}

// Sink returns a blog.ActivitySink that logs each event as a Normalized record
func Sink(logger blog.Logger, opts ...Option) blog.ActivitySink {
	if logger == nil {
		logger = blog.DefaultLogger()
	}
	return blog.ActivitySinkFunc(func(ctx context.Context, event blog.ActivityEvent) error {
		record := Normalize(event, opts...)
		logger.Info("activity",
			"verb", record.Verb,
			"actor_id", record.ActorID,
			"object", record.ObjectType+":"+record.ObjectID,
			"channel", record.Channel,
			"metadata", record.Metadata,
			"occurred_at", record.OccurredAt,
		)
		return nil
	})
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
		now:           time.Now,
	}
}

func normalizeMetadata(event blog.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	if email := strings.TrimSpace(event.Email); email != "" {
		if _, exists := metadata[MetadataKeyEmail]; !exists {
			metadata[MetadataKeyEmail] = email
		}
	}

	switch {
	case strings.HasSuffix(string(event.EventType), ".success"):
		metadata[MetadataKeyOutcome] = "success"
	case strings.HasSuffix(string(event.EventType), ".failure"):
		metadata[MetadataKeyOutcome] = "failure"
	}

	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+2)
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
