package audit

import (
	"strings"
	"time"
)

// MapEventInput describes the common fields for overlay map lifecycle events.
type MapEventInput struct {
	ActorID     string
	UserID      string
	TenantID    string
	ObjectID    string
	Channel     string
	Recipients  []string
	Metadata    map[string]any
	Key         string
	OldValue    any
	NewValue    any
	HadPrevious bool // a previous layer existed before the operation
	HasPrevious bool // a previous layer exists after the operation
	OccurredAt  time.Time
}

// BuildSetEvent constructs a normalized event for a commit-then-set update.
func BuildSetEvent(input MapEventInput) Event {
	return buildMapEvent("overlay.set", "entry", input)
}

// BuildReplaceEvent constructs an event for an in-place current overwrite.
func BuildReplaceEvent(input MapEventInput) Event {
	return buildMapEvent("overlay.replace", "entry", input)
}

// BuildRollbackEvent constructs an event for a previous-into-current restore.
func BuildRollbackEvent(input MapEventInput) Event {
	return buildMapEvent("overlay.rollback", "entry", input)
}

// BuildRemoveEvent constructs an event for a key deletion.
func BuildRemoveEvent(input MapEventInput) Event {
	return buildMapEvent("overlay.remove", "entry", input)
}

// BuildPullEvent constructs an event for a consuming current-value take.
func BuildPullEvent(input MapEventInput) Event {
	return buildMapEvent("overlay.pull", "entry", input)
}

// BuildSwapEvent constructs an event for a push that surfaced the evicted
// previous value.
func BuildSwapEvent(input MapEventInput) Event {
	return buildMapEvent("overlay.swap", "entry", input)
}

// BuildClearEvent constructs an event for a whole-map clear.
func BuildClearEvent(input MapEventInput) Event {
	return buildMapEvent("overlay.clear", "map", input)
}

func buildMapEvent(verb, objectType string, input MapEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Key != "" {
		metadata = ensureMetadata(metadata)
		metadata["key"] = input.Key
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}
	if input.HadPrevious {
		metadata = ensureMetadata(metadata)
		metadata["had_previous"] = true
	}
	if input.HasPrevious {
		metadata = ensureMetadata(metadata)
		metadata["has_previous"] = true
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Key)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Recipients: recipients,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
