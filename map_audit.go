package overlay

import (
	"context"

	"github.com/jameslkingsley/overlaymap/pkg/audit"
)

// WithAuditHooks attaches audit hooks to the map configuration. Hooks are
// cloned and nil entries dropped to preserve immutability.
func WithAuditHooks(hooks audit.Hooks) Option {
	normalized := cloneAuditHooks(hooks)
	return func(cfg *mapConfig) {
		cfg.auditHooks = normalized
	}
}

// WithAuditChannel overrides the default channel stamped on emitted events.
func WithAuditChannel(channel string) Option {
	return func(cfg *mapConfig) {
		cfg.auditChannel = channel
	}
}

// AuditHooks returns a cloned slice of the audit hooks configured on the
// map. The returned slice can be safely mutated by the caller.
func (m *Map[K, V]) AuditHooks() audit.Hooks {
	if m == nil {
		return nil
	}
	return cloneAuditHooks(m.cfg.auditHooks)
}

func cloneAuditHooks(hooks audit.Hooks) audit.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]audit.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return audit.Hooks(normalized)
}

func (m *Map[K, V]) logger() Logger {
	if m.cfg.logger != nil {
		return m.cfg.logger
	}
	return noopLogger{}
}

// emit dispatches a built event; hook failures go to the logger so mutating
// operations keep their non-failing contract.
func (m *Map[K, V]) emit(event audit.Event) {
	if err := m.emitter.Emit(context.Background(), event); err != nil {
		m.logger().Log(LogEvent{Op: "audit.emit", Key: event.ObjectID, Err: err})
	}
}

func (m *Map[K, V]) emitInsert(key K, value V) {
	if !m.emitter.Enabled() {
		return
	}
	m.emit(audit.BuildSetEvent(audit.MapEventInput{
		Key:        keyString(key),
		NewValue:   value,
		OccurredAt: m.cfg.clock(),
	}))
}

func (m *Map[K, V]) emitSet(key K, old, value V) {
	if !m.emitter.Enabled() {
		return
	}
	m.emit(audit.BuildSetEvent(audit.MapEventInput{
		Key:         keyString(key),
		OldValue:    old,
		NewValue:    value,
		HasPrevious: true,
		OccurredAt:  m.cfg.clock(),
	}))
}

func (m *Map[K, V]) emitReplace(key K, old, value V, hasPrevious bool) {
	if !m.emitter.Enabled() {
		return
	}
	m.emit(audit.BuildReplaceEvent(audit.MapEventInput{
		Key:         keyString(key),
		OldValue:    old,
		NewValue:    value,
		HadPrevious: hasPrevious,
		HasPrevious: hasPrevious,
		OccurredAt:  m.cfg.clock(),
	}))
}

func (m *Map[K, V]) emitRollback(key K, dropped, restored V) {
	if !m.emitter.Enabled() {
		return
	}
	m.emit(audit.BuildRollbackEvent(audit.MapEventInput{
		Key:         keyString(key),
		OldValue:    dropped,
		NewValue:    restored,
		HadPrevious: true,
		OccurredAt:  m.cfg.clock(),
	}))
}

func (m *Map[K, V]) emitRemove(key K, current V, hadPrevious bool) {
	if !m.emitter.Enabled() {
		return
	}
	m.emit(audit.BuildRemoveEvent(audit.MapEventInput{
		Key:         keyString(key),
		OldValue:    current,
		HadPrevious: hadPrevious,
		OccurredAt:  m.cfg.clock(),
	}))
}

func (m *Map[K, V]) emitPull(key K, out V, promoted bool) {
	if !m.emitter.Enabled() {
		return
	}
	m.emit(audit.BuildPullEvent(audit.MapEventInput{
		Key:         keyString(key),
		OldValue:    out,
		HadPrevious: promoted,
		OccurredAt:  m.cfg.clock(),
	}))
}

func (m *Map[K, V]) emitSwap(key K, evicted V, hadEvicted bool, value V) {
	if !m.emitter.Enabled() {
		return
	}
	input := audit.MapEventInput{
		Key:         keyString(key),
		NewValue:    value,
		HadPrevious: hadEvicted,
		HasPrevious: true,
		OccurredAt:  m.cfg.clock(),
	}
	if hadEvicted {
		input.OldValue = evicted
	}
	m.emit(audit.BuildSwapEvent(input))
}

func (m *Map[K, V]) emitClear(dropped int) {
	if !m.emitter.Enabled() {
		return
	}
	m.emit(audit.BuildClearEvent(audit.MapEventInput{
		Metadata:   map[string]any{"keys": dropped},
		OccurredAt: m.cfg.clock(),
	}))
}
