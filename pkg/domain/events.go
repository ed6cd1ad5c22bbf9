package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventSet   EventType = "set"
	EventAdd   EventType = "add"
	EventClear EventType = "clear"
	EventUndo  EventType = "undo"
	EventRedo  EventType = "redo"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// EditEvent describes one mutation attempted through an edit model.
type EditEvent struct {
	EventBase
	Label   string `json:"label"`
	Value   any    `json:"value,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Err     error  `json:"-"`
}

// EditHooks defines callbacks for edit observability.
type EditHooks struct {
	OnEdit     func(*EditEvent)
	OnUndo     func(*EditEvent)
	OnRedo     func(*EditEvent)
	OnRejected func(*EditEvent)
}

// NewEditEvent stamps an event of the given type.
func NewEditEvent(t EventType, label string, value any, err error) *EditEvent {
	return &EditEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: t},
		Label:     label,
		Value:     value,
		IsError:   err != nil,
		Err:       err,
	}
}

// Emit dispatches evt to the matching callback.
func (h EditHooks) Emit(evt *EditEvent) {
	var fn func(*EditEvent)
	switch {
	case evt.IsError:
		fn = h.OnRejected
	case evt.Type == EventUndo:
		fn = h.OnUndo
	case evt.Type == EventRedo:
		fn = h.OnRedo
	default:
		fn = h.OnEdit
	}
	if fn != nil {
		fn(evt)
	}
}
