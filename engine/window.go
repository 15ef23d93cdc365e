package engine

import "github.com/gogpu/framegraph"

// EventKind distinguishes window event types.
type EventKind uint32

const (
	// EventCloseRequested signals the user asked to close the window.
	EventCloseRequested EventKind = iota + 1

	// EventKeyDown signals a key press; Event.Key holds the key.
	EventKeyDown

	// EventResized signals the window extent changed; the new size is
	// observed via Window.Dimensions on the same tick.
	EventResized
)

// Key identifies a pressed key. Only the keys the loop reacts to are
// named.
type Key uint32

const (
	// KeyUnknown is any key without engine-level meaning.
	KeyUnknown Key = iota

	// KeyEscape quits the loop.
	KeyEscape
)

// Event is one window event delivered by PollEvents.
type Event struct {
	Kind EventKind
	Key  Key
}

// Window abstracts the host window. Implementations wrap whatever
// windowing framework the host application uses.
type Window interface {
	// Dimensions returns the current drawable size in pixels, or nil
	// while the window is minimized or not yet realized.
	Dimensions() *framegraph.Dimensions

	// PollEvents drains and returns the events since the last call.
	PollEvents() []Event
}
