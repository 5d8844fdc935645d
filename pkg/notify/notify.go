// Package notify carries user-facing outcome events from the editor core to
// whatever presents them (toasts in a terminal, log lines, HTTP responses).
//
// The core never renders anything; it emits an [Event] describing what
// happened and a front end decides how to show it.
package notify

import (
	"fmt"
	"sync"
)

// Kind classifies an event.
type Kind string

const (
	KindAdded      Kind = "added"
	KindDeleted    Kind = "deleted"
	KindCopied     Kind = "copied"
	KindPasted     Kind = "pasted"
	KindDuplicated Kind = "duplicated"
	KindCreated    Kind = "created"
	KindLoaded     Kind = "loaded"
	KindSaved      Kind = "saved"
	KindError      Kind = "error"
)

// Event is one user-visible outcome.
type Event struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// NodeType and ID identify the affected node or document, when any.
	NodeType string `json:"nodeType,omitempty"`
	ID       string `json:"id,omitempty"`
}

// IsError reports whether the event describes a failure.
func (e Event) IsError() bool { return e.Kind == KindError }

// String renders the event as "Title: Description".
func (e Event) String() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Description)
}

// Notifier receives events.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

// Nop discards all events.
var Nop Notifier = NotifierFunc(func(Event) {})

// OrNop returns n, or [Nop] if n is nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop
	}
	return n
}

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify records e.
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last returns the most recent event and whether there was one.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// =============================================================================
// Constructors
// =============================================================================

// Added reports a new node of nodeType.
func Added(nodeType, id string) Event {
	return Event{Kind: KindAdded, Title: "Added", Description: fmt.Sprintf("New %s node has been added", nodeType), NodeType: nodeType, ID: id}
}

// Deleted reports a removed node.
func Deleted(nodeType, id string) Event {
	return Event{Kind: KindDeleted, Title: "Deleted", Description: fmt.Sprintf("%s node has been deleted", nodeType), NodeType: nodeType, ID: id}
}

// Copied reports a node written to the clipboard.
func Copied(nodeType, id string) Event {
	return Event{Kind: KindCopied, Title: "Copied", Description: "Node copied to clipboard", NodeType: nodeType, ID: id}
}

// Pasted reports clipboard data applied to a node.
func Pasted(nodeType, id string) Event {
	return Event{Kind: KindPasted, Title: "Pasted", Description: "Node pasted successfully", NodeType: nodeType, ID: id}
}

// PastedAsNew reports a node created from the clipboard.
func PastedAsNew(nodeType, id string) Event {
	return Event{Kind: KindPasted, Title: "Created", Description: "New node created from clipboard", NodeType: nodeType, ID: id}
}

// Duplicated reports a node copy.
func Duplicated(nodeType, id string) Event {
	return Event{Kind: KindDuplicated, Title: "Duplicated", Description: "Node has been duplicated", NodeType: nodeType, ID: id}
}

// Created reports a new document.
func Created(name string) Event {
	return Event{Kind: KindCreated, Title: "Created", Description: fmt.Sprintf("New mind map %q created", name), ID: name}
}

// Loaded reports an opened document.
func Loaded(name string) Event {
	return Event{Kind: KindLoaded, Title: "Success", Description: fmt.Sprintf("Mind map %q loaded", name), ID: name}
}

// Saved reports a stored document.
func Saved(name string) Event {
	return Event{Kind: KindSaved, Title: "Success", Description: fmt.Sprintf("Mind map %q saved", name), ID: name}
}

// Removed reports a deleted document.
func Removed(name string) Event {
	return Event{Kind: KindDeleted, Title: "Success", Description: fmt.Sprintf("Mind map %q deleted", name), ID: name}
}

// Failed reports a failure with a user-facing description.
func Failed(format string, args ...any) Event {
	return Event{Kind: KindError, Title: "Error", Description: fmt.Sprintf(format, args...)}
}
