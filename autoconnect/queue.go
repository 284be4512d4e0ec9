package autoconnect

import (
	"errors"
	"sync"
)

// EventType is the kind of lifecycle transition
type EventType int

const (
	// DeviceAdded is emitted when a trusted device starts being tracked
	DeviceAdded EventType = iota
	// DeviceRemoved is emitted when a tracked device disappeared
	DeviceRemoved
)

func (t EventType) String() string {
	switch t {
	case DeviceAdded:
		return "added"
	case DeviceRemoved:
		return "removed"
	}
	return "unknown"
}

// Event is a lifecycle transition of a tracked device
type Event struct {
	Type   EventType
	Device Device
}

// ErrNoReceiver is returned by Push after the receiving side closed the queue
var ErrNoReceiver = errors.New("event receiver is gone")

// EventQueue is an unbounded FIFO between the watcher and the supervisor. Push never
// blocks, so a slow supervisor cannot stall discovery.
type EventQueue struct {
	lck    sync.Mutex
	events []Event
	wake   chan struct{}
	closed bool
}

// NewEventQueue creates an empty open queue
func NewEventQueue() *EventQueue {
	return &EventQueue{wake: make(chan struct{}, 1)}
}

// Push appends an event or returns ErrNoReceiver if the queue was closed
func (q *EventQueue) Push(ev Event) error {
	q.lck.Lock()
	defer q.lck.Unlock()
	if q.closed {
		return ErrNoReceiver
	}
	q.events = append(q.events, ev)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pop removes the oldest event, false if the queue is empty
func (q *EventQueue) Pop() (Event, bool) {
	q.lck.Lock()
	defer q.lck.Unlock()
	if len(q.events) == 0 {
		return Event{}, false
	}
	ev := q.events[0]
	q.events[0] = Event{}
	q.events = q.events[1:]
	return ev, true
}

// Wait returns a channel that receives after a Push, check Pop again after it fired
func (q *EventQueue) Wait() <-chan struct{} {
	return q.wake
}

// Len returns the number of queued events
func (q *EventQueue) Len() int {
	q.lck.Lock()
	defer q.lck.Unlock()
	return len(q.events)
}

// Close is called by the receiver, pending events are dropped
func (q *EventQueue) Close() {
	q.lck.Lock()
	defer q.lck.Unlock()
	q.closed = true
	q.events = nil
}
