package sim

// NotificationKind tags which kind of resource changed.
type NotificationKind string

const (
	KindOccupancy NotificationKind = "occupancy"
	KindQueue     NotificationKind = "queue"
)

// Notification is emitted on every occupancy or queue-length change.
// Name is the section (for occupancy) or queue name (for queue length).
type Notification struct {
	Kind  NotificationKind `json:"kind"`
	Name  string           `json:"name"`
	Time  float64          `json:"time"`
	Value int              `json:"value"`
}

// Observer receives the notifications emitted while one event was handled.
// The batch slice is reused after Observe returns; implementations that keep
// notifications must copy them.
type Observer interface {
	Observe(batch []Notification)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(batch []Notification)

// Observe implements Observer.
func (f ObserverFunc) Observe(batch []Notification) {
	f(batch)
}

// NotificationLog is an Observer that retains every notification in order.
type NotificationLog struct {
	entries []Notification
}

// Observe implements Observer.
func (l *NotificationLog) Observe(batch []Notification) {
	l.entries = append(l.entries, batch...)
}

// Entries returns the retained notifications. Callers MUST NOT mutate it.
func (l *NotificationLog) Entries() []Notification {
	return l.entries
}

// Latest returns the most recent value reported for (kind, name), or false.
func (l *NotificationLog) Latest(kind NotificationKind, name string) (int, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		n := l.entries[i]
		if n.Kind == kind && n.Name == name {
			return n.Value, true
		}
	}
	return 0, false
}

// notifier buffers notifications raised during one event and hands them to
// observers once the handler returns.
type notifier struct {
	pending   []Notification
	observers []Observer
}

func (n *notifier) emit(kind NotificationKind, name string, at float64, value int) {
	n.pending = append(n.pending, Notification{Kind: kind, Name: name, Time: at, Value: value})
}

func (n *notifier) flush() {
	if len(n.pending) == 0 {
		return
	}
	for _, o := range n.observers {
		o.Observe(n.pending)
	}
	n.pending = n.pending[:0]
}
