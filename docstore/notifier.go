package docstore

import "sync"

// Notifier is a per-collection change fan-out shared by Store
// implementations. Callbacks run synchronously on the mutating goroutine,
// outside any store lock.
type Notifier struct {
	mu          sync.Mutex
	subscribers map[string]map[int]ChangeFunc
	nextID      int
}

// Subscribe registers fn for a collection and returns the unsubscribe
// function.
func (n *Notifier) Subscribe(collection string, fn ChangeFunc) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subscribers == nil {
		n.subscribers = make(map[string]map[int]ChangeFunc)
	}
	if n.subscribers[collection] == nil {
		n.subscribers[collection] = make(map[int]ChangeFunc)
	}
	id := n.nextID
	n.nextID++
	n.subscribers[collection][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers[collection], id)
	}
}

// Notify invokes every subscriber of a collection.
func (n *Notifier) Notify(collection string) {
	n.mu.Lock()
	fns := make([]ChangeFunc, 0, len(n.subscribers[collection]))
	for _, fn := range n.subscribers[collection] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
