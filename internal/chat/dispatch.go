package chat

import "sync"

// orderedDispatcher runs handler on its own goroutine per user, delivering
// each user's messages in arrival order. Different users proceed in parallel.
type orderedDispatcher struct {
	mu      sync.Mutex
	queues  map[string][]InboundMessage
	handler func(InboundMessage)
}

func newOrderedDispatcher(handler func(InboundMessage)) *orderedDispatcher {
	return &orderedDispatcher{
		queues:  make(map[string][]InboundMessage),
		handler: handler,
	}
}

// dispatch queues msg and starts a drain goroutine if the user has none.
func (d *orderedDispatcher) dispatch(msg InboundMessage) {
	d.mu.Lock()
	q, running := d.queues[msg.UserID]
	d.queues[msg.UserID] = append(q, msg)
	d.mu.Unlock()

	if !running {
		go d.drain(msg.UserID)
	}
}

// drain handles queued messages until the user's queue is empty, then
// removes it so the next message starts a fresh goroutine.
func (d *orderedDispatcher) drain(userID string) {
	for {
		d.mu.Lock()
		q := d.queues[userID]
		if len(q) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		msg := q[0]
		d.queues[userID] = q[1:]
		d.mu.Unlock()

		d.handler(msg)
	}
}

func (d *orderedDispatcher) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}
