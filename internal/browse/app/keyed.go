package app

import "sync"

// keyedQueue orders work per product id. A turn is claimed when the caller
// asks, so turns for one key run in call order whatever goroutine picks them
// up.
type keyedQueue struct {
	mu    sync.Mutex
	tails map[int64]chan struct{}
}

// Claim reserves the next turn for key. prev is closed once every earlier
// turn on key is done, and is nil when there is none. done must be called
// exactly once.
func (k *keyedQueue) Claim(key int64) (prev <-chan struct{}, done func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tails == nil {
		k.tails = make(map[int64]chan struct{})
	}

	mine := make(chan struct{})
	if tail, ok := k.tails[key]; ok {
		prev = tail
	}
	k.tails[key] = mine

	return prev, func() {
		close(mine)
		k.mu.Lock()
		if k.tails[key] == mine {
			delete(k.tails, key)
		}
		k.mu.Unlock()
	}
}
