package trade

import "sync"

// Locks serialises AddFill per trade id for callers that share trades
// across goroutines. The zero value is ready to use.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

// Lock blocks until the lock for id is held and returns its release func.
func (l *Locks) Lock(id string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*refLock)
	}
	rl, ok := l.locks[id]
	if !ok {
		rl = &refLock{}
		l.locks[id] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.Lock()
	return func() {
		rl.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// AddFill is the package-level AddFill run under the lock for t.ID.
func (l *Locks) AddFill(t *Trade, f Fill) error {
	unlock := l.Lock(t.ID)
	defer unlock()
	return AddFill(t, f)
}

func (l *Locks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
