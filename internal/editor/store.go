package editor

import (
	"context"
	"sync"

	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
)

var ErrStoreClosed = apperrors.NewProcessingError("editor store is closed", nil)

const subscriberBuffer = 16

type request struct {
	action Action
	reply  chan result
}

type result struct {
	state State
	err   error
}

// Store is the single owner of a session's State. Actions are applied one at
// a time by Run; readers get immutable snapshots.
type Store struct {
	requests chan request
	done     chan struct{}

	mu          sync.RWMutex
	state       State
	subscribers map[chan State]struct{}
	closeOnce   sync.Once
}

// NewStore 创建状态仓库，需要调用 Run 才会处理动作
func NewStore(initial State) *Store {
	return &Store{
		requests:    make(chan request),
		done:        make(chan struct{}),
		state:       initial,
		subscribers: make(map[chan State]struct{}),
	}
}

// Run applies dispatched actions until ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	defer s.close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.requests:
			req.reply <- s.apply(req.action)
		}
	}
}

func (s *Store) apply(a Action) result {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, a)
	if err != nil {
		return result{state: s.state, err: err}
	}
	s.state = next

	// 非阻塞发送，持锁期间 cancel 不会关闭通道
	for ch := range s.subscribers {
		select {
		case ch <- next:
		default:
			// 订阅者太慢，丢弃这一帧；下一次变更会带上完整快照
		}
	}
	return result{state: next}
}

// Dispatch sends a to the owner goroutine and waits for the resulting state.
// On error the returned state is the unchanged current one.
func (s *Store) Dispatch(ctx context.Context, a Action) (State, error) {
	reply := make(chan result, 1)

	select {
	case s.requests <- request{action: a, reply: reply}:
	case <-s.done:
		return s.Snapshot(), ErrStoreClosed
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}

	// Run always answers an accepted request
	res := <-reply
	return res.state, res.err
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel receiving every new snapshot and a cancel func.
// The channel is closed by cancel or when the store stops.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)

	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subscribers[ch]; ok {
				delete(s.subscribers, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Done is closed once Run has returned.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

func (s *Store) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		close(s.done)
		for ch := range s.subscribers {
			delete(s.subscribers, ch)
			close(ch)
		}
	})
}
