package reactor

import (
	"fmt"

	"eventstream-toolkit/stream"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

type scheduledAction struct {
	stream *stream.Stream
	action Action
}

// Reactor replays scripted actions against streams on the calling goroutine.
// Actions run strictly in the order they were scheduled: each one is applied
// to its stream and then the stream's read callback fires.
//
// A Reactor is not safe for concurrent use.
type Reactor struct {
	streams    []*stream.Stream
	registered map[*stream.Stream]struct{}
	retired    map[*stream.Stream]struct{}

	actions deque.Deque

	playing bool
}

func New() *Reactor {
	return &Reactor{
		registered: make(map[*stream.Stream]struct{}),
		retired:    make(map[*stream.Stream]struct{}),
	}
}

// Register adds s to the set of streams fired in flush mode.
// Registering the same stream twice is a no-op.
func (r *Reactor) Register(s *stream.Stream) error {
	if s == nil {
		return ErrNilStream
	}
	if _, ok := r.registered[s]; ok {
		return nil
	}
	delete(r.retired, s)
	r.registered[s] = struct{}{}
	r.streams = append(r.streams, s)
	return nil
}

// Unregister removes s. Actions already scheduled against it fail when
// Play reaches them and new ones are rejected.
func (r *Reactor) Unregister(s *stream.Stream) {
	if _, ok := r.registered[s]; !ok {
		return
	}
	delete(r.registered, s)
	for i, rs := range r.streams {
		if rs == s {
			r.streams = append(r.streams[:i], r.streams[i+1:]...)
			break
		}
	}
	r.retired[s] = struct{}{}
}

func (r *Reactor) Streams() []*stream.Stream {
	out := make([]*stream.Stream, len(r.streams))
	copy(out, r.streams)
	return out
}

// Schedule appends a to the action queue, bound to s.
// s does not need to be registered.
func (r *Reactor) Schedule(s *stream.Stream, a Action) error {
	if s == nil {
		return ErrNilStream
	}
	if a == nil {
		return ErrNilAction
	}
	if _, ok := r.retired[s]; ok {
		return fmt.Errorf("schedule on stream %d: %w", s.ID(), ErrStaleStream)
	}
	r.actions.PushBack(scheduledAction{s, a})
	return nil
}

// Pending returns the number of actions not yet consumed.
func (r *Reactor) Pending() int {
	return r.actions.Len()
}

// Reset discards every pending action.
func (r *Reactor) Reset() {
	r.actions = deque.Deque{}
}

// Play consumes the queued actions in order. With an empty queue it falls
// back to flush mode.
//
// Play stops at the first failure and returns it; the remaining actions stay
// queued. Actions scheduled by callbacks during Play run in the same pass.
func (r *Reactor) Play() error {
	if r.playing {
		return ErrReentrantPlay
	}
	r.playing = true
	defer func() {
		r.playing = false
	}()

	if r.actions.Len() == 0 {
		return r.flush()
	}
	for seq := 1; r.actions.Len() > 0; seq++ {
		sa := r.actions.PopFront().(scheduledAction)
		logFields := logrus.Fields{
			"seq":    seq,
			"stream": sa.stream.ID(),
		}
		if _, ok := r.retired[sa.stream]; ok {
			return fmt.Errorf("action %d on stream %d: %w", seq, sa.stream.ID(), ErrStaleStream)
		}
		ctl, err := sa.action.Apply(sa.stream)
		if err != nil {
			log.WithFields(logFields).Warnf("Assertion failed: %v", err)
			return &AssertionError{
				Seq:      seq,
				StreamID: sa.stream.ID(),
				Err:      err,
			}
		}
		fired, err := sa.stream.FireRead()
		if err != nil {
			return fmt.Errorf("action %d on stream %d: %w", seq, sa.stream.ID(), err)
		}
		log.WithFields(logFields).Debugf("Applied action, fired=%v", fired)
		if ctl == Stop {
			log.WithFields(logFields).Debugf("Stopping with %d actions pending", r.actions.Len())
			return nil
		}
	}
	return nil
}

// Flush fires every registered stream once, in registration order,
// regardless of the action queue.
func (r *Reactor) Flush() error {
	if r.playing {
		return ErrReentrantPlay
	}
	r.playing = true
	defer func() {
		r.playing = false
	}()
	return r.flush()
}

func (r *Reactor) flush() error {
	// Callbacks may unregister streams while we iterate.
	for _, s := range r.Streams() {
		if _, ok := r.retired[s]; ok {
			continue
		}
		if _, err := s.FireRead(); err != nil {
			return fmt.Errorf("flush stream %d: %w", s.ID(), err)
		}
	}
	log.Debugf("Flushed %d streams", len(r.streams))
	return nil
}
