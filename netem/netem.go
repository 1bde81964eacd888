package netem

import (
	"eventstream-toolkit/reactor"
	"eventstream-toolkit/stream"

	"github.com/sirupsen/logrus"
)

// Config shapes a payload into scripted arrivals. Every counter is
// deterministic, so the same payload and Config always give the same
// arrivals.
type Config struct {
	// The size of emulated packet fragmentations.
	// Zero value delivers the payload in a single arrival.
	FragmentSize int `yaml:"fragment_size,omitempty"`
	// Fragment at every nth would be discarded to emulate packet loss.
	// Zero value means no emulation of packet loss.
	LossNth int `yaml:"loss_nth,omitempty"`
	// Fragment at every nth would be delivered twice to emulate packet duplication.
	// Zero value means no emulation of packet duplication.
	DuplicateNth int `yaml:"duplicate_nth,omitempty"`
	// Fragment at every nth would be swapped with its successor to emulate packet reordering.
	// Zero value means no emulation of packet reordering.
	ReorderNth int `yaml:"reorder_nth,omitempty"`
}

func DefaultConfig() Config {
	return Config{}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.FragmentSize < 0 {
		cfg.FragmentSize = 0
	}
	if cfg.LossNth < 0 {
		cfg.LossNth = 0
	}
	if cfg.DuplicateNth < 0 {
		cfg.DuplicateNth = 0
	}
	if cfg.ReorderNth < 0 {
		cfg.ReorderNth = 0
	}
	return cfg
}

// Shape splits payload into the arrivals described by cfg.
func Shape(payload []byte, cfg Config) [][]byte {
	cfg = sanitizeConfig(cfg)
	if len(payload) == 0 {
		return nil
	}
	fs := cfg.FragmentSize
	if fs == 0 || fs > len(payload) {
		fs = len(payload)
	}
	var fragments [][]byte
	for b := payload; len(b) > 0; {
		if fs > len(b) {
			fs = len(b)
		}
		f := make([]byte, fs)
		copy(f, b)
		fragments = append(fragments, f)
		b = b[fs:]
	}

	nth := func(n int, counter int) bool {
		return n > 0 && counter%n == 0
	}
	arrivals := make([][]byte, 0, len(fragments))
	for i := 0; i < len(fragments); i++ {
		counter := i + 1
		logFields := logrus.Fields{
			"counter": counter,
			"size":    len(fragments[i]),
		}
		switch {
		case nth(cfg.LossNth, counter):
			log.WithFields(logFields).Debug("Simulating packet loss")
			continue
		case nth(cfg.ReorderNth, counter) && i+1 < len(fragments):
			log.WithFields(logFields).Debug("Simulating packet reordering")
			arrivals = append(arrivals, fragments[i+1], fragments[i])
			i++
			continue
		}
		arrivals = append(arrivals, fragments[i])
		if nth(cfg.DuplicateNth, counter) {
			log.WithFields(logFields).Debug("Simulating packet duplication")
			arrivals = append(arrivals, fragments[i])
		}
	}
	return arrivals
}

// Schedule queues every shaped arrival of payload on s, in order.
func Schedule(r *reactor.Reactor, s *stream.Stream, payload []byte, cfg Config) error {
	for _, f := range Shape(payload, cfg) {
		if err := r.Schedule(s, reactor.Arrive(f)); err != nil {
			return err
		}
	}
	return nil
}
