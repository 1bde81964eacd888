// Package script loads reactor scenarios from YAML documents.
//
// A scenario names its streams, optionally attaches a protocol to each, and
// lists the steps the reactor replays:
//
//	streams:
//	  - name: client
//	    protocol: ping
//	steps:
//	  - stream: client
//	    arrive: "ping?"
//	  - stream: client
//	    expect_written: "pong!"
//	    stop: true
package script

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"

	"eventstream-toolkit/netem"
	"eventstream-toolkit/reactor"
	"eventstream-toolkit/stream"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownProtocol = errors.New("unknown protocol")
	ErrUnknownStream   = errors.New("unknown stream")
	ErrEmptyStep       = errors.New("step does nothing")
)

// Installer attaches a protocol to a freshly built stream.
type Installer func(s *stream.Stream)

type Script struct {
	Streams []StreamSpec `yaml:"streams"`
	Steps   []Step       `yaml:"steps"`
}

type StreamSpec struct {
	Name     string `yaml:"name"`
	Protocol string `yaml:"protocol,omitempty"`
}

// Step runs its parts in a fixed order: the written-bytes check, the
// arrival, then end-of-input. A shaped arrival is split into several
// actions, each firing the stream's callback.
type Step struct {
	Stream        string        `yaml:"stream"`
	Arrive        *string       `yaml:"arrive,omitempty"`
	ArriveHex     string        `yaml:"arrive_hex,omitempty"`
	Shape         *netem.Config `yaml:"shape,omitempty"`
	EOF           bool    `yaml:"eof,omitempty"`
	ExpectWritten *string `yaml:"expect_written,omitempty"`
	Stop          bool    `yaml:"stop,omitempty"`
}

func Load(r io.Reader) (*Script, error) {
	sc := &Script{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(sc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate reports every problem in the script at once.
func (sc *Script) Validate() error {
	var result error
	names := make(map[string]struct{}, len(sc.Streams))
	for i, ss := range sc.Streams {
		if ss.Name == "" {
			result = multierror.Append(result, fmt.Errorf("stream %d: missing name", i))
			continue
		}
		if _, ok := names[ss.Name]; ok {
			result = multierror.Append(result, fmt.Errorf("stream %q: duplicate name", ss.Name))
		}
		names[ss.Name] = struct{}{}
	}
	for i, step := range sc.Steps {
		if _, ok := names[step.Stream]; !ok {
			result = multierror.Append(result, fmt.Errorf("step %d: %w %q", i, ErrUnknownStream, step.Stream))
		}
		if step.Arrive == nil && step.ArriveHex == "" && !step.EOF && step.ExpectWritten == nil && !step.Stop {
			result = multierror.Append(result, fmt.Errorf("step %d: %w", i, ErrEmptyStep))
		}
		if step.Arrive != nil && step.ArriveHex != "" {
			result = multierror.Append(result, fmt.Errorf("step %d: both arrive and arrive_hex set", i))
		}
		if step.Shape != nil && step.Arrive == nil && step.ArriveHex == "" {
			result = multierror.Append(result, fmt.Errorf("step %d: shape without arrival", i))
		}
		if _, err := hex.DecodeString(step.ArriveHex); err != nil {
			result = multierror.Append(result, fmt.Errorf("step %d: arrive_hex: %w", i, err))
		}
	}
	return result
}

// Build creates one stream per StreamSpec, registers it with r, installs its
// protocol and schedules every step. installers maps protocol names to
// their Installer; streams without a protocol get no callback.
func (sc *Script) Build(r *reactor.Reactor, installers map[string]Installer) (map[string]*stream.Stream, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	streams := make(map[string]*stream.Stream, len(sc.Streams))
	for _, ss := range sc.Streams {
		s := stream.New(stream.DefaultConfig())
		if ss.Protocol != "" {
			install, ok := installers[ss.Protocol]
			if !ok {
				return nil, fmt.Errorf("stream %q: %w %q", ss.Name, ErrUnknownProtocol, ss.Protocol)
			}
			install(s)
		}
		if err := r.Register(s); err != nil {
			return nil, err
		}
		streams[ss.Name] = s
	}
	for i, step := range sc.Steps {
		for _, a := range step.actions() {
			if err := r.Schedule(streams[step.Stream], a); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
		}
	}
	return streams, nil
}

// Names returns the stream names in sorted order.
func (sc *Script) Names() []string {
	names := make([]string, 0, len(sc.Streams))
	for _, ss := range sc.Streams {
		names = append(names, ss.Name)
	}
	sort.Strings(names)
	return names
}

func (step Step) inbound() []byte {
	if step.Arrive != nil {
		return []byte(*step.Arrive)
	}
	// Validated beforehand.
	b, _ := hex.DecodeString(step.ArriveHex)
	return b
}

func (step Step) actions() []reactor.Action {
	if step.Shape == nil {
		return []reactor.Action{step.action(step.inbound())}
	}
	var actions []reactor.Action
	if step.ExpectWritten != nil {
		actions = append(actions, reactor.ExpectWritten([]byte(*step.ExpectWritten)))
	}
	for _, f := range netem.Shape(step.inbound(), *step.Shape) {
		actions = append(actions, reactor.Arrive(f))
	}
	if step.EOF || step.Stop {
		tail := Step{EOF: step.EOF, Stop: step.Stop}
		actions = append(actions, tail.action(nil))
	}
	return actions
}

func (step Step) action(inbound []byte) reactor.Action {
	var expect []byte
	if step.ExpectWritten != nil {
		expect = []byte(*step.ExpectWritten)
	}
	a := reactor.ActionFunc(func(s *stream.Stream) (reactor.Control, error) {
		if step.ExpectWritten != nil {
			if _, err := reactor.ExpectWritten(expect).Apply(s); err != nil {
				return reactor.Continue, err
			}
		}
		if len(inbound) > 0 {
			if _, err := reactor.Arrive(inbound).Apply(s); err != nil {
				return reactor.Continue, err
			}
		}
		if step.EOF {
			s.CloseRead()
		}
		return reactor.Continue, nil
	})
	if step.Stop {
		return reactor.Halt(a)
	}
	return a
}
