package main

import (
	"fmt"
	"os"

	"eventstream-toolkit/netem"
	"eventstream-toolkit/protocol"
	"eventstream-toolkit/reactor"
	"eventstream-toolkit/script"
	"eventstream-toolkit/stream"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = &logrus.Logger{
	Out:   os.Stdout,
	Level: logrus.InfoLevel,
	Formatter: &logrus.TextFormatter{
		FullTimestamp: true,
	},
}

type options struct {
	file     string
	logLevel string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "replay",
		Short:         "Replay a scripted stream scenario",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return start(opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "scenario file (YAML)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level for every package")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func start(opts *options) error {
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	for _, l := range []*logrus.Logger{log, stream.Logger(), reactor.Logger(), netem.Logger(), protocol.Logger()} {
		l.SetLevel(level)
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()
	sc, err := script.Load(f)
	if err != nil {
		return err
	}

	r := reactor.New()
	streams, err := sc.Build(r, installers())
	if err != nil {
		return err
	}
	log.Infof("Playing %d steps over %d streams", r.Pending(), len(streams))
	playErr := r.Play()
	for _, name := range sc.Names() {
		log.WithField("stream", name).Infof("Written: %q", streams[name].Written())
	}
	if playErr != nil {
		return fmt.Errorf("replay aborted with %d steps pending: %w", r.Pending(), playErr)
	}
	return nil
}

func installers() map[string]script.Installer {
	return map[string]script.Installer{
		"ping": func(s *stream.Stream) {
			protocol.NewPing(s)
		},
		"echo": func(s *stream.Stream) {
			protocol.NewEcho(s, protocol.DefaultEchoConfig())
		},
	}
}
