package stream

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = &logrus.Logger{
	Out:   os.Stderr,
	Level: logrus.WarnLevel,
	Formatter: &logrus.TextFormatter{
		FullTimestamp: true,
	},
}

// Logger returns the package logger so binaries can tune its level.
func Logger() *logrus.Logger {
	return log
}
