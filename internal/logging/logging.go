// Package logging constructs the tool's logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a structured logger writing to stderr, keeping stdout free for
// command output.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.WarnLevel
	}
	log.SetLevel(parsed)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}
	return log
}
