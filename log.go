package tally

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(os.Stderr)
	return l
}

// Logger returns the logger shared by all tally packages.
func Logger() *logrus.Logger {
	return logg
}

// SetLogger replaces the shared logger. A nil logger is ignored.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logg = l
	}
}

// LogError logs err with the module/function/context fields used across the
// code base.
func LogError(moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logg.WithFields(fields).Error(err.Error())
}
