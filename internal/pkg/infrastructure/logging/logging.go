package logging

import (
	log "github.com/sirupsen/logrus"
)

//Fields are structured key/value pairs attached to every message of a logger
type Fields map[string]interface{}

//Logger interface that allows abstracting away the concrete logger implementation we are using
type Logger interface {
	//Fatal causes the application to terminate with the given error message
	Fatal(args ...interface{})
	//Fatalf causes the application to terminate with the given error message
	Fatalf(format string, args ...interface{})
	//Error logs a message at ERROR level
	Error(args ...interface{})
	//Errorf logs a message at ERROR level
	Errorf(format string, args ...interface{})
	//Warnf logs a message at WARN level
	Warnf(format string, args ...interface{})
	//Infof logs a message at INFO level
	Infof(format string, args ...interface{})
	//Debugf logs a message at DEBUG level
	Debugf(format string, args ...interface{})
	//WithFields returns a logger that adds fields to every message
	WithFields(fields Fields) Logger
}

//NewLogger instantiates a new logger and returns it
func NewLogger() Logger {
	log.SetFormatter(&log.JSONFormatter{})
	return &logger{entry: log.NewEntry(log.StandardLogger())}
}

//SetLevel changes the level of the standard logger, e.g. "debug" or "warn".
//Unknown levels are ignored.
func SetLevel(level string) {
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
}

type logger struct {
	entry *log.Entry
}

func (l *logger) Error(args ...interface{}) {
	l.entry.Error(args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *logger) Fatal(args ...interface{}) {
	l.entry.Fatal(args...)
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

func (l *logger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *logger) WithFields(fields Fields) Logger {
	return &logger{entry: l.entry.WithFields(log.Fields(fields))}
}
