package logger

import (
	"io"
	"log"
)

type Logger interface {
	Print(...interface{})
	Printf(string, ...interface{})
	Println(...interface{})
}

type NullLogger struct {
}

func (l *NullLogger) Print(...interface{}) {
}

func (l *NullLogger) Printf(string, ...interface{}) {
}

func (l *NullLogger) Println(...interface{}) {
}

// Loggers holds one Logger per severity.
type Loggers struct {
	Error   Logger
	Warning Logger
	Info    Logger
	Debug   Logger
}

// Null returns Loggers that discard everything.
func Null() Loggers {
	return Loggers{
		Error:   &NullLogger{},
		Warning: &NullLogger{},
		Info:    &NullLogger{},
		Debug:   &NullLogger{},
	}
}

// Std returns Loggers writing to w with severity prefixes. Debug output is discarded unless debug is set.
func Std(w io.Writer, debug bool) Loggers {
	l := Loggers{
		Error:   log.New(w, "ERROR ", log.LstdFlags),
		Warning: log.New(w, "WARNING ", log.LstdFlags),
		Info:    log.New(w, "INFO ", log.LstdFlags),
		Debug:   &NullLogger{},
	}
	if debug {
		l.Debug = log.New(w, "DEBUG ", log.LstdFlags)
	}
	return l
}
