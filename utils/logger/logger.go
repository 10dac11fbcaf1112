package logger

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

type logPair struct {
	logFn func(...any)
	obj   string
	msg   string
}

const (
	logSize  = 1000
	objWidth = 20
)

var (
	logCh    = make(chan logPair, logSize)
	initOnce sync.Once
	started  atomic.Bool
)

func objToString(obj any) (objStr string) {
	switch o := obj.(type) {
	case nil:
		objStr = "NIL"
	case stringer:
		objStr = o.String()
	case string:
		objStr = o
	default:
		t := reflect.TypeOf(obj)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		objStr = t.Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

func format(obj, msg string) string {
	return fmt.Sprintf("|%20s|%-100s", obj, msg)
}

// Init sets the level and starts the writer goroutine. Only the first call
// starts the writer; later calls change the level.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	initOnce.Do(func() {
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:     true,
			FullTimestamp:   true,
			PadLevelText:    true,
			TimestampFormat: "2006/02/01 15:04:05",
		})

		go func() {
			sb := new(bytes.Buffer)
			for logPair := range logCh {
				sb.WriteString(format(logPair.obj, logPair.msg))
				logPair.logFn(sb.String())
				sb.Reset()
			}
		}()
		started.Store(true)
	})
}

// Enabled reports whether messages at lvl are emitted. Callers use it to skip
// building expensive messages.
func Enabled(lvl logrus.Level) bool {
	return logrus.IsLevelEnabled(lvl)
}

func emit(fn func(...any), object any, msg string) {
	pair := logPair{logFn: fn, obj: objToString(object), msg: msg}
	if !started.Load() {
		fn(format(pair.obj, pair.msg))
		return
	}
	logCh <- pair
}

func Trace(object any, message string) {
	if !Enabled(logrus.TraceLevel) {
		return
	}
	emit(logrus.Trace, object, message)
}

func Tracef(object any, message string, args ...any) {
	if !Enabled(logrus.TraceLevel) {
		return
	}
	emit(logrus.Trace, object, fmt.Sprintf(message, args...))
}

func Debug(object any, message string) {
	if !Enabled(logrus.DebugLevel) {
		return
	}
	emit(logrus.Debug, object, message)
}

func Debugf(object any, message string, args ...any) {
	if !Enabled(logrus.DebugLevel) {
		return
	}
	emit(logrus.Debug, object, fmt.Sprintf(message, args...))
}

func Info(object any, message string) {
	if !Enabled(logrus.InfoLevel) {
		return
	}
	emit(logrus.Info, object, message)
}

func Infof(object any, message string, args ...any) {
	if !Enabled(logrus.InfoLevel) {
		return
	}
	emit(logrus.Info, object, fmt.Sprintf(message, args...))
}

func Warning(object any, message string) {
	if !Enabled(logrus.WarnLevel) {
		return
	}
	emit(logrus.Warning, object, message)
}

func Warningf(object any, message string, args ...any) {
	if !Enabled(logrus.WarnLevel) {
		return
	}
	emit(logrus.Warning, object, fmt.Sprintf(message, args...))
}

func Error(object any, message string) {
	if !Enabled(logrus.ErrorLevel) {
		return
	}
	emit(logrus.Error, object, message)
}

func Errorf(object any, message string, args ...any) {
	if !Enabled(logrus.ErrorLevel) {
		return
	}
	emit(logrus.Error, object, fmt.Sprintf(message, args...))
}

func Fatal(object any, message string) {
	logrus.Fatal(format(objToString(object), message))
}

func Fatalf(object any, message string, args ...any) {
	logrus.Fatal(format(objToString(object), fmt.Sprintf(message, args...)))
}
