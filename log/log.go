// Package log provides the leveled, structured logging used throughout
// this module, modeled on github.com/holisticode/swarm's own `log`
// wrapper: Info/Debug/Warn/Error/Crit calls taking alternating key/value
// context pairs, a root logger reachable via Root(), and colorized
// terminal output when stderr is a tty.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity, ordered from most to least severe.
type Level int

const (
	LvlCrit Level = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Level) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// color per level, matching the teacher's terminal handler palette
// (red for crit/error, yellow for warn, green for info).
func (l Level) color() string {
	switch l {
	case LvlCrit, LvlError:
		return "\x1b[31m"
	case LvlWarn:
		return "\x1b[33m"
	case LvlInfo:
		return "\x1b[32m"
	case LvlDebug, LvlTrace:
		return "\x1b[36m"
	default:
		return ""
	}
}

const colorReset = "\x1b[0m"

// Logger is the structured-logging interface every subsystem depends
// on; swarm activation/deactivation, checkpoint failures, and rejected
// offers all log through one of these methods.
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
	// New returns a Logger that prepends ctx to every record it emits,
	// in addition to this Logger's own inherited context.
	New(ctx ...interface{}) Logger
}

type logger struct {
	mu      *sync.Mutex
	w       io.Writer
	color   bool
	minLvl  Level
	context []interface{}
}

var root Logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *logger {
	isTerm := false
	if f, ok := w.(*os.File); ok {
		isTerm = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	out := w
	if isTerm {
		out = colorableWriter(w)
	}
	return &logger{mu: &sync.Mutex{}, w: out, color: isTerm, minLvl: LvlInfo}
}

// colorableWriter wraps w so ANSI color codes render correctly on
// Windows consoles, matching the teacher's go-colorable usage.
func colorableWriter(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok {
		return colorable.NewColorable(f)
	}
	return w
}

// Root returns the package's root Logger.
func Root() Logger { return root }

// SetOutput redirects the root logger to w, re-detecting tty/color
// status for the new writer.
func SetOutput(w io.Writer) { root = newLogger(w) }

// SetLevel sets the minimum level the root logger emits.
func SetLevel(lvl Level) {
	if l, ok := root.(*logger); ok {
		l.minLvl = lvl
	}
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{mu: l.mu, w: l.w, color: l.color, minLvl: l.minLvl}
	child.context = append(append([]interface{}{}, l.context...), ctx...)
	return child
}

func (l *logger) log(lvl Level, msg string, ctx []interface{}) {
	if lvl > l.minLvl {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02T15:04:05.000")
	if l.color {
		fmt.Fprintf(l.w, "%s[%s] %-5s%s %s", lvl.color(), ts, lvl, colorReset, msg)
	} else {
		fmt.Fprintf(l.w, "[%s] %-5s %s", ts, lvl, msg)
	}
	writePairs(l.w, l.context)
	writePairs(l.w, ctx)
	fmt.Fprintln(l.w)
}

func writePairs(w io.Writer, pairs []interface{}) {
	for i := 0; i < len(pairs); i += 2 {
		key := pairs[i]
		var val interface{} = "MISSING"
		if i+1 < len(pairs) {
			val = pairs[i+1]
		}
		fmt.Fprintf(w, " %v=%v", key, val)
	}
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.log(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.log(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.log(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.log(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.log(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.log(LvlCrit, msg, ctx) }

// Package-level convenience functions delegate to Root(), matching the
// teacher's log.Info(...)/log.Error(...) call sites throughout its own
// codebase.
func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }
func New(ctx ...interface{}) Logger        { return root.New(ctx...) }
