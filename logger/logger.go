package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type level struct {
	attribute color.Attribute
}

var (
	debugLevel   = level{color.FgCyan}
	infoLevel    = level{color.FgHiBlue}
	warnLevel    = level{color.FgYellow}
	successLevel = level{color.FgHiGreen}
	errorLevel   = level{color.FgHiRed}
	prefixLevel  = level{color.FgYellow}
)

// Serializes logging in case of multiple cloned loggers
type syncWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

func (s *syncWriter) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Write(p)
}

// Logger is a wrapper around log.Logger with the following features:
//   - Supports a prefix, and a stack of secondary prefixes
//   - Adds colors to the output when writing to a terminal
//   - Debug mode (all logs, debug and above)
//   - Quiet mode (errors only)
type Logger struct {
	// IsDebug is used to determine whether to emit debug logs.
	IsDebug bool

	// IsQuiet suppresses everything except errors.
	IsQuiet bool

	prefix            string
	secondaryPrefixes []string
	useColor          bool

	logger       log.Logger
	outputWriter *syncWriter
}

// New returns a logger writing to stdout
func New(isDebug bool, prefix string) *Logger {
	return NewWithWriter(os.Stdout, isDebug, prefix)
}

// NewQuiet returns a logger that only emits errors
func NewQuiet(prefix string) *Logger {
	l := NewWithWriter(os.Stdout, false, prefix)
	l.IsQuiet = true
	return l
}

// NewWithWriter returns a logger writing to w. Colors are only used if w is a terminal.
func NewWithWriter(w io.Writer, isDebug bool, prefix string) *Logger {
	l := &Logger{
		IsDebug:      isDebug,
		prefix:       prefix,
		useColor:     isTerminal(w),
		outputWriter: &syncWriter{writer: w},
	}

	l.logger = *log.New(l.outputWriter, "", 0)
	l.updateLoggerPrefix()

	return l
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	l := NewWithWriter(io.Discard, false, "")
	l.IsQuiet = true
	return l
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// Clone clones a given logger.
// The clone shares the output writer, so logs stay serialized
// when a clone and the original are used concurrently.
func (l *Logger) Clone() *Logger {
	secondaryPrefixesCopy := make([]string, len(l.secondaryPrefixes))
	copy(secondaryPrefixesCopy, l.secondaryPrefixes)

	cloned := &Logger{
		IsDebug:           l.IsDebug,
		IsQuiet:           l.IsQuiet,
		prefix:            l.prefix,
		secondaryPrefixes: secondaryPrefixesCopy,
		useColor:          l.useColor,
		outputWriter:      l.outputWriter,
	}

	cloned.logger = *log.New(cloned.outputWriter, "", 0)
	cloned.updateLoggerPrefix()

	return cloned
}

// WithSecondaryPrefix returns a clone with prefix pushed onto its secondary prefixes
func (l *Logger) WithSecondaryPrefix(prefix string) *Logger {
	cloned := l.Clone()
	cloned.PushSecondaryPrefix(prefix)
	return cloned
}

func (l *Logger) SecondaryPrefixes() []string {
	return l.secondaryPrefixes
}

func (l *Logger) PushSecondaryPrefix(prefix string) {
	l.secondaryPrefixes = append(l.secondaryPrefixes, prefix)
	l.updateLoggerPrefix()
}

// PopSecondaryPrefix removes and returns the most recently pushed secondary prefix
func (l *Logger) PopSecondaryPrefix() string {
	if len(l.secondaryPrefixes) == 0 {
		return ""
	}

	last := l.secondaryPrefixes[len(l.secondaryPrefixes)-1]
	l.secondaryPrefixes = l.secondaryPrefixes[:len(l.secondaryPrefixes)-1]
	l.updateLoggerPrefix()

	return last
}

func (l *Logger) updateLoggerPrefix() {
	fullPrefix := l.prefix
	for _, secondaryPrefix := range l.secondaryPrefixes {
		fullPrefix += fmt.Sprintf("[%s] ", secondaryPrefix)
	}

	l.logger.SetPrefix(l.colorize(prefixLevel, "%s", fullPrefix)[0])
}

func (l *Logger) colorize(lvl level, fstring string, args ...any) []string {
	var msg string

	if len(args) == 0 {
		msg = fstring // Treat as plain string if no args
	} else {
		msg = fmt.Sprintf(fstring, args...)
	}

	lines := strings.Split(msg, "\n")
	if !l.useColor {
		return lines
	}

	c := color.New(lvl.attribute)
	c.EnableColor()

	for i, line := range lines {
		lines[i] = c.Sprint(line)
	}

	return lines
}

func (l *Logger) emit(lvl level, fstring string, args ...any) {
	for _, line := range l.colorize(lvl, fstring, args...) {
		l.logger.Println(line)
	}
}

func (l *Logger) Debugf(fstring string, args ...any) {
	if !l.IsDebug || l.IsQuiet {
		return
	}

	l.emit(debugLevel, fstring, args...)
}

func (l *Logger) Infof(fstring string, args ...any) {
	if l.IsQuiet {
		return
	}

	l.emit(infoLevel, fstring, args...)
}

func (l *Logger) Warnf(fstring string, args ...any) {
	if l.IsQuiet {
		return
	}

	l.emit(warnLevel, fstring, args...)
}

func (l *Logger) Successf(fstring string, args ...any) {
	if l.IsQuiet {
		return
	}

	l.emit(successLevel, fstring, args...)
}

// Errorf is emitted even by quiet loggers
func (l *Logger) Errorf(fstring string, args ...any) {
	l.emit(errorLevel, fstring, args...)
}

// Plainln writes msg without colors, one log line per line of msg
func (l *Logger) Plainln(msg string) {
	for _, line := range strings.Split(msg, "\n") {
		l.logger.Println(line)
	}
}
