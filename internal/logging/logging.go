// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger: a log/slog handler that writes
//
//	<YYYY-MM-DD HH:MM:SS> - <name> - <LEVEL> - <message> key=value...
//
// to the console and, optionally, to a day-stamped file
// <dir>/<name>_<YYYYMMDD>.log that is reopened when the date changes.
// The logger is created once by the CLI and passed to the components that
// need it.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Options configure New.
type Options struct {
	// Name appears in every line and in the log filename.
	Name string

	// Level is DEBUG, INFO, WARNING (or WARN) or ERROR. Anything else means INFO.
	Level string

	// ToFile enables the day-stamped log file in Dir.
	ToFile bool
	Dir    string

	// Console receives every line. Defaults to os.Stderr.
	Console io.Writer

	// Now is the clock used for timestamps and file rotation. Defaults to time.Now.
	Now func() time.Time
}

// Logger is a *slog.Logger that owns its log file.
type Logger struct {
	*slog.Logger
	file *dayFile
}

// New builds the logger. A log file that cannot be created is not fatal: the
// logger falls back to console-only output and logs a warning.
func New(opts Options) *Logger {
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Name == "" {
		opts.Name = "LandscapePDF"
	}

	h := &handler{
		mu:    &sync.Mutex{},
		name:  opts.Name,
		level: ParseLevel(opts.Level),
		now:   opts.Now,
		outs:  []io.Writer{opts.Console},
	}
	l := &Logger{}

	var fileErr error
	if opts.ToFile {
		df := &dayFile{dir: opts.Dir, name: opts.Name, now: opts.Now}
		if fileErr = df.open(); fileErr == nil {
			l.file = df
			h.outs = append(h.outs, df)
		}
	}

	l.Logger = slog.New(h)
	if fileErr != nil {
		l.Warn("cannot create log file, logging to console only", "error", fileErr)
	}
	return l
}

// FilePath returns the current log file path, or "" when file logging is off.
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.current()
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelName returns the name printed for l.
func LevelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// handler formats records as single lines and fans them out to every writer.
type handler struct {
	mu     *sync.Mutex
	outs   []io.Writer
	name   string
	level  slog.Level
	now    func() time.Time
	prefix string   // group prefix, e.g. "copy."
	attrs  []string // pre-rendered " key=value" pairs
}

func (h *handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = h.now()
	}

	var b strings.Builder
	b.WriteString(ts.Format(timeLayout))
	b.WriteString(" - ")
	b.WriteString(h.name)
	b.WriteString(" - ")
	b.WriteString(LevelName(r.Level))
	b.WriteString(" - ")
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		b.WriteString(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')
	line := b.String()

	h.mu.Lock()
	defer h.mu.Unlock()
	var firstErr error
	for _, w := range h.outs {
		if _, err := io.WriteString(w, line); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append([]string(nil), h.attrs...)
	for _, a := range attrs {
		var b strings.Builder
		appendAttr(&b, h.prefix, a)
		if b.Len() > 0 {
			h2.attrs = append(h2.attrs, b.String())
		}
	}
	return &h2
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, sub, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		return v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// dayFile is an io.Writer over <dir>/<name>_<YYYYMMDD>.log that switches to a
// new file when the date returned by now changes. Callers serialise writes.
type dayFile struct {
	dir  string
	name string
	now  func() time.Time

	day    string
	f      *os.File
	closed bool
}

func (d *dayFile) pathFor(day string) string {
	return filepath.Join(d.dir, fmt.Sprintf("%s_%s.log", d.name, day))
}

func (d *dayFile) current() string {
	return d.pathFor(d.day)
}

func (d *dayFile) open() error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory %s: %w", d.dir, err)
	}
	day := d.now().Format("20060102")
	f, err := os.OpenFile(d.pathFor(day), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if d.f != nil {
		d.f.Close()
	}
	d.f = f
	d.day = day
	return nil
}

func (d *dayFile) Write(p []byte) (int, error) {
	if d.closed {
		return len(p), nil
	}
	if d.f == nil || d.now().Format("20060102") != d.day {
		if err := d.open(); err != nil {
			return 0, err
		}
	}
	return d.f.Write(p)
}

func (d *dayFile) Close() error {
	d.closed = true
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}
