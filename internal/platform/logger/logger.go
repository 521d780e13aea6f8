// Package logger provides structured logging with colored output.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// New creates a structured logger writing to stdout at the given level.
// format "json" selects the JSON handler, anything else colored text.
// Colors can be disabled by setting NO_COLOR=1 or LOG_COLOR=false.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format, shouldUseColor())
}

// NewWithWriter is New with an explicit destination and color choice.
func NewWithWriter(w io.Writer, level, format string, useColor bool) *slog.Logger {
	l := ParseLevel(level)

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
	}
	return slog.New(&coloredTextHandler{w: w, level: l, useColor: useColor})
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// shouldUseColor determines if colored output should be used.
func shouldUseColor() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if logColor := strings.ToLower(os.Getenv("LOG_COLOR")); logColor == "false" || logColor == "0" {
		return false
	}
	return true
}

// coloredTextHandler is a custom slog.Handler that outputs colored text logs.
// Groups are flattened into dotted key prefixes.
type coloredTextHandler struct {
	w        io.Writer
	level    slog.Level
	useColor bool
	attrs    []slog.Attr // already prefixed
	prefix   string
}

func (h *coloredTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *coloredTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	h.colored(&buf, colorGray, r.Time.Format("2006-01-02 15:04:05"))
	buf.WriteString(" ")

	levelStr := r.Level.String()
	color := ""
	switch r.Level {
	case slog.LevelDebug:
		color, levelStr = colorCyan, "DEBUG"
	case slog.LevelInfo:
		color, levelStr = colorBlue, "INFO "
	case slog.LevelWarn:
		color, levelStr = colorYellow, "WARN "
	case slog.LevelError:
		color, levelStr = colorRed+colorBold, "ERROR"
	}
	h.colored(&buf, color, levelStr)
	buf.WriteString(" ")

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)
		return true
	})

	buf.WriteString("\n")
	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *coloredTextHandler) writeAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, p, ga)
		}
		return
	}

	buf.WriteString(" ")
	h.colored(buf, colorGray, prefix+a.Key+"="+a.Value.String())
}

func (h *coloredTextHandler) colored(buf *strings.Builder, color, s string) {
	if !h.useColor || color == "" {
		buf.WriteString(s)
		return
	}
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(colorReset)
}

func (h *coloredTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		newAttrs = append(newAttrs, a)
	}
	return &coloredTextHandler{
		w:        h.w,
		level:    h.level,
		useColor: h.useColor,
		attrs:    newAttrs,
		prefix:   h.prefix,
	}
}

func (h *coloredTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &coloredTextHandler{
		w:        h.w,
		level:    h.level,
		useColor: h.useColor,
		attrs:    h.attrs,
		prefix:   h.prefix + name + ".",
	}
}
