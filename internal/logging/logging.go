/*
 * logging.go, part of dhva.
 *
 * Copyright 2026 The dhva authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package logging builds the slog loggers used by the dhvaprep command.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	dhva "github.com/dhvatools/dhva"
)

//Level of the messages logged.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

//Format of the log output.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

//ParseLevel returns the level named s (debug, info, warn or error).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, dhva.Errorf(dhva.ErrParse, "ParseLevel", "unknown log level %q", s)
}

//ParseFormat returns the format named s (text or json).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, dhva.Errorf(dhva.ErrParse, "ParseFormat", "unknown log format %q", s)
}

func (L Level) slogLevel() slog.Level {
	switch L {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

//New returns a logger writing to w with the given level and format.
//Times are written in RFC3339.
func New(w io.Writer, level Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level.slogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}
	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

//Discard returns a logger that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type loggerKey struct{}

//WithLogger returns a copy of ctx carrying L.
func WithLogger(ctx context.Context, L *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, L)
}

//FromContext returns the logger in ctx, or one that discards everything.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if L, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && L != nil {
			return L
		}
	}
	return Discard()
}
