package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyPageType   = "page_type"
	KeyIdentifier = "identifier"
	KeyRouteKey   = "route_key"
	KeyPath       = "path"
	KeyTask       = "task"
	KeyGroup      = "group"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func PageType(t string) slog.Attr        { return slog.String(KeyPageType, t) }
func Identifier(id string) slog.Attr     { return slog.String(KeyIdentifier, id) }
func RouteKey(key string) slog.Attr      { return slog.String(KeyRouteKey, key) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Task(name string) slog.Attr         { return slog.String(KeyTask, name) }
func Group(key string) slog.Attr         { return slog.String(KeyGroup, key) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Duration(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
