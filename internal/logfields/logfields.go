package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyDocument   = "document"
	KeyUnits      = "units"
	KeyKind       = "kind"
	KeyLine       = "line"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyRevision   = "revision"
	KeyOutput     = "output"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Document(name string) slog.Attr { return slog.String(KeyDocument, name) }
func Units(n int) slog.Attr { return slog.Int(KeyUnits, n) }
func Kind(k string) slog.Attr { return slog.String(KeyKind, k) }
func Line(n int) slog.Attr { return slog.Int(KeyLine, n) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func Revision(rev string) slog.Attr { return slog.String(KeyRevision, rev) }
func Output(path string) slog.Attr { return slog.String(KeyOutput, path) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Since(start time.Time) slog.Attr { return DurationMS(float64(time.Since(start).Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
