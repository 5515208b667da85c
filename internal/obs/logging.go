package obs

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// NewLogger builds the process-wide logger. When w is attached to a terminal the
// handler renders short colorized lines (tint); otherwise it emits one JSON
// object per line so a supervising process or log shipper can parse it.
// Loggers derived through Step carry "component" and "step" fields so a successful run's
// log and a failed run's error report (Error.Component/Step) share
// vocabulary, per §9's ambient-stack note.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(tint.NewHandler(w, &tint.Options{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Default is the package-wide logger, initialized to stderr at Info level.
// Components should accept a *slog.Logger explicitly where practical;
// Default exists for leaf helpers that would otherwise have to thread one
// through for a single diagnostic line.
var Default = NewLogger(os.Stderr, slog.LevelInfo)

// Step returns a logger scoped to one engine component/step pair, matching
// the fields carried by Error so a log line and an error report correlate.
func Step(l *slog.Logger, component, step string) *slog.Logger {
	return l.With("component", component, "step", step)
}
