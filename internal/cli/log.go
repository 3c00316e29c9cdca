package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/graph"
)

// newLogger returns the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one editor step (export, import, render) and logs it once
// with the graph it produced.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, e.g.
// "Imported graph nodes=12 edges=9 elapsed=3ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

// graphFields returns the log fields describing g followed by extra.
func graphFields(g graph.Graph, extra ...any) []any {
	fields := []any{"nodes", g.NodeCount(), "edges", g.EdgeCount()}
	if d := len(g.Dangling()); d > 0 {
		fields = append(fields, "dangling", d)
	}
	return append(fields, extra...)
}
