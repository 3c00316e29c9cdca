package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/graph"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgressLogsGraphFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	g := graph.Graph{
		Nodes: []graph.Node{{ID: "1"}, {ID: "2"}},
		Edges: []graph.Edge{{ID: "edge-1", Source: "1", Target: "2"}, {ID: "edge-2", Source: "1", Target: "9"}},
	}
	prog := newProgress(logger)
	time.Sleep(10 * time.Millisecond)
	prog.done("Imported graph", graphFields(g, "file", "graph-data.json")...)

	out := buf.String()
	for _, want := range []string{"Imported graph", "nodes=2", "edges=2", "dangling=1", "file=graph-data.json", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}

func TestGraphFieldsOmitsDanglingWhenClean(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: "1"}}}
	fields := graphFields(g)
	if len(fields) != 4 {
		t.Errorf("graphFields = %v, want nodes and edges only", fields)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug output at info level")
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Error("debug output missing after SetLogLevel(LogDebug)")
	}
	if !c.verbose {
		t.Error("SetLogLevel(LogDebug) should mark the CLI verbose")
	}
}
