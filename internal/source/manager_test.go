package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func drain(t *testing.T, m *source.Manager) ([]source.ScanEvent, error) {
	t.Helper()
	var events []source.ScanEvent
	for {
		ev, ok, fatal := m.Next()
		if fatal != nil {
			return events, fatal
		}
		if !ok {
			return events, nil
		}
		events = append(events, ev)
	}
}

func TestManager_SimpleFileNoIncludes(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.lum", "let x = 1\nlet y = 2\n")

	sink := diag.NewSink()
	m, err := source.Open(sink, root)
	require.NoError(t, err)

	events, fatal := drain(t, m)
	require.NoError(t, fatal)
	require.Len(t, events, 3)
	assert.Equal(t, source.EventNewFile, events[0].Kind)
	assert.Equal(t, "let x = 1", events[1].Line)
	assert.Equal(t, 1, events[1].LineNo)
	assert.Equal(t, "let y = 2", events[2].Line)
	assert.Equal(t, 2, events[2].LineNo)
	assert.False(t, sink.HasErrors())
}

func TestManager_IncludeInlinesChildAndReannouncesParent(t *testing.T) {
	dir := t.TempDir()
	child := writeFile(t, dir, "child.lum", "let c = 1\n")
	root := writeFile(t, dir, "root.lum", "let a = 1\n#include \""+child+"\"\nlet b = 2\n")

	sink := diag.NewSink()
	m, err := source.Open(sink, root)
	require.NoError(t, err)

	events, fatal := drain(t, m)
	require.NoError(t, fatal)

	var kinds []source.EventKind
	var lines []string
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == source.EventLine {
			lines = append(lines, ev.Line)
		}
	}
	// NewFile(root), "let a = 1", NewFile(child), "let c = 1", NewFile(root), "let b = 2"
	require.Equal(t, []source.EventKind{
		source.EventNewFile, source.EventLine,
		source.EventNewFile, source.EventLine,
		source.EventNewFile, source.EventLine,
	}, kinds)
	assert.Equal(t, []string{"let a = 1", "let c = 1", "let b = 2"}, lines)
	assert.False(t, sink.HasErrors())
}

func TestManager_IncludeCycleReportsExactlyOneError(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.lum")
	bPath := filepath.Join(dir, "b.lum")
	writeFile(t, dir, "a.lum", "#include \""+bPath+"\"\n")
	writeFile(t, dir, "b.lum", "#include \""+aPath+"\"\n")

	sink := diag.NewSink()
	m, err := source.Open(sink, aPath)
	require.NoError(t, err)

	_, fatal := drain(t, m)
	require.NoError(t, fatal)

	cycleCount := 0
	for _, d := range sink.All() {
		if d.Code == diag.CodeIncludeCycle {
			cycleCount++
		}
	}
	assert.Equal(t, 1, cycleCount)
}

func TestManager_IncludeOnceIsSilent(t *testing.T) {
	dir := t.TempDir()
	common := writeFile(t, dir, "common.lum", "let shared = 1\n")
	a := writeFile(t, dir, "a.lum", "#include \""+common+"\"\n")
	root := writeFile(t, dir, "root.lum", "#include \""+a+"\"\n#include \""+common+"\"\n")

	sink := diag.NewSink()
	m, err := source.Open(sink, root)
	require.NoError(t, err)

	events, fatal := drain(t, m)
	require.NoError(t, fatal)
	assert.False(t, sink.HasErrors())

	lineCount := 0
	for _, ev := range events {
		if ev.Kind == source.EventLine {
			lineCount++
		}
	}
	assert.Equal(t, 1, lineCount) // shared's single line, included only once
}

func TestManager_BadDirectiveDroppedWithoutCrash(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.lum", "#include oops\nlet x = 1\n")

	sink := diag.NewSink()
	m, err := source.Open(sink, root)
	require.NoError(t, err)

	events, fatal := drain(t, m)
	require.NoError(t, fatal)
	assert.True(t, sink.HasErrors())

	var lines []string
	for _, ev := range events {
		if ev.Kind == source.EventLine {
			lines = append(lines, ev.Line)
		}
	}
	assert.Equal(t, []string{"let x = 1"}, lines)
}

func TestManager_CrashOnErrorStopsImmediately(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.lum", "#include oops\nlet x = 1\n")

	sink := diag.NewSink()
	m, err := source.Open(sink, root, source.WithCrashOnError(true))
	require.NoError(t, err)

	_, fatal := drain(t, m)
	assert.Error(t, fatal)
}

func TestManager_IncludeNotFoundIsRecoverable(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.lum", "#include \"/no/such/file.lum\"\nlet x = 1\n")

	sink := diag.NewSink()
	m, err := source.Open(sink, root)
	require.NoError(t, err)

	_, fatal := drain(t, m)
	require.NoError(t, fatal)
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CodeIncludeNotFound {
			found = true
		}
	}
	assert.True(t, found)
}

func TestManager_RootNotFoundIsFatal(t *testing.T) {
	sink := diag.NewSink()
	_, err := source.Open(sink, "/no/such/root.lum")
	require.Error(t, err)
	assert.True(t, sink.HasErrors())
}
