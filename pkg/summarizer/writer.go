package summarizer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/happlay/pkg/ports"
)

// Formatter renders a summary as report text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a function to Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string { return f(summary) }

// JSON renders the summary as indented JSON for tooling.
var JSON = FormatFunc(func(summary *Summary) string {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}\n", err.Error())
	}
	return string(data) + "\n"
})

// Writer saves reports through a ports.FileSystem. Paths ending in .json
// get JSON; everything else gets the configured formatter.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs}
}

// FormatterFor returns the formatter Write uses for path.
func (w *Writer) FormatterFor(path string) Formatter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return w.formatter
}

// Write renders summary for path and writes it, creating the parent directory.
func (w *Writer) Write(path string, summary *Summary) error {
	content := w.FormatterFor(path).Format(summary)

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := w.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := w.fs.WriteFile(path, []byte(content)); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
