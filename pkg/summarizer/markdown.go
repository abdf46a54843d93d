package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) { f.translate = t }
}

// WithVersion adds the tool version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) { f.version = v }
}

// NewMarkdownFormatter creates a formatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Stream Report"))

	fmt.Fprintf(&b, "## %s\n\n", t("File"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Path"), s.File.Path)
	fmt.Fprintf(&b, "| %s | %s |\n\n", t("Size"), formatBytes(s.File.Size))

	st := s.Stream
	fmt.Fprintf(&b, "## %s\n\n", t("Stream"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s (%s) |\n", t("Format"), st.Variant, st.FourCC)
	fmt.Fprintf(&b, "| %s | %dx%d |\n", t("Dimensions"), st.Width, st.Height)
	fmt.Fprintf(&b, "| %s | %s (%.3f fps) |\n", t("Frame Rate"), st.FrameRate, st.FrameRate.Float64())
	fmt.Fprintf(&b, "| %s | %.3f s |\n", t("Duration"), st.Duration)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frames"), st.FrameCount)
	fmt.Fprintf(&b, "| %s | %d |\n\n", t("Timescale"), st.Timescale)

	fr := s.Frames
	fmt.Fprintf(&b, "## %s\n\n", t("Frames"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	if len(fr.Formats) > 0 {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Texture Formats"), strings.Join(fr.Formats, " + "))
	}
	if names := fr.CompressorNames(); len(names) > 0 {
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = fmt.Sprintf("%s × %d", n, fr.Compressors[n])
		}
		fmt.Fprintf(&b, "| %s | %s |\n", t("Compressors"), strings.Join(parts, ", "))
	}
	fmt.Fprintf(&b, "| %s | %s |\n", t("Smallest Frame"), formatBytes(fr.MinSize))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Largest Frame"), formatBytes(fr.MaxSize))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Average Frame"), formatBytes(fr.AvgSize(st.FrameCount)))
	if len(fr.Unreadable) > 0 {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Unreadable Frames"), formatIndexes(fr.Unreadable, 10))
	}
	b.WriteString("\n")

	if d := s.Decode; d != nil {
		fmt.Fprintf(&b, "## %s\n\n", t("Decode Benchmark"))
		fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
		fmt.Fprintf(&b, "| %s | %d |\n", t("Decoded Frames"), d.Frames)
		fmt.Fprintf(&b, "| %s | %d |\n", t("Failures"), d.Failures)
		fmt.Fprintf(&b, "| %s | %d |\n", t("Discarded"), d.Discarded)
		fmt.Fprintf(&b, "| %s | %d ms |\n", t("Elapsed"), d.Elapsed.Milliseconds())
		fmt.Fprintf(&b, "| %s | %.1f |\n\n", t("Frames per Second"), d.FPS())
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		footer += fmt.Sprintf(" (happlay %s)", f.version)
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

func formatIndexes(idx []int, limit int) string {
	parts := make([]string, 0, min(len(idx), limit)+1)
	for i, v := range idx {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... (+%d)", len(idx)-limit))
			break
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, ", ")
}
