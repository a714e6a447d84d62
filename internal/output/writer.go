package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/itchyny/gojq"
)

// Response is the success envelope for JSON output.
type Response struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ErrorResponse is the error envelope for JSON output.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// Format specifies the output format.
type Format int

const (
	FormatAuto   Format = iota // Auto-detect: TTY → Styled, non-TTY → JSON
	FormatJSON                 // JSON envelope
	FormatStyled               // ANSI styled output (forced, even when piped)
	FormatQuiet                // Data only, no envelope
)

// Options controls output behavior.
type Options struct {
	Format Format
	Writer io.Writer
	JQ     string // optional gojq expression applied to data
}

// Writer handles all output formatting.
type Writer struct {
	opts Options

	summaryStyle lipgloss.Style
	errorStyle   lipgloss.Style
	hintStyle    lipgloss.Style
}

// New creates a new output writer.
func New(opts Options) *Writer {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &Writer{
		opts:         opts,
		summaryStyle: lipgloss.NewStyle().Bold(true),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		hintStyle:    lipgloss.NewStyle().Faint(true).Italic(true),
	}
}

// ResponseOption customizes a success response.
type ResponseOption func(*Response)

// WithSummary attaches a one-line human summary to the response.
func WithSummary(s string) ResponseOption {
	return func(r *Response) { r.Summary = s }
}

// OK outputs a success response.
func (w *Writer) OK(data any, opts ...ResponseOption) error {
	if w.opts.JQ != "" {
		filtered, err := w.applyJQ(data)
		if err != nil {
			return err
		}
		data = filtered
	}

	resp := &Response{OK: true, Data: data}
	for _, opt := range opts {
		opt(resp)
	}
	return w.write(resp)
}

// Err outputs an error response.
func (w *Writer) Err(err error) error {
	e := AsError(err)
	resp := &ErrorResponse{
		OK:    false,
		Error: e.Message,
		Code:  e.Code,
		Hint:  e.Hint,
	}
	if w.resolveFormat() == FormatStyled {
		fmt.Fprintln(w.opts.Writer, w.errorStyle.Render("Error:"), e.Message)
		if e.Hint != "" {
			fmt.Fprintln(w.opts.Writer, w.hintStyle.Render(e.Hint))
		}
		return nil
	}
	return w.writeJSON(resp)
}

func (w *Writer) resolveFormat() Format {
	format := w.opts.Format
	if format == FormatAuto {
		if isTTY(w.opts.Writer) {
			return FormatStyled
		}
		return FormatJSON
	}
	return format
}

func (w *Writer) write(resp *Response) error {
	switch w.resolveFormat() {
	case FormatQuiet:
		return w.writeJSON(resp.Data)
	case FormatStyled:
		if resp.Summary != "" {
			fmt.Fprintln(w.opts.Writer, w.summaryStyle.Render(resp.Summary))
		}
		if resp.Data != nil {
			return w.writeJSON(resp.Data)
		}
		return nil
	default:
		return w.writeJSON(resp)
	}
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.opts.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// applyJQ runs the configured gojq expression over data. Data is round-tripped
// through JSON so gojq sees plain maps and slices regardless of input type.
func (w *Writer) applyJQ(data any) (any, error) {
	query, err := gojq.Parse(w.opts.JQ)
	if err != nil {
		return nil, ErrUsageHint("Invalid --jq expression", err.Error())
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}

	var results []any
	iter := query.Run(plain)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, ErrUsageHint("--jq evaluation failed", err.Error())
		}
		results = append(results, v)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// isTTY returns true if w is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
