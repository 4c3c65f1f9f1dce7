// Package tracefmt renders evaluation traces for the transports: JSON for
// machine consumers, a plain table for terminals, and a markdown table that
// the CLI can pass through glamour. Formatting never changes the evaluation
// outcome; transports swap the payload, not the semantics.
package tracefmt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/sluice/internal/presentation/graph"
	"github.com/aretw0/sluice/pkg/domain"
)

// Format names a trace rendering.
type Format string

const (
	// FormatJSON is the default and the only lossless rendering.
	FormatJSON Format = "json"
	// FormatText is an aligned table for plain terminals.
	FormatText Format = "text"
	// FormatMarkdown is a markdown table, suitable for glamour.
	FormatMarkdown Format = "markdown"
	// FormatMermaid is a flowchart of the stages, for pasting into docs.
	FormatMermaid Format = "mermaid"
)

// cellLimit caps table cell width; stage values can be whole blobs.
const cellLimit = 48

// ParseFormat maps a user-supplied name to a Format. The empty string means
// the default JSON rendering.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "text", "table":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	default:
		return "", fmt.Errorf("unknown trace format %q (choose json, text, markdown or mermaid)", name)
	}
}

// ForExtension picks the rendering implied by a path suffix, so a request
// ending in report.md gets a markdown trace without extra flags.
func ForExtension(ext string) Format {
	switch strings.ToLower(ext) {
	case "md", "markdown":
		return FormatMarkdown
	case "txt", "text":
		return FormatText
	case "mmd":
		return FormatMermaid
	default:
		return FormatJSON
	}
}

// report is the JSON envelope for a debug response. It carries the identical
// final output the non-debug evaluation would have returned.
type report struct {
	Output   string              `json:"output"`
	Redirect *domain.Redirect    `json:"redirect,omitempty"`
	Error    *errorReport        `json:"error,omitempty"`
	Trace    []domain.StepResult `json:"trace"`
}

type errorReport struct {
	Kind    domain.ErrorKind `json:"kind"`
	Index   int              `json:"index"`
	Segment string           `json:"segment,omitempty"`
	Message string           `json:"message"`
}

// Render serializes an evaluation outcome. res may be nil when the request
// failed before any stage ran; evalErr is nil on success.
func Render(res *domain.PipelineResult, evalErr error, f Format) (string, error) {
	if res == nil {
		res = &domain.PipelineResult{}
	}
	switch f {
	case FormatText:
		return renderText(res, evalErr), nil
	case FormatMarkdown:
		return renderMarkdown(res, evalErr), nil
	case FormatMermaid:
		return graph.Flowchart(res), nil
	case FormatJSON, "":
		return renderJSON(res, evalErr)
	default:
		return "", fmt.Errorf("unknown trace format %q", f)
	}
}

func renderJSON(res *domain.PipelineResult, evalErr error) (string, error) {
	r := report{
		Output:   res.Output,
		Redirect: res.Redirect,
		Error:    describeError(evalErr),
		Trace:    res.Trace,
	}
	if r.Trace == nil {
		r.Trace = []domain.StepResult{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding trace: %w", err)
	}
	return string(data) + "\n", nil
}

func renderText(res *domain.PipelineResult, evalErr error) string {
	var sb strings.Builder
	if len(res.Trace) == 0 {
		sb.WriteString("no trace recorded\n")
	} else {
		w := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSEGMENT\tKIND\tLANGUAGE\tINPUT\tOUTPUT")
		for _, step := range res.Trace {
			out := step.Output
			if step.Err != "" {
				out = "error: " + step.Err
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				step.Index,
				cell(step.Segment),
				step.Kind,
				step.Language,
				cell(step.Input),
				cell(out),
			)
		}
		w.Flush()
	}
	sb.WriteString("\n" + outcomeLine(res, evalErr) + "\n")
	return sb.String()
}

func renderMarkdown(res *domain.PipelineResult, evalErr error) string {
	var sb strings.Builder
	sb.WriteString("### Pipeline trace\n\n")
	if len(res.Trace) == 0 {
		sb.WriteString("_no trace recorded_\n")
	} else {
		sb.WriteString("| # | segment | kind | language | input | output |\n")
		sb.WriteString("|---|---------|------|----------|-------|--------|\n")
		for _, step := range res.Trace {
			out := step.Output
			if step.Err != "" {
				out = "⚠️ " + step.Err
			}
			fmt.Fprintf(&sb, "| %d | `%s` | %s | %s | %s | %s |\n",
				step.Index,
				cell(step.Segment),
				step.Kind,
				step.Language,
				cell(step.Input),
				cell(out),
			)
		}
	}
	sb.WriteString("\n**" + outcomeLine(res, evalErr) + "**\n")
	return sb.String()
}

// outcomeLine summarizes how the evaluation ended.
func outcomeLine(res *domain.PipelineResult, evalErr error) string {
	switch {
	case evalErr != nil:
		e := describeError(evalErr)
		return fmt.Sprintf("failed (%s): %s", e.Kind, e.Message)
	case res.Redirect != nil:
		return fmt.Sprintf("redirect: %s (%d)", res.Redirect.Location, res.Redirect.StatusCode())
	default:
		return "result: " + res.Output
	}
}

func describeError(err error) *errorReport {
	if err == nil {
		return nil
	}
	var evalErr *domain.EvalError
	if errors.As(err, &evalErr) {
		return &errorReport{
			Kind:    evalErr.Kind,
			Index:   evalErr.Index,
			Segment: evalErr.Segment,
			Message: evalErr.Error(),
		}
	}
	return &errorReport{Kind: domain.KindOf(err), Index: -1, Message: err.Error()}
}

// cell flattens a value into one table cell: newlines collapse to spaces,
// pipes are escaped for markdown, and long values are clipped.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	runes := []rune(s)
	if len(runes) <= cellLimit {
		return s
	}
	return string(runes[:cellLimit-1]) + "…"
}
