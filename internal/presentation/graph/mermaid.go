package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
)

// Flowchart produces Mermaid flowchart syntax for an evaluation trace. Stages
// appear in evaluation order, left to right, with semantic shapes:
// - Unit: [[Subroutine]]
// - Content: [(Cylinder)]
// - Variable: [/Parallelogram/]
// - Alias: {{Hexagon}}
// - Literal and anything else: [Rectangle]
// Arrows carry the value flowing between stages; the terminal node shows the
// outcome (result, redirect, or failure).
func Flowchart(res *domain.PipelineResult) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if res == nil {
		res = &domain.PipelineResult{}
	}

	failed := false
	for i, step := range res.Trace {
		id := fmt.Sprintf("s%d", i)

		opener, closer := "[", "]"
		switch step.Kind {
		case domain.KindUnit:
			opener, closer = "[[", "]]"
		case domain.KindContent:
			opener, closer = "[(", ")]"
		case domain.KindVariable:
			opener, closer = "[/", "/]"
		case domain.KindAlias:
			opener, closer = "{{", "}}"
		}

		label := escapeLabel(step.Segment)
		if step.Language != domain.LangNone {
			// Annotate dispatched stages with their runtime.
			label = fmt.Sprintf("%s <br/> ⚙️ %s", label, step.Language)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))

		if step.Err != "" {
			failed = true
			sb.WriteString(fmt.Sprintf("    %s --> failed((\"✗ %s\"))\n", id, escapeLabel(clip(step.Err))))
			break
		}
		if i+1 < len(res.Trace) {
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> s%d\n", id, escapeLabel(clip(step.Output)), i+1))
		}
	}

	last := fmt.Sprintf("s%d", len(res.Trace)-1)
	switch {
	case failed:
		// Terminal failure node already written above.
	case res.Redirect != nil && len(res.Trace) > 0:
		sb.WriteString(fmt.Sprintf("    %s -.-> redirect((\"↪ %s\"))\n", last, escapeLabel(clip(res.Redirect.Location))))
	case len(res.Trace) > 0:
		sb.WriteString(fmt.Sprintf("    %s --> done((\"%s\"))\n", last, escapeLabel(clip(res.Output))))
	}

	sb.WriteString("\n    %% Outcome styles\n")
	// Force black text for contrast on light and dark themes alike.
	sb.WriteString("    classDef outcome fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
	switch {
	case failed:
		sb.WriteString("    class failed failed;\n")
	case res.Redirect != nil && len(res.Trace) > 0:
		sb.WriteString("    class redirect outcome;\n")
	case len(res.Trace) > 0:
		sb.WriteString("    class done outcome;\n")
	}

	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func clip(s string) string {
	const max = 32
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
