package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/sluice/internal/presentation/graph"
	"github.com/aretw0/sluice/pkg/domain"
)

func TestFlowchart(t *testing.T) {
	tests := []struct {
		name     string
		res      *domain.PipelineResult
		contains []string
	}{
		{
			name: "Stage Shapes",
			res: &domain.PipelineResult{
				Output: "done",
				Trace: []domain.StepResult{
					{Segment: "hello", Kind: domain.KindLiteral},
					{Segment: "greeting", Kind: domain.KindVariable},
					{Segment: "upcase", Kind: domain.KindUnit, Language: domain.LangPython},
					{Segment: "abc123.py", Kind: domain.KindContent, Language: domain.LangPython},
					{Segment: "shout", Kind: domain.KindAlias},
				},
			},
			contains: []string{
				"graph LR",
				`s0["hello"]`,
				`s1[/"greeting"/]`,
				`s2[["upcase <br/> ⚙️ python"]]`,
				`s3[("abc123.py <br/> ⚙️ python")]`,
				`s4{{"shout"}}`,
				`s4 --> done(("done"))`,
				"class done outcome;",
			},
		},
		{
			name: "Arrows Carry Values",
			res: &domain.PipelineResult{
				Output: "HI",
				Trace: []domain.StepResult{
					{Segment: "hi", Kind: domain.KindLiteral, Output: "hi"},
					{Segment: "upcase", Kind: domain.KindUnit, Input: "hi", Output: "HI"},
				},
			},
			contains: []string{
				`s0 -- "hi" --> s1`,
			},
		},
		{
			name: "Failure Terminates Chart",
			res: &domain.PipelineResult{
				Trace: []domain.StepResult{
					{Segment: "hi", Kind: domain.KindLiteral, Output: "hi"},
					{Segment: "boom", Kind: domain.KindUnit, Err: "lua execution failed: kaboom"},
				},
			},
			contains: []string{
				`s1 --> failed(("✗ lua execution failed: kaboom"))`,
				"class failed failed;",
			},
		},
		{
			name: "Redirect Outcome",
			res: &domain.PipelineResult{
				Redirect: &domain.Redirect{Location: "/other"},
				Trace: []domain.StepResult{
					{Segment: "jump", Kind: domain.KindUnit, Output: "/other"},
				},
			},
			contains: []string{
				`s0 -.-> redirect(("↪ /other"))`,
				"class redirect outcome;",
			},
		},
		{
			name: "Label Escaping",
			res: &domain.PipelineResult{
				Output: "x",
				Trace: []domain.StepResult{
					{Segment: `say "hi"`, Kind: domain.KindLiteral},
				},
			},
			contains: []string{
				`s0["say 'hi'"]`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.Flowchart(tt.res)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Flowchart() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestFlowchartEmptyTrace(t *testing.T) {
	got := graph.Flowchart(&domain.PipelineResult{Output: "x"})
	if !strings.Contains(got, "graph LR") {
		t.Errorf("Flowchart() = %v, want header", got)
	}
	if strings.Contains(got, "s0") {
		t.Errorf("Flowchart() rendered stages for empty trace:\n%v", got)
	}
}
