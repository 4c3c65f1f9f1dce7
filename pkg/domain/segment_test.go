package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSuffix(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantBase string
		wantExt  string
	}{
		{"no dot", "hello", "hello", ""},
		{"code extension", "upper.py", "upper", "py"},
		{"data extension", "report.csv", "report", "csv"},
		{"uppercase extension is lowered", "README.MD", "README", "md"},
		{"numeric tail stays opaque", "v1.2", "v1.2", ""},
		{"mixed tail stays opaque", "release.2b", "release.2b", ""},
		{"trailing dot stays opaque", "name.", "name.", ""},
		{"only last dot counts", "archive.tar.gz", "archive.tar", "gz"},
		{"leading dot", ".txt", "", "txt"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, ext := SplitSuffix(tt.text)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}
