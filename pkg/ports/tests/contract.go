package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// DispatcherContractTest is a reusable test suite that verifies if a dispatch
// table complies with ports.Dispatcher. echo maps installed languages to a
// source program that writes its input back unchanged.
func DispatcherContractTest(t *testing.T, d ports.Dispatcher, echo map[domain.Language]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test Exec (Success) for every installed runtime we have an echo program for
	t.Run("Exec_Echo", func(t *testing.T) {
		for lang, source := range echo {
			out, err := d.Exec(ctx, lang, source, "ping")
			if err != nil {
				t.Fatalf("unexpected error executing %s echo: %v", lang, err)
			}
			if out != "ping" {
				t.Errorf("echo mismatch for %s. got %q, want %q", lang, out, "ping")
			}
		}
	})

	// 2. Test Exec (Unavailable)
	t.Run("Exec_Unavailable", func(t *testing.T) {
		_, err := d.Exec(ctx, domain.Language("cobol"), "IDENTIFICATION DIVISION.", "")
		if !errors.Is(err, domain.ErrRuntimeUnavailable) {
			t.Errorf("expected ErrRuntimeUnavailable for uninstalled language, got %v", err)
		}
	})

	// 3. Test Languages
	t.Run("Languages", func(t *testing.T) {
		langs := d.Languages()

		lookup := make(map[domain.Language]bool)
		for _, lang := range langs {
			lookup[lang] = true
		}

		for lang := range echo {
			if !lookup[lang] {
				t.Errorf("language %s missing from list", lang)
			}
		}
	})
}
