package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("expected 0 for nil, got %d", got)
	}
	if got := ExitCode(errors.New("plain")); got != 1 {
		t.Fatalf("expected internal code for untyped errors, got %d", got)
	}
	wrapped := fmt.Errorf("dispatch: %w", New(CodeRevert, "execution reverted"))
	if got := ExitCode(wrapped); got != 23 {
		t.Fatalf("expected revert code through wrapping, got %d", got)
	}
}

func TestJoinedErrorsKeepFirstCode(t *testing.T) {
	callErr := Wrap(CodeRevert, "setCooldownForAll", errors.New("execution reverted"))
	renounceErr := Wrap(CodeTimeout, "renounceTemporaryAdmin", context.DeadlineExceeded)
	err := errors.Join(callErr, renounceErr)

	if !HasCode(err, CodeRevert) {
		t.Fatalf("expected revert code, got %d", ExitCode(err))
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected renounce cause to stay reachable")
	}
	if got := err.Error(); got != "setCooldownForAll: execution reverted\nrenounceTemporaryAdmin: context deadline exceeded" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestTypeName(t *testing.T) {
	cases := map[Code]string{
		CodeUsage:           "usage_error",
		CodeBlocked:         "command_blocked",
		CodeUnknownRole:     "unknown_role",
		CodeUnsupportedMode: "unsupported_mode",
		CodeSigner:          "signer_error",
		Code(99):            "internal_error",
	}
	for code, want := range cases {
		if got := TypeName(code); got != want {
			t.Fatalf("TypeName(%d) = %q, want %q", code, got, want)
		}
	}
}
