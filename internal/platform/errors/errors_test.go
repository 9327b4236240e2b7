package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	base := New(CodeConflict, "version fence mismatch")
	wrapped := fmt.Errorf("apply update: %w", base)

	if !stderrors.Is(wrapped, New(CodeConflict, "different message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(wrapped, New(CodeNotFound, "version fence mismatch")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestGetCodeUnwrapsChain(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("no such row")
	err := fmt.Errorf("load session: %w", Wrap(CodeNotFound, "session not found", cause))

	if got := GetCode(err); got != CodeNotFound {
		t.Fatalf("code = %q, want %q", got, CodeNotFound)
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to remain in the chain")
	}
}

func TestGetCodeUnknownForPlainErrors(t *testing.T) {
	t.Parallel()

	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %q, want %q", got, CodeUnknown)
	}
}

func TestGetMetadata(t *testing.T) {
	t.Parallel()

	err := WithMetadata(CodeConflict, "stale version", map[string]string{
		"expected_version": "3",
		"actual_version":   "5",
	})
	meta := GetMetadata(err)
	if meta["expected_version"] != "3" || meta["actual_version"] != "5" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
	if GetMetadata(stderrors.New("plain")) != nil {
		t.Fatal("expected nil metadata for plain errors")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want codes.Code
	}{
		{CodeNotFound, codes.NotFound},
		{CodeConflict, codes.Aborted},
		{CodeValidation, codes.InvalidArgument},
		{CodeOwnershipMismatch, codes.PermissionDenied},
		{CodeNoMatchingRecipe, codes.FailedPrecondition},
		{CodePropagation, codes.FailedPrecondition},
		{CodeTimeout, codes.DeadlineExceeded},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range cases {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("%s maps to %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestHTTPStatusKeepsConflictDistinguishable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{New(CodeNotFound, "x"), http.StatusNotFound},
		{New(CodeConflict, "x"), http.StatusConflict},
		{New(CodeValidation, "x"), http.StatusBadRequest},
		{New(CodeOwnershipMismatch, "x"), http.StatusForbidden},
		{New(CodeNoMatchingRecipe, "x"), http.StatusUnprocessableEntity},
		{New(CodePropagation, "x"), http.StatusUnprocessableEntity},
		{New(CodeTimeout, "x"), http.StatusGatewayTimeout},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
