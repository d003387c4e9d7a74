package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input", Input("bad field"), http.StatusBadRequest},
		{"validation", Validation("icms out of range"), http.StatusUnprocessableEntity},
		{"not found", NotFound("product", "7"), http.StatusNotFound},
		{"wrapped validation", fmt.Errorf("recompute: %w", Validation("x")), http.StatusUnprocessableEntity},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsTypeUnwrapsChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("product", "3"))
	if !IsType(err, TypeNotFound) {
		t.Fatal("expected NOT_FOUND in chain")
	}
	if IsType(err, TypeInput) {
		t.Fatal("did not expect INPUT_ERROR")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Parsing("quote file", fmt.Errorf("line 3"))
	want := "[PARSING_ERROR] quote file: line 3"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	withCtx := Validation("icms").WithContext("icms_rate", "150")
	if withCtx.Context["icms_rate"] != "150" {
		t.Errorf("context not recorded: %v", withCtx.Context)
	}
}
