package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/sessionkit/errors"
)

type registerInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      registerInput
		wantFields []string
	}{
		{"valid", registerInput{"alice_1", "alice@example.com", "longenough"}, nil},
		{"missing all", registerInput{}, []string{"username", "email", "password"}},
		{"short username", registerInput{"al", "alice@example.com", "longenough"}, []string{"username"}},
		{"username charset", registerInput{"al ice", "alice@example.com", "longenough"}, []string{"username"}},
		{"bad email", registerInput{"alice", "not-an-email", "longenough"}, []string{"email"}},
		{"short password", registerInput{"alice", "alice@example.com", "short"}, []string{"password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != errors.ErrCodeInvalidInput || appErr.HTTPStatus != 400 {
				t.Errorf("unexpected error %+v", appErr)
			}
			fields, _ := appErr.Details["fields"].([]FieldError)
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("fields = %+v, want %v", fields, tt.wantFields)
			}
			for i, f := range fields {
				if f.Field != tt.wantFields[i] {
					t.Errorf("field %d = %q, want %q", i, f.Field, tt.wantFields[i])
				}
				if !strings.Contains(appErr.Message, f.Field+": ") {
					t.Errorf("message %q should mention %q", appErr.Message, f.Field)
				}
			}
		})
	}
}
