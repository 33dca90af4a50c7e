package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type sample struct {
	Name  string `json:"name" binding:"required,notblank"`
	Email string `json:"email" binding:"required,email"`
}

func TestFieldsTranslatesWithJSONNames(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&sample{Name: "   ", Email: "nope"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields, ok := Fields(err)
	if !ok {
		t.Fatalf("expected validator errors, got %T", err)
	}
	if fields["name"] != "name cannot be blank" {
		t.Fatalf("name message: got=%q", fields["name"])
	}
	if fields["email"] != "email must be a valid email address" {
		t.Fatalf("email message: got=%q", fields["email"])
	}
}
