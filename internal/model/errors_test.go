package model

import (
	"errors"
	"net/http"
	"testing"
)

func TestAPIError_ImplementsError(t *testing.T) {
	var err error = NewDogNotFoundError("dog-1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected errors.As to match *APIError")
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", apiErr.Status, http.StatusNotFound)
	}
	if apiErr.Message != "No dog with an id: dog-1 was found." {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestAPIError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want int
	}{
		{"missing credentials", NewMissingCredentialsError(), http.StatusBadRequest},
		{"duplicate username", NewDuplicateUsernameError(), http.StatusBadRequest},
		{"user not found", NewUserNotFoundError("alice"), http.StatusNotFound},
		{"invalid password", NewInvalidPasswordError(), http.StatusUnauthorized},
		{"missing dog fields", NewMissingDogFieldsError(), http.StatusBadRequest},
		{"dog not found", NewDogNotFoundError("dog-1"), http.StatusNotFound},
		{"self adoption", NewSelfAdoptionError(), http.StatusBadRequest},
		{"already adopted", NewAlreadyAdoptedError("Pochi"), http.StatusBadRequest},
		{"remove adopted", NewRemoveAdoptedError(), http.StatusBadRequest},
		{"not original owner", NewNotOriginalOwnerError(), http.StatusForbidden},
		{"invalid adopted filter", NewInvalidAdoptedFilterError("yes"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.want {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.want)
			}
			if tt.err.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}
