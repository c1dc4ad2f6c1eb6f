package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"active":      "Active",
		"ACTIVE":      "Active",
		"  Active  ":  "Active",
		"deactivated": "Deactivated",
		"blacklisted": "Blacklisted",
		"BlackListed": "Blacklisted",
		"":            "",
	}
	for in, want := range cases {
		got, err := normalizeStatus(in)
		if err != nil {
			t.Errorf("normalizeStatus(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeStatusRejectsUnknown(t *testing.T) {
	for _, in := range []string{"deleted", "pending", "x"} {
		if _, err := normalizeStatus(in); err == nil {
			t.Errorf("expected %q to be rejected", in)
		}
	}
}

func TestClientCreateValidation(t *testing.T) {
	svc := NewClientService(nil)

	// Invalid input must be rejected before any tenant work happens, so no
	// session is needed.
	_, err := svc.Create(context.Background(), nil, &domain.Client{Email: "a@b.co"}, "jdoe")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("missing name: expected validation error on name, got %v", err)
	}

	_, err = svc.Create(context.Background(), nil, &domain.Client{Name: "Jane", Email: "nope"}, "jdoe")
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Fatalf("bad email: expected validation error on email, got %v", err)
	}

	_, err = svc.Create(context.Background(), nil, &domain.Client{Name: "Jane", Email: "a@b.co", Status: "bogus"}, "jdoe")
	if !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("bad status: expected validation error on status, got %v", err)
	}
}

func TestClientUpdateValidation(t *testing.T) {
	svc := NewClientService(nil)
	bad := "bogus"
	_, err := svc.Update(context.Background(), nil, uuid.Nil, domain.ClientPatch{Status: &bad})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("expected validation error on status, got %v", err)
	}
}

func TestListFilterValidation(t *testing.T) {
	svc := NewClientService(nil)
	_, _, err := svc.List(context.Background(), nil, domain.ClientFilter{Status: "bogus"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
