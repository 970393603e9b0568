package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-42d3-a456-426614174000",
		"123E4567-E89B-42D3-A456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidLatitude(t *testing.T) {
	cases := []struct {
		input float64
		want  bool
	}{
		{0, true},
		{90, true},
		{-90, true},
		{90.0001, false},
		{-120, false},
	}
	for _, c := range cases {
		if got := IsValidLatitude(c.input); got != c.want {
			t.Errorf("IsValidLatitude(%v) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidLongitude(t *testing.T) {
	cases := []struct {
		input float64
		want  bool
	}{
		{0, true},
		{180, true},
		{-180, true},
		{180.5, false},
		{-200, false},
	}
	for _, c := range cases {
		if got := IsValidLongitude(c.input); got != c.want {
			t.Errorf("IsValidLongitude(%v) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"clock_in", "clock_out"}
	if !IsInSlice("clock_in", slice) {
		t.Error("IsInSlice(clock_in) = false, want true")
	}
	if IsInSlice("lunch_start", slice) {
		t.Error("IsInSlice(lunch_start) = true, want false")
	}
}
