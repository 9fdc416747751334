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

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-01-15", "2000-02-29"}
	invalid := []string{"2024-13-01", "2023-02-29", "15-01-2024", ""}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+07:00", "2024-01-15T10:30:00.123456789Z"}
	invalid := []string{"2024-01-15 10:30:00", "2024-01-15", "10:30", ""}
	for _, s := range valid {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

func TestIsPositiveID(t *testing.T) {
	cases := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", -3, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := IsPositiveID(c.input)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("IsPositiveID(%q) = (%d, %v), want (%d, %v)", c.input, got, ok, c.want, c.ok)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	states := []string{"requested", "conflict"}
	if !IsInSlice("conflict", states) {
		t.Error("IsInSlice(conflict) = false, want true")
	}
	if IsInSlice("resolved", states) {
		t.Error("IsInSlice(resolved) = true, want false")
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Fatal("empty ValidationErrors should yield nil error")
	}
	errs.Add("date", "date is required")
	errs.Add("start_time", "start time is required")

	if errs.Err() == nil {
		t.Fatal("expected error")
	}
	if got := errs.Error(); got != "date: date is required; start_time: start time is required" {
		t.Errorf("Error() = %q", got)
	}
	m := errs.ToMap()
	if m["date"] != "date is required" || len(m) != 2 {
		t.Errorf("ToMap() = %v", m)
	}
}
