package consumption

import (
	"errors"
	"testing"
	"time"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int64
		wantErr bool
	}{
		{"single", "100", []int64{100}, false},
		{"multiple", "1,2,3,4", []int64{1, 2, 3, 4}, false},
		{"spaces", " 1, 2 ,3 ", []int64{1, 2, 3}, false},
		{"empty", "", nil, true},
		{"blank", "  ", nil, true},
		{"non numeric", "1,abc", nil, true},
		{"injection", "1); DROP TABLE consumpdata; --", nil, true},
		{"trailing comma", "1,2,", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDList(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("err = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseIDList(%q): %v", tt.in, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeBound(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"full timestamp unchanged", "2019-09-11 10:45:00", "2019-09-11 10:45:00", false},
		{"hour wildcard", "2019-09-11 12:%", "2019-09-11 12:00:00", false},
		{"day wildcard", "2019-09-%", "2019-09-01 00:00:00", false},
		{"underscore wildcard", "2019-09-11 12_", "2019-09-11 12:00:00", false},
		{"date only", "2019-09-11", "2019-09-11 00:00:00", false},
		{"wildcard only", "%", "", true},
		{"empty", "", "", true},
		{"not a date", "yesterday%", "", true},
		{"too long", "2019-09-11 10:45:00.000", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBound(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("err = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeBound(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("normalizeBound(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// The reference dataset samples every 15 minutes. A range from
// 10:45:00 to the wildcard bound "12:%" must cover six readings, with
// the noon row inside the window.
func TestRangeBoundsCoverWildcardEndWindow(t *testing.T) {
	from, err := normalizeBound("2019-09-11 10:45:00")
	if err != nil {
		t.Fatalf("normalize start: %v", err)
	}
	to, err := normalizeBound("2019-09-11 12:%")
	if err != nil {
		t.Fatalf("normalize end: %v", err)
	}

	start, err := time.Parse(boundLayout, from)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	end, err := time.Parse(boundLayout, to)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}

	var inWindow []string
	reading := time.Date(2019, 9, 11, 10, 0, 0, 0, time.UTC)
	for ; !reading.After(time.Date(2019, 9, 11, 13, 0, 0, 0, time.UTC)); reading = reading.Add(15 * time.Minute) {
		if !reading.Before(start) && !reading.After(end) {
			inWindow = append(inWindow, reading.Format(boundLayout))
		}
	}

	if len(inWindow) != 6 {
		t.Fatalf("window covers %d readings %v, want 6", len(inWindow), inWindow)
	}
	if inWindow[0] != "2019-09-11 10:45:00" {
		t.Fatalf("first reading = %s, want 2019-09-11 10:45:00", inWindow[0])
	}
	if inWindow[len(inWindow)-1] != "2019-09-11 12:00:00" {
		t.Fatalf("last reading = %s, want the noon row inside the range", inWindow[len(inWindow)-1])
	}
}

func TestCoerce(t *testing.T) {
	ts := time.Date(2019, 9, 11, 10, 45, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{ts, "2019-09-11 10:45:00"},
		{[]byte("1.09900"), "1.09900"},
		{"already a string", "already a string"},
		{int64(3980), "3980"},
		{float64(0.857), "0.857"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := coerce(tt.in); got != tt.want {
			t.Fatalf("coerce(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
