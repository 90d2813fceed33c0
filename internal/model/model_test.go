package model

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"employee":               RoleEmployee,
		"Manager":                RoleManager,
		"mentor":                 RoleManager,
		" admin ":                RoleAdministrator,
		"administrator":          RoleAdministrator,
		"RoleEnum.administrator": RoleAdministrator,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestTotalHoursRoundsToTwoDecimals(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		in, out ClockTime
		want    float64
	}{
		{ClockTime{Hour: 9}, ClockTime{Hour: 17, Minute: 30}, 8.5},
		{ClockTime{Hour: 9}, ClockTime{Hour: 17}, 8},
		{ClockTime{Hour: 9}, ClockTime{Hour: 9, Minute: 20}, 0.33},
		{ClockTime{Hour: 8, Minute: 1}, ClockTime{Hour: 8, Minute: 2}, 0.02},
	}
	for _, tc := range cases {
		if got := TotalHours(tc.in.On(day), tc.out.On(day)); got != tc.want {
			t.Fatalf("TotalHours(%s, %s) = %v, want %v", tc.in, tc.out, got, tc.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("17:30")
	if err != nil {
		t.Fatalf("ParseClock: %v", err)
	}
	if c != (ClockTime{Hour: 17, Minute: 30}) {
		t.Fatalf("unexpected clock %+v", c)
	}
	if c.String() != "17:30" {
		t.Fatalf("unexpected string %s", c.String())
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatal("expected error for invalid hour")
	}
}

func TestParseTimesheetStatus(t *testing.T) {
	if s, err := ParseTimesheetStatus("Rejected"); err != nil || s != TimesheetRejected {
		t.Fatalf("got %q, %v", s, err)
	}
	if _, err := ParseTimesheetStatus("done"); err == nil {
		t.Fatal("expected error")
	}
}
