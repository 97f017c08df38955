package utils

import (
	"testing"
	"time"
)

func TestFormatDateRespectsTimezone(t *testing.T) {
	// UTC 的 3 月 15 日凌晨 2 点在洛杉矶还是 14 号晚上，
	// today 的分界线必须跟配置时区走
	moment := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)

	if got := FormatDate(moment, time.UTC); got != "2026-03-15" {
		t.Fatalf("UTC date = %q", got)
	}

	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if got := FormatDate(moment, la); got != "2026-03-14" {
		t.Fatalf("LA date = %q", got)
	}
}

func TestFormatClock(t *testing.T) {
	moment := time.Date(2026, 3, 15, 9, 5, 3, 0, time.UTC)
	if got := FormatClock(moment, time.UTC); got != "09:05:03" {
		t.Fatalf("clock = %q", got)
	}
}

func TestValidateMobile(t *testing.T) {
	valid := []string{"5551234567", "0000000000"}
	invalid := []string{"", "555123456", "55512345678", "555-123-4567", "555123456a", " 5551234567"}

	for _, m := range valid {
		if !ValidateMobile(m) {
			t.Errorf("ValidateMobile(%q) = false, want true", m)
		}
	}
	for _, m := range invalid {
		if ValidateMobile(m) {
			t.Errorf("ValidateMobile(%q) = true, want false", m)
		}
	}
}
