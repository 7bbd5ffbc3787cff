package attachment

import (
	"strings"
	"testing"
	"time"
)

func TestDeriveKey(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	key := DeriveKey("u1", now, "photo.PNG")

	if !strings.HasPrefix(key, "attachments/u1/2024/6/") {
		t.Errorf("key = %q, want prefix attachments/u1/2024/6/", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("key = %q, want lowercased .png extension", key)
	}

	other := DeriveKey("u1", now, "photo.PNG")
	if key == other {
		t.Error("two derivations produced the same key")
	}
}

func TestDeriveKeyNoExtension(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	key := DeriveKey("u1", now, "README")
	if strings.Contains(key, ".") {
		t.Errorf("key = %q, want no extension", key)
	}
}

func TestIsOwnedBy(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		userID string
		want   bool
	}{
		{"owner matches", "attachments/u1/2024/6/abc.png", "u1", true},
		{"different user", "attachments/u1/2024/6/abc.png", "u2", false},
		{"owner is a prefix of requester", "attachments/u1/2024/6/abc.png", "u12", false},
		{"requester is a prefix of owner", "attachments/u12/2024/6/abc.png", "u1", false},
		{"wrong root segment", "uploads/u1/2024/6/abc.png", "u1", false},
		{"too few segments", "attachments/u1/abc.png", "u1", false},
		{"empty owner segment", "attachments//2024/6/abc.png", "", false},
		{"empty key", "", "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOwnedBy(tt.key, tt.userID); got != tt.want {
				t.Errorf("IsOwnedBy(%q, %q) = %v, want %v", tt.key, tt.userID, got, tt.want)
			}
		})
	}
}
