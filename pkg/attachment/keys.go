package attachment

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix is the root segment of every attachment storage key.
const KeyPrefix = "attachments"

// DeriveKey builds the storage key for one uploaded file:
//
//	attachments/{userId}/{year}/{month}/{uuid}{ext}
//
// The owner id sits in the key on purpose: it lets the read-side
// authorization check pass without touching the database. The original
// filename never appears in the key; it travels in object metadata.
func DeriveKey(userID string, now time.Time, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%s/%d/%d/%s%s",
		KeyPrefix, userID, now.Year(), int(now.Month()), uuid.NewString(), ext)
}

// OwnerOf extracts the owner segment from a storage key. Returns false for
// keys that don't follow the attachment layout.
func OwnerOf(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) < 5 || parts[0] != KeyPrefix || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// IsOwnedBy is the fast-path access check: true iff the key's owner segment
// is exactly userID. No I/O.
func IsOwnedBy(key, userID string) bool {
	owner, ok := OwnerOf(key)
	return ok && owner == userID
}
