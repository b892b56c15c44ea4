package id

import "github.com/google/uuid"

// GenerateID creates a random (v4) UUID string.
func GenerateID() string {
	return uuid.NewString()
}

// FromContent derives a stable identifier from arbitrary content, so that
// re-importing the same question yields the same ID.
func FromContent(namespace string, content []byte) string {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(namespace))
	return uuid.NewSHA1(ns, content).String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
