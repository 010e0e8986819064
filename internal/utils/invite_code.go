package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	inviteCodeGroups    = 3
	inviteCodeGroupSize = 4
)

// GenerateInviteCode returns a random manager invite code like "3f9a-0c1e-77b2".
func GenerateInviteCode() (string, error) {
	raw := make([]byte, inviteCodeGroups*inviteCodeGroupSize/2)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	digits := hex.EncodeToString(raw)
	groups := make([]string, 0, inviteCodeGroups)
	for i := 0; i < len(digits); i += inviteCodeGroupSize {
		groups = append(groups, digits[i:i+inviteCodeGroupSize])
	}
	return strings.Join(groups, "-"), nil
}

// InviteCodeMatches compares a submitted code against the configured one in
// constant time. An empty configured code never matches.
func InviteCodeMatches(configured, submitted string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(strings.TrimSpace(submitted))) == 1
}
