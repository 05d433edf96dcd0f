package service

import (
	"strings"

	"github.com/google/uuid"
)

// newID returns prefix-XXXXXXXX with eight upper-case hex characters.
func newID(prefix string) string {
	return prefix + "-" + strings.ToUpper(hexID()[:8])
}

func newSlugID(prefix string) string {
	return prefix + "_" + hexID()[:12]
}

func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
