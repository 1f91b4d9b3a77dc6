package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID returns an opaque identifier of the form "<prefix>-<8 hex>",
// e.g. "person-3fa85f64". Prefixes keep ids greppable in logs and exports.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}
