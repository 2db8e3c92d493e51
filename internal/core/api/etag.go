package api

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/solatis/formkeeper/internal/schema"
)

// FormETag returns a strong ETag for a form definition. Every write bumps
// UpdatedAt, so id and update time identify the content.
func FormETag(form *schema.Form) string {
	h := sha256.New()
	h.Write([]byte(form.ID))
	h.Write([]byte{0})
	h.Write([]byte(form.UpdatedAt.UTC().Format(time.RFC3339Nano)))
	return fmt.Sprintf("%q", fmt.Sprintf("%x", h.Sum(nil))[:32])
}
