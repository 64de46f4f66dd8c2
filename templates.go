package attestform

import (
	"io/fs"

	"github.com/goliatone/go-attestform/pkg/views"
)

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or extend them without importing the views package directly.
func EmbeddedTemplates() fs.FS {
	return views.Templates()
}
