package attestform

import (
	"io/fs"

	"github.com/goliatone/go-attestform/pkg/views"
)

// AssetsFS exposes the stylesheet and other static assets the pages link to.
// NewHandler already serves them; mount them yourself when rendering pages
// through a custom handler:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(attestform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return views.Assets()
}
