package views_test

import (
	"io/fs"

	"github.com/goliatone/go-attestform/pkg/views"
)

func fsReadFile(name string) ([]byte, error) {
	return fs.ReadFile(views.Assets(), name)
}
