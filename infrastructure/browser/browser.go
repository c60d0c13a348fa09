package browser

import (
	"io"

	"linkedin-publisher/domain/repository"

	"github.com/pkg/browser"
)

// System opens URLs with the platform's default browser.
type System struct{}

var _ repository.IBrowser = System{}

func init() {
	// xdg-open and friends write to the terminal otherwise, mixing into KEY=VALUE output.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

func (System) Open(url string) error {
	return browser.OpenURL(url)
}
