package ui

import (
	"io"

	"github.com/pkg/browser"
)

func init() {
	// Browser launchers chatter on stdout, which would corrupt the views.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// OpenURL opens url in the OS default browser.
var OpenURL = browser.OpenURL
