// Package clipboard copies text to the player's clipboard, either the local
// system clipboard or, for remote terminals, through an OSC 52 escape.
package clipboard

import (
	"errors"
	"io"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrUnavailable is returned when no clipboard can be reached.
var ErrUnavailable = errors.New("clipboard unavailable")

// Writer copies text somewhere the player can paste it.
type Writer interface {
	Write(text string) error
}

// System writes to the local clipboard via pbcopy, xclip, xsel, wl-copy
// or the Windows API.
type System struct{}

// Write copies text to the system clipboard.
func (System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// Available checks if the system clipboard can be used.
func Available() bool {
	return !clipboard.Unsupported
}

// Terminal asks the terminal on the other end of Out to set its clipboard.
// It works over SSH when the client terminal supports OSC 52.
type Terminal struct {
	Out io.Writer
}

// Write emits the OSC 52 sequence for text.
func (t Terminal) Write(text string) error {
	if t.Out == nil {
		return ErrUnavailable
	}
	_, err := osc52.New(text).WriteTo(t.Out)
	return err
}
