package storage

import (
	"github.com/atotto/clipboard"
)

// ClipboardMirror receives every clipboard slot write, so copied node data
// can also be pasted into other applications.
type ClipboardMirror interface {
	WriteClipboard(text string) error
}

// SystemClipboard mirrors the clipboard slot to the operating system
// clipboard.
type SystemClipboard struct{}

// WriteClipboard copies text to the system clipboard.
func (SystemClipboard) WriteClipboard(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

// ReadClipboard returns the system clipboard text.
func (SystemClipboard) ReadClipboard() (string, error) {
	if clipboard.Unsupported {
		return "", errClipboardUnsupported
	}
	return clipboard.ReadAll()
}
