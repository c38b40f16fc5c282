// Package display is the boundary to the local status panel.
package display

// Sink renders an ordered set of text lines, top to bottom. A Sink is
// expected to be usable for the lifetime of the device once constructed;
// construction failure is the only failure the rest of the system treats as
// fatal.
type Sink interface {
	Render(lines []string) error
}
