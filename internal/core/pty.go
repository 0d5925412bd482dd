package core

// PtySize describes a pseudo-terminal's character and pixel
// dimensions, as reported by an SSH pty-req or window-change request.
type PtySize struct {
	Width       uint32
	Height      uint32
	PixelWidth  uint32
	PixelHeight uint32
}
