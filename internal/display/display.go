// Package display implements the 64x32 monochrome CHIP-8 framebuffer.
//
// Pixels are packed 8 per byte, row-major, with the most significant bit of
// a byte holding the leftmost pixel. A row therefore spans 8 bytes and the
// whole frame 256 bytes.
package display

// Display geometry.
const (
	Width      = 64
	Height     = 32
	RowBytes   = Width / 8
	BufferSize = RowBytes * Height
)

// Frame is a packed snapshot of the framebuffer.
type Frame [BufferSize]byte

// Pixel reports whether the pixel at the given coordinate is set.
// Coordinates wrap around the screen edges.
func (f *Frame) Pixel(x, y int) bool {
	x = wrap(x, Width)
	y = wrap(y, Height)
	b := f[y*RowBytes+x/8]
	return b&(0x80>>(x%8)) != 0
}

// Framebuffer is the raster engine. It is not safe for concurrent use,
// frames leave it only as copies returned by Snapshot.
type Framebuffer struct {
	buf   Frame
	dirty bool
}

// New returns a cleared framebuffer.
func New() *Framebuffer {
	return &Framebuffer{dirty: true}
}

// Clear turns off all pixels.
func (f *Framebuffer) Clear() {
	f.buf = Frame{}
	f.dirty = true
}

// Draw XORs the sprite rows onto the buffer starting at x, y and returns
// whether any set pixel was turned off. Rows wrap vertically at the bottom
// edge, a row that is not byte aligned wraps horizontally within its own row.
func (f *Framebuffer) Draw(x, y int, sprite []byte) bool {
	x = wrap(x, Width)
	y = wrap(y, Height)
	col := x / 8
	shift := uint(x % 8)

	collision := false
	for row, data := range sprite {
		base := ((y + row) % Height) * RowBytes
		left := base + col
		right := base + (col+1)%RowBytes

		var hit bool
		if shift == 0 {
			f.buf[left], hit = XORByte(f.buf[left], data)
			collision = collision || hit
			continue
		}

		hi, lo := SplitSprite(data, shift)
		f.buf[left], hit = XORByte(f.buf[left], hi)
		collision = collision || hit
		f.buf[right], hit = XORByte(f.buf[right], lo)
		collision = collision || hit
	}

	if len(sprite) > 0 {
		f.dirty = true
	}
	return collision
}

// Snapshot returns a copy of the current buffer.
func (f *Framebuffer) Snapshot() Frame {
	return f.buf
}

// Dirty reports whether the buffer changed since the last MarkClean call.
func (f *Framebuffer) Dirty() bool {
	return f.dirty
}

// MarkClean resets the dirty flag after a frame was published.
func (f *Framebuffer) MarkClean() {
	f.dirty = false
}

// XORByte composes src onto dst and reports whether a set bit of dst was cleared.
func XORByte(dst, src byte) (byte, bool) {
	result := dst ^ src
	return result, dst&^result != 0
}

// SplitSprite splits a sprite row drawn at a bit offset of shift (1-7) within
// a byte into the part covering the first byte and the part spilling into the
// next byte.
func SplitSprite(data byte, shift uint) (byte, byte) {
	return data >> shift, data << (8 - shift)
}

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
