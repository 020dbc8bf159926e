package bfio

import "fmt"

// ChunkType is the band of a chunk.
type ChunkType uint16

// Chunk type bands.
const (
	ByteChunk  ChunkType = 0
	DivChunk   ChunkType = 256
	StartChunk ChunkType = 512
	CheckChunk ChunkType = 768
)

// MaxChunk is the largest valid chunk value.
const MaxChunk Chunk = 1023

// IsValid checks if it's one of the four bands.
func (t ChunkType) IsValid() bool {
	return t&0xff == 0 && t <= CheckChunk
}

// Band returns the band index sent as the first wire byte.
func (t ChunkType) Band() byte {
	return byte(t >> 8)
}

// String implements fmt.Stringer.
func (t ChunkType) String() string {
	switch t {
	case ByteChunk:
		return "Byte"
	case DivChunk:
		return "Div"
	case StartChunk:
		return "Start"
	case CheckChunk:
		return "Check"
	}
	return fmt.Sprintf("ChunkType(%d)", uint16(t))
}

// Chunk is a 10-bit protocol unit: type band plus payload byte.
type Chunk uint16

// NewChunk encodes a payload byte with a type band.
func NewChunk(b byte, t ChunkType) (Chunk, error) {
	if !t.IsValid() {
		return 0, Errorf(Failed, "chunk.encode", "invalid chunk type %d", uint16(t))
	}
	return Chunk(uint16(t) + uint16(b)), nil
}

// Byte, Div, Start and Check build chunks of a known band.
func Byte(b byte) Chunk  { return Chunk(b) }
func Div(b byte) Chunk   { return Chunk(uint16(DivChunk) + uint16(b)) }
func Start(b byte) Chunk { return Chunk(uint16(StartChunk) + uint16(b)) }
func Check(b byte) Chunk { return Chunk(uint16(CheckChunk) + uint16(b)) }

// Decode splits the chunk into its type and payload.
func (c Chunk) Decode() (ChunkType, byte, error) {
	if c > MaxChunk {
		return 0, 0, Errorf(Incompatibility, "chunk.decode", "chunk %d out of range", uint16(c))
	}
	return ChunkType(c - c%256), byte(c % 256), nil
}

// IsValid checks if the chunk falls within the defined bands.
func (c Chunk) IsValid() bool {
	return c <= MaxChunk
}

// Type returns the type band without validation.
func (c Chunk) Type() ChunkType {
	return ChunkType(c &^ 0xff)
}

// Byte returns the payload byte.
func (c Chunk) Byte() byte {
	return byte(c)
}

// ToWire returns the two bytes sent on the link.
func (c Chunk) ToWire() (b0, b1 byte) {
	return byte(c >> 8), byte(c)
}

// FromWire rebuilds a chunk from two link bytes.
func FromWire(b0, b1 byte) (Chunk, error) {
	if b0 > 3 {
		return 0, Errorf(Incompatibility, "chunk.fromwire", "band index %d", b0)
	}
	return Chunk(uint16(b0)<<8 | uint16(b1)), nil
}

// String implements fmt.Stringer.
func (c Chunk) String() string {
	if !c.IsValid() {
		return fmt.Sprintf("Chunk(%d)", uint16(c))
	}
	return fmt.Sprintf("%s(%d)", c.Type(), c.Byte())
}
