package bfio

// Segment is one Div chunk followed by the Byte chunks of a parameter.
type Segment []Chunk

// Plane is a framed packet: Start(id), segments, Check(checksum).
type Plane []Chunk

// Analysis summarizes a verified plane.
type Analysis struct {
	Size   int
	Params int
	ID     FunctionID
}

// SegmentFromBytes prefixes a Div chunk and maps every byte to a Byte chunk.
func SegmentFromBytes(b []byte) Segment {
	seg := make(Segment, 0, len(b)+1)
	seg = append(seg, Div(0))
	for _, v := range b {
		seg = append(seg, Byte(v))
	}
	return seg
}

// ParameterSegment serializes a value into a segment.
func ParameterSegment(v interface{}) (Segment, error) {
	b, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return SegmentFromBytes(b), nil
}

// AppendSegments concatenates b to a. It fails when the result exceeds capacity.
func AppendSegments(a, b Segment, capacity int) (Segment, error) {
	if len(a)+len(b) > capacity {
		return nil, Errorf(Failed, "packet.append", "%d chunks exceed capacity %d", len(a)+len(b), capacity)
	}
	merged := make(Segment, 0, len(a)+len(b))
	merged = append(merged, a...)
	return append(merged, b...), nil
}

// CreateFromSegments frames segments into a plane for the function ID.
// It fails when the plane needs more than capacity chunks.
func CreateFromSegments(id FunctionID, capacity int, segments ...Segment) (Plane, error) {
	size := 2
	for _, seg := range segments {
		size += len(seg)
	}
	if size > capacity {
		return nil, Errorf(Failed, "packet.create", "plane %s needs %d chunks, capacity %d", id, size, capacity)
	}
	p := make(Plane, 0, size)
	p = append(p, Start(byte(id)))
	for _, seg := range segments {
		for _, c := range seg {
			if !c.IsValid() {
				return nil, Errorf(Crashed, "packet.create", "%s: chunk %d", MsgInternalPacketBuild, uint16(c))
			}
			t := c.Type()
			if t == StartChunk || t == CheckChunk {
				return nil, Errorf(Failed, "packet.create", "%s chunk inside segment", t)
			}
		}
		p = append(p, seg...)
	}
	return append(p, Check(Checksum(p[1:]))), nil
}

// Checksum sums the payload bytes modulo 256.
func Checksum(chunks []Chunk) byte {
	var sum byte
	for _, c := range chunks {
		sum += c.Byte()
	}
	return sum
}

// TotalSize scans for the Check chunk and returns the plane length.
// It is Incompatibility when buf doesn't begin with Start and Crashed when no Check is found.
func TotalSize(buf []Chunk) (int, error) {
	if len(buf) == 0 || !buf[0].IsValid() || buf[0].Type() != StartChunk {
		return 0, Errorf(Incompatibility, "packet.size", "plane doesn't begin with a start chunk")
	}
	for n := 1; n < len(buf); n++ {
		c := buf[n]
		if !c.IsValid() {
			return 0, Errorf(Crashed, "packet.size", "%s: chunk %d", MsgInternalChunkConv, uint16(c))
		}
		switch c.Type() {
		case CheckChunk:
			return n + 1, nil
		case StartChunk:
			return 0, Errorf(Incompatibility, "packet.size", "start chunk at %d", n)
		}
	}
	return 0, Errorf(Crashed, "packet.size", "no check chunk within %d chunks", len(buf))
}

// ID returns the function ID carried by the Start chunk.
func (p Plane) ID() FunctionID {
	if len(p) == 0 {
		return 0
	}
	return FunctionID(p[0].Byte())
}

// VerifyCheckSum recomputes the checksum and compares it to the Check chunk.
func VerifyCheckSum(p Plane) error {
	size, err := TotalSize(p)
	if err != nil {
		return err
	}
	if size < len(p) {
		return Errorf(Failed, "packet.checksum", "%s: %d", MsgFreeBytesInPacket, len(p)-size)
	}
	if sum := Checksum(p[1 : size-1]); sum != p[size-1].Byte() {
		return Errorf(Failed, "packet.checksum", "expect %d, computed %d", p[size-1].Byte(), sum)
	}
	return nil
}

// VerifyID checks the plane's function ID against the supported table.
func VerifyID(p Plane, ids *IDTable) error {
	if len(p) == 0 || p[0].Type() != StartChunk {
		return Errorf(Incompatibility, "packet.id", "missing start chunk")
	}
	if !ids.Supports(p.ID()) {
		return Errorf(Incompatibility, "packet.id", "%s: %s", MsgUnsupportedFunctions, p.ID())
	}
	return nil
}

// AmountOfParameters counts the Div chunks of a plane.
func AmountOfParameters(p Plane) (int, error) {
	size, err := TotalSize(p)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range p[1 : size-1] {
		if c.Type() == DivChunk {
			count++
		}
	}
	return count, nil
}

// BytesFromSegment strips the Div chunk and decodes the Byte chunks.
func BytesFromSegment(seg Segment) ([]byte, error) {
	if len(seg) == 0 || seg[0].Type() != DivChunk {
		return nil, Errorf(Failed, "packet.bytes", "segment doesn't begin with a div chunk")
	}
	b := make([]byte, 0, len(seg)-1)
	for _, c := range seg[1:] {
		t, v, err := c.Decode()
		if err != nil || t != ByteChunk {
			return nil, Errorf(Crashed, "packet.bytes", "%s: %s", MsgInternalByteConv, c)
		}
		b = append(b, v)
	}
	return b, nil
}

// Parameters splits a plane into its segments.
func Parameters(p Plane) ([]Segment, error) {
	size, err := TotalSize(p)
	if err != nil {
		return nil, err
	}
	var segs []Segment
	for _, c := range p[1 : size-1] {
		if c.Type() == DivChunk {
			segs = append(segs, Segment{c})
			continue
		}
		if len(segs) == 0 {
			return nil, Errorf(Failed, "packet.params", "%s: byte chunk before first div", MsgDivCounting)
		}
		segs[len(segs)-1] = append(segs[len(segs)-1], c)
	}
	return segs, nil
}

// ParameterBytes returns the decoded bytes of every segment.
func ParameterBytes(p Plane) ([][]byte, error) {
	segs, err := Parameters(p)
	if err != nil {
		return nil, err
	}
	params := make([][]byte, 0, len(segs))
	for _, seg := range segs {
		b, err := BytesFromSegment(seg)
		if err != nil {
			return nil, err
		}
		params = append(params, b)
	}
	return params, nil
}

// FullyAnalyze verifies framing, checksum and ID in one pass.
// Unsupported IDs are Incompatibility, structural errors Crashed, checksum errors Failed.
func FullyAnalyze(p Plane, ids *IDTable) (Analysis, error) {
	var a Analysis
	size, err := TotalSize(p)
	if err != nil {
		return a, Errorf(Crashed, "packet.analyze", "%v", err)
	}
	if err = VerifyCheckSum(p); err != nil {
		return a, Errorf(Failed, "packet.analyze", "%v", err)
	}
	if err = VerifyID(p, ids); err != nil {
		return a, err
	}
	params, _ := AmountOfParameters(p)
	a.Size, a.Params, a.ID = size, params, p.ID()
	return a, nil
}
