package codec

// buffer is the writer's growable scratch sink. Per spec.md §5's buffer
// policy, the top-level call starts with a 64-byte capacity; uncounted
// collection scratch buffers (see freezeUncountedSeq in writer.go) start with
// 32 bytes. Buffers are not pooled.
type buffer struct {
	data []byte
}

func newBuffer(initialCap int) *buffer {
	return &buffer{data: make([]byte, 0, initialCap)}
}

func (b *buffer) Write(p []byte) {
	b.data = append(b.data, p...)
}

func (b *buffer) WriteByte(c byte) {
	b.data = append(b.data, c)
}

func (b *buffer) WriteTag(t Tag) {
	b.data = append(b.data, byte(t))
}

func (b *buffer) Bytes() []byte {
	return b.data
}

func (b *buffer) Len() int {
	return len(b.data)
}
