package ring_buffer

// bufImpl keeps the most recent audio chunks captured ahead of a recording,
// so the first words of a phrase are not lost while the trigger is still
// being detected. Oldest chunks are dropped once capacity is reached.
type bufImpl struct {
	chunks [][]byte
	head   int
	count  int
}

func New(capacity int) *bufImpl {
	return &bufImpl{
		chunks: make([][]byte, capacity),
	}
}

// Add copies the chunk into the buffer, evicting the oldest chunk when full.
// A zero-capacity buffer drops every chunk.
func (r *bufImpl) Add(chunk []byte) {
	if len(r.chunks) == 0 {
		return
	}

	stored := make([]byte, len(chunk))
	copy(stored, chunk)

	r.chunks[r.head] = stored
	r.head = (r.head + 1) % len(r.chunks)

	if r.count < len(r.chunks) {
		r.count++
	}
}

// Drain returns the buffered chunks oldest-first and empties the buffer.
func (r *bufImpl) Drain() [][]byte {
	chunks := make([][]byte, 0, r.count)
	if r.count == 0 {
		return chunks
	}

	start := (r.head - r.count + len(r.chunks)) % len(r.chunks)
	for i := 0; i < r.count; i++ {
		chunks = append(chunks, r.chunks[(start+i)%len(r.chunks)])
	}

	for i := range r.chunks {
		r.chunks[i] = nil
	}
	r.head = 0
	r.count = 0

	return chunks
}

func (r *bufImpl) Len() int {
	return r.count
}
