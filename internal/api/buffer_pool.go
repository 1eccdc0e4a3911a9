package api

import (
	"bytes"
	"encoding/json"
	"sync"
)

// bufferPool reuses byte buffers for request bodies. Prompts are large and a
// run issues many backend calls, so buffers are recycled.
var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// getBuffer retrieves a buffer from the pool.
// Caller must call putBuffer() when done to return it to the pool.
func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool for reuse.
// Only buffers under a size limit are returned to prevent holding large buffers.
func putBuffer(buf *bytes.Buffer) {
	const maxBufferSize = 64 * 1024
	if buf.Cap() <= maxBufferSize {
		bufferPool.Put(buf)
	}
}

// EncodeJSON marshals v into a pooled buffer. The returned release func hands
// the buffer back and must be called once the body has been sent.
func EncodeJSON(v any) (body []byte, release func(), err error) {
	buf := getBuffer()
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		putBuffer(buf)
		return nil, func() {}, err
	}
	return buf.Bytes(), func() { putBuffer(buf) }, nil
}
