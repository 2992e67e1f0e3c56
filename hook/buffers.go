// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package hook

import (
	"encoding/binary"
	"sync"

	"github.com/sqreen/go-dxvahook/internal/dxva"
)

// bufferTable holds the compressed buffers most recently acquired during a
// decoding session, per buffer type. They are only read to log the payloads
// of the execute calls referencing them.
type bufferTable struct {
	mu      sync.Mutex
	buffers [dxva.MaxBufferType][]byte
}

// set records the buffer acquired for the type. Types out of range are
// ignored.
func (t *bufferTable) set(typ uint32, b []byte) {
	if typ >= dxva.MaxBufferType {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffers[typ] = b
}

// get returns the `size` bytes at `offset` of the buffer of the given type,
// bounded by the length of the buffer.
func (t *bufferTable) get(typ, offset, size uint32) []byte {
	if typ >= dxva.MaxBufferType {
		return nil
	}
	t.mu.Lock()
	b := t.buffers[typ]
	t.mu.Unlock()
	if uint64(offset) >= uint64(len(b)) {
		return nil
	}
	b = b[offset:]
	if uint64(size) < uint64(len(b)) {
		b = b[:size]
	}
	return b
}

// firstDword returns the little-endian dword at the start of `b`.
func firstDword(b []byte) (uint32, bool) {
	if len(b) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// boundedCount returns the count given by the callee, bounded by the length of
// the array it describes.
func boundedCount(count *uint32, length int) int {
	if count == nil {
		return 0
	}
	if uint64(*count) < uint64(length) {
		return int(*count)
	}
	return length
}
