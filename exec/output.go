package exec

import (
	"bytes"
	"sync"
)

// combinedWriter interleaves stdout and stderr in write order.
// os/exec copies the two streams from separate goroutines.
type combinedWriter struct {
	buffer bytes.Buffer
	mu     sync.Mutex
}

func (cw *combinedWriter) Write(p []byte) (int, error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.buffer.Write(p)
}

func (cw *combinedWriter) String() string {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.buffer.String()
}

// captureWriter captures one stream and mirrors it into the combined buffer.
type captureWriter struct {
	buffer   bytes.Buffer
	combined *combinedWriter
	mu       sync.Mutex
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	n, err := w.buffer.Write(p)
	w.mu.Unlock()
	if err != nil {
		return n, err
	}
	return w.combined.Write(p)
}

func (w *captureWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.String()
}
