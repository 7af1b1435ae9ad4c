package middleware

import "net/http"

// recordingWriter remembers the status and body size of a response for
// the request log. Flush and Unwrap reach the wrapped writer.
type recordingWriter struct {
	http.ResponseWriter
	status int
	bytes  int
	sent   bool
}

func newRecordingWriter(w http.ResponseWriter) *recordingWriter {
	return &recordingWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *recordingWriter) WriteHeader(code int) {
	if !rw.sent {
		rw.status = code
		rw.sent = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.sent = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *recordingWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController find optional interfaces.
func (rw *recordingWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
