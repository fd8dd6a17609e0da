package pipeline

import (
	"fmt"
	"net/http"

	"github.com/alkem-io/correlation-gateway/internal/httpx"
)

// Write renders resp onto w.
func Write(w http.ResponseWriter, resp Response) {
	switch r := resp.(type) {
	case *Fault:
		httpx.WriteError(w, r.Err)
	case Raw:
		writeReply(w, r.Wrap())
	case *Reply:
		writeReply(w, r)
	default:
		httpx.WriteError(w, httpx.Internal("unknown response type", nil))
	}
}

func writeReply(w http.ResponseWriter, r *Reply) {
	for name, values := range r.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}

	switch body := r.Body.(type) {
	case nil:
		w.WriteHeader(status)
	case []byte:
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	case string:
		writeText(w, status, body)
	default:
		if _, ok := Classify(body, nil).(Raw); ok {
			writeText(w, status, fmt.Sprint(body))
			return
		}
		httpx.WriteJSON(w, status, body)
	}
}

func writeText(w http.ResponseWriter, status int, s string) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(s))
}
