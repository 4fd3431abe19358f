package gate

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// responseInterceptor wraps the protected handler's http.ResponseWriter so
// settlement runs synchronously at the moment the handler first commits a
// response, and nothing reaches the client until that decision is made.
// Grounded on the settlement-timing contract this package's predecessor
// offered as one of two strategies; this implementation fixes on buffered
// settle-before-release, the only one of the two that never leaks a
// response body for an unpaid successful call.
type responseInterceptor struct {
	w http.ResponseWriter

	// onSuccess runs once, synchronously, the first time the handler tries
	// to commit a status code below 400. It performs settlement and
	// returns true when the original status/body may proceed to the
	// client, false when it has already written a replacement response
	// (a 402 or 500) that must be the only thing released.
	onSuccess func() bool

	// onFailure runs once when the handler commits a status code of 400 or
	// above; no settlement is attempted and the handler's own response is
	// released unchanged.
	onFailure func(statusCode int)

	committed bool
	hijacked  bool
}

func (i *responseInterceptor) Header() http.Header {
	return i.w.Header()
}

func (i *responseInterceptor) Write(b []byte) (int, error) {
	if !i.committed {
		i.WriteHeader(http.StatusOK)
	}
	if i.hijacked {
		return len(b), nil
	}
	return i.w.Write(b)
}

func (i *responseInterceptor) WriteHeader(statusCode int) {
	if i.committed {
		return
	}
	i.committed = true

	if statusCode >= 400 {
		if i.onFailure != nil {
			i.onFailure(statusCode)
		}
		i.w.WriteHeader(statusCode)
		return
	}

	if !i.onSuccess() {
		// onSuccess already wrote the replacement response (402 on
		// settlement failure, 500 on a settlement transport error).
		i.hijacked = true
		return
	}

	i.w.WriteHeader(statusCode)
}

// Flush implements http.Flusher so streaming handlers keep working once
// settlement has released the response.
func (i *responseInterceptor) Flush() {
	if flusher, ok := i.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker. A hijacked connection bypasses the
// settlement gate entirely, so callers that need payment enforcement over
// a hijacked connection must settle before hijacking.
func (i *responseInterceptor) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := i.w.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("gate: underlying ResponseWriter does not support hijacking")
}

// Push implements http.Pusher.
func (i *responseInterceptor) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := i.w.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}
