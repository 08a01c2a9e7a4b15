// Package transport provides the raw byte streams a device session is driven
// over: an interactive SSH shell or a Telnet connection.
package transport

// Transport is the bidirectional byte stream between the tool and a device's
// command interpreter. Implementations own the underlying connection and
// release it on Close.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}
