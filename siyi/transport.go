package siyi

import (
	"net"
	"time"
)

// transport owns the UDP socket. Sends are fire and forget single
// datagrams; receives block for at most the given timeout. Closing
// the socket from another goroutine unblocks a pending receive.
type transport struct {
	conn net.Conn
}

func dialTransport(addr string) (*transport, error) {
	c, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	return &transport{conn: c}, nil
}

func (t *transport) send(b []byte) error {
	_, err := t.conn.Write(b)
	return err
}

func (t *transport) receive(buf []byte, timeout time.Duration) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	return t.conn.Read(buf)
}

func (t *transport) close() error {
	return t.conn.Close()
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
