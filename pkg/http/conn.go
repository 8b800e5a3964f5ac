package http

import (
	"net"
	"time"
)

// idleConn aborts reads that stall for longer than idle. fasthttp only offers whole-exchange
// deadlines, so the read deadline it sets is remembered and the earlier of the two is applied
// before every read
type idleConn struct {
	net.Conn
	idle     time.Duration
	deadline time.Time
}

func newIdleConn(c net.Conn, idle time.Duration) net.Conn {
	return &idleConn{Conn: c, idle: idle}
}

func (c *idleConn) Read(b []byte) (int, error) {
	d := time.Now().Add(c.idle)
	if !c.deadline.IsZero() && c.deadline.Before(d) {
		d = c.deadline
	}
	if err := c.Conn.SetReadDeadline(d); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *idleConn) SetReadDeadline(t time.Time) error {
	c.deadline = t
	return nil
}

func (c *idleConn) SetDeadline(t time.Time) error {
	c.deadline = t
	return c.Conn.SetWriteDeadline(t)
}
