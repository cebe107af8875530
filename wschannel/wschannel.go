// Package wschannel carries SFTP packets over a WebSocket connection,
// one packet per binary message.
package wschannel

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGracePeriod = 5 * time.Second

// Channel adapts a *websocket.Conn to the sftp.Channel interface.
type Channel struct {
	conn *websocket.Conn

	wmu sync.Mutex // serializes writes

	mu        sync.Mutex
	onMessage func(data []byte, binary bool)
	onClose   func(err error)
	ready     chan struct{}
	readyOnce sync.Once
	closeOnce sync.Once
}

// New wraps an established WebSocket connection and starts its read
// pump. Inbound messages are held until a message handler is
// registered.
func New(conn *websocket.Conn) *Channel {
	ch := &Channel{
		conn:  conn,
		ready: make(chan struct{}),
	}

	go ch.pump()

	return ch
}

// Send transmits one packet as a single binary message.
func (ch *Channel) Send(data []byte) error {
	ch.wmu.Lock()
	defer ch.wmu.Unlock()

	return ch.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close sends a close frame carrying code and desc, then tears the
// connection down.
func (ch *Channel) Close(code int, desc string) error {
	ch.wmu.Lock()
	msg := websocket.FormatCloseMessage(code, desc)
	ch.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	ch.wmu.Unlock()

	return ch.conn.Close()
}

// OnMessage registers the inbound message handler and releases any
// messages the pump is holding.
func (ch *Channel) OnMessage(fn func(data []byte, binary bool)) {
	ch.mu.Lock()
	ch.onMessage = fn
	ch.mu.Unlock()

	ch.readyOnce.Do(func() { close(ch.ready) })
}

// OnClose registers the shutdown handler.
func (ch *Channel) OnClose(fn func(err error)) {
	ch.mu.Lock()
	ch.onClose = fn
	ch.mu.Unlock()
}

func (ch *Channel) pump() {
	for {
		typ, data, err := ch.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			}
			ch.deliverClose(err)
			return
		}

		<-ch.ready

		ch.mu.Lock()
		fn := ch.onMessage
		ch.mu.Unlock()

		fn(data, typ == websocket.BinaryMessage)
	}
}

func (ch *Channel) deliverClose(err error) {
	ch.closeOnce.Do(func() {
		ch.mu.Lock()
		fn := ch.onClose
		ch.mu.Unlock()

		if fn != nil {
			fn(err)
		}
	})
}
