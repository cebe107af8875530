// Package sshchannel carries SFTP packets over the "sftp" subsystem of
// an SSH connection, re-framing the byte stream into whole packets.
package sshchannel

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// maxPacket bounds the size of a single re-framed packet read off the
// stream. It comfortably covers the 256 KiB read clamp plus envelope.
const maxPacket = 1<<18 + 1024

// Channel adapts an SSH subsystem pipe to the sftp.Channel interface.
type Channel struct {
	session *ssh.Session
	rd      io.Reader
	wr      io.WriteCloser

	wmu sync.Mutex

	mu        sync.Mutex
	onMessage func(data []byte, binary bool)
	onClose   func(err error)
	ready     chan struct{}
	readyOnce sync.Once
	closeOnce sync.Once
}

// New opens the "sftp" subsystem on conn and starts the packet pump.
func New(conn *ssh.Client) (*Channel, error) {
	s, err := conn.NewSession()
	if err != nil {
		return nil, err
	}

	if err := s.RequestSubsystem("sftp"); err != nil {
		s.Close()
		return nil, err
	}

	wr, err := s.StdinPipe()
	if err != nil {
		s.Close()
		return nil, err
	}

	rd, err := s.StdoutPipe()
	if err != nil {
		s.Close()
		return nil, err
	}

	ch := &Channel{
		session: s,
		rd:      rd,
		wr:      wr,
		ready:   make(chan struct{}),
	}

	go ch.pump()

	return ch, nil
}

// Send writes one packet to the stream.
func (ch *Channel) Send(data []byte) error {
	ch.wmu.Lock()
	defer ch.wmu.Unlock()

	_, err := ch.wr.Write(data)
	return err
}

// Close shuts the subsystem down. SSH carries no close codes; they are
// ignored.
func (ch *Channel) Close(code int, desc string) error {
	ch.wr.Close()
	return ch.session.Close()
}

// OnMessage registers the inbound packet handler and releases any
// packets the pump is holding.
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

// pump reads length-prefixed packets off the stream and delivers each
// as one whole message, length prefix included.
func (ch *Channel) pump() {
	for {
		data, err := ch.readPacket()
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			ch.deliverClose(err)
			return
		}

		<-ch.ready

		ch.mu.Lock()
		fn := ch.onMessage
		ch.mu.Unlock()

		fn(data, true)
	}
}

func (ch *Channel) readPacket() ([]byte, error) {
	var head [4]byte
	if _, err := io.ReadFull(ch.rd, head[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(head[:])
	if length < 1 || length > maxPacket {
		return nil, errors.Errorf("sshchannel: bad packet length %d", length)
	}

	data := make([]byte, 4+length)
	copy(data, head[:])

	if _, err := io.ReadFull(ch.rd, data[4:]); err != nil {
		return nil, err
	}

	return data, nil
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
