package sftp

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanfs/sftp/encoding/wire"
)

const testMaxPacket = 1 << 20

// fakeChannel is a scripted in-memory transport. Every Send is
// recorded; when a responder is set, it is invoked synchronously with
// the parsed request and its replies are delivered back inline.
type fakeChannel struct {
	t *testing.T

	mu        sync.Mutex
	sent      [][]byte
	onMessage func(data []byte, binary bool)
	onClose   func(err error)
	closed    bool
	closeCode int
	respond   func(req *wire.RawPacket) [][]byte
}

func newFakeChannel(t *testing.T) *fakeChannel {
	return &fakeChannel{t: t}
}

func (f *fakeChannel) Send(data []byte) error {
	cp := append([]byte(nil), data...)

	f.mu.Lock()
	f.sent = append(f.sent, cp)
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return nil
	}

	req, err := wire.ParsePacket(append([]byte(nil), cp...), testMaxPacket)
	require.NoError(f.t, err)

	for _, reply := range respond(req) {
		f.deliver(reply)
	}

	return nil
}

func (f *fakeChannel) Close(code int, desc string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		f.closeCode = code
	}
	return nil
}

func (f *fakeChannel) OnMessage(fn func(data []byte, binary bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onMessage = fn
}

func (f *fakeChannel) OnClose(fn func(err error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onClose = fn
}

func (f *fakeChannel) deliver(data []byte) {
	f.mu.Lock()
	fn := f.onMessage
	f.mu.Unlock()

	require.NotNil(f.t, fn, "no message handler registered")
	fn(data, true)
}

func (f *fakeChannel) setRespond(fn func(req *wire.RawPacket) [][]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respond = fn
}

func (f *fakeChannel) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeChannel) sentPacket(i int) *wire.RawPacket {
	f.mu.Lock()
	data := append([]byte(nil), f.sent[i]...)
	f.mu.Unlock()

	pkt, err := wire.ParsePacket(data, testMaxPacket)
	require.NoError(f.t, err)
	return pkt
}

func (f *fakeChannel) closedWith() (bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed, f.closeCode
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never met")
}

func versionReply(exts ...wire.ExtensionPair) []byte {
	buf := wire.NewMarshalBuffer(wire.PacketTypeVersion, 0, 256)
	buf.AppendUint32(3)

	for i := range exts {
		exts[i].MarshalInto(buf)
	}

	return buf.Packet()
}

func statusReply(id uint32, code wire.Status, msg string) []byte {
	buf := wire.NewMarshalBuffer(wire.PacketTypeStatus, id, 64)
	buf.AppendUint32(uint32(code))
	buf.AppendString(msg)
	buf.AppendString("en")
	return buf.Packet()
}

func handleReply(id uint32, handle string) []byte {
	buf := wire.NewMarshalBuffer(wire.PacketTypeHandle, id, 64)
	buf.AppendString(handle)
	return buf.Packet()
}

func dataReply(id uint32, payload []byte) []byte {
	buf := wire.NewMarshalBuffer(wire.PacketTypeData, id, 64+len(payload))
	buf.AppendByteSlice(payload)
	return buf.Packet()
}

func nameReply(id uint32, entries ...wire.NameEntry) []byte {
	buf := wire.NewMarshalBuffer(wire.PacketTypeName, id, 1024)
	buf.AppendUint32(uint32(len(entries)))

	for i := range entries {
		entries[i].MarshalInto(buf)
	}

	return buf.Packet()
}

func attrsReply(id uint32, attrs *wire.Attributes) []byte {
	buf := wire.NewMarshalBuffer(wire.PacketTypeAttrs, id, 64)
	attrs.MarshalInto(buf)
	return buf.Packet()
}

// connected builds a client wired to a fake channel whose handshake
// announces the given extensions, then installs respond for everything
// after the handshake.
func connected(t *testing.T, respond func(req *wire.RawPacket) [][]byte, exts ...wire.ExtensionPair) (*Client, *fakeChannel) {
	t.Helper()

	c, err := NewClient(opts()...)
	require.NoError(t, err)

	f := newFakeChannel(t)
	f.setRespond(func(req *wire.RawPacket) [][]byte {
		if req.Type == wire.PacketTypeInit {
			return [][]byte{versionReply(exts...)}
		}
		if respond == nil {
			return nil
		}
		return respond(req)
	})

	require.NoError(t, c.Connect(f))

	return c, f
}

func opts(extra ...ClientOption) []ClientOption {
	return append([]ClientOption{WithSessionID(1)}, extra...)
}

func TestConnectHandshake(t *testing.T) {
	c, f := connected(t, nil,
		wire.ExtensionPair{Name: wire.ExtPosixRename, Data: "1"},
		wire.ExtensionPair{Name: wire.ExtHardlink, Data: "1"},
		wire.ExtensionPair{Name: "vers@openssh.com", Data: "a"},
		wire.ExtensionPair{Name: "vers@openssh.com", Data: "b"},
		wire.ExtensionPair{Name: wire.ExtNewline, Data: "\n"},
		wire.ExtensionPair{Name: wire.ExtNewline, Data: "\r\n"},
	)

	init := f.sentPacket(0)
	assert.Equal(t, wire.PacketTypeInit, init.Type)
	version, err := init.Data.ConsumeUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), version)

	data, ok := c.HasExtension(wire.ExtPosixRename)
	assert.True(t, ok)
	assert.Equal(t, "1", data)

	// OpenSSH-namespaced repeats accumulate; others overwrite.
	data, _ = c.HasExtension("vers@openssh.com")
	assert.Equal(t, "a,b", data)
	data, _ = c.HasExtension(wire.ExtNewline)
	assert.Equal(t, "\r\n", data)

	assert.True(t, c.hasPosixRename)
	assert.True(t, c.hasHardlink)
	assert.False(t, c.hasFsync)
}

func TestConnectBadVersion(t *testing.T) {
	c, err := NewClient(opts()...)
	require.NoError(t, err)

	f := newFakeChannel(t)
	f.setRespond(func(req *wire.RawPacket) [][]byte {
		buf := wire.NewMarshalBuffer(wire.PacketTypeVersion, 0, 4)
		buf.AppendUint32(4)
		return [][]byte{buf.Packet()}
	})

	err = c.Connect(f)
	require.Error(t, err)

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, wire.StatusBadMessage, status.Code)

	closed, code := f.closedWith()
	assert.True(t, closed)
	assert.Equal(t, CloseProtocolError, code)
}

func TestConnectNonVersionReply(t *testing.T) {
	c, err := NewClient(opts()...)
	require.NoError(t, err)

	f := newFakeChannel(t)
	f.setRespond(func(req *wire.RawPacket) [][]byte {
		return [][]byte{statusReply(0, wire.StatusOK, "")}
	})

	err = c.Connect(f)
	require.Error(t, err)

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, wire.StatusBadMessage, status.Code)
}

func TestConnectTwice(t *testing.T) {
	c, _ := connected(t, nil)

	err := c.Connect(newFakeChannel(t))
	assert.Error(t, err)
}

func TestNotConnected(t *testing.T) {
	c, err := NewClient(opts()...)
	require.NoError(t, err)

	_, err = c.Stat("/x")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestEndToEndWriteScenario(t *testing.T) {
	payload := []byte("hello, remote world")

	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpen:
			return [][]byte{handleReply(req.RequestID, "h1")}
		case wire.PacketTypeWrite, wire.PacketTypeClose:
			return [][]byte{statusReply(req.RequestID, wire.StatusOK, "")}
		}
		return nil
	})

	h, err := c.Open("/tmp/a", "w", nil)
	require.NoError(t, err)

	n, err := h.WriteAt(payload, 0)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	require.NoError(t, h.Close())

	// Request 0 is the INIT; then OPEN, WRITE, CLOSE in order.
	require.Equal(t, 4, f.sentCount())

	open := f.sentPacket(1)
	assert.Equal(t, wire.PacketTypeOpen, open.Type)
	path, _ := open.Data.ConsumeString()
	assert.Equal(t, "/tmp/a", path)
	pflags, _ := open.Data.ConsumeUint32()
	assert.Equal(t, uint32(wire.FlagWrite|wire.FlagCreate|wire.FlagTruncate), pflags)
	mask, _ := open.Data.ConsumeUint32()
	assert.Zero(t, mask, "no attribute changes requested")

	write := f.sentPacket(2)
	assert.Equal(t, wire.PacketTypeWrite, write.Type)
	handle, _ := write.Data.ConsumeString()
	assert.Equal(t, "h1", handle)
	offset, _ := write.Data.ConsumeUint64()
	assert.Zero(t, offset)
	data, _ := write.Data.ConsumeByteSlice()
	assert.True(t, bytes.Equal(payload, data), "write payload must be byte-exact")

	cls := f.sentPacket(3)
	assert.Equal(t, wire.PacketTypeClose, cls.Type)
	handle, _ = cls.Data.ConsumeString()
	assert.Equal(t, "h1", handle)
}

func TestRequestCorrelation(t *testing.T) {
	c, f := connected(t, nil)

	paths := []string{"/p1", "/p2", "/p3"}

	var wg sync.WaitGroup
	results := make([]string, len(paths))
	errs := make([]error, len(paths))

	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			results[i], errs[i] = c.RealPath(p)
		}(i, p)
	}

	// INIT plus one realpath request per goroutine.
	waitFor(t, func() bool { return f.sentCount() == 1+len(paths) })

	// Deliver responses in reverse arrival order, each echoing the
	// path its request carried.
	for i := f.sentCount() - 1; i >= 1; i-- {
		req := f.sentPacket(i)
		require.Equal(t, wire.PacketTypeRealPath, req.Type)
		p, err := req.Data.ConsumeString()
		require.NoError(t, err)

		f.deliver(nameReply(req.RequestID, wire.NameEntry{
			Filename: "resolved:" + p,
			Longname: p,
		}))
	}

	wg.Wait()

	for i, p := range paths {
		require.NoError(t, errs[i])
		assert.Equal(t, "resolved:"+p, results[i])
	}
}

func openTestHandle(t *testing.T, c *Client) *Handle {
	t.Helper()

	h, err := c.Open("/data/file", "r", nil)
	require.NoError(t, err)
	return h
}

func TestReadEOFStatus(t *testing.T) {
	c, _ := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpen:
			return [][]byte{handleReply(req.RequestID, "h1")}
		case wire.PacketTypeRead:
			return [][]byte{statusReply(req.RequestID, wire.StatusEOF, "")}
		}
		return nil
	})

	h := openTestHandle(t, c)

	buf := make([]byte, 16)
	n, err := h.ReadAt(buf, 0)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestEmptyReadRetries(t *testing.T) {
	var reads int

	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpen:
			return [][]byte{handleReply(req.RequestID, "h1")}
		case wire.PacketTypeRead:
			reads++
			return [][]byte{dataReply(req.RequestID, nil)}
		}
		return nil
	})

	h := openTestHandle(t, c)

	buf := make([]byte, 16)
	_, err := h.ReadAt(buf, 4)
	require.Error(t, err)

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, wire.StatusFailure, status.Code)

	// The initial read plus 4 retries, all at the same position.
	assert.Equal(t, 5, reads)

	var offsets []uint64
	for i := 1; i < f.sentCount(); i++ {
		req := f.sentPacket(i)
		if req.Type != wire.PacketTypeRead {
			continue
		}
		req.Data.ConsumeString()
		off, _ := req.Data.ConsumeUint64()
		offsets = append(offsets, off)
	}
	assert.Equal(t, []uint64{4, 4, 4, 4, 4}, offsets)
}

func TestEmptyReadThenData(t *testing.T) {
	var reads int

	c, _ := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpen:
			return [][]byte{handleReply(req.RequestID, "h1")}
		case wire.PacketTypeRead:
			reads++
			if reads < 3 {
				return [][]byte{dataReply(req.RequestID, nil)}
			}
			return [][]byte{dataReply(req.RequestID, []byte("ok"))}
		}
		return nil
	})

	h := openTestHandle(t, c)

	buf := make([]byte, 16)
	n, err := h.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ok", string(buf[:n]))
}

func TestReadOversizeResponseFatal(t *testing.T) {
	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpen:
			return [][]byte{handleReply(req.RequestID, "h1")}
		case wire.PacketTypeRead:
			return [][]byte{dataReply(req.RequestID, []byte("way too many bytes"))}
		}
		return nil
	})

	h := openTestHandle(t, c)

	buf := make([]byte, 4)
	_, err := h.ReadAt(buf, 0)
	assert.ErrorIs(t, err, ErrProtocol)

	closed, code := f.closedWith()
	assert.True(t, closed)
	assert.Equal(t, CloseProtocolError, code)
}

func TestReadClamp(t *testing.T) {
	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpen:
			return [][]byte{handleReply(req.RequestID, "h1")}
		case wire.PacketTypeRead:
			return [][]byte{dataReply(req.RequestID, []byte("12345678"))}
		}
		return nil
	})
	c.maxReadSize = 8

	h := openTestHandle(t, c)

	buf := make([]byte, 100)
	n, err := h.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	read := f.sentPacket(2)
	require.Equal(t, wire.PacketTypeRead, read.Type)
	read.Data.ConsumeString()
	read.Data.ConsumeUint64()
	length, _ := read.Data.ConsumeUint32()
	assert.Equal(t, uint32(8), length, "read must be clamped before being sent")
}

func TestWriteOverLimitRejectedLocally(t *testing.T) {
	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		if req.Type == wire.PacketTypeOpen {
			return [][]byte{handleReply(req.RequestID, "h1")}
		}
		return nil
	})
	c.maxWriteSize = 4

	h := openTestHandle(t, c)
	before := f.sentCount()

	_, err := h.WriteAt([]byte("too large"), 0)
	assert.ErrorIs(t, err, os.ErrInvalid)
	assert.Equal(t, before, f.sentCount(), "no bytes may reach the wire")
}

func TestLinkGating(t *testing.T) {
	c, f := connected(t, nil) // no extensions negotiated

	err := c.Link("/a", "/b")
	assert.ErrorIs(t, err, ErrOpUnsupported)

	err = c.PosixRename("/a", "/b")
	assert.ErrorIs(t, err, ErrOpUnsupported)

	assert.Equal(t, 1, f.sentCount(), "gated commands must not touch the wire")
}

func TestLinkSupported(t *testing.T) {
	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		if req.Type == wire.PacketTypeExtended {
			return [][]byte{statusReply(req.RequestID, wire.StatusOK, "")}
		}
		return nil
	},
		wire.ExtensionPair{Name: wire.ExtHardlink, Data: "1"},
	)

	require.NoError(t, c.Link("/a", "/b"))

	req := f.sentPacket(1)
	assert.Equal(t, wire.PacketTypeExtended, req.Type)
	assert.Equal(t, wire.ExtHardlink, req.ExtendedName)

	oldpath, _ := req.Data.ConsumeString()
	newpath, _ := req.Data.ConsumeString()
	assert.Equal(t, "/a", oldpath)
	assert.Equal(t, "/b", newpath)
}

func TestRealPathCountViolation(t *testing.T) {
	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		return [][]byte{nameReply(req.RequestID,
			wire.NameEntry{Filename: "/one"},
			wire.NameEntry{Filename: "/two"},
		)}
	})

	_, err := c.RealPath("/a/../b")
	assert.ErrorIs(t, err, ErrProtocol)

	closed, code := f.closedWith()
	assert.True(t, closed)
	assert.Equal(t, CloseProtocolError, code)
}

func TestUnknownRequestIDFatal(t *testing.T) {
	_, f := connected(t, nil)

	f.deliver(statusReply(999, wire.StatusOK, ""))

	closed, code := f.closedWith()
	assert.True(t, closed)
	assert.Equal(t, CloseProtocolError, code)
}

func TestEndDrainsPending(t *testing.T) {
	c, f := connected(t, nil)

	errC := make(chan error, 1)
	go func() {
		_, err := c.Stat("/slow")
		errC <- err
	}()

	waitFor(t, func() bool { return f.sentCount() == 2 })

	require.NoError(t, c.End())

	err := <-errC
	assert.ErrorIs(t, err, ErrConnectionLost)

	closed, code := f.closedWith()
	assert.True(t, closed)
	assert.Equal(t, CloseNormal, code)

	// The session is unusable afterwards.
	_, err = c.Stat("/x")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestTransportCloseDrainsPending(t *testing.T) {
	c, f := connected(t, nil)

	errC := make(chan error, 1)
	go func() {
		_, err := c.Stat("/slow")
		errC <- err
	}()

	waitFor(t, func() bool { return f.sentCount() == 2 })

	f.mu.Lock()
	onClose := f.onClose
	f.mu.Unlock()
	onClose(io.ErrUnexpectedEOF)

	assert.ErrorIs(t, <-errC, ErrConnectionLost)
}

func TestPathNormalization(t *testing.T) {
	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		return [][]byte{attrsReply(req.RequestID, new(wire.Attributes).SetSize(1))}
	})

	_, err := c.Stat("~/docs/x")
	require.NoError(t, err)

	req := f.sentPacket(1)
	p, _ := req.Data.ConsumeString()
	assert.Equal(t, "./docs/x", p)

	_, err = c.Stat("~")
	require.NoError(t, err)

	req = f.sentPacket(2)
	p, _ = req.Data.ConsumeString()
	assert.Equal(t, ".", p)

	before := f.sentCount()
	_, err = c.Stat("")
	assert.ErrorIs(t, err, os.ErrInvalid)
	assert.Equal(t, before, f.sentCount())
}

func TestStatStripsRawMask(t *testing.T) {
	c, _ := connected(t, func(req *wire.RawPacket) [][]byte {
		attrs := new(wire.Attributes).
			SetSize(4096).
			SetPermissions(wire.ModeDir | 0755).
			SetACModTime(100, 200)
		return [][]byte{attrsReply(req.RequestID, attrs)}
	})

	fi, err := c.Stat("/srv")
	require.NoError(t, err)

	assert.Equal(t, "srv", fi.Name())
	assert.Equal(t, int64(4096), fi.Size())
	assert.True(t, fi.IsDir())
	assert.Equal(t, time.Unix(200, 0), fi.ModTime())
	assert.Equal(t, os.FileMode(0755)|os.ModeDir, fi.Mode())
}

func TestReadDirLoop(t *testing.T) {
	var batches int

	c, _ := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpenDir:
			return [][]byte{handleReply(req.RequestID, "d1")}
		case wire.PacketTypeReadDir:
			batches++
			switch batches {
			case 1:
				return [][]byte{nameReply(req.RequestID,
					wire.NameEntry{Filename: ".", Attrs: *new(wire.Attributes).SetPermissions(wire.ModeDir | 0755)},
					wire.NameEntry{Filename: "..", Attrs: *new(wire.Attributes).SetPermissions(wire.ModeDir | 0755)},
					wire.NameEntry{Filename: "a.txt", Attrs: *new(wire.Attributes).SetSize(1)},
				)}
			case 2:
				return [][]byte{nameReply(req.RequestID,
					wire.NameEntry{Filename: "b.txt", Attrs: *new(wire.Attributes).SetSize(2)},
				)}
			default:
				return [][]byte{statusReply(req.RequestID, wire.StatusEOF, "")}
			}
		case wire.PacketTypeClose:
			return [][]byte{statusReply(req.RequestID, wire.StatusOK, "")}
		}
		return nil
	})

	infos, err := c.ReadDir("/dir")
	require.NoError(t, err)

	require.Len(t, infos, 2, "dot entries are elided")
	assert.Equal(t, "a.txt", infos[0].Name())
	assert.Equal(t, "b.txt", infos[1].Name())
}

func TestHandleClosedIsUsageError(t *testing.T) {
	c, _ := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpen:
			return [][]byte{handleReply(req.RequestID, "h1")}
		case wire.PacketTypeClose:
			return [][]byte{statusReply(req.RequestID, wire.StatusOK, "")}
		}
		return nil
	})

	h := openTestHandle(t, c)
	require.NoError(t, h.Close())

	_, err := h.ReadAt(make([]byte, 4), 0)
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestHandleKindGating(t *testing.T) {
	c, _ := connected(t, func(req *wire.RawPacket) [][]byte {
		switch req.Type {
		case wire.PacketTypeOpen, wire.PacketTypeOpenDir:
			return [][]byte{handleReply(req.RequestID, "h1")}
		}
		return nil
	})

	d, err := c.OpenDir("/dir")
	require.NoError(t, err)

	_, err = d.ReadAt(make([]byte, 4), 0)
	assert.ErrorIs(t, err, os.ErrInvalid)
	_, err = d.WriteAt([]byte("x"), 0)
	assert.ErrorIs(t, err, os.ErrInvalid)

	h := openTestHandle(t, c)
	_, err = h.ReadDir()
	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestRename(t *testing.T) {
	c, f := connected(t, func(req *wire.RawPacket) [][]byte {
		return [][]byte{statusReply(req.RequestID, wire.StatusOK, "")}
	})

	require.NoError(t, c.Rename("/old", "/new"))

	req := f.sentPacket(1)
	assert.Equal(t, wire.PacketTypeRename, req.Type)
	oldpath, _ := req.Data.ConsumeString()
	newpath, _ := req.Data.ConsumeString()
	assert.Equal(t, "/old", oldpath)
	assert.Equal(t, "/new", newpath)
}

func TestStatusErrorSurfaced(t *testing.T) {
	c, _ := connected(t, func(req *wire.RawPacket) [][]byte {
		return [][]byte{statusReply(req.RequestID, wire.StatusNoSuchFile, "no such file")}
	})

	_, err := c.Stat("/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	var pathErr *os.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "stat", pathErr.Op)
	assert.Equal(t, "/missing", pathErr.Path)

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, "no such file", status.Message())
}

func TestByteCounters(t *testing.T) {
	c, _ := connected(t, func(req *wire.RawPacket) [][]byte {
		return [][]byte{statusReply(req.RequestID, wire.StatusOK, "")}
	})

	require.NoError(t, c.Remove("/x"))

	assert.NotZero(t, c.BytesSent())
	assert.NotZero(t, c.BytesReceived())
}
