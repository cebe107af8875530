package sftp

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/chanfs/sftp/encoding/wire"
)

type sessionState int

const (
	stateUnbound sessionState = iota
	stateInitializing
	stateReady
	stateClosed
)

type result struct {
	pkt *wire.RawPacket
	err error
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithLogger sets the diagnostic sink. The default discards everything.
func WithLogger(log Logger) ClientOption {
	return func(c *Client) error {
		if log == nil {
			return errors.New("sftp: nil logger")
		}
		c.log = log
		return nil
	}
}

// WithSessionID labels the session in diagnostic records. Whatever
// factory constructs sessions owns the numbering.
func WithSessionID(id uint32) ClientOption {
	return func(c *Client) error {
		c.sessionID = id
		return nil
	}
}

// WithMaxReadSize sets the clamp applied to single read requests.
// Larger reads are silently shortened before being sent.
func WithMaxReadSize(size int) ClientOption {
	return func(c *Client) error {
		if size < 1 {
			return errors.Errorf("sftp: max read size must be positive, was %d", size)
		}
		c.maxReadSize = uint32(size)
		return nil
	}
}

// WithMaxWriteSize sets the largest payload accepted by a single write
// request. Writes exceeding it are rejected locally before any bytes
// are sent. 32768 is the minimum all compliant servers must support.
func WithMaxWriteSize(size int) ClientOption {
	return func(c *Client) error {
		if size < 1 {
			return errors.Errorf("sftp: max write size must be positive, was %d", size)
		}
		c.maxWriteSize = uint32(size)
		return nil
	}
}

// Client is an SFTP v3 session over a message Channel.
//
// A Client may be called concurrently from multiple goroutines; requests
// are fully pipelined and matched to responses by request id. The engine
// imposes no ordering between concurrently issued operations.
type Client struct {
	log       Logger
	sessionID uint32

	maxReadSize  uint32
	maxWriteSize uint32
	maxPacket    uint32

	reqid atomic.Uint32

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64

	mu       sync.Mutex
	state    sessionState
	ch       Channel
	inflight map[uint32]chan<- result
	verCh    chan result

	exts           map[string]string
	hasPosixRename bool
	hasHardlink    bool
	hasFsync       bool
}

// NewClient creates an unbound session. Call Connect to bind it to a
// transport and run the version handshake.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		log:          NopLogger(),
		maxReadSize:  DefaultMaxReadSize,
		maxWriteSize: DefaultMaxWriteSize,
		inflight:     make(map[uint32]chan<- result),
		exts:         make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.maxPacket = c.maxReadSize + writeHeaderSlack

	return c, nil
}

// Connect binds the session to ch, sends SSH_FXP_INIT, and blocks until
// the server's SSH_FXP_VERSION completes feature negotiation. Binding a
// session twice is a usage error.
func (c *Client) Connect(ch Channel) error {
	c.mu.Lock()
	if c.state != stateUnbound {
		c.mu.Unlock()
		return errors.New("sftp: session already bound")
	}
	c.state = stateInitializing
	c.ch = ch
	c.verCh = make(chan result, 1)
	c.mu.Unlock()

	ch.OnMessage(c.handleMessage)
	ch.OnClose(c.handleClose)

	buf := wire.NewMarshalBuffer(wire.PacketTypeInit, 0, 4)
	buf.AppendUint32(sftpProtocolVersion)

	data := buf.Packet()
	c.log.Debugf("sftp[%d]: sending SSH_FXP_INIT version=%d len=%d", c.sessionID, sftpProtocolVersion, len(data))

	if err := ch.Send(data); err != nil {
		c.drain(errors.Wrap(err, "sftp: send init"))
		return errors.Wrap(err, "sftp: send init")
	}
	c.bytesSent.Add(uint64(len(data)))

	res := <-c.verCh
	if res.err != nil {
		return res.err
	}

	return c.handleVersion(res.pkt)
}

func (c *Client) handleVersion(pkt *wire.RawPacket) error {
	fail := func(msg string) error {
		err := &StatusError{Code: wire.StatusBadMessage, msg: msg}
		c.ch.Close(CloseProtocolError, msg)
		c.drain(err)
		return err
	}

	if pkt.Type != wire.PacketTypeVersion {
		return fail("unexpected reply to init: " + pkt.Type.String())
	}

	version, err := pkt.Data.ConsumeUint32()
	if err != nil {
		return fail("truncated version packet")
	}

	if version != sftpProtocolVersion {
		return fail("unsupported protocol version")
	}

	exts := make(map[string]string)
	for pkt.Data.Len() > 0 {
		var pair wire.ExtensionPair
		if err := pair.UnmarshalFrom(&pkt.Data); err != nil {
			return fail("malformed extension pair")
		}

		value, err := wire.DecodeExtension(pair.Name, pair.Data)
		if err != nil {
			return fail("malformed extension value: " + pair.Name)
		}

		// OpenSSH-namespaced names may legitimately repeat; the values
		// accumulate into a comma-joined list instead of overwriting.
		if prev, ok := exts[pair.Name]; ok && strings.HasSuffix(pair.Name, "@openssh.com") {
			exts[pair.Name] = prev + "," + value
		} else {
			exts[pair.Name] = value
		}

		c.log.Debugf("sftp[%d]: extension %q = %q", c.sessionID, pair.Name, exts[pair.Name])
	}

	c.mu.Lock()
	c.exts = exts
	c.hasPosixRename = wire.ContainsToken(exts[wire.ExtPosixRename], "1")
	c.hasHardlink = wire.ContainsToken(exts[wire.ExtHardlink], "1")
	c.hasFsync = wire.ContainsToken(exts[wire.ExtFsync], "1")
	c.state = stateReady
	c.mu.Unlock()

	c.log.Infof("sftp[%d]: session ready, %d extensions negotiated", c.sessionID, len(exts))
	return nil
}

// HasExtension returns the negotiated value of the named extension.
func (c *Client) HasExtension(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.exts[name]
	return data, ok
}

// BytesSent returns the number of bytes handed to the transport.
func (c *Client) BytesSent() uint64 { return c.bytesSent.Load() }

// BytesReceived returns the number of bytes delivered by the transport.
func (c *Client) BytesReceived() uint64 { return c.bytesReceived.Load() }

// handleMessage is invoked by the transport for every inbound frame.
func (c *Client) handleMessage(data []byte, binary bool) {
	if !binary {
		c.log.Warnf("sftp[%d]: ignoring text frame: %q", c.sessionID, string(data))
		return
	}

	c.bytesReceived.Add(uint64(len(data)))

	if c.log.Level() >= LevelTrace {
		c.log.Tracef("sftp[%d]: received % x", c.sessionID, data)
	}

	pkt, err := wire.ParsePacket(data, c.maxPacket)
	if err != nil {
		c.fatal(errors.Wrap(err, "sftp: malformed inbound packet"))
		return
	}

	c.log.Debugf("sftp[%d]: received %s id=%d len=%d", c.sessionID, pkt.Type, pkt.RequestID, len(data))

	c.mu.Lock()
	if c.state == stateInitializing {
		verCh := c.verCh
		c.mu.Unlock()
		verCh <- result{pkt: pkt}
		return
	}

	ch, ok := c.inflight[pkt.RequestID]
	delete(c.inflight, pkt.RequestID)
	c.mu.Unlock()

	if !ok {
		// An unmatched response means the transport is corrupt or the
		// engine lost track of a request. Neither is recoverable.
		c.fatal(errors.Wrapf(ErrProtocol, "unknown request id %d", pkt.RequestID))
		return
	}

	ch <- result{pkt: pkt}
}

// handleClose is invoked by the transport when the channel shuts down.
func (c *Client) handleClose(err error) {
	if err != nil {
		c.log.Warnf("sftp[%d]: transport closed: %v", c.sessionID, err)
	} else {
		c.log.Infof("sftp[%d]: transport closed", c.sessionID)
	}

	c.drain(ErrConnectionLost)
}

// fatal tears the session down after a protocol violation. The affected
// operations fail loudly; the session is not kept alive in an
// inconsistent state.
func (c *Client) fatal(err error) {
	c.log.Errorf("sftp[%d]: %v", c.sessionID, err)

	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()

	if ch != nil {
		ch.Close(CloseProtocolError, "protocol violation")
	}

	c.drain(err)
}

// drain fails every pending request with err and closes the session.
// The pending table is swapped out before iterating, so completion
// callbacks re-entering the engine cannot touch the table being drained.
func (c *Client) drain(err error) {
	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		return
	}
	c.state = stateClosed

	pending := c.inflight
	c.inflight = make(map[uint32]chan<- result)
	verCh := c.verCh
	c.mu.Unlock()

	if verCh != nil {
		select {
		case verCh <- result{err: err}:
		default:
		}
	}

	for _, ch := range pending {
		ch <- result{err: err}
	}
}

// End detaches the session from the transport, closes it, and fails
// every still-pending request with a connection-lost error.
func (c *Client) End() error {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()

	if ch != nil {
		ch.Close(CloseNormal, "")
	}

	c.drain(ErrConnectionLost)
	return nil
}

func (c *Client) nextID() uint32 {
	return c.reqid.Add(1)
}

// dispatch registers a pending entry for id and hands data to the
// transport. Registering a duplicate id means the engine handed out the
// same id twice; that is a defect, not a recoverable error.
func (c *Client) dispatch(op string, id uint32, data []byte) (chan result, error) {
	ch := make(chan result, 1)

	c.mu.Lock()
	if c.state != stateReady {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}

	if _, dup := c.inflight[id]; dup {
		c.mu.Unlock()
		err := errors.Wrapf(ErrProtocol, "duplicate request id %d", id)
		c.fatal(err)
		return nil, err
	}

	c.inflight[id] = ch
	transport := c.ch
	c.mu.Unlock()

	c.log.Debugf("sftp[%d]: sending %s id=%d len=%d", c.sessionID, op, id, len(data))
	if c.log.Level() >= LevelTrace {
		c.log.Tracef("sftp[%d]: sending % x", c.sessionID, data)
	}

	if err := transport.Send(data); err != nil {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
		return nil, errors.Wrap(err, "sftp: send")
	}
	c.bytesSent.Add(uint64(len(data)))

	return ch, nil
}

// call dispatches one request and blocks until its response arrives or
// the session shuts down.
func (c *Client) call(op string, id uint32, data []byte) (*wire.RawPacket, error) {
	ch, err := c.dispatch(op, id, data)
	if err != nil {
		return nil, err
	}

	res := <-ch
	if res.err != nil {
		return nil, res.err
	}

	return res.pkt, nil
}

// unexpectedPacket reports a response of the wrong type. This is fatal
// to the session.
func (c *Client) unexpectedPacket(pkt *wire.RawPacket) error {
	err := errors.Wrapf(ErrProtocol, "unexpected packet type %s", pkt.Type)
	c.fatal(err)
	return err
}

func unmarshalStatus(pkt *wire.RawPacket) error {
	code, err := pkt.Data.ConsumeUint32()
	if err != nil {
		return err
	}

	s := &StatusError{Code: wire.Status(code)}

	// Some servers omit the trailing message and language tag.
	if pkt.Data.Len() > 0 {
		if s.msg, err = pkt.Data.ConsumeString(); err != nil {
			return err
		}
	}
	if pkt.Data.Len() > 0 {
		if s.lang, err = pkt.Data.ConsumeString(); err != nil {
			return err
		}
	}

	return s
}

// expectStatus parses a response that may only be a status packet, and
// translates SSH_FX_OK into success.
func (c *Client) expectStatus(pkt *wire.RawPacket) error {
	if pkt.Type != wire.PacketTypeStatus {
		return c.unexpectedPacket(pkt)
	}

	return normaliseError(unmarshalStatus(pkt))
}

// expectHandle parses an open or opendir response.
func (c *Client) expectHandle(pkt *wire.RawPacket) (string, error) {
	switch pkt.Type {
	case wire.PacketTypeHandle:
		return pkt.Data.ConsumeString()

	case wire.PacketTypeStatus:
		err := normaliseError(unmarshalStatus(pkt))
		if err == nil {
			err = errors.Wrap(ErrProtocol, "unexpected SSH_FX_OK")
		}
		return "", err

	default:
		return "", c.unexpectedPacket(pkt)
	}
}

// expectAttrs parses a stat-family response.
func (c *Client) expectAttrs(pkt *wire.RawPacket) (*wire.Attributes, error) {
	switch pkt.Type {
	case wire.PacketTypeAttrs:
		var attrs wire.Attributes
		if err := attrs.UnmarshalFrom(&pkt.Data); err != nil {
			return nil, err
		}
		return &attrs, nil

	case wire.PacketTypeStatus:
		err := normaliseError(unmarshalStatus(pkt))
		if err == nil {
			err = errors.Wrap(ErrProtocol, "unexpected SSH_FX_OK")
		}
		return nil, err

	default:
		return nil, c.unexpectedPacket(pkt)
	}
}

// expectName parses a name response into its entries.
func (c *Client) expectName(pkt *wire.RawPacket) ([]wire.NameEntry, error) {
	switch pkt.Type {
	case wire.PacketTypeName:
		count, err := pkt.Data.ConsumeUint32()
		if err != nil {
			return nil, err
		}

		entries := make([]wire.NameEntry, 0, count)
		for i := uint32(0); i < count; i++ {
			var entry wire.NameEntry
			if err := entry.UnmarshalFrom(&pkt.Data); err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		return entries, nil

	case wire.PacketTypeStatus:
		err := normaliseError(unmarshalStatus(pkt))
		if err == nil {
			err = errors.Wrap(ErrProtocol, "unexpected SSH_FX_OK")
		}
		return nil, err

	default:
		return nil, c.unexpectedPacket(pkt)
	}
}

// expectPath parses a name response that must carry exactly one entry,
// as realpath and readlink responses do. Any other count is a protocol
// violation, not a result to be silently truncated.
func (c *Client) expectPath(pkt *wire.RawPacket) (string, error) {
	entries, err := c.expectName(pkt)
	if err != nil {
		return "", err
	}

	if len(entries) != 1 {
		err := errors.Wrapf(ErrProtocol, "expected exactly 1 name entry, got %d", len(entries))
		c.fatal(err)
		return "", err
	}

	return entries[0].Filename, nil
}

// toPath validates and normalizes a caller-supplied path: a leading
// "~/" is rewritten to "./", a bare "~" becomes ".", and an empty path
// is rejected before any request is constructed.
func toPath(p string) (string, error) {
	switch {
	case p == "":
		return "", os.ErrInvalid
	case p == "~":
		return ".", nil
	case strings.HasPrefix(p, "~/"):
		return "." + p[1:], nil
	}
	return p, nil
}

func attrsLen(a *wire.Attributes) int {
	if a == nil {
		return 4
	}
	return a.Len()
}

// marshalAttrs writes attrs, or the all-absent record when attrs is
// nil, meaning no attribute changes are requested.
func marshalAttrs(b *wire.Buffer, a *wire.Attributes) {
	if a == nil {
		b.AppendUint32(0)
		return
	}
	a.MarshalInto(b)
}

// Open opens the remote file at path with a POSIX-style mode string
// such as "r", "w+" or "ax". attrs may be nil.
func (c *Client) Open(path, mode string, attrs *wire.Attributes) (*Handle, error) {
	flags, err := FlagsFromMode(mode)
	if err != nil {
		return nil, wrapPathError("open", path, err)
	}

	return c.open(path, flags, attrs)
}

// OpenFlags opens the remote file at path with a raw SSH_FXF_* bitmask,
// masked to the flags protocol version 3 defines. attrs may be nil.
func (c *Client) OpenFlags(path string, flags uint32, attrs *wire.Attributes) (*Handle, error) {
	return c.open(path, flags&wire.FlagMask, attrs)
}

func (c *Client) open(path string, flags uint32, attrs *wire.Attributes) (*Handle, error) {
	p, err := toPath(path)
	if err != nil {
		return nil, wrapPathError("open", path, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeOpen, id, 4+len(p)+4+attrsLen(attrs))
	buf.AppendString(p)
	buf.AppendUint32(flags)
	marshalAttrs(buf, attrs)

	pkt, err := c.call("open", id, buf.Packet())
	if err != nil {
		return nil, wrapPathError("open", p, err)
	}

	h, err := c.expectHandle(pkt)
	if err != nil {
		return nil, wrapPathError("open", p, err)
	}

	return &Handle{c: c, h: h, path: p}, nil
}

// OpenDir opens the remote directory at path for reading.
func (c *Client) OpenDir(path string) (*Handle, error) {
	p, err := toPath(path)
	if err != nil {
		return nil, wrapPathError("opendir", path, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeOpenDir, id, 4+len(p))
	buf.AppendString(p)

	pkt, err := c.call("opendir", id, buf.Packet())
	if err != nil {
		return nil, wrapPathError("opendir", p, err)
	}

	h, err := c.expectHandle(pkt)
	if err != nil {
		return nil, wrapPathError("opendir", p, err)
	}

	return &Handle{c: c, h: h, path: p, dir: true}, nil
}

// statCall issues one of the stat-family requests carrying a single path.
func (c *Client) statCall(typ wire.PacketType, op, path string) (*wire.Attributes, error) {
	p, err := toPath(path)
	if err != nil {
		return nil, wrapPathError(op, path, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(typ, id, 4+len(p))
	buf.AppendString(p)

	pkt, err := c.call(op, id, buf.Packet())
	if err != nil {
		return nil, wrapPathError(op, p, err)
	}

	attrs, err := c.expectAttrs(pkt)
	if err != nil {
		return nil, wrapPathError(op, p, err)
	}

	return attrs, nil
}

// Stat returns the attributes of the file at path, following symlinks.
func (c *Client) Stat(path string) (os.FileInfo, error) {
	attrs, err := c.statCall(wire.PacketTypeStat, "stat", path)
	if err != nil {
		return nil, err
	}
	return fileInfoFromAttrs(path, attrs), nil
}

// Lstat returns the attributes of the file at path, without following
// symlinks.
func (c *Client) Lstat(path string) (os.FileInfo, error) {
	attrs, err := c.statCall(wire.PacketTypeLStat, "lstat", path)
	if err != nil {
		return nil, err
	}
	return fileInfoFromAttrs(path, attrs), nil
}

// Setstat applies the present fields of attrs to the file at path.
// A nil attrs requests no changes.
func (c *Client) Setstat(path string, attrs *wire.Attributes) error {
	p, err := toPath(path)
	if err != nil {
		return wrapPathError("setstat", path, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeSetstat, id, 4+len(p)+attrsLen(attrs))
	buf.AppendString(p)
	marshalAttrs(buf, attrs)

	return wrapPathError("setstat", p, c.statusCall("setstat", id, buf))
}

func (c *Client) statusCall(op string, id uint32, buf *wire.Buffer) error {
	pkt, err := c.call(op, id, buf.Packet())
	if err != nil {
		return err
	}

	return c.expectStatus(pkt)
}

// Remove deletes the remote file at path.
func (c *Client) Remove(path string) error {
	return c.pathStatusCall(wire.PacketTypeRemove, "remove", path)
}

// RemoveDirectory deletes the remote directory at path.
func (c *Client) RemoveDirectory(path string) error {
	return c.pathStatusCall(wire.PacketTypeRmdir, "rmdir", path)
}

func (c *Client) pathStatusCall(typ wire.PacketType, op, path string) error {
	p, err := toPath(path)
	if err != nil {
		return wrapPathError(op, path, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(typ, id, 4+len(p))
	buf.AppendString(p)

	return wrapPathError(op, p, c.statusCall(op, id, buf))
}

// Mkdir creates the remote directory at path. attrs may be nil.
func (c *Client) Mkdir(path string, attrs *wire.Attributes) error {
	p, err := toPath(path)
	if err != nil {
		return wrapPathError("mkdir", path, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeMkdir, id, 4+len(p)+attrsLen(attrs))
	buf.AppendString(p)
	marshalAttrs(buf, attrs)

	return wrapPathError("mkdir", p, c.statusCall("mkdir", id, buf))
}

// RealPath asks the server to canonicalize path.
func (c *Client) RealPath(path string) (string, error) {
	return c.pathNameCall(wire.PacketTypeRealPath, "realpath", path)
}

// ReadLink returns the target of the symbolic link at path.
func (c *Client) ReadLink(path string) (string, error) {
	return c.pathNameCall(wire.PacketTypeReadLink, "readlink", path)
}

func (c *Client) pathNameCall(typ wire.PacketType, op, path string) (string, error) {
	p, err := toPath(path)
	if err != nil {
		return "", wrapPathError(op, path, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(typ, id, 4+len(p))
	buf.AppendString(p)

	pkt, err := c.call(op, id, buf.Packet())
	if err != nil {
		return "", wrapPathError(op, p, err)
	}

	resolved, err := c.expectPath(pkt)
	if err != nil {
		return "", wrapPathError(op, p, err)
	}

	return resolved, nil
}

// Rename renames oldpath to newpath. The base protocol operation fails
// if newpath already exists; use PosixRename for overwrite semantics.
func (c *Client) Rename(oldpath, newpath string) error {
	op, err := toPath(oldpath)
	if err != nil {
		return wrapLinkError("rename", oldpath, newpath, err)
	}
	np, err := toPath(newpath)
	if err != nil {
		return wrapLinkError("rename", oldpath, newpath, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeRename, id, 4+len(op)+4+len(np))
	buf.AppendString(op)
	buf.AppendString(np)

	return wrapLinkError("rename", op, np, c.statusCall("rename", id, buf))
}

// PosixRename renames oldpath to newpath atomically, overwriting any
// existing newpath. It requires the posix-rename@openssh.com capability.
func (c *Client) PosixRename(oldpath, newpath string) error {
	c.mu.Lock()
	supported := c.hasPosixRename
	c.mu.Unlock()

	if !supported {
		return wrapLinkError("posix-rename", oldpath, newpath, ErrOpUnsupported)
	}

	op, err := toPath(oldpath)
	if err != nil {
		return wrapLinkError("posix-rename", oldpath, newpath, err)
	}
	np, err := toPath(newpath)
	if err != nil {
		return wrapLinkError("posix-rename", oldpath, newpath, err)
	}

	id := c.nextID()
	buf := c.newExtendedBuffer(id, wire.ExtPosixRename, 4+len(op)+4+len(np))
	buf.AppendString(op)
	buf.AppendString(np)

	return wrapLinkError("posix-rename", op, np, c.statusCall("posix-rename", id, buf))
}

// Symlink creates a symbolic link at linkpath pointing at targetpath.
func (c *Client) Symlink(targetpath, linkpath string) error {
	tp, err := toPath(targetpath)
	if err != nil {
		return wrapLinkError("symlink", targetpath, linkpath, err)
	}
	lp, err := toPath(linkpath)
	if err != nil {
		return wrapLinkError("symlink", targetpath, linkpath, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeSymlink, id, 4+len(tp)+4+len(lp))
	buf.AppendString(tp)
	buf.AppendString(lp)

	return wrapLinkError("symlink", tp, lp, c.statusCall("symlink", id, buf))
}

// Link creates a hard link at newpath pointing at oldpath. It requires
// the hardlink@openssh.com capability; without it, no packet is sent.
func (c *Client) Link(oldpath, newpath string) error {
	c.mu.Lock()
	supported := c.hasHardlink
	c.mu.Unlock()

	if !supported {
		return wrapLinkError("hardlink", oldpath, newpath, ErrOpUnsupported)
	}

	op, err := toPath(oldpath)
	if err != nil {
		return wrapLinkError("hardlink", oldpath, newpath, err)
	}
	np, err := toPath(newpath)
	if err != nil {
		return wrapLinkError("hardlink", oldpath, newpath, err)
	}

	id := c.nextID()
	buf := c.newExtendedBuffer(id, wire.ExtHardlink, 4+len(op)+4+len(np))
	buf.AppendString(op)
	buf.AppendString(np)

	return wrapLinkError("hardlink", op, np, c.statusCall("hardlink", id, buf))
}

func (c *Client) newExtendedBuffer(id uint32, name string, size int) *wire.Buffer {
	buf := wire.NewMarshalBuffer(wire.PacketTypeExtended, id, 4+len(name)+size)
	buf.AppendString(name)
	return buf
}

// ReadDir lists the remote directory at path, looping readdir requests
// until the server signals end-of-file. The "." and ".." entries are
// elided.
func (c *Client) ReadDir(path string) ([]os.FileInfo, error) {
	d, err := c.OpenDir(path)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var infos []os.FileInfo
	for {
		entries, err := d.ReadDir()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return infos, nil
			}
			return infos, err
		}

		for i := range entries {
			e := &entries[i]
			if e.Filename == "." || e.Filename == ".." {
				continue
			}
			infos = append(infos, fileInfoFromEntry(e))
		}
	}
}
