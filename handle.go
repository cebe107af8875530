package sftp

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/chanfs/sftp/encoding/wire"
)

// maxEmptyReadRetries bounds the workaround for servers that
// occasionally answer a read with a zero-length data payload instead of
// an end-of-file status. The read is re-issued at the same position up
// to this many times before the operation fails.
const maxEmptyReadRetries = 4

// Handle is the opaque capability token wrapping a server-issued file
// or directory handle. A Handle is only valid against the session that
// minted it; methods hang off the token itself, so presenting it to a
// foreign session is impossible by construction.
type Handle struct {
	c    *Client
	h    string
	path string
	dir  bool

	closed atomic.Bool
}

// Path returns the path the handle was opened with, for diagnostics.
func (f *Handle) Path() string { return f.path }

func (f *Handle) valid(op string) error {
	if f == nil || f.c == nil {
		return wrapPathError(op, "", os.ErrInvalid)
	}
	if f.closed.Load() {
		return wrapPathError(op, f.path, os.ErrClosed)
	}
	return nil
}

// Close releases the server-side handle. Further use of the Handle is a
// usage error.
func (f *Handle) Close() error {
	if err := f.valid("close"); err != nil {
		return err
	}
	f.closed.Store(true)

	c := f.c
	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeClose, id, 4+len(f.h))
	buf.AppendString(f.h)

	return wrapPathError("close", f.path, c.statusCall("close", id, buf))
}

// ReadAt reads up to len(b) bytes from the remote file at offset off.
// Reads longer than the session's read clamp are silently shortened
// before being sent. An end-of-file status yields (0, io.EOF).
func (f *Handle) ReadAt(b []byte, off uint64) (int, error) {
	if err := f.valid("read"); err != nil {
		return 0, err
	}
	if f.dir {
		return 0, wrapPathError("read", f.path, os.ErrInvalid)
	}

	c := f.c

	n := uint32(len(b))
	if n > c.maxReadSize {
		n = c.maxReadSize
	}
	if n == 0 {
		return 0, nil
	}

	for attempt := 0; ; attempt++ {
		id := c.nextID()
		buf := wire.NewMarshalBuffer(wire.PacketTypeRead, id, 4+len(f.h)+8+4)
		buf.AppendString(f.h)
		buf.AppendUint64(off)
		buf.AppendUint32(n)

		pkt, err := c.call("read", id, buf.Packet())
		if err != nil {
			return 0, wrapPathError("read", f.path, err)
		}

		switch pkt.Type {
		case wire.PacketTypeData:
			data, err := pkt.Data.ConsumeByteSlice()
			if err != nil {
				return 0, wrapPathError("read", f.path, err)
			}

			if len(data) > int(n) {
				err := errors.Wrapf(ErrProtocol, "read of %d bytes returned %d", n, len(data))
				c.fatal(err)
				return 0, wrapPathError("read", f.path, err)
			}

			if len(data) == 0 {
				// Some servers return an empty data packet where an EOF
				// status (or actual data) is due. Re-issue the same read
				// at the same position a bounded number of times.
				if attempt >= maxEmptyReadRetries {
					return 0, wrapPathError("read", f.path, &StatusError{
						Code: wire.StatusFailure,
						msg:  "server returned zero-length read",
					})
				}
				continue
			}

			return copy(b, data), nil

		case wire.PacketTypeStatus:
			err := normaliseError(unmarshalStatus(pkt))
			if err == nil {
				err = errors.Wrap(ErrProtocol, "unexpected SSH_FX_OK")
			}
			if err == io.EOF {
				// End-of-file is a successful zero-byte read.
				return 0, io.EOF
			}
			return 0, wrapPathError("read", f.path, err)

		default:
			return 0, wrapPathError("read", f.path, c.unexpectedPacket(pkt))
		}
	}
}

// WriteAt writes b to the remote file at offset off. Writes exceeding
// the session's write limit are rejected locally before any bytes are
// sent; callers split large writes themselves.
func (f *Handle) WriteAt(b []byte, off uint64) (int, error) {
	if err := f.valid("write"); err != nil {
		return 0, err
	}
	if f.dir {
		return 0, wrapPathError("write", f.path, os.ErrInvalid)
	}

	c := f.c

	if uint64(len(b)) > uint64(c.maxWriteSize) {
		err := errors.Wrapf(os.ErrInvalid, "write of %d bytes exceeds the %d byte limit", len(b), c.maxWriteSize)
		return 0, wrapPathError("write", f.path, err)
	}

	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeWrite, id, 4+len(f.h)+8+4+len(b))
	buf.AppendString(f.h)
	buf.AppendUint64(off)
	buf.AppendByteSlice(b)

	if err := c.statusCall("write", id, buf); err != nil {
		return 0, wrapPathError("write", f.path, err)
	}

	return len(b), nil
}

// Stat returns the attributes of the open file.
func (f *Handle) Stat() (os.FileInfo, error) {
	if err := f.valid("fstat"); err != nil {
		return nil, err
	}

	c := f.c
	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeFStat, id, 4+len(f.h))
	buf.AppendString(f.h)

	pkt, err := c.call("fstat", id, buf.Packet())
	if err != nil {
		return nil, wrapPathError("fstat", f.path, err)
	}

	attrs, err := c.expectAttrs(pkt)
	if err != nil {
		return nil, wrapPathError("fstat", f.path, err)
	}

	return fileInfoFromAttrs(f.path, attrs), nil
}

// Setstat applies the present fields of attrs to the open file.
// A nil attrs requests no changes.
func (f *Handle) Setstat(attrs *wire.Attributes) error {
	if err := f.valid("fsetstat"); err != nil {
		return err
	}

	c := f.c
	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeFSetstat, id, 4+len(f.h)+attrsLen(attrs))
	buf.AppendString(f.h)
	marshalAttrs(buf, attrs)

	return wrapPathError("fsetstat", f.path, c.statusCall("fsetstat", id, buf))
}

// ReadDir reads the next batch of entries from an open directory
// handle. It returns io.EOF when the server signals the end of the
// listing.
func (f *Handle) ReadDir() ([]wire.NameEntry, error) {
	if err := f.valid("readdir"); err != nil {
		return nil, err
	}
	if !f.dir {
		return nil, wrapPathError("readdir", f.path, os.ErrInvalid)
	}

	c := f.c
	id := c.nextID()
	buf := wire.NewMarshalBuffer(wire.PacketTypeReadDir, id, 4+len(f.h))
	buf.AppendString(f.h)

	pkt, err := c.call("readdir", id, buf.Packet())
	if err != nil {
		return nil, wrapPathError("readdir", f.path, err)
	}

	entries, err := c.expectName(pkt)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, wrapPathError("readdir", f.path, err)
	}

	return entries, nil
}

// Sync flushes the open file to stable storage. It requires the
// fsync@openssh.com capability; without it, no packet is sent.
func (f *Handle) Sync() error {
	if err := f.valid("fsync"); err != nil {
		return err
	}

	c := f.c

	c.mu.Lock()
	supported := c.hasFsync
	c.mu.Unlock()

	if !supported {
		return wrapPathError("fsync", f.path, ErrOpUnsupported)
	}

	id := c.nextID()
	buf := c.newExtendedBuffer(id, wire.ExtFsync, 4+len(f.h))
	buf.AppendString(f.h)

	return wrapPathError("fsync", f.path, c.statusCall("fsync", id, buf))
}
