package sftp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/chanfs/sftp/encoding/wire"
)

// Sentinel errors surfaced by the protocol engine.
var (
	// ErrNotConnected is reported when an operation is issued before the
	// session is bound to a transport, or after it was closed.
	ErrNotConnected = errors.New("sftp: not connected")

	// ErrConnectionLost is reported for every request still pending when
	// the transport shuts down underneath the session.
	ErrConnectionLost = errors.New("sftp: connection lost")

	// ErrOpUnsupported is reported when a command gated on a negotiated
	// capability is issued against a server that did not announce it.
	ErrOpUnsupported = errors.New("sftp: operation unsupported")

	// ErrProtocol reports a violation of the wire protocol by the remote
	// side, or an engine bug. Protocol violations are fatal to the session.
	ErrProtocol = errors.New("sftp: protocol violation")
)

// StatusError is returned when an sftp operation fails, and provides
// additional information about the failure: the raw protocol status
// code and the server-supplied message text.
type StatusError struct {
	Code wire.Status
	msg  string
	lang string
}

func (s *StatusError) Error() string {
	if s.msg == "" {
		return fmt.Sprintf("sftp: %s", s.Code)
	}
	return fmt.Sprintf("sftp: %q (%s)", s.msg, s.Code)
}

// Message returns the server-supplied message text.
func (s *StatusError) Message() string { return s.msg }

// Is translates the protocol status taxonomy into the POSIX-flavored
// one, so callers can test with errors.Is against io.EOF,
// fs.ErrNotExist, fs.ErrPermission and this package's sentinels.
func (s *StatusError) Is(target error) bool {
	switch target {
	case io.EOF:
		return s.Code == wire.StatusEOF
	case fs.ErrNotExist, os.ErrNotExist:
		return s.Code == wire.StatusNoSuchFile
	case fs.ErrPermission, os.ErrPermission:
		return s.Code == wire.StatusPermissionDenied
	case ErrNotConnected:
		return s.Code == wire.StatusNoConnection
	case ErrConnectionLost:
		return s.Code == wire.StatusConnectionLost
	case ErrOpUnsupported:
		return s.Code == wire.StatusOPUnsupported
	}
	return false
}

// normaliseError converts the bare-success and end-of-file statuses
// into their conventional forms. Numerous things break if io.EOF is
// not returned as the bare io.EOF value.
func normaliseError(err error) error {
	var status *StatusError
	if errors.As(err, &status) {
		switch status.Code {
		case wire.StatusOK:
			return nil
		case wire.StatusEOF:
			return io.EOF
		}
	}
	return err
}

func wrapPathError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return io.EOF
	}

	return &fs.PathError{Op: op, Path: path, Err: err}
}

func wrapLinkError(op, oldpath, newpath string, err error) error {
	if err == nil {
		return nil
	}

	return &os.LinkError{Op: op, Old: oldpath, New: newpath, Err: err}
}
