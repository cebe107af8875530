package sftp

import (
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chanfs/sftp/encoding/wire"
)

func TestStatusErrorTaxonomy(t *testing.T) {
	tests := []struct {
		code   wire.Status
		target error
	}{
		{wire.StatusEOF, io.EOF},
		{wire.StatusNoSuchFile, fs.ErrNotExist},
		{wire.StatusPermissionDenied, fs.ErrPermission},
		{wire.StatusNoConnection, ErrNotConnected},
		{wire.StatusConnectionLost, ErrConnectionLost},
		{wire.StatusOPUnsupported, ErrOpUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := &StatusError{Code: tt.code, msg: "server says no"}

			assert.ErrorIs(t, err, tt.target)

			// The generic failure targets must not match.
			if tt.target != fs.ErrPermission {
				assert.NotErrorIs(t, err, fs.ErrPermission)
			}
		})
	}

	// Generic failures match none of the specific targets.
	failure := &StatusError{Code: wire.StatusFailure}
	assert.NotErrorIs(t, failure, io.EOF)
	assert.NotErrorIs(t, failure, fs.ErrNotExist)
	assert.NotErrorIs(t, failure, ErrOpUnsupported)
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Code: wire.StatusPermissionDenied, msg: "nope"}
	assert.Equal(t, `sftp: "nope" (SSH_FX_PERMISSION_DENIED)`, err.Error())
	assert.Equal(t, "nope", err.Message())

	bare := &StatusError{Code: wire.StatusFailure}
	assert.Equal(t, "sftp: SSH_FX_FAILURE", bare.Error())
}

func TestNormaliseError(t *testing.T) {
	assert.NoError(t, normaliseError(&StatusError{Code: wire.StatusOK}))

	// io.EOF must come back as the bare value.
	assert.Equal(t, io.EOF, normaliseError(&StatusError{Code: wire.StatusEOF}))

	failure := &StatusError{Code: wire.StatusFailure}
	assert.Equal(t, error(failure), normaliseError(failure))
}

func TestWrapPathError(t *testing.T) {
	assert.NoError(t, wrapPathError("open", "/x", nil))

	// EOF passes through bare.
	assert.Equal(t, io.EOF, wrapPathError("read", "/x", io.EOF))

	err := wrapPathError("open", "/x", fs.ErrNotExist)
	var pathErr *fs.PathError
	assert.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "open", pathErr.Op)
	assert.Equal(t, "/x", pathErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
