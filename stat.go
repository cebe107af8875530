package sftp

import (
	"os"
	"path"
	"time"

	"github.com/chanfs/sftp/encoding/wire"
)

// fileInfo presents decoded attributes as an os.FileInfo. The raw
// presence mask stays internal; absent fields read as zero values.
type fileInfo struct {
	name  string
	attrs *wire.Attributes
}

func fileInfoFromAttrs(p string, attrs *wire.Attributes) os.FileInfo {
	return &fileInfo{name: path.Base(p), attrs: attrs}
}

func fileInfoFromEntry(e *wire.NameEntry) os.FileInfo {
	attrs := e.Attrs
	return &fileInfo{name: path.Base(e.Filename), attrs: &attrs}
}

func (fi *fileInfo) Name() string { return fi.name }

func (fi *fileInfo) Size() int64 { return int64(fi.attrs.Size) }

func (fi *fileInfo) Mode() os.FileMode { return toFileMode(fi.attrs.Permissions) }

func (fi *fileInfo) ModTime() time.Time { return time.Unix(int64(fi.attrs.MTime), 0) }

func (fi *fileInfo) IsDir() bool { return fi.attrs.IsDir() }

// Sys returns the underlying attributes record.
func (fi *fileInfo) Sys() interface{} { return fi.attrs }

// toFileMode converts a protocol permissions word into an os.FileMode.
func toFileMode(perms uint32) os.FileMode {
	mode := os.FileMode(perms & 0777)

	switch perms & wire.ModeType {
	case wire.ModeDir:
		mode |= os.ModeDir
	case wire.ModeSymlink:
		mode |= os.ModeSymlink
	}

	return mode
}

// fromFileMode converts an os.FileMode into a protocol permissions word.
func fromFileMode(mode os.FileMode) uint32 {
	perms := uint32(mode & os.ModePerm)

	switch {
	case mode&os.ModeDir != 0:
		perms |= wire.ModeDir
	case mode&os.ModeSymlink != 0:
		perms |= wire.ModeSymlink
	default:
		perms |= wire.ModeRegular
	}

	return perms
}

// AttributesFromFileInfo builds a masked attributes record from a
// generic stat shape, carrying size, permissions and times. A nil input
// yields the all-absent record, meaning no attribute changes.
func AttributesFromFileInfo(fi os.FileInfo) *wire.Attributes {
	attrs := new(wire.Attributes)
	if fi == nil {
		return attrs
	}

	attrs.SetSize(uint64(fi.Size()))
	attrs.SetPermissions(fromFileMode(fi.Mode()))

	mtime := uint32(fi.ModTime().Unix())
	attrs.SetACModTime(mtime, mtime)

	return attrs
}

// Chmod changes the permissions of the file at path.
func (c *Client) Chmod(path string, mode os.FileMode) error {
	return c.Setstat(path, new(wire.Attributes).SetPermissions(fromFileMode(mode)))
}

// Chown changes the ownership of the file at path.
func (c *Client) Chown(path string, uid, gid int) error {
	return c.Setstat(path, new(wire.Attributes).SetUIDGID(uint32(uid), uint32(gid)))
}

// Chtimes changes the access and modification times of the file at path.
func (c *Client) Chtimes(path string, atime, mtime time.Time) error {
	return c.Setstat(path, new(wire.Attributes).SetACModTime(uint32(atime.Unix()), uint32(mtime.Unix())))
}

// Truncate changes the size of the file at path.
func (c *Client) Truncate(path string, size uint64) error {
	return c.Setstat(path, new(wire.Attributes).SetSize(size))
}
