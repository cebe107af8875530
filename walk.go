package sftp

import (
	"path"

	"github.com/kr/fs"
)

// Walk returns a new Walker rooted at root, lazily walking the remote
// tree. Client satisfies the fs.FileSystem interface the walker drives.
func (c *Client) Walk(root string) *fs.Walker {
	return fs.WalkFS(root, c)
}

// Join joins path elements with the forward slash the protocol uses.
func (c *Client) Join(elem ...string) string {
	return path.Join(elem...)
}
