package blockcrypt

import (
	"os"
	"time"

	"github.com/absfs/absfs"
)

// hostFS adapts the host filesystem to absfs.FileSystem so the streaming
// layer runs identically over real paths and test filesystems such as
// memfs.
type hostFS struct{}

func (hostFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	return os.OpenFile(name, flag, perm)
}

func (fs hostFS) Open(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

func (fs hostFS) Create(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (hostFS) Mkdir(name string, perm os.FileMode) error { return os.Mkdir(name, perm) }

func (hostFS) MkdirAll(name string, perm os.FileMode) error { return os.MkdirAll(name, perm) }

func (hostFS) Remove(name string) error { return os.Remove(name) }

func (hostFS) RemoveAll(path string) error { return os.RemoveAll(path) }

func (hostFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

func (hostFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

func (hostFS) Chmod(name string, mode os.FileMode) error { return os.Chmod(name, mode) }

func (hostFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

func (hostFS) Chown(name string, uid, gid int) error { return os.Chown(name, uid, gid) }

func (hostFS) Separator() uint8 { return os.PathSeparator }

func (hostFS) ListSeparator() uint8 { return os.PathListSeparator }

func (hostFS) Chdir(dir string) error { return os.Chdir(dir) }

func (hostFS) Getwd() (string, error) { return os.Getwd() }

func (hostFS) TempDir() string { return os.TempDir() }

func (hostFS) Truncate(name string, size int64) error { return os.Truncate(name, size) }
