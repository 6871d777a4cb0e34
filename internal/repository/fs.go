package repository

import "github.com/spf13/afero"

// FileSystemRepository is the filesystem the configuration and session journal are read from.
type FileSystemRepository interface {
	afero.Fs
}

// NewOSFileSystem returns the host filesystem.
func NewOSFileSystem() FileSystemRepository {
	return afero.NewOsFs()
}
