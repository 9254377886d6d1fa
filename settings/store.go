package settings

import (
	"encoding/binary"
	"errors"
	"os"
	"strings"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	dir        = "/st7789"
	file       = "/st7789/settings.bin"
	tempSuffix = ".tmp"
)

// ErrNotFound is returned by Load when nothing was saved yet.
var ErrNotFound = errors.New("settings: not found")

// Store keeps Settings on a LittleFS volume.
type Store struct {
	fs      *littlefs.LFS
	mounted bool
}

// Open mounts the filesystem on dev. If format is true and mounting fails,
// the device is formatted first. A Save interrupted before its rename is
// completed when the settings file is missing and the temporary copy holds
// a full record; otherwise the temporary file is removed.
func Open(dev tinyfs.BlockDevice, format bool) (*Store, error) {
	lfs := littlefs.New(dev)
	lfs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 128,
	})
	if err := lfs.Mount(); err != nil {
		if !format {
			return nil, err
		}
		if err := lfs.Format(); err != nil {
			return nil, err
		}
		if err := lfs.Mount(); err != nil {
			return nil, err
		}
	}
	s := &Store{fs: lfs, mounted: true}
	s.recoverTemp()
	return s, nil
}

func (s *Store) recoverTemp() {
	tmp := file + tempSuffix
	if _, err := s.fs.Stat(tmp); err != nil {
		return
	}
	if _, err := s.fs.Stat(file); err != nil && isNotExist(err) {
		if _, err := s.read(tmp); err == nil {
			_ = s.fs.Rename(tmp, file)
			return
		}
	}
	_ = s.fs.Remove(tmp)
}

// Close unmounts the filesystem.
func (s *Store) Close() error {
	if !s.mounted {
		return nil
	}
	s.mounted = false
	return s.fs.Unmount()
}

// Load reads the stored settings. A record from another format version is
// removed and Default is returned in its place.
func (s *Store) Load() (Settings, error) {
	buf, err := s.read(file)
	if err != nil {
		return Settings{}, err
	}
	if binary.LittleEndian.Uint16(buf) != CurrentVersion {
		_ = s.fs.Remove(file)
		return Default(), nil
	}
	var v Settings
	if err := v.UnmarshalBinary(buf); err != nil {
		return Settings{}, err
	}
	return v, nil
}

// read returns the raw record at path.
func (s *Store) read(path string) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		if isNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	buf := make([]byte, Size)
	n, err := f.Read(buf)
	f.Close()
	if err != nil {
		return nil, err
	}
	if n != Size {
		return nil, ErrInvalidSize
	}
	return buf, nil
}

// LoadOrDefault returns the stored settings, or Default when there are none
// or they cannot be read.
func (s *Store) LoadOrDefault() Settings {
	v, err := s.Load()
	if err != nil {
		return Default()
	}
	return v
}

// Save writes v atomically, stamping the current version.
func (s *Store) Save(v *Settings) error {
	v.Version = CurrentVersion
	data, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.fs.Mkdir(dir, 0755); err != nil && !isExist(err) {
		return err
	}
	return s.atomicWrite(file, data)
}

// Delete removes the stored settings.
func (s *Store) Delete() error {
	if err := s.fs.Remove(file); err != nil && !isNotExist(err) {
		return err
	}
	return nil
}

// atomicWrite writes data to a temporary file, syncs it, then renames it
// over path.
func (s *Store) atomicWrite(path string, data []byte) error {
	tmp := path + tempSuffix
	_ = s.fs.Remove(tmp)

	f, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return err
	}
	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			f.Close()
			s.fs.Remove(tmp)
			return err
		}
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmp)
		return err
	}

	// Rename replaces path in a single metadata commit.
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return err
	}
	return nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "No directory entry")
}

// isExist also matches the message, since LittleFS errors do not always
// satisfy os.IsExist.
func isExist(err error) bool {
	return os.IsExist(err) || strings.Contains(err.Error(), "already exists")
}
