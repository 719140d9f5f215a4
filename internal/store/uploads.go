package store

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/model"
)

var (
	// ErrTooManyFiles means the submission carried more attachments than allowed.
	ErrTooManyFiles = errors.New("too many files")
	// ErrFileTooLarge means a single attachment exceeded the per-file size limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9.\-_]`)

// UploadStore writes submitted attachments into a single directory. Stored
// names are the sanitized original name behind a millisecond-timestamp
// prefix; the directory is served publicly at /uploads/.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) *UploadStore {
	return &UploadStore{dir: dir}
}

// Dir returns the directory stored files are written to.
func (u *UploadStore) Dir() string {
	return u.dir
}

// SaveAll validates the whole batch against the count and per-file size
// limits, then writes each file and returns its metadata in upload order.
// Limits are checked before anything touches disk; once writing starts
// there is no cleanup guarantee on failure.
func (u *UploadStore) SaveAll(files []*multipart.FileHeader, maxFiles int, maxBytes int64) ([]model.FileMeta, error) {
	if len(files) > maxFiles {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrTooManyFiles, len(files), maxFiles)
	}
	for _, fh := range files {
		if fh.Size > maxBytes {
			return nil, fmt.Errorf("%w: %q is %d bytes", ErrFileTooLarge, fh.Filename, fh.Size)
		}
	}

	if len(files) == 0 {
		return []model.FileMeta{}, nil
	}
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	metas := make([]model.FileMeta, 0, len(files))
	for _, fh := range files {
		meta, err := u.save(fh)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

func (u *UploadStore) save(fh *multipart.FileHeader) (model.FileMeta, error) {
	src, err := fh.Open()
	if err != nil {
		return model.FileMeta{}, fmt.Errorf("opening upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, stored, err := u.create(SafeName(fh.Filename))
	if err != nil {
		return model.FileMeta{}, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return model.FileMeta{}, fmt.Errorf("writing upload %q: %w", stored, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return model.FileMeta{
		Path:         filepath.ToSlash(filepath.Join(u.dir, stored)),
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		Size:         size,
	}, nil
}

// create opens a new file named <unix-ms>-<name>, bumping the timestamp
// until it finds a name nothing else holds.
func (u *UploadStore) create(name string) (*os.File, string, error) {
	ts := time.Now().UnixMilli()
	for {
		stored := fmt.Sprintf("%d-%s", ts, name)
		f, err := os.OpenFile(filepath.Join(u.dir, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, stored, nil
		}
		if !os.IsExist(err) {
			return nil, "", fmt.Errorf("creating upload file %q: %w", stored, err)
		}
		ts++
	}
}

// SafeName strips every character outside [A-Za-z0-9.-_] from the original
// filename. Names that sanitize to nothing become "file".
func SafeName(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "")
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}
