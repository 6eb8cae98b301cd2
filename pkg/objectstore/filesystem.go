package objectstore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// FSStore maps keys to plain files below a root directory, so existing
// dataset files can be read without importing them first. Content types are
// not persisted.
type FSStore struct {
	root string
}

// NewFSStore creates a store rooted at root. An empty root resolves keys
// against the working directory and allows absolute keys.
func NewFSStore(root string) (*FSStore, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create root directory: %w", err)
		}
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) objectPath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	if s.root == "" {
		return filepath.Clean(key), nil
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes store root", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, clean), nil
}

func fileInfo(key string, fi os.FileInfo) *ObjectInfo {
	// Size and modification time are enough to detect a rewritten file.
	tag := xxhash.Sum64String(strconv.FormatInt(fi.Size(), 10) + "/" + strconv.FormatInt(fi.ModTime().UnixNano(), 10))
	return &ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		ETag:         strconv.FormatUint(tag, 16),
		LastModified: fi.ModTime(),
	}
}

func (s *FSStore) Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	path, err := s.objectPath(key)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	if fi.IsDir() {
		file.Close()
		return nil, nil, ErrNotFound
	}
	return file, fileInfo(key, fi), nil
}

func (s *FSStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	path, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if fi.IsDir() {
		return nil, ErrNotFound
	}
	return fileInfo(key, fi), nil
}

// Put writes to a temporary file next to the target and renames it into
// place, so readers never observe a partial object.
func (s *FSStore) Put(ctx context.Context, key string, body io.Reader, size int64, opts *PutOptions) (*ObjectInfo, error) {
	path, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	info, err := s.Head(ctx, key)
	if err != nil {
		return nil, err
	}
	if opts != nil {
		info.ContentType = opts.ContentType
	}
	return info, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	path, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FSStore) List(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	root := s.root
	if root == "" {
		root = "."
	}
	prefix, marker, maxKeys := listLimit(opts)

	var keys []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".put-") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}
		if marker != "" && key <= marker {
			return nil
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return &ListResult{}, nil
		}
		return nil, err
	}
	sort.Strings(keys)

	result := &ListResult{}
	for i, key := range keys {
		if i >= maxKeys {
			result.IsTruncated = true
			result.NextMarker = keys[i-1]
			break
		}
		info, err := s.Head(ctx, key)
		if err != nil {
			continue
		}
		result.Objects = append(result.Objects, *info)
	}
	return result, nil
}
