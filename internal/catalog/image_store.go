// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"slices"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/taibuivan/fichas/internal/platform/apperr"
)

// imageExtensions are the file types served, in lookup preference order.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif"}

// FileImageStore implements [ImageStore] over a billy filesystem. Each image is
// a file in the root directory named after the record id, e.g. INS-001.png.
type FileImageStore struct {
	fs billy.Filesystem
}

// NewFileImageStore serves images from fs.
func NewFileImageStore(fs billy.Filesystem) *FileImageStore {
	return &FileImageStore{fs: fs}
}

// NewDirImageStore serves images from a directory on disk.
func NewDirImageStore(dir string) *FileImageStore {
	return NewFileImageStore(osfs.New(dir, osfs.WithBoundOS()))
}

// FetchImage returns the image of record id, or NOT_FOUND when there is none.
func (store *FileImageStore) FetchImage(ctx context.Context, id string) (*Image, error) {
	filename, err := store.lookup(id)
	if err != nil {
		return nil, err
	}

	data, err := util.ReadFile(store.fs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("Image")
		}
		return nil, apperr.StoreUnavailable(fmt.Errorf("image: read %s: %w", filename, err))
	}

	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(filename)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &Image{ID: id, Filename: filename, ContentType: contentType, Data: data}, nil
}

// ListImages returns the sorted ids of every stored image.
func (store *FileImageStore) ListImages(ctx context.Context) ([]string, error) {
	entries, err := store.entries()
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, entry := range entries {
		if id, ok := imageID(entry); ok {
			ids = append(ids, id)
		}
	}
	return sortedSet(ids), nil
}

// HasImage reports whether record id has an image.
func (store *FileImageStore) HasImage(ctx context.Context, id string) (bool, error) {
	_, err := store.lookup(id)
	if err == nil {
		return true, nil
	}
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return false, nil
	}
	return false, err
}

// lookup finds the file holding the image of id.
func (store *FileImageStore) lookup(id string) (string, error) {
	if !validImageID(id) {
		return "", apperr.NotFound("Image")
	}

	for _, ext := range imageExtensions {
		for _, candidate := range []string{id + ext, id + strings.ToUpper(ext)} {
			info, err := store.fs.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
			if err != nil && !os.IsNotExist(err) {
				return "", apperr.StoreUnavailable(fmt.Errorf("image: stat %s: %w", candidate, err))
			}
		}
	}

	// Mixed-case extensions such as .Jpg are only found by listing.
	entries, err := store.entries()
	if err != nil {
		return "", err
	}

	found, rank := "", len(imageExtensions)
	for _, entry := range entries {
		if entryID, ok := imageID(entry); !ok || entryID != id {
			continue
		}
		if i := slices.Index(imageExtensions, strings.ToLower(path.Ext(entry.Name()))); i < rank {
			found, rank = entry.Name(), i
		}
	}
	if found == "" {
		return "", apperr.NotFound("Image")
	}
	return found, nil
}

func (store *FileImageStore) entries() ([]os.FileInfo, error) {
	entries, err := store.fs.ReadDir("/")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.StoreUnavailable(fmt.Errorf("image: list: %w", err))
	}
	return entries, nil
}

// imageID returns the record id of a directory entry, if it is an image file.
func imageID(info os.FileInfo) (string, bool) {
	if info.IsDir() {
		return "", false
	}
	name := info.Name()
	ext := path.Ext(name)
	if !slices.Contains(imageExtensions, strings.ToLower(ext)) {
		return "", false
	}
	id := strings.TrimSuffix(name, ext)
	return id, validImageID(id)
}

// validImageID rejects ids that could escape the image directory.
func validImageID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}
