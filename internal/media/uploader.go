package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how much of a file is read to detect its type.
const sniffLen = 3072

// Folders group uploads per entity.
const (
	FolderProducts     = "products"
	FolderBlogs        = "blogs"
	FolderServices     = "services"
	FolderTeams        = "teams"
	FolderOffersBanner = "offersBanner"
	FolderResumes      = "resumes"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds upload limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file is empty")

	documentContentTypes = map[string]bool{
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	}
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

// File is an upload payload. Its type is detected from the content, never
// taken from the client.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

// FromMultipart opens an uploaded form file. The caller closes the returned closer.
func FromMultipart(fh *multipart.FileHeader) (File, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return File{}, nil, fmt.Errorf("open form file: %w", err)
	}
	return File{Name: fh.Filename, Size: fh.Size, Body: f}, f, nil
}

// Uploader stores files under <folder>/<uuid>-<name> and returns their URLs.
type Uploader struct {
	store   ObjectStore
	log     logging.Logger
	maxSize int64
	newID   func() string
}

func NewUploader(store ObjectStore, log logging.Logger, maxSize int64) *Uploader {
	return &Uploader{
		store:   store,
		log:     log.With("component", "media"),
		maxSize: maxSize,
		newID:   uuid.NewString,
	}
}

func (u *Uploader) Upload(ctx context.Context, folder string, f File) (string, error) {
	if f.Size == 0 {
		return "", ErrEmptyFile
	}
	if u.maxSize > 0 && f.Size > u.maxSize {
		return "", ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	switch {
	case errors.Is(err, io.EOF):
		return "", ErrEmptyFile
	case err != nil && !errors.Is(err, io.ErrUnexpectedEOF):
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	head = head[:n]
	contentType, ok := detect(folder, f.Name, head)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	body := io.MultiReader(bytes.NewReader(head), f.Body)

	key := u.objectKey(folder, f.Name)
	if err := u.store.Put(ctx, key, body, f.Size, contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}

	u.log.Info(ctx, "file uploaded", "key", key, "size", f.Size)
	return u.store.URL(key), nil
}

// Replace uploads f and then removes the object behind oldURL. Failing to
// remove the old object only leaves a stale blob behind, so it is logged and
// otherwise ignored.
func (u *Uploader) Replace(ctx context.Context, folder string, f File, oldURL string) (string, error) {
	return u.ReplaceWith(ctx, folder, f, oldURL, nil)
}

// ReplaceWith is Replace with a commit step between upload and removal,
// typically the write that points a document at the new URL. If commit fails
// the new object is removed and the old one is kept.
func (u *Uploader) ReplaceWith(ctx context.Context, folder string, f File, oldURL string, commit func(url string) error) (string, error) {
	url, err := u.Upload(ctx, folder, f)
	if err != nil {
		return "", err
	}
	if commit != nil {
		if err := commit(url); err != nil {
			u.Remove(ctx, url)
			return "", err
		}
	}
	u.Remove(ctx, oldURL)
	return url, nil
}

// Remove best-effort deletes the object behind url.
func (u *Uploader) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	key, ok := u.store.Key(url)
	if !ok {
		u.log.Warn(ctx, "not removing foreign object", "url", url)
		return
	}
	if err := u.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrObjectNotFound) {
		u.log.Warn(ctx, "failed to remove stale object", "key", key, "error", err)
	}
}

func (u *Uploader) objectKey(folder, name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s/%s-%s", folder, u.newID(), base)
}

// detect sniffs head and reports the media type to store it under and
// whether folder accepts it. SVG is refused since it can carry scripts.
func detect(folder, name string, head []byte) (string, bool) {
	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		ct, _, err := mime.ParseMediaType(m.String())
		if err != nil {
			continue
		}
		if folder == FolderResumes {
			if documentContentTypes[ct] {
				return ct, true
			}
			// Legacy .doc files are only recognisable as an OLE container.
			if ct == "application/x-ole-storage" && strings.EqualFold(filepath.Ext(name), ".doc") {
				return "application/msword", true
			}
			continue
		}
		if strings.HasPrefix(ct, "image/") && ct != "image/svg+xml" {
			return ct, true
		}
	}
	return detected.String(), false
}
