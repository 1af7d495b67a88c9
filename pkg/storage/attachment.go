package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// attachmentField is the multipart form field attachments arrive under.
const attachmentField = "attachment"

var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "webp": {},
}

// AttachmentStore manages homework attachment blobs. Uploads are two-phase:
// Receive persists the blob immediately and returns a handle; the caller
// commits after the owning record is durable, or releases to roll back.
type AttachmentStore struct {
	local   *LocalStorage
	baseURL string
	logger  *zap.Logger
}

func NewAttachmentStore(local *LocalStorage, baseURL string, logger *zap.Logger) *AttachmentStore {
	return &AttachmentStore{
		local:   local,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// UploadHandle refers to a stored attachment whose owning record may not
// exist yet. Exactly one of Commit or Release should be called.
type UploadHandle struct {
	URL      string
	PublicID string
	Ext      string

	store    *AttachmentStore
	relPath  string
	released bool
}

// Commit finalises the upload. The blob is already durable, so this only
// marks the handle as consumed.
func (h *UploadHandle) Commit() {
	if h == nil {
		return
	}
	h.released = true
}

// Release deletes the blob. Safe to call after Commit (no-op) and on a nil
// handle, so callers can defer it unconditionally.
func (h *UploadHandle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	if err := h.store.local.Delete(h.relPath); err != nil {
		h.store.logger.Warn("attachment rollback delete failed",
			zap.String("path", h.relPath),
			zap.Error(err),
		)
	}
}

// ErrNoAttachment is returned by Receive when a multipart request carries
// no attachment file part.
var ErrNoAttachment = errors.New("multipart request carries no attachment file")

// Receive extracts the attachment file from a multipart request and stores
// it under the classroom's folder. A multipart body without an attachment
// part yields ErrNoAttachment.
func (s *AttachmentStore) Receive(r *http.Request, classID string) (*UploadHandle, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
	}

	file, header, err := r.FormFile(attachmentField)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, ErrNoAttachment
		}
		return nil, fmt.Errorf("read attachment field: %w", err)
	}
	defer file.Close() //nolint:errcheck

	return s.store(file, header, classID)
}

func (s *AttachmentStore) store(file multipart.File, header *multipart.FileHeader, classID string) (*UploadHandle, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if ext == "" {
		ext = "bin"
	}

	publicID := fmt.Sprintf("%s-%d", attachmentField, time.Now().UnixMilli())
	folder := ClassFolder(classID)
	rel := filepath.Join(folder, publicID+"."+ext)

	if _, err := s.local.SaveStream(rel, file); err != nil {
		return nil, err
	}

	s.logger.Info("attachment stored",
		zap.String("class_id", classID),
		zap.String("public_id", publicID),
		zap.String("resource_kind", ResourceKind(ext)),
		zap.Int64("size", header.Size),
	)

	return &UploadHandle{
		URL:      fmt.Sprintf("%s/%s/%s.%s", s.baseURL, folder, publicID, ext),
		PublicID: publicID,
		Ext:      ext,
		store:    s,
		relPath:  rel,
	}, nil
}

// DeleteByURL removes the blob an attachment URL points at. The lookup walks
// the store by basename so it works even when the classroom folder is not
// known to the caller. Missing blobs are not an error: deletes are
// idempotent compensations.
func (s *AttachmentStore) DeleteByURL(url string) error {
	publicID, ext, ok := PublicIDFromURL(url)
	if !ok {
		return fmt.Errorf("attachment url %q has no parsable public id", url)
	}

	target := publicID + "." + ext
	var found []string
	err := s.local.Walk(func(rel string) error {
		if filepath.Base(rel) == target {
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("locate attachment %s: %w", target, err)
	}

	for _, rel := range found {
		if err := s.local.Delete(rel); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether a blob for the given URL is currently stored.
func (s *AttachmentStore) Exists(url string) bool {
	publicID, ext, ok := PublicIDFromURL(url)
	if !ok {
		return false
	}
	target := publicID + "." + ext
	exists := false
	_ = s.local.Walk(func(rel string) error {
		if filepath.Base(rel) == target {
			exists = true
		}
		return nil
	})
	return exists
}

// PublicIDFromURL derives the public id and extension from an attachment
// URL: the last path segment split at its final dot.
func PublicIDFromURL(url string) (publicID, ext string, ok bool) {
	segments := strings.Split(url, "/")
	fileName := segments[len(segments)-1]
	dot := strings.LastIndex(fileName, ".")
	if dot <= 0 || dot == len(fileName)-1 {
		return "", "", false
	}
	return fileName[:dot], fileName[dot+1:], true
}

// ClassFolder names the per-classroom attachment folder.
func ClassFolder(classID string) string {
	return fmt.Sprintf("class_%s_homeworks", classID)
}

// ResourceKind classifies an extension as image or raw content.
func ResourceKind(ext string) string {
	if _, ok := imageExtensions[strings.ToLower(ext)]; ok {
		return "image"
	}
	return "raw"
}
