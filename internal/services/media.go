package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/filetype"
	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// FileUpload is an incoming file. Open may be called once.
type FileUpload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

type storedObject struct {
	Key         string
	URL         string
	Name        string
	ContentType string
}

// MediaStore validates uploads and moves blobs in and out of the media bucket.
// A nil bucket makes every upload fail and every delete a no-op.
type MediaStore struct {
	log      *logger.Logger
	bucket   gcp.BucketService
	maxBytes int64
}

func NewMediaStore(log *logger.Logger, bucket gcp.BucketService, maxBytes int64) *MediaStore {
	return &MediaStore{log: log.With("component", "MediaStore"), bucket: bucket, maxBytes: maxBytes}
}

// put checks the upload against policy and stores it under prefix. Callers run it inside
// their transaction, before writing the rows that reference the key.
func (m *MediaStore) put(dbc dbctx.Context, policy filetype.Policy, prefix string, up FileUpload) (*storedObject, error) {
	if up.Open == nil {
		return nil, apierr.BadRequest("file_required", "file is required")
	}
	if m == nil || m.bucket == nil {
		return nil, apierr.Internal("storage_unavailable", errors.New("object storage is not configured"))
	}
	rc, err := up.Open()
	if err != nil {
		return nil, apierr.BadRequest("file_unreadable", fmt.Sprintf("cannot read %q: %v", up.Name, err))
	}
	defer rc.Close()

	checked, err := policy.Check(up.Name, up.Size, m.maxBytes, rc)
	switch {
	case errors.Is(err, filetype.ErrTooLarge):
		return nil, apierr.BadRequest("file_too_large", err.Error())
	case errors.Is(err, filetype.ErrDisallowedType):
		return nil, apierr.BadRequest("file_type_not_allowed", err.Error())
	case errors.Is(err, filetype.ErrEmpty):
		return nil, apierr.BadRequest("file_empty", err.Error())
	case err != nil:
		return nil, apierr.BadRequest("file_unreadable", err.Error())
	}

	key := path.Join(prefix, uuid.NewString()+checked.Ext)
	if err := m.bucket.UploadFile(dbc, gcp.BucketCategoryMedia, key, checked.Reader, checked.ContentType); err != nil {
		return nil, apierr.Internal("upload_failed", err)
	}
	return &storedObject{
		Key:         key,
		URL:         m.bucket.GetPublicURL(gcp.BucketCategoryMedia, key),
		Name:        path.Base(strings.ReplaceAll(strings.TrimSpace(up.Name), "\\", "/")),
		ContentType: checked.ContentType,
	}, nil
}

// removeBestEffort deletes blobs after the owning rows are gone. Failures are logged only.
func (m *MediaStore) removeBestEffort(ctx context.Context, keys ...string) {
	if m == nil || m.bucket == nil {
		return
	}
	log := logger.FromContext(ctx, m.log)
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := m.bucket.DeleteFile(ctx, gcp.BucketCategoryMedia, key); err != nil {
			if errors.Is(err, gcp.ErrObjectNotFound) {
				log.Debug("Blob already gone", "key", key)
				continue
			}
			log.Warn("Blob delete failed (ignored)", "key", key, "error", err)
		}
	}
}

// putAll stores every upload; on failure the blobs already written are removed.
func (m *MediaStore) putAll(dbc dbctx.Context, policy filetype.Policy, prefix string, ups []FileUpload) ([]*storedObject, error) {
	out := make([]*storedObject, 0, len(ups))
	for _, up := range ups {
		obj, err := m.put(dbc, policy, prefix, up)
		if err != nil {
			m.removeBestEffort(dbc.Ctx, objectKeys(out)...)
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func objectKeys(objs []*storedObject) []string {
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		if o != nil {
			keys = append(keys, o.Key)
		}
	}
	return keys
}
