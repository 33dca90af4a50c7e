package filetype

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrDisallowedType = errors.New("file type not allowed")
	ErrTooLarge       = errors.New("file too large")
	ErrEmpty          = errors.New("file is empty")
)

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// Policy is an upload allow-list. A file passes when its extension and its sniffed
// content type (or one of that type's ancestors) are both listed. An empty policy
// accepts any type.
type Policy struct {
	Name  string
	Exts  []string
	MIMEs []string
}

var (
	Video = Policy{
		Name:  "video",
		Exts:  []string{".mp4", ".webm", ".mov"},
		MIMEs: []string{"video/mp4", "video/webm", "video/quicktime"},
	}
	Image = Policy{
		Name:  "image",
		Exts:  []string{".png", ".jpg", ".jpeg", ".webp"},
		MIMEs: []string{"image/png", "image/jpeg", "image/webp"},
	}
	Document = Policy{
		Name: "document",
		Exts: []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".txt", ".zip", ".png", ".jpg", ".jpeg"},
		MIMEs: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-powerpoint",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"text/plain",
			"application/zip",
			"application/x-ole-storage",
			"image/png",
			"image/jpeg",
		},
	}
	Any = Policy{Name: "any"}
)

type Checked struct {
	Reader      io.Reader
	ContentType string
	Ext         string
}

// Check validates name and content against the policy and the byte ceiling
// (maxBytes <= 0 disables it). The returned reader replays the sniffed prefix.
func (p Policy) Check(name string, size, maxBytes int64, r io.Reader) (*Checked, error) {
	if size == 0 {
		return nil, ErrEmpty
	}
	if maxBytes > 0 && size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, size, maxBytes)
	}
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	if len(p.Exts) > 0 && !contains(p.Exts, ext) {
		return nil, fmt.Errorf("%w: %s accepts %s, got %q", ErrDisallowedType, p.Name, strings.Join(p.Exts, ", "), ext)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmpty
	}

	mt := mimetype.Detect(head)
	if len(p.MIMEs) > 0 && !allowed(mt, p.MIMEs) {
		return nil, fmt.Errorf("%w: %s content detected as %s", ErrDisallowedType, p.Name, mt.String())
	}
	return &Checked{
		Reader:      io.MultiReader(bytes.NewReader(head), r),
		ContentType: mt.String(),
		Ext:         ext,
	}, nil
}

func allowed(mt *mimetype.MIME, list []string) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, want := range list {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
