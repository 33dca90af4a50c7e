package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image/color"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

const avatarSize = 256

type AvatarService interface {
	// CreateAndUploadUserAvatar renders and uploads the avatar and sets the user's avatar fields.
	// The user row is not written.
	CreateAndUploadUserAvatar(dbc dbctx.Context, user *types.User) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
	// DeleteUserAvatars removes uploaded avatars whose user rows were never committed.
	// Failures are logged only.
	DeleteUserAvatars(ctx context.Context, keys ...string)
}

type avatarService struct {
	log           *logger.Logger
	bucketService gcp.BucketService
	palette       []color.NRGBA
	fontFace      font.Face
}

var avatarPalette = []color.NRGBA{
	{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF},
	{R: 0x43, G: 0xA0, B: 0x47, A: 0xFF},
	{R: 0xE5, G: 0x39, B: 0x35, A: 0xFF},
	{R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
	{R: 0xF4, G: 0x51, B: 0x1E, A: 0xFF},
	{R: 0x00, G: 0x89, B: 0x7B, A: 0xFF},
	{R: 0x39, G: 0x49, B: 0xAB, A: 0xFF},
	{R: 0x6D, G: 0x4C, B: 0x41, A: 0xFF},
}

func NewAvatarService(log *logger.Logger, bucketService gcp.BucketService) (AvatarService, error) {
	if bucketService == nil {
		return nil, fmt.Errorf("bucket service required")
	}
	parsed, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse avatar font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{
		Size:    avatarSize * 0.4,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return &avatarService{
		log:           log.With("service", "AvatarService"),
		bucketService: bucketService,
		palette:       avatarPalette,
		fontFace:      face,
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(dbc dbctx.Context, user *types.User) error {
	if user == nil {
		return fmt.Errorf("user required")
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}
	oldKey := strings.TrimSpace(user.AvatarBucketKey)
	// versioned so CDN caches never serve a stale image
	newKey := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())
	if err := as.bucketService.UploadFile(dbc, gcp.BucketCategoryAvatar, newKey, bytes.NewReader(buf.Bytes()), "image/png"); err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}
	user.AvatarBucketKey = newKey
	user.AvatarURL = as.bucketService.GetPublicURL(gcp.BucketCategoryAvatar, newKey)

	if oldKey != "" && oldKey != newKey {
		if err := as.bucketService.DeleteFile(dbc.Ctx, gcp.BucketCategoryAvatar, oldKey); err != nil {
			as.log.Warn("failed to delete old avatar (ignored)", "oldKey", oldKey, "error", err)
		}
	}
	return nil
}

func (as *avatarService) DeleteUserAvatars(ctx context.Context, keys ...string) {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, as.log)
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := as.bucketService.DeleteFile(ctx, gcp.BucketCategoryAvatar, key); err != nil && !errors.Is(err, gcp.ErrObjectNotFound) {
			log.Warn("Avatar delete failed (ignored)", "key", key, "error", err)
		}
	}
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	var buf bytes.Buffer
	if user == nil {
		return buf, fmt.Errorf("user required")
	}
	dc := gg.NewContext(avatarSize, avatarSize)
	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Clip()
	dc.SetColor(as.colorFor(user))
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(computeInitials(user.Name), avatarSize/2, avatarSize/2, 0.5, 0.35)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// colorFor is stable per user so regenerated avatars keep their color.
func (as *avatarService) colorFor(user *types.User) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(user.Email)))
	return as.palette[int(h.Sum32()%uint32(len(as.palette)))]
}

// computeInitials takes the first letter of the first and last words of name.
func computeInitials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return unicode.IsSpace(r) || r == '-' })
	switch len(words) {
	case 0:
		return "?"
	case 1:
		return firstLetter(words[0])
	default:
		return firstLetter(words[0]) + firstLetter(words[len(words)-1])
	}
}

func firstLetter(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
