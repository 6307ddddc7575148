package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	customErrors "github.com/mambasports/team-service/internal/errors"
)

// Kind describes one upload destination.
type Kind struct {
	Dir        string
	Prefix     string
	MimePrefix string
	MaxBytes   int64
}

var (
	Avatar        = Kind{Dir: "avatars", Prefix: "avatar", MimePrefix: "image/", MaxBytes: 5 << 20}
	BlogThumbnail = Kind{Dir: "blogs", Prefix: "blog", MimePrefix: "image/", MaxBytes: 10 << 20}
	Video         = Kind{Dir: "videos", Prefix: "video", MimePrefix: "video/", MaxBytes: 100 << 20}
	TeamPhoto     = Kind{Dir: "teamavatars", Prefix: "team", MimePrefix: "image/", MaxBytes: 5 << 20}
)

// PublicPrefix is the URL prefix every stored file is referenced by.
const PublicPrefix = "/uploads"

type Storage struct {
	root string
}

// NewStorage creates the per-kind directories under root.
func NewStorage(root string) (*Storage, error) {
	for _, k := range []Kind{Avatar, BlogThumbnail, Video, TeamPhoto} {
		if err := os.MkdirAll(filepath.Join(root, k.Dir), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", k.Dir, err)
		}
	}
	return &Storage{root: root}, nil
}

// FromForm stores the file in field, if any. It returns nil when the
// request carries no such file.
func (s *Storage) FromForm(c *fiber.Ctx, field string, kind Kind) (*string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}

	stored, err := s.Save(c, fh, kind)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Save validates fh against kind and writes it to disk, returning the
// public relative path.
func (s *Storage) Save(c *fiber.Ctx, fh *multipart.FileHeader, kind Kind) (string, error) {
	if !strings.HasPrefix(fh.Header.Get(fiber.HeaderContentType), kind.MimePrefix) {
		return "", customErrors.Validation("Only %s files are allowed!", strings.TrimSuffix(kind.MimePrefix, "/"))
	}
	if kind.MaxBytes > 0 && fh.Size > kind.MaxBytes {
		return "", customErrors.Validation("File too large. Maximum size is %d MB", kind.MaxBytes>>20)
	}

	name := fmt.Sprintf("%s-%s%s", kind.Prefix, uuid.NewString(), strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveFile(fh, filepath.Join(s.root, kind.Dir, name)); err != nil {
		return "", customErrors.InternalServerError(err, "failed to store upload")
	}
	return path.Join(PublicPrefix, kind.Dir, name), nil
}

// Remove deletes a file previously returned by Save. Unknown paths are
// ignored.
func (s *Storage) Remove(publicPath string) error {
	rel, ok := strings.CutPrefix(publicPath, PublicPrefix+"/")
	if !ok || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Normalize turns a bare stored filename into its public path under kind.
// Paths that are already absolute, and nil, pass through.
func Normalize(p *string, kind Kind) *string {
	if p == nil || *p == "" {
		return nil
	}
	if strings.HasPrefix(*p, "/") {
		return p
	}
	out := path.Join(PublicPrefix, kind.Dir, *p)
	return &out
}
