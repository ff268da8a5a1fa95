package uploads

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/examhub/examhub-api/config"
	"github.com/examhub/examhub-api/internal/types"
)

// Store writes uploaded avatars to role-scoped folders on local disk and
// returns the relative path to persist on the identity record.
type Store interface {
	SaveAvatar(role types.Role, fileHeader *multipart.FileHeader) (string, error)
}

var _ Store = (*DiskStore)(nil)

type DiskStore struct {
	baseDir  string
	maxBytes int64
}

func NewDiskStore(cfg config.UploadConfig) *DiskStore {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	return &DiskStore{baseDir: cfg.Dir, maxBytes: maxBytes}
}

var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

func roleFolder(role types.Role) string {
	switch role {
	case types.RoleAdmin:
		return "Avatar_Admin"
	case types.RoleFaculty:
		return "Avatar_Faculty"
	case types.RoleStudent:
		return "Avatar_Student"
	}
	return "Avatar_Others"
}

// SaveAvatar validates the upload (image extension, size limit) and writes it
// under <baseDir>/<Avatar_Role>/avatar-<random><ext>.
func (s *DiskStore) SaveAvatar(role types.Role, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > s.maxBytes {
		return "", fmt.Errorf("file exceeds %d byte limit", s.maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("only image uploads are allowed")
	}

	dir := filepath.Join(s.baseDir, roleFolder(role))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate file suffix: %w", err)
	}
	name := fmt.Sprintf("avatar-%s%s", hex.EncodeToString(suffix), ext)
	dst := filepath.Join(dir, name)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(src, s.maxBytes+1)); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(roleFolder(role), name)), nil
}
