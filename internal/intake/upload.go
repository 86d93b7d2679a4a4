package intake

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/memeforge/memeforge/internal/platform/apierr"
	"github.com/memeforge/memeforge/internal/platform/logger"
)

// MaxUploadBytes is the ceiling for a user image.
const MaxUploadBytes = 5 << 20

const fileField = "image"

// Upload is one staged user image. The accepting request owns it and must
// call Release on every exit path.
type Upload struct {
	TempPath  string
	MimeType  string
	SizeBytes int64

	releaseOnce sync.Once
	log         *logger.Logger
}

// Release deletes the temp file. Safe to call more than once.
func (u *Upload) Release() {
	u.releaseOnce.Do(func() {
		if err := os.Remove(u.TempPath); err != nil && !os.IsNotExist(err) {
			u.log.Warn("Failed to remove temp upload", "path", u.TempPath, "error", err)
		}
	})
}

// Bytes reads the staged file back.
func (u *Upload) Bytes() ([]byte, error) {
	raw, err := os.ReadFile(u.TempPath)
	if err != nil {
		return nil, fmt.Errorf("read staged upload: %w", err)
	}
	return raw, nil
}

type Intake struct {
	log *logger.Logger
	dir string
}

func NewIntake(log *logger.Logger, dir string) *Intake {
	return &Intake{
		log: log.With("service", "UploadIntake"),
		dir: dir,
	}
}

// Accept validates the request's image field and stages it to a temp file.
func (in *Intake) Accept(c *gin.Context) (*Upload, error) {
	fh, err := c.FormFile(fileField)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "missing_image",
			fmt.Errorf("no image file provided"))
	}
	if fh.Size > MaxUploadBytes {
		return nil, apierr.New(http.StatusBadRequest, "image_too_large",
			fmt.Errorf("image exceeds the %d MB limit", MaxUploadBytes>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "unreadable_image",
			fmt.Errorf("open uploaded image: %w", err))
	}
	defer f.Close()

	// Trust the declared type only when it says something; some clients send
	// no Content-Type or a generic octet-stream, so fall back to sniffing.
	sniff := make([]byte, 512)
	n, _ := io.ReadFull(f, sniff)
	mimeType := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(sniff[:n])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, apierr.New(http.StatusBadRequest, "not_an_image",
			fmt.Errorf("only image uploads are allowed, got %q", mimeType))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := fmt.Sprintf("upload-%d-%s%s",
		time.Now().UnixMilli(),
		uuid.NewString()[:8],
		strings.ToLower(filepath.Ext(fh.Filename)),
	)
	tempPath := filepath.Join(in.dir, name)

	dst, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create temp upload: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(f, MaxUploadBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	if written > MaxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, apierr.New(http.StatusBadRequest, "image_too_large",
			fmt.Errorf("image exceeds the %d MB limit", MaxUploadBytes>>20))
	}

	in.log.Debug("Staged upload", "path", tempPath, "mime", mimeType, "bytes", written)
	return &Upload{
		TempPath:  tempPath,
		MimeType:  mimeType,
		SizeBytes: written,
		log:       in.log,
	}, nil
}
