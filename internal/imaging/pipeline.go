// Package imaging implements the asset image derivative pipeline.
//
// An accepted upload yields exactly two files sharing a base name: a
// bounded "main" variant and a fixed-size square thumbnail. The thumbnail
// name derives from the main name (stem + "_thumb" + ext), so callers never
// need a lookup to resolve one from the other.
package imaging

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockroom.io/stockroom/internal/config"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/pkg/logger"
)

const (
	// MainMaxDim bounds the longer side of the main variant.
	MainMaxDim = 1024

	// ThumbSize is the exact square size of the thumbnail variant.
	ThumbSize = 200

	thumbSuffix = "_thumb"
)

// allowedTypes maps accepted file extensions to the sniffed content type
// each must carry. Extension and detected type must agree; neither alone
// is trusted.
var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// Pipeline decodes uploads and persists derivative files.
type Pipeline struct {
	dir         string
	placeholder string
	maxBytes    int64
}

// NewPipeline creates a Pipeline writing under the configured directory.
func NewPipeline(cfg config.StorageConfig) *Pipeline {
	return &Pipeline{
		dir:         cfg.ImageDir,
		placeholder: cfg.PlaceholderPath,
		maxBytes:    cfg.MaxUploadBytes,
	}
}

// ThumbName returns the thumbnail filename for a main filename.
func ThumbName(base string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + thumbSuffix + ext
}

// FilePath resolves a stored filename to its path on disk.
func (p *Pipeline) FilePath(name string) string {
	return filepath.Join(p.dir, filepath.Base(name))
}

// WebPath resolves a stored filename for UI display. A blank name always
// resolves to the placeholder, never to an error.
func (p *Pipeline) WebPath(name string) string {
	if strings.TrimSpace(name) == "" {
		return p.placeholder
	}
	return "/images/" + filepath.Base(name)
}

// Process validates, decodes and persists an uploaded image, returning the
// base filename both derivatives share. Validation problems come back as a
// single AppError carrying the full list of field errors — never a partial
// result. The caller owns removing the files if it aborts later.
func (p *Pipeline) Process(data []byte, declaredName string) (string, error) {
	if fieldErrs := p.validate(data, declaredName); len(fieldErrs) > 0 {
		return "", apperrors.Validation("uploaded image rejected", fieldErrs...)
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", apperrors.Validation("uploaded image rejected", apperrors.FieldError{
			Field:   "image",
			Code:    apperrors.CodeImageUndecodable,
			Message: "file could not be decoded as an image",
		})
	}

	base := newBaseName(declaredName)

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	main := src
	if b := src.Bounds(); b.Dx() > MainMaxDim || b.Dy() > MainMaxDim {
		// Scale down preserving aspect ratio so the longer side hits the bound.
		main = imaging.Fit(src, MainMaxDim, MainMaxDim, imaging.Lanczos)
	}
	if err := imaging.Save(main, p.FilePath(base)); err != nil {
		return "", fmt.Errorf("save main variant: %w", err)
	}

	// Centered square crop scaled to the fixed thumbnail size.
	thumb := imaging.Fill(src, ThumbSize, ThumbSize, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, p.FilePath(ThumbName(base))); err != nil {
		// No partial pair: the operation fails as a whole.
		if rmErr := os.Remove(p.FilePath(base)); rmErr != nil {
			logger.Warn("Failed to remove main variant after thumbnail error",
				zap.String("file", base),
				zap.Error(rmErr),
			)
		}
		return "", fmt.Errorf("save thumbnail variant: %w", err)
	}

	return base, nil
}

// Remove deletes both derivative files for a base name. Best effort:
// missing files are fine, other failures are logged.
func (p *Pipeline) Remove(base string) {
	if strings.TrimSpace(base) == "" {
		return
	}
	for _, name := range []string{base, ThumbName(base)} {
		if err := os.Remove(p.FilePath(name)); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove image derivative",
				zap.String("file", name),
				zap.Error(err),
			)
		}
	}
}

func (p *Pipeline) validate(data []byte, declaredName string) []apperrors.FieldError {
	var fieldErrs []apperrors.FieldError

	if int64(len(data)) > p.maxBytes {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field:   "image",
			Code:    apperrors.CodeImageTooLarge,
			Message: fmt.Sprintf("image exceeds the %d byte limit", p.maxBytes),
		})
	}

	ext := strings.ToLower(filepath.Ext(declaredName))
	wantType, extOK := allowedTypes[ext]
	if !extOK {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field:   "image",
			Code:    apperrors.CodeImageBadFormat,
			Message: "file extension must be jpg, jpeg, png or gif",
		})
	}

	// Sniff the real content type; the declared name alone is not trusted.
	sniffed := http.DetectContentType(data)
	if extOK && sniffed != wantType {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field:   "image",
			Code:    apperrors.CodeImageBadFormat,
			Message: fmt.Sprintf("detected content type %s does not match extension %s", sniffed, ext),
		})
	}

	return fieldErrs
}

// newBaseName generates a collision-resistant filename. Only the extension
// of the declared name survives; the stem is never user input.
func newBaseName(declaredName string) string {
	ext := strings.ToLower(filepath.Ext(declaredName))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String() + ext
	}
	return id.String() + ext
}
