package logo

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"path/filepath"
	"regexp"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/logger"
)

const (
	// LOGO_SIZE is the width and height of a stored logo
	LOGO_SIZE = 512

	// DEFAULT_MAX_SIZE is the upload limit when none is configured
	DEFAULT_MAX_SIZE = 5 * 1024 * 1024
)

var (
	// ErrEmpty is returned for an empty upload
	ErrEmpty = errors.New("logo is empty")
	// ErrTooLarge is returned when the upload exceeds the configured limit
	ErrTooLarge = errors.New("logo is too large")
	// ErrUnsupportedFormat is returned when the upload is not a supported raster image
	ErrUnsupportedFormat = errors.New("unsupported logo format")
	// ErrInvalidImage is returned when the upload cannot be decoded
	ErrInvalidImage = errors.New("logo could not be decoded")
)

var supportedMimeTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Processor normalises uploaded logos and stores them
//
//go:generate mockgen -source=logo.go -destination=../mocks/logo.go -package=mocks -mock_names=Processor=MockLogoProcessor
type Processor interface {
	// Process converts raw image bytes to a square PNG and returns its storage reference
	Process(ctx context.Context, raw []byte, ownerID string) (string, error)
}

// Config holds logo storage configuration
type Config struct {
	Dir     string
	MaxSize int64
}

type processor struct {
	fs      adapter.FileSystem
	encoder adapter.ImageEncoder
	clock   adapter.Clock
	config  Config
}

// NewProcessor creates a logo processor writing into cfg.Dir
func NewProcessor(fs adapter.FileSystem, encoder adapter.ImageEncoder, clock adapter.Clock, cfg Config) Processor {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DEFAULT_MAX_SIZE
	}
	return &processor{
		fs:      fs,
		encoder: encoder,
		clock:   clock,
		config:  cfg,
	}
}

func (p *processor) Process(ctx context.Context, raw []byte, ownerID string) (string, error) {
	if len(raw) == 0 {
		return "", ErrEmpty
	}
	if int64(len(raw)) > p.config.MaxSize {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, len(raw), p.config.MaxSize)
	}

	mtype := mimetype.Detect(raw)
	if !mimetype.EqualsAny(mtype.String(), supportedMimeTypes...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	logger.DebugCtx(ctx, "Decoded logo",
		zap.String("mimeType", mtype.String()),
		zap.String("format", format),
		zap.Int("width", src.Bounds().Dx()),
		zap.Int("height", src.Bounds().Dy()),
	)

	var buf bytes.Buffer
	if err := p.encoder.EncodePNG(&buf, Square(src, LOGO_SIZE)); err != nil {
		return "", fmt.Errorf("failed to encode logo: %w", err)
	}

	return p.store(ctx, buf.Bytes(), ownerID)
}

func (p *processor) store(ctx context.Context, data []byte, ownerID string) (string, error) {
	if err := p.fs.MkdirAll(p.config.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create logo directory: %w", err)
	}

	id := ulid.MustNew(ulid.Timestamp(p.clock.Now()), rand.Reader)
	name := fmt.Sprintf("%s-%s.png", unsafeNameChars.ReplaceAllString(ownerID, "_"), id.String())
	path := filepath.Join(p.config.Dir, name)

	f, err := p.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create logo file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = p.fs.Remove(path)
		return "", fmt.Errorf("failed to write logo file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close logo file: %w", err)
	}

	logger.InfoCtx(ctx, "Stored logo", zap.String("path", path), zap.Int("size", len(data)))
	return path, nil
}

// Square fits src into a size x size canvas on a white background, keeping its aspect ratio.
// Transparent areas are flattened onto white.
func Square(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return dst
	}

	w, h := size, size
	if b.Dx() > b.Dy() {
		h = max(1, size*b.Dy()/b.Dx())
	} else if b.Dy() > b.Dx() {
		w = max(1, size*b.Dx()/b.Dy())
	}
	offset := image.Pt((size-w)/2, (size-h)/2)
	target := image.Rectangle{Min: offset, Max: offset.Add(image.Pt(w, h))}

	draw.CatmullRom.Scale(dst, target, src, b, draw.Over, nil)
	return dst
}
