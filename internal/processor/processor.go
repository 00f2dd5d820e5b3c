package processor

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/cover-normalizer/internal/model"
)

// fileStorage defines the interface for file storage.
// It allows loading sources and overwriting thumbnails.
type fileStorage interface {
	Load(path string) (io.ReadCloser, error)
	Save(path string, src io.Reader) error
}

// Processor converts cover art into square bitmap thumbnails.
type Processor struct {
	fileStorage fileStorage
	size        int
}

// New creates a new Processor producing size×size thumbnails.
func New(fs fileStorage, size int) *Processor {
	if size <= 0 {
		size = model.DefaultTargetSize
	}

	return &Processor{fileStorage: fs, size: size}
}

// Size returns the edge length of produced thumbnails.
func (p *Processor) Size() int {
	return p.size
}

// Convert decodes the candidate, resizes it to the target square and
// overwrites its output. Every failure is reported in the returned Outcome.
func (p *Processor) Convert(c model.Candidate) (out model.Outcome) {
	out.Candidate = c

	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("%w: panic: %v", model.ErrDecode, r)
		}
	}()

	out.Err = p.convert(c)

	return out
}

func (p *Processor) convert(c model.Candidate) error {
	// Load the original image from storage.
	srcReader, err := p.fileStorage.Load(c.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrDecode, err)
	}
	defer srcReader.Close()

	// Decode into an image object.
	src, err := imaging.Decode(srcReader)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrDecode, err)
	}

	// Always a square, whatever the source proportions.
	resized := imaging.Resize(src, p.size, p.size, imaging.Lanczos)
	if b := resized.Bounds(); b.Dx() != p.size || b.Dy() != p.size {
		return fmt.Errorf("%w: got %dx%d", model.ErrResize, b.Dx(), b.Dy())
	}

	// Encode into buffer before touching the output file.
	buf := bytes.NewBuffer(nil)
	if err := imaging.Encode(buf, resized, imaging.BMP); err != nil {
		return fmt.Errorf("%w: %w", model.ErrEncode, err)
	}

	if err := p.fileStorage.Save(c.Output, buf); err != nil {
		return fmt.Errorf("%w: %w", model.ErrWrite, err)
	}

	return nil
}

// Dimensions reads the width and height of the image at path
// from its header only.
func (p *Processor) Dimensions(path string) (int, int, error) {
	r, err := p.fileStorage.Load(path)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	// imaging registers png, jpeg, gif, tiff and bmp decoders.
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read dimensions of %s: %w", path, err)
	}

	return cfg.Width, cfg.Height, nil
}
