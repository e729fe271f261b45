package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"

	"github.com/google/uuid"
)

// FrameSource yields frames until io.EOF. Close releases the device.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// Camera opens a frame source for one scanning session.
type Camera interface {
	Open(ctx context.Context) (FrameSource, error)
}

// Scan reads frames until one decodes to a non-empty code. The source is closed
// on every outcome: a code, cancellation, exhaustion or a failure.
func Scan(ctx context.Context, cam Camera, dec Decoder) (string, error) {
	session := uuid.NewString()

	src, err := cam.Open(ctx)
	if err != nil {
		return "", fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Printf("scan %s: close camera: %v", session, err)
		}
	}()

	for frames := 0; ; frames++ {
		if err := ctx.Err(); err != nil {
			log.Printf("scan %s: cancelled after %d frames", session, frames)
			return "", err
		}

		img, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			log.Printf("scan %s: no code in %d frames", session, frames)
			return "", ErrNoCode
		}
		if err != nil {
			return "", fmt.Errorf("read frame: %w", err)
		}

		// frames without a code are normal while the user aims
		text, err := dec.Decode(img)
		if err == nil && text != "" {
			log.Printf("scan %s: code %q after %d frames", session, text, frames+1)
			return text, nil
		}
	}
}

// Images is a Camera over already captured frames, e.g. uploaded snapshots.
type Images []image.Image

func (imgs Images) Open(ctx context.Context) (FrameSource, error) {
	return &imageSource{frames: imgs}, nil
}

type imageSource struct {
	frames []image.Image
	pos    int
	closed bool
}

func (s *imageSource) Next(ctx context.Context) (image.Image, error) {
	if s.closed {
		return nil, errors.New("frame source closed")
	}
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	img := s.frames[s.pos]
	s.pos++
	return img, nil
}

func (s *imageSource) Close() error {
	s.closed = true
	return nil
}
