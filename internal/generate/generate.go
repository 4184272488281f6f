// Package generate defines the collaborator that composes a try-on image out
// of a "yourself" photo and a "clothing" photo. The composition itself runs
// outside this service; the API only needs something satisfying Composer.
package generate

import (
	"context"
	"errors"
)

var ErrNotImplemented = errors.New("image generation is not implemented")

type Composer interface {
	Compose(ctx context.Context, yourselfBytes, clothingBytes []byte) ([]byte, error)
}

// UnimplementedComposer is the default wiring until a real generation backend
// is attached; every call reports ErrNotImplemented.
type UnimplementedComposer struct{}

func (UnimplementedComposer) Compose(ctx context.Context, yourselfBytes, clothingBytes []byte) ([]byte, error) {
	return nil, ErrNotImplemented
}
