package opengl

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSize is returned when a texture dimension is below one.
	ErrInvalidSize = errors.New("texture size must be at least 1 in every dimension")
	// ErrMissingColorIndex is returned when a colour attachment has no index.
	ErrMissingColorIndex = errors.New("color attachment requires a color index")
	// ErrNotGenerated is returned when a wrapper is used before Generate.
	ErrNotGenerated = errors.New("GL object not generated")
	// ErrNullProgram is returned when a shader activator yields no program.
	ErrNullProgram = errors.New("shader activator returned no program")
)

// GLError is a glGetError code together with the call site that observed it.
type GLError struct {
	Code uint32
	Site string
}

func (e *GLError) Error() string {
	return fmt.Sprintf("%s: %s (0x%04X)", e.Site, ErrorName(e.Code), e.Code)
}

// IncompleteFramebufferError reports a framebuffer that failed its
// completeness check after an attachment change.
type IncompleteFramebufferError struct {
	Framebuffer uint32
	Status      uint32
}

func (e *IncompleteFramebufferError) Error() string {
	return fmt.Sprintf("framebuffer %d incomplete: %s (0x%X)",
		e.Framebuffer, FramebufferStatusName(e.Status), e.Status)
}

// Check drains the GL error queue and returns the first error found, tagged
// with site. Any further queued codes are discarded.
func Check(api API, site string) error {
	var first uint32
	for i := 0; i < maxQueuedErrors; i++ {
		code := api.GetError()
		if code == NO_ERROR {
			break
		}
		if first == NO_ERROR {
			first = code
		}
	}
	if first == NO_ERROR {
		return nil
	}
	return errors.WithStack(&GLError{Code: first, Site: site})
}

// A lost context may report errors indefinitely.
const maxQueuedErrors = 16
