// Package deferred applies one-time fixups to images once their asynchronous load completes.
package deferred

import (
	"go.uber.org/zap"

	"github.com/Faultbox/globe/internal/assets"
	"github.com/Faultbox/globe/internal/engine/texture"
	"github.com/Faultbox/globe/internal/logger"
)

// Source is the asset side a deferred texture polls.
type Source interface {
	State(h assets.Handle) assets.State
	Image(h assets.Handle) (*texture.Image, bool)
}

// Fixup mutates a freshly loaded image in place. It reports whether it changed anything.
type Fixup func(img *texture.Image) bool

// Status is where a deferred texture is in its one-way lifecycle.
type Status int

const (
	// Pending waits for the asset to finish loading.
	Pending Status = iota
	// Applied means the fixup ran exactly once.
	Applied
	// Abandoned means the asset failed to load; the fixup never runs.
	Abandoned
)

// Texture pairs an asset handle with the fixup to run when it becomes ready.
type Texture struct {
	Name   string
	Handle assets.Handle
	Fixup  Fixup

	status  Status
	changed bool
}

// New creates a pending deferred texture.
func New(name string, h assets.Handle, fixup Fixup) *Texture {
	return &Texture{Name: name, Handle: h, Fixup: fixup}
}

// Status returns the current lifecycle status.
func (t *Texture) Status() Status { return t.status }

// Ready reports whether the fixup has been applied and the image is usable.
func (t *Texture) Ready() bool { return t.status == Applied }

// Changed reports whether the applied fixup modified the image.
func (t *Texture) Changed() bool { return t.changed }

// Poll checks the asset once. It returns true on the single poll that applies the fixup.
func (t *Texture) Poll(src Source) bool {
	if t.status != Pending {
		return false
	}

	switch src.State(t.Handle) {
	case assets.Ready:
		img, ok := src.Image(t.Handle)
		if !ok {
			return false
		}
		if t.Fixup != nil {
			t.changed = t.Fixup(img)
		}
		t.status = Applied
		logger.Named("deferred").Debug("fixup applied",
			zap.String("texture", t.Name),
			zap.Bool("changed", t.changed),
			zap.Int("layers", img.LayerCount()),
			zap.Stringer("view", img.Descriptor.View),
			zap.Stringer("format", img.Descriptor.Format),
		)
		return true
	case assets.Failed:
		t.status = Abandoned
		logger.Named("deferred").Warn("asset failed, fixup abandoned",
			zap.String("texture", t.Name),
			zap.String("path", t.Handle.Path()),
		)
	}
	return false
}

// Set polls a group of deferred textures each frame.
type Set struct {
	textures []*Texture
}

// Add registers t and returns it.
func (s *Set) Add(t *Texture) *Texture {
	s.textures = append(s.textures, t)
	return t
}

// Poll polls every pending texture and returns the ones that became ready this call.
func (s *Set) Poll(src Source) []*Texture {
	var ready []*Texture
	for _, t := range s.textures {
		if t.Poll(src) {
			ready = append(ready, t)
		}
	}
	return ready
}

// Pending returns the number of textures still waiting.
func (s *Set) Pending() int {
	n := 0
	for _, t := range s.textures {
		if t.status == Pending {
			n++
		}
	}
	return n
}
