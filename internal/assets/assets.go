// Package assets loads images asynchronously and tracks their load state.
//
// Loads run on background goroutines; the frame loop only ever polls State and never
// blocks on a load.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/Faultbox/globe/internal/engine/texture"
	"github.com/Faultbox/globe/internal/logger"
)

// State is the lifecycle of a requested asset.
type State int

const (
	NotRequested State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case NotRequested:
		return "not-requested"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Handle identifies a requested asset. The zero Handle is never issued.
type Handle struct {
	id   uint32
	path string
}

// Path returns the path the handle was requested with.
func (h Handle) Path() string { return h.path }

// IsValid reports whether h was issued by a Server.
func (h Handle) IsValid() bool { return h.id != 0 }

type entry struct {
	handle Handle
	state  State
	image  *texture.Image
	err    error
}

// Server loads images from a root directory.
type Server struct {
	root string
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	entries map[string]*entry
	nextID  uint32

	// Stats
	hits   int
	misses int
}

// NewServer creates a server resolving relative paths against root.
func NewServer(root string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		root:    root,
		log:     logger.Named("assets"),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
	}
}

// Root returns the asset root directory.
func (s *Server) Root() string { return s.root }

// Load requests an image and returns its handle immediately. Requesting the same path
// again returns the same handle without reloading.
func (s *Server) Load(path string) Handle {
	s.mu.Lock()
	if e, ok := s.entries[path]; ok {
		s.hits++
		s.mu.Unlock()
		return e.handle
	}
	s.misses++
	e := s.newEntryLocked(path)
	e.state = Loading
	s.mu.Unlock()

	s.log.Debug("loading", zap.String("path", path))
	s.wg.Add(1)
	go s.load(e.handle)
	return e.handle
}

// Add registers an already decoded image under path, in the Ready state.
func (s *Server) Add(path string, img *texture.Image) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[path]
	if !ok {
		e = s.newEntryLocked(path)
	}
	e.state = Ready
	e.image = img
	e.err = nil
	return e.handle
}

func (s *Server) newEntryLocked(path string) *entry {
	s.nextID++
	e := &entry{handle: Handle{id: s.nextID, path: path}}
	s.entries[path] = e
	return e
}

// State returns the load state of h.
func (s *Server) State(h Handle) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lookupLocked(h)
	if !ok {
		return NotRequested
	}
	return e.state
}

// Image returns the decoded image once h is Ready. The image belongs to the frame loop
// from then on; the loader never touches it again.
func (s *Server) Image(h Handle) (*texture.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lookupLocked(h)
	if !ok || e.state != Ready {
		return nil, false
	}
	return e.image, true
}

// Err returns the load error of a Failed handle.
func (s *Server) Err(h Handle) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.lookupLocked(h); ok {
		return e.err
	}
	return nil
}

func (s *Server) lookupLocked(h Handle) (*entry, bool) {
	e, ok := s.entries[h.path]
	if !ok || e.handle != h {
		return nil, false
	}
	return e, true
}

// Wait blocks until every pending load finished or ctx is done.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close abandons pending loads and waits for their goroutines to exit.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

// Stats returns how many Load calls were served from existing entries.
func (s *Server) Stats() (hits, misses int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses
}

// Resolve maps a request path to a filesystem path.
func (s *Server) Resolve(path string) string {
	if filepath.IsAbs(path) || s.root == "" {
		return path
	}
	return filepath.Join(s.root, filepath.FromSlash(path))
}

func (s *Server) load(h Handle) {
	defer s.wg.Done()

	img, err := s.decodeFile(s.Resolve(h.path))
	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookupLocked(h)
	if !ok || e.state != Loading {
		return
	}
	if err != nil {
		e.state = Failed
		e.err = err
		s.log.Warn("load failed", zap.String("path", h.path), zap.Error(err))
		return
	}
	e.state = Ready
	e.image = img
	s.log.Debug("loaded",
		zap.String("path", h.path),
		zap.Int("width", img.Width()),
		zap.Int("height", img.Height()),
	)
}

func (s *Server) decodeFile(path string) (*texture.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// Decode decodes PNG, JPEG, BMP, WebP or TGA data. TGA is picked by extension since it
// has no magic number.
func Decode(data []byte, path string) (*texture.Image, error) {
	var img image.Image
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".tga") {
		img, err = texture.DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return texture.NewImage(img), nil
}
