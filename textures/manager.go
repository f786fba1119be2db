package textures

import (
	"image/color"
	"sync"

	"go.uber.org/zap"

	"matengine/internal/logger"
)

const defaultKey = "__default_white__"

// Manager caches loaded textures by path.
type Manager struct {
	textures map[string]*Texture
	mu       sync.RWMutex
}

// NewManager creates an empty texture cache.
func NewManager() *Manager {
	return &Manager{textures: make(map[string]*Texture)}
}

// Load loads a texture from file, returning the cached version if available.
func (tm *Manager) Load(path string) (*Texture, error) {
	tm.mu.RLock()
	if tex, ok := tm.textures[path]; ok {
		tm.mu.RUnlock()
		return tex, nil
	}
	tm.mu.RUnlock()

	tex, err := Load(path)
	if err != nil {
		return nil, err
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()
	// Another goroutine may have won the race.
	if cached, ok := tm.textures[path]; ok {
		return cached, nil
	}
	tm.textures[path] = tex
	return tex, nil
}

// GetOrDefault returns the texture at path, or the default white texture.
func (tm *Manager) GetOrDefault(path string) *Texture {
	if path == "" {
		return tm.Default()
	}
	tex, err := tm.Load(path)
	if err != nil {
		logger.Log.Warn("texture load failed, using default", zap.String("path", path), zap.Error(err))
		return tm.Default()
	}
	return tex
}

// Default returns a 1x1 white texture.
func (tm *Manager) Default() *Texture {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tex, ok := tm.textures[defaultKey]; ok {
		return tex
	}
	tex := NewSolid(defaultKey, color.RGBA{255, 255, 255, 255})
	tm.textures[defaultKey] = tex
	return tex
}

// Evict drops path from the cache and reports whether it was cached.
func (tm *Manager) Evict(path string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.textures[path]
	delete(tm.textures, path)
	return ok
}

// Len returns the number of cached textures.
func (tm *Manager) Len() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.textures)
}
