// Package assets loads material definitions, materials, shader sources
// and textures from a set of root directories and caches them.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"matengine/internal/logger"
	"matengine/material"
	"matengine/shader"
	"matengine/textures"
)

var ErrNotFound = errors.New("assets: not found")

// Manager resolves asset names against its roots, in order. Caches are
// keyed by asset name and safe for concurrent loads.
type Manager struct {
	roots    []string
	textures *textures.Manager

	mu        sync.RWMutex
	matDefs   map[string]*material.MaterialDef
	materials map[string]*material.Material
	shaders   map[string]*shader.Shader
	sources   map[string]string
}

var (
	_ material.ShaderLoader = (*Manager)(nil)
	_ material.AssetLoader  = (*Manager)(nil)
)

// NewManager creates a manager searching roots in order. Without roots
// names are resolved against the working directory.
func NewManager(roots ...string) *Manager {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	return &Manager{
		roots:     roots,
		textures:  textures.NewManager(),
		matDefs:   make(map[string]*material.MaterialDef),
		materials: make(map[string]*material.Material),
		shaders:   make(map[string]*shader.Shader),
		sources:   make(map[string]string),
	}
}

func (am *Manager) Roots() []string             { return am.roots }
func (am *Manager) Textures() *textures.Manager { return am.textures }

// Locate returns the file name refers to. Paths that exist as given
// win over the roots.
func (am *Manager) Locate(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	for _, root := range am.roots {
		p := filepath.Join(root, filepath.FromSlash(name))
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// assetName maps a file under one of the roots back to its asset name.
func (am *Manager) assetName(path string) (string, bool) {
	for _, root := range am.roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", false
		}
		rel, err := filepath.Rel(absRoot, absPath)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func (am *Manager) readFile(name string) ([]byte, error) {
	p, err := am.Locate(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// ── Shaders ──────────────────────────────────────────────────────────────────

func (am *Manager) source(name string) (string, error) {
	am.mu.RLock()
	src, ok := am.sources[name]
	am.mu.RUnlock()
	if ok {
		return src, nil
	}

	data, err := am.readFile(name)
	if err != nil {
		return "", err
	}
	src = string(data)

	am.mu.Lock()
	am.sources[name] = src
	am.mu.Unlock()
	return src, nil
}

// LoadShader returns the shader variant for key, reading its sources on
// first use. Variants that differ only in defines share the sources.
func (am *Manager) LoadShader(key shader.Key) (*shader.Shader, error) {
	k := key.String()
	am.mu.RLock()
	s, ok := am.shaders[k]
	am.mu.RUnlock()
	if ok {
		return s, nil
	}

	stages := []struct {
		stage shader.SourceStage
		name  string
		lang  string
	}{
		{shader.StageVertex, key.VertName, key.VertLanguage},
		{shader.StageFragment, key.FragName, key.FragLanguage},
	}
	header := key.DefinesHeader()
	s = shader.New(key)
	for _, st := range stages {
		if st.name == "" {
			continue
		}
		code, err := am.source(st.name)
		if err != nil {
			return nil, fmt.Errorf("load shader %s: %w", st.name, err)
		}
		s.AddSource(shader.Source{
			Stage:    st.stage,
			Name:     st.name,
			Language: st.lang,
			Code:     code,
			Defines:  header,
		})
	}

	am.mu.Lock()
	defer am.mu.Unlock()
	if cached, ok := am.shaders[k]; ok {
		return cached, nil
	}
	am.shaders[k] = s
	logger.Log.Debug("shader variant loaded", zap.String("key", k), zap.Int("id", s.ID()))
	return s, nil
}

// ── Textures ─────────────────────────────────────────────────────────────────

func (am *Manager) LoadTexture(name string) (*textures.Texture, error) {
	p, err := am.Locate(name)
	if err != nil {
		return nil, err
	}
	return am.textures.Load(p)
}

// ── Material definitions ─────────────────────────────────────────────────────

// LoadMaterialDef returns the material definition stored in the YAML
// file name. Its shaders load through am.
func (am *Manager) LoadMaterialDef(name string) (*material.MaterialDef, error) {
	am.mu.RLock()
	def, ok := am.matDefs[name]
	am.mu.RUnlock()
	if ok {
		return def, nil
	}

	data, err := am.readFile(name)
	if err != nil {
		return nil, err
	}
	def, err = ParseMaterialDef(name, data, am)
	if err != nil {
		return nil, err
	}

	am.mu.Lock()
	defer am.mu.Unlock()
	if cached, ok := am.matDefs[name]; ok {
		return cached, nil
	}
	am.matDefs[name] = def
	return def, nil
}

// ParseMaterialDef decodes a YAML material definition.
func ParseMaterialDef(assetName string, data []byte, loader material.ShaderLoader) (*material.MaterialDef, error) {
	var doc matDefDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("material definition %s: %w", assetName, err)
	}
	def, err := doc.build(assetName, loader)
	if err != nil {
		return nil, fmt.Errorf("material definition %s: %w", assetName, err)
	}
	return def, nil
}

// ── Materials ────────────────────────────────────────────────────────────────

// LoadMaterial returns a new material built from the YAML file name.
// Every call returns an independent copy.
func (am *Manager) LoadMaterial(name string) (*material.Material, error) {
	am.mu.RLock()
	m, ok := am.materials[name]
	am.mu.RUnlock()
	if ok {
		return m.Clone(), nil
	}

	data, err := am.readFile(name)
	if err != nil {
		return nil, err
	}
	m, err = am.ParseMaterial(name, data)
	if err != nil {
		return nil, err
	}

	am.mu.Lock()
	am.materials[name] = m
	am.mu.Unlock()
	return m.Clone(), nil
}

// ParseMaterial decodes a YAML material. Its definition and textures
// load through am.
func (am *Manager) ParseMaterial(assetName string, data []byte) (*material.Material, error) {
	var doc materialDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("material %s: %w", assetName, err)
	}
	if doc.Def == "" {
		return nil, fmt.Errorf("material %s: %w: no definition", assetName, material.ErrIllegalArgument)
	}
	def, err := am.LoadMaterialDef(doc.Def)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", assetName, err)
	}
	m, err := material.New(def)
	if err != nil {
		return nil, err
	}
	m.SetName(doc.Name)
	m.SetAssetName(assetName)
	m.SetTransparent(doc.Transparent)
	m.SetReceivesShadows(doc.ReceivesShadows)

	err = mappingPairs(&doc.Params, func(k string, n *yaml.Node) error {
		decl := def.MaterialParam(k)
		if decl == nil {
			return fmt.Errorf("%w: material definition %s has no parameter %q", material.ErrIllegalArgument, def.Name(), k)
		}
		typ := decl.VarType()
		if typ.IsTextureType() {
			var path string
			if err := n.Decode(&path); err != nil {
				return err
			}
			tex, err := am.LoadTexture(path)
			if err != nil {
				return err
			}
			return m.SetTextureParam(k, typ, tex)
		}
		v, err := decodeValue(typ, n)
		if err != nil {
			return err
		}
		return m.SetParam(k, v)
	})
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", assetName, err)
	}

	if err := doc.AdditionalRenderState.applyTo(m.AdditionalRenderState()); err != nil {
		return nil, fmt.Errorf("material %s: additionalRenderState: %w", assetName, err)
	}
	return m, nil
}

// ── Eviction ─────────────────────────────────────────────────────────────────

// Evict drops every cached asset loaded from name, and every shader
// variant built from it. Materials already handed out keep what they
// hold.
func (am *Manager) Evict(name string) bool {
	evicted := am.textures.Evict(name)
	for _, root := range am.roots {
		if am.textures.Evict(filepath.Join(root, filepath.FromSlash(name))) {
			evicted = true
		}
	}

	am.mu.Lock()
	defer am.mu.Unlock()
	if _, ok := am.matDefs[name]; ok {
		delete(am.matDefs, name)
		evicted = true
		for k, m := range am.materials {
			if m.MaterialDef().AssetName() == name {
				delete(am.materials, k)
			}
		}
	}
	if _, ok := am.materials[name]; ok {
		delete(am.materials, name)
		evicted = true
	}
	if _, ok := am.sources[name]; ok {
		delete(am.sources, name)
		evicted = true
		for k, s := range am.shaders {
			if s.Key().VertName == name || s.Key().FragName == name {
				delete(am.shaders, k)
			}
		}
	}
	if evicted {
		logger.Log.Info("asset evicted", zap.String("asset", name))
	}
	return evicted
}
