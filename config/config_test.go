package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matengine/gpu"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	want := Default()
	want.Window.Title = "round trip"
	want.Renderer.LightBatchSize = 8
	want.Renderer.ForcedTechnique = "Wireframe"
	want.Renderer.DisabledCaps = []string{"GLSL150"}
	want.Assets.Roots = []string{"data", "mods"}
	want.Assets.Watch = true
	want.Log.Level = "debug"

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nlight_batch_size = 2\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Renderer.LightBatchSize)
	assert.Equal(t, Default().Window, s.Window)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"batch": "[renderer]\nlight_batch_size = 0\n",
		"caps":  "[renderer]\ndisabled_caps = [\"NoSuchCap\"]\n",
		"size":  "[window]\nwidth = -1\n",
		"roots": "[assets]\nroots = []\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "engine.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestMaskCaps(t *testing.T) {
	s := Default()
	s.Renderer.DisabledCaps = []string{"GLSL150"}
	detected := gpu.NewCapSet(gpu.CapGLSL100, gpu.CapGLSL110, gpu.CapGLSL150)

	masked := s.MaskCaps(detected)
	assert.False(t, masked.Contains(gpu.CapGLSL150))
	assert.True(t, masked.Contains(gpu.CapGLSL110))
}
