package renderer

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMsaaEnabledNoop(t *testing.T) {
	// Setting the current state never touches the backend.
	r := NewRenderer(nil, false, false, 4)
	changed, err := r.SetMsaaEnabled(false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, r.MsaaEnabled())

	r = NewRenderer(nil, false, true, 4)
	changed, err = r.SetMsaaEnabled(true)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, r.MsaaEnabled())
}

func TestShaderBytecodeRejectsEmptyBlob(t *testing.T) {
	// An unbuilt checkout embeds zero-byte .spv files; the error has to
	// tell the user which mage target fills them in.
	code, err := shaderBytecode("vert.spv", nil)
	require.Error(t, err)
	assert.Nil(t, code)
	assert.Contains(t, err.Error(), "mage build:shaders")

	blob := []byte{0x03, 0x02, 0x23, 0x07}
	code, err = shaderBytecode("vert.spv", blob)
	require.NoError(t, err)
	assert.Equal(t, blob, code)
}

func TestDrawMissingSubmeshFailsBeforeRecording(t *testing.T) {
	// The lookup must fail before any frame state is touched; with no
	// live backend, reaching BeginFrame would panic instead of erroring.
	r := NewRenderer(nil, false, false, 4)
	r.mesh = &MeshGeometry{
		Name:      "box",
		Submeshes: map[string]SubmeshRange{},
	}

	err := r.Draw()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing submesh")
}

func TestSampleCountMapping(t *testing.T) {
	cases := []struct {
		enabled bool
		samples uint32
		want    vk.SampleCountFlagBits
	}{
		{false, 4, vk.SampleCount1Bit},
		{false, 8, vk.SampleCount1Bit},
		{true, 2, vk.SampleCount2Bit},
		{true, 4, vk.SampleCount4Bit},
		{true, 8, vk.SampleCount8Bit},
		// Unrecognized counts fall back to 4x.
		{true, 16, vk.SampleCount4Bit},
		{true, 0, vk.SampleCount4Bit},
	}
	for _, tc := range cases {
		r := NewRenderer(nil, false, tc.enabled, tc.samples)
		assert.Equal(t, tc.want, r.sampleCount(), "enabled=%t samples=%d", tc.enabled, tc.samples)
	}
}
