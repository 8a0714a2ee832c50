package nodes

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/captioner/internal/captioning"
	"github.com/lehigh-university-libraries/captioner/internal/images"
	"github.com/lehigh-university-libraries/captioner/internal/pricing"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
)

type stubProvider struct {
	text  string
	usage *pricing.Usage
}

func (s *stubProvider) Name() string                 { return "stub" }
func (s *stubProvider) Endpoint(model string) string { return "stub://" + model }
func (s *stubProvider) Caption(ctx context.Context, req providers.Request) (*providers.Response, error) {
	return &providers.Response{Text: s.text, Usage: s.usage}, nil
}

var testModels = []string{"gemini-2.5-flash", "gemini-1.5-pro"}

func newRegistry(provider providers.Provider) *Registry {
	return NewDefaultRegistry(captioning.NewService(provider), testModels)
}

func TestRegistry(t *testing.T) {
	r := newRegistry(&stubProvider{})

	assert.Equal(t, []string{DatasetFolderClass, CaptionClass, CaptionCostClass}, r.Classes())
	assert.Equal(t, map[string]string{
		DatasetFolderClass: "Dataset Folder",
		CaptionClass:       "Gemini Image Captioning",
		CaptionCostClass:   "Gemini Image Captioning (Cost)",
	}, r.DisplayNames())

	_, err := r.New("Nope")
	assert.Error(t, err)

	a, err := r.New(DatasetFolderClass)
	require.NoError(t, err)
	b, err := r.New(DatasetFolderClass)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "each instance owns its own iteration state")
}

func TestResolve(t *testing.T) {
	def := NewCaption(captioning.NewService(&stubProvider{}), testModels, false).Definition()
	img := images.Blank(2)

	tests := []struct {
		name    string
		in      Inputs
		wantErr bool
	}{
		{
			name: "defaults applied",
			in:   Inputs{"IMAGE": img, "PROMPT TYPE": "FLUX", "GEMINI MODEL": "gemini-1.5-pro", "API KEY PATH": "/k"},
		},
		{
			name:    "missing required",
			in:      Inputs{"PROMPT TYPE": "FLUX", "GEMINI MODEL": "gemini-1.5-pro", "API KEY PATH": "/k"},
			wantErr: true,
		},
		{
			name:    "unknown choice",
			in:      Inputs{"IMAGE": img, "PROMPT TYPE": "MJ", "GEMINI MODEL": "gemini-1.5-pro", "API KEY PATH": "/k"},
			wantErr: true,
		},
		{
			name:    "length out of range",
			in:      Inputs{"IMAGE": img, "PROMPT TYPE": "FLUX", "GEMINI MODEL": "gemini-1.5-pro", "API KEY PATH": "/k", "PROMPT LENGTH": 1001},
			wantErr: true,
		},
		{
			name:    "fractional length",
			in:      Inputs{"IMAGE": img, "PROMPT TYPE": "FLUX", "GEMINI MODEL": "gemini-1.5-pro", "API KEY PATH": "/k", "PROMPT LENGTH": 2.5},
			wantErr: true,
		},
		{
			name: "json number length",
			in:   Inputs{"IMAGE": img, "PROMPT TYPE": "FLUX", "GEMINI MODEL": "gemini-1.5-pro", "API KEY PATH": "/k", "PROMPT LENGTH": float64(40)},
		},
		{
			name:    "image of wrong type",
			in:      Inputs{"IMAGE": "not an image", "PROMPT TYPE": "FLUX", "GEMINI MODEL": "gemini-1.5-pro", "API KEY PATH": "/k"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := def.Resolve(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "", resolved.String("IGNORE"))
			assert.Equal(t, "", resolved.String("SAVE TO PATH"))
			if _, ok := tt.in["PROMPT LENGTH"]; !ok {
				assert.Equal(t, 0, resolved.Int("PROMPT LENGTH"))
			}
		})
	}
}

func TestDatasetFolderNode(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.png"} {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 3, 3))))
		require.NoError(t, f.Close())
	}

	node := NewDatasetFolder()
	assert.True(t, node.IsChanged(Inputs{"PATH": dir}))

	var names []string
	for i := 0; i < 3; i++ {
		out, err := node.Execute(context.Background(), Inputs{"PATH": dir})
		require.NoError(t, err)
		require.Len(t, out, 2)
		img, ok := out[0].(images.Image)
		require.True(t, ok)
		assert.Equal(t, 3, img.Width)
		names = append(names, out[1].(string))
	}
	assert.Equal(t, []string{"a", "b", "a"}, names)

	_, err := node.Execute(context.Background(), Inputs{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCaptionNode(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(keyPath, []byte("k"), 0600))
	provider := &stubProvider{text: "stone house", usage: &pricing.Usage{InputTokens: 1000, OutputTokens: 500}}
	svc := captioning.NewService(provider)

	in := Inputs{
		"IMAGE":         images.Blank(2),
		"PROMPT TYPE":   "SD1.5 – SDXL",
		"GEMINI MODEL":  "gemini-2.5-flash",
		"API KEY PATH":  keyPath,
		"PROMPT LENGTH": 30,
	}

	plain := NewCaption(svc, testModels, false)
	assert.False(t, plain.IsChanged(in))
	out, err := plain.Execute(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Contains(t, out[0], "no more than 30")
	assert.Contains(t, out[1], "Received successful response from stub.")
	assert.Equal(t, "stone house", out[2])

	costly := NewCaption(svc, testModels, true)
	assert.Len(t, costly.Definition().Outputs, 4)
	out, err = costly.Execute(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "Input tokens: 1000 | Output tokens: 500 | Cost: $0.001550", out[3])
}

func TestCaptionNodeMissingKeyIsNotAnError(t *testing.T) {
	node := NewCaption(captioning.NewService(&stubProvider{text: "x"}), testModels, false)
	missing := filepath.Join(t.TempDir(), "nope")

	out, err := node.Execute(context.Background(), Inputs{
		"IMAGE":        images.Blank(2),
		"PROMPT TYPE":  "FLUX",
		"GEMINI MODEL": "gemini-1.5-pro",
		"API KEY PATH": missing,
	})
	require.NoError(t, err)
	assert.Equal(t, "", out[0])
	assert.Contains(t, out[1], missing)
	assert.Equal(t, "", out[2])
}
