package svg2json

import (
	"encoding/json"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"img2svg/color2svg"
	vtypes "img2svg/type"
)

func render(t *testing.T, w, h int, paths []vtypes.PathElement) string {
	t.Helper()
	doc, _, err := color2svg.RenderString(w, h, paths)
	require.NoError(t, err)
	return doc
}

func TestParseDocument(t *testing.T) {
	doc := render(t, 12, 7, []vtypes.PathElement{
		{D: "M0.00 0.00 L3.00 0.00 L3.00 3.00 Z", Fill: color.RGBA{R: 255, A: 255}, Opacity: 1},
		{D: "M1.00 1.00 L2.00 1.00 L2.00 2.00 Z", Fill: color.RGBA{B: 255, A: 64}, Opacity: 0.25},
	})

	parsed, err := ParseDocument(3, doc)
	require.NoError(t, err)
	require.Equal(t, 3, parsed.FrameIndex)
	require.Equal(t, [4]float64{0, 0, 12, 7}, parsed.ViewBox)
	require.Equal(t, 12.0, parsed.Width())
	require.Equal(t, 7.0, parsed.Height())
	require.Equal(t, []PathRecord{
		{D: "M0.00 0.00 L3.00 0.00 L3.00 3.00 Z", Fill: "#ff0000", Opacity: 1},
		{D: "M1.00 1.00 L2.00 1.00 L2.00 2.00 Z", Fill: "#0000ff", Opacity: 0.25},
	}, parsed.Paths)
}

func TestParseAllFrames(t *testing.T) {
	docs := []string{
		render(t, 4, 4, nil),
		render(t, 4, 4, []vtypes.PathElement{{D: "M0 0 L1 0 L1 1 Z", Fill: color.RGBA{A: 255}, Opacity: 1}}),
	}
	frames, err := ParseAllFrames(docs, 0)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Empty(t, frames[0].Paths)
	require.Len(t, frames[1].Paths, 1)
	require.Equal(t, 1, frames[1].FrameIndex)

	data, err := MarshalFrames(frames)
	require.NoError(t, err)
	var back []Document
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, frames[1].Paths, back[1].Paths)

	_, err = ParseAllFrames([]string{"<svg"}, 1)
	require.Error(t, err)
}

func TestParseAllFramesBoundedWorkers(t *testing.T) {
	doc := render(t, 2, 2, nil)
	docs := make([]string, 64)
	for i := range docs {
		docs[i] = doc
	}

	var running, peak atomic.Int32
	orig := parseFrame
	t.Cleanup(func() { parseFrame = orig })
	parseFrame = func(index int, d string) (Document, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return orig(index, d)
	}

	frames, err := ParseAllFrames(docs, 3)
	require.NoError(t, err)
	require.Len(t, frames, len(docs))
	for i, f := range frames {
		require.Equal(t, i, f.FrameIndex)
	}
	require.LessOrEqual(t, peak.Load(), int32(3))
	require.GreaterOrEqual(t, peak.Load(), int32(1))

	frames, err = ParseAllFrames(nil, 3)
	require.NoError(t, err)
	require.Empty(t, frames)
}

func TestParseViewBox(t *testing.T) {
	vb, err := parseViewBox("0,0 10.5 3")
	require.NoError(t, err)
	require.Equal(t, [4]float64{0, 0, 10.5, 3}, vb)

	_, err = parseViewBox("0 0 10")
	require.Error(t, err)
	_, err = parseViewBox("a b c d")
	require.Error(t, err)
}
