package json2bas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"img2svg/svg2json"
)

func TestFlipSvgPath(t *testing.T) {
	tests := []struct {
		name   string
		d      string
		height float64
		want   string
	}{
		{"absolute", "M0 0 L10 0 L10 5 Z", 10, "M 0 10 L 10 10 L 10 5 Z"},
		{"relative", "m1 2l3 4z", 10, "m 1 8 l 3 -4 z"},
		{"compact sign", "M1-2", 10, "M 1 12"},
		{"compact dot", "M.5.5", 1, "M 0.5 0.5"},
		{"exponent", "M1e1 2", 0, "M 10 -2"},
		{"implicit repeat", "L1 1 2 2", 4, "L 1 3 2 2"},
		{"horizontal vertical", "H3 V5 v5 h-1", 10, "H 3 V 5 v -5 h -1"},
		{"arc", "A5 5 0 0 1 10 2", 10, "A 5 5 0 0 0 10 8"},
		{"cubic", "C1 2 3 4 5 6", 10, "C 1 8 3 6 5 4"},
		{"pipeline output", "M5.00 0.00 Q10.00 0.00 7.50 4.00 Z", 8, "M 5 8 Q 10 8 7.5 4 Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlipSvgPath(tt.d, tt.height)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFlipSvgPathRejectsGarbage(t *testing.T) {
	for _, d := range []string{"M1 #", "M - 1", "M1 2 X3"} {
		_, err := FlipSvgPath(d, 10)
		require.Error(t, err, d)
	}
}

func TestGenerateBasText(t *testing.T) {
	doc := svg2json.Document{
		FrameIndex: 2,
		ViewBox:    [4]float64{0, 0, 12, 7},
		Paths: []svg2json.PathRecord{
			{D: "M0 0 L1 0 Z", Fill: "#000000", Opacity: 1},
			{D: "M0 0 L1 0 Z", Fill: "#FF0000", Opacity: 0.5},
			{D: "M0 0 L10 20 Z", Fill: "#00ff00", Opacity: 1, Transform: "translate(0,7) scale(0.1,-0.1)"},
		},
	}
	out, err := GenerateBasText(doc, DefaultOptions())
	require.NoError(t, err)

	require.NotContains(t, out, "000000")
	require.Contains(t, out, `let p2_1_ff0000 = path{d = "M0 0 L1 0 Z" viewBox="0 0 12 7"`)
	require.Contains(t, out, "set p2_1_ff0000 {} 200ms")
	require.Contains(t, out, "then set p2_1_ff0000 {alpha = 0.5} 0ms")
	require.Contains(t, out, "then set p2_1_ff0000 {} 100ms")
	require.Contains(t, out, `let p2_2_00ff00 = path{d = "M 0 70 L 10 50 Z" viewBox="0 0 120 70"`)
	require.Equal(t, 2, strings.Count(out, "let p"))

	_, err = GenerateBasText(doc, Options{})
	require.Error(t, err)
}

func TestGenerateAllBasTextKeepsOrder(t *testing.T) {
	var docs []svg2json.Document
	for i := 0; i < 9; i++ {
		docs = append(docs, svg2json.Document{
			FrameIndex: i,
			ViewBox:    [4]float64{0, 0, 4, 4},
			Paths:      []svg2json.PathRecord{{D: "M0 0 L1 1 Z", Fill: "#123456", Opacity: 1}},
		})
	}
	opts := DefaultOptions()
	opts.Parallel = 2
	out, err := GenerateAllBasText(docs, opts)
	require.NoError(t, err)
	require.Len(t, out, len(docs))
	for i, s := range out {
		require.Contains(t, s, "let p"+string(rune('0'+i))+"_0_123456")
	}

	docs[4].Paths[0] = svg2json.PathRecord{D: "M1 #", Fill: "#ffffff", Transform: "scale(1)"}
	_, err = GenerateAllBasText(docs, opts)
	require.ErrorContains(t, err, "frame 4")
}
