package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"img2svg/config"
	"img2svg/model"
	vtypes "img2svg/type"
)

func solid(w, h int, c color.RGBA) *vtypes.PixelBuffer {
	buf := vtypes.NewPixelBuffer(w, h)
	for i := 0; i < buf.Len(); i++ {
		buf.SetIndex(i, c)
	}
	return buf
}

func checkerboard(n int) *vtypes.PixelBuffer {
	buf := vtypes.NewPixelBuffer(n, n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if (x+y)%2 == 0 {
				buf.Set(x, y, color.RGBA{A: 255})
			} else {
				buf.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	return buf
}

func TestZstdRoundTrip(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg">` + strings.Repeat(`<path d="M0.00 0.00 L1.00 0.00 Z" fill="#ff0000"/>`, 200) + `</svg>`)
	packed, err := compressZstd(svg)
	require.NoError(t, err)
	require.Less(t, len(packed), len(svg))

	back, err := decompressZstd(packed)
	require.NoError(t, err)
	require.Equal(t, svg, back)

	empty, err := compressZstd(nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = decompressZstd([]byte("not zstd"))
	require.Error(t, err)
}

func TestResultCodec(t *testing.T) {
	in := &model.ConvertResult{
		ID:         "job",
		MD5:        "abc",
		Width:      2,
		Height:     3,
		Preset:     "default",
		Settings:   vtypes.DefaultSettings(),
		ByteLength: 10,
		SVG:        "<svg/>",
		Timestamp:  1700000000,
	}
	data, err := encodeResult(in)
	require.NoError(t, err)
	out, err := decodeResult(data)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	repo, err := OpenHistory(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Insert(ctx, model.HistoryEntry{
			ID:         id,
			MD5:        "md5-" + id,
			Width:      10 + i,
			Height:     20,
			Preset:     "default",
			Settings:   vtypes.Settings{Complexity: 0.25, ColorSimplification: 0.5, PathSmoothing: 0.75},
			ByteLength: 100 * (i + 1),
			PathCount:  i,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}, "<svg>"+id+"</svg>"))
	}

	e, svg, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "<svg>b</svg>", svg)
	require.Equal(t, "md5-b", e.MD5)
	require.Equal(t, 11, e.Width)
	require.Equal(t, 200, e.ByteLength)
	require.Equal(t, 1, e.PathCount)
	require.Equal(t, vtypes.Settings{Complexity: 0.25, ColorSimplification: 0.5, PathSmoothing: 0.75}, e.Settings)
	require.True(t, base.Add(time.Minute).Equal(e.CreatedAt))

	_, _, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	list, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "c", list[0].ID)
	require.Equal(t, "b", list[1].ID)

	list, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "a", list[0].ID)

	require.Error(t, repo.Insert(ctx, model.HistoryEntry{ID: "a"}, ""), "duplicate id")
}

func TestHistoryMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}

type fakeS3 struct {
	s3iface.S3API
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.types[*in.Key] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, ErrNotFound
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store := &S3Store{client: fake, bucket: "vectors", prefix: "svg/"}
	ctx := context.Background()

	url, err := store.PutSVG(ctx, "job-1", "<svg/>")
	require.NoError(t, err)
	require.Equal(t, "s3://vectors/svg/job-1.svg", url)
	require.Equal(t, svgContentType, fake.types["svg/job-1.svg"])

	got, err := store.GetSVG(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, "<svg/>", got)

	_, err = store.GetSVG(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	disabled, err := NewS3Store(&config.StorageConfig{})
	require.NoError(t, err)
	require.Nil(t, disabled)
}

func newTestConvertService(t *testing.T, concurrent int) *ConvertService {
	t.Helper()
	cfg := config.Default().Convert
	cfg.MaxConcurrent = concurrent
	s, err := NewConvertService(&cfg)
	require.NoError(t, err)
	return s
}

func TestConvert(t *testing.T) {
	s := newTestConvertService(t, 2)
	res, err := s.Convert(context.Background(), solid(4, 4, color.RGBA{G: 255, A: 255}), vtypes.DefaultSettings(), "", "job-x")
	require.NoError(t, err)
	require.Equal(t, "job-x", res.JobID)
	require.Contains(t, res.SVG, `fill="#00ff00"`)
	require.Equal(t, "default", res.Metadata["preset"])

	_, err = s.Convert(context.Background(), solid(4, 4, color.RGBA{A: 255}), vtypes.DefaultSettings(), "bogus", "")
	require.ErrorIs(t, err, vtypes.ErrInvalidInput)

	bad := config.Default().Convert
	bad.Preset = "bogus"
	_, err = NewConvertService(&bad)
	require.ErrorIs(t, err, vtypes.ErrInvalidInput)
}

func TestConvertQueueFull(t *testing.T) {
	s := newTestConvertService(t, 1)
	s.queueTimeout = 20 * time.Millisecond
	s.semaphore <- struct{}{}

	_, err := s.Convert(context.Background(), solid(2, 2, color.RGBA{A: 255}), vtypes.DefaultSettings(), "", "")
	require.ErrorIs(t, err, ErrQueueFull)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Convert(ctx, solid(2, 2, color.RGBA{A: 255}), vtypes.DefaultSettings(), "", "")
	require.ErrorIs(t, err, context.Canceled)

	<-s.semaphore
	_, err = s.Convert(context.Background(), solid(2, 2, color.RGBA{A: 255}), vtypes.DefaultSettings(), "", "")
	require.NoError(t, err)
}

func TestConvertFrames(t *testing.T) {
	s := newTestConvertService(t, 2)
	var frames []vtypes.Frame
	for i, c := range []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}} {
		img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = c.R, c.G, c.B, c.A
		}
		frames = append(frames, vtypes.Frame{Index: i, Image: img})
	}

	docs, err := s.ConvertFrames(context.Background(), frames, vtypes.DefaultSettings(), "")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Contains(t, docs[0], "#ff0000")
	require.Contains(t, docs[1], "#00ff00")
	require.Contains(t, docs[2], "#0000ff")

	frames[1].Image = image.NewNRGBA(image.Rect(0, 0, 0, 0))
	_, err = s.ConvertFrames(context.Background(), frames, vtypes.DefaultSettings(), "")
	require.ErrorIs(t, err, vtypes.ErrInvalidInput)
	require.ErrorContains(t, err, "frame 1")
}

func TestHeuristicSuggester(t *testing.T) {
	var sg Suggester = NewHeuristicSuggester()
	ctx := context.Background()

	simple, err := sg.Suggest(ctx, solid(32, 32, color.RGBA{R: 10, G: 200, B: 30, A: 255}), vtypes.DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, "simple", simple.Level)
	require.Equal(t, vtypes.Settings{Complexity: 0.2, ColorSimplification: 1, PathSmoothing: 0.8}, simple.Settings)

	busy, err := sg.Suggest(ctx, checkerboard(16), vtypes.DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, "complex", busy.Level)
	require.InDelta(t, 1.0, busy.EdgeDensity, 1e-9)
	require.Greater(t, busy.Settings.Complexity, simple.Settings.Complexity)
	require.NoError(t, busy.Settings.Validate())

	current := vtypes.Settings{Complexity: 0.1, ColorSimplification: 0.2, PathSmoothing: 0.3}
	empty, err := sg.Suggest(ctx, vtypes.NewPixelBuffer(4, 4), current)
	require.NoError(t, err)
	require.Equal(t, "empty", empty.Level)
	require.Equal(t, current, empty.Settings)

	_, err = sg.Suggest(ctx, &vtypes.PixelBuffer{Width: 2, Height: 2}, current)
	require.ErrorIs(t, err, vtypes.ErrInvalidInput)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = sg.Suggest(cancelled, solid(2, 2, color.RGBA{A: 255}), current)
	require.ErrorIs(t, err, context.Canceled)
}
