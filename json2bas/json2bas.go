package json2bas

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"img2svg/svg2json"
)

// PotraceScale gotrace 输出的坐标单位是像素的 1/10，且 y 轴朝上
const PotraceScale = 10

// Options BAS 生成参数
type Options struct {
	Framerate float64
	// StartTime 毫秒，所有帧整体前移
	StartTime float64
	Parallel  int
	// SkipColor 不输出的颜色（6 位小写十六进制，无 #），播放器背景色
	SkipColor string
}

// DefaultOptions 10fps、4 并发、跳过纯黑
func DefaultOptions() Options {
	return Options{Framerate: 10, Parallel: 4, SkipColor: "000000"}
}

// GenerateAllBasText 按帧并发生成，结果顺序与输入一致
func GenerateAllBasText(docs []svg2json.Document, opts Options) ([]string, error) {
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = 1
	}
	results := make([]string, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, parallel)
	for i, d := range docs {
		wg.Add(1)
		go func(idx int, doc svg2json.Document) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx], errs[idx] = GenerateBasText(doc, opts)
		}(i, d)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", docs[i].FrameIndex, err)
		}
	}
	return results, nil
}

// GenerateBasText 一帧输出为若干 path 弹幕，每个 path 只显示一帧时长
func GenerateBasText(doc svg2json.Document, opts Options) (string, error) {
	if opts.Framerate <= 0 {
		return "", fmt.Errorf("invalid framerate %v", opts.Framerate)
	}
	w := int(math.Round(doc.Width()))
	h := int(math.Round(doc.Height()))
	displayTime := 1000.0 / opts.Framerate
	startOffset := float64(doc.FrameIndex)/opts.Framerate*1000.0 - opts.StartTime

	var out strings.Builder
	for i, p := range doc.Paths {
		color := strings.ToLower(strings.TrimPrefix(p.Fill, "#"))
		if color == "" || color == opts.SkipColor {
			continue
		}

		d, vbW, vbH := p.D, w, h
		if p.Transform != "" {
			vbW, vbH = w*PotraceScale, h*PotraceScale
			flipped, err := FlipSvgPath(p.D, float64(vbH))
			if err != nil {
				return "", fmt.Errorf("path %d: %w", i, err)
			}
			d = flipped
		}

		name := fmt.Sprintf("%d_%d_%s", doc.FrameIndex, i, color)
		fmt.Fprintf(&out, `
let p%s = path{d = "%s" viewBox="0 0 %d %d" width = 100%% fillColor = 0x%s alpha = 0
borderWidth = 15
    borderColor = 0x%s
}
set p%s {} %dms
then set p%s {alpha = %s} 0ms
then set p%s {} %dms
then set p%s {alpha = 0} 0ms
`, name, d, vbW, vbH, color, color,
			name, int(math.Floor(startOffset)),
			name, strconv.FormatFloat(p.Opacity, 'f', -1, 64),
			name, int(math.Floor(displayTime)),
			name,
		)
	}
	return out.String(), nil
}

// FlipSvgPath 以 height 为基准翻转 path 的 y 坐标；相对命令只取反
func FlipSvgPath(d string, height float64) (string, error) {
	toks, err := tokenize(d)
	if err != nil {
		return "", err
	}

	var (
		out    []string
		cmd    byte
		params []float64
	)
	flush := func() {
		size := groupSize(cmd)
		if size > 0 {
			for i := 0; i < len(params); i += size {
				group := params[i:min(i+size, len(params))]
				out = append(out, formatGroup(flipGroup(cmd, group, height)))
			}
		}
		params = params[:0]
	}

	for _, t := range toks {
		if t.cmd != 0 {
			flush()
			cmd = t.cmd
			out = append(out, string(cmd))
			continue
		}
		params = append(params, t.num)
	}
	flush()
	return strings.Join(out, " "), nil
}

func groupSize(cmd byte) int {
	switch cmd {
	case 'H', 'h', 'V', 'v':
		return 1
	case 'M', 'm', 'L', 'l', 'T', 't':
		return 2
	case 'S', 's', 'Q', 'q':
		return 4
	case 'C', 'c':
		return 6
	case 'A', 'a':
		return 7
	default:
		return 0
	}
}

func flipGroup(cmd byte, group []float64, height float64) []float64 {
	res := make([]float64, len(group))
	copy(res, group)
	abs := cmd >= 'A' && cmd <= 'Z'
	flip := func(v float64) float64 {
		if abs {
			return height - v
		}
		return -v
	}

	switch cmd {
	case 'H', 'h':
	case 'V', 'v':
		res[0] = flip(res[0])
	case 'A', 'a':
		// 镜像后弧的扫描方向反转
		if len(res) > 4 {
			res[4] = 1 - res[4]
		}
		if len(res) > 6 {
			res[6] = flip(res[6])
		}
	default:
		for i := 1; i < len(res); i += 2 {
			res[i] = flip(res[i])
		}
	}
	return res
}

func formatGroup(group []float64) string {
	strs := make([]string, len(group))
	for i, v := range group {
		strs[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(strs, " ")
}

type token struct {
	cmd byte
	num float64
}

// tokenize 把 path 数据拆成命令与数字，支持 "1-2"、".5.5"、"1e3" 这类紧凑写法
func tokenize(d string) ([]token, error) {
	var toks []token
	for i := 0; i < len(d); {
		c := d[i]
		switch {
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.IndexByte("MLHVCSQTAZmlhvcsqtaz", c) >= 0:
			toks = append(toks, token{cmd: c})
			i++
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			end := scanNumber(d, i)
			v, err := strconv.ParseFloat(d[i:end], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q at %d", d[i:end], i)
			}
			toks = append(toks, token{num: v})
			i = end
		default:
			return nil, fmt.Errorf("unexpected %q at %d", c, i)
		}
	}
	return toks, nil
}

func scanNumber(d string, i int) int {
	if d[i] == '-' || d[i] == '+' {
		i++
	}
	dot := false
	for i < len(d) {
		c := d[i]
		switch {
		case c >= '0' && c <= '9':
			i++
		case c == '.' && !dot:
			dot = true
			i++
		case c == 'e' || c == 'E':
			j := i + 1
			if j < len(d) && (d[j] == '-' || d[j] == '+') {
				j++
			}
			if j >= len(d) || d[j] < '0' || d[j] > '9' {
				return i
			}
			for j < len(d) && d[j] >= '0' && d[j] <= '9' {
				j++
			}
			return j
		default:
			return i
		}
	}
	return i
}
