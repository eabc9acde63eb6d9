package svg2json

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rustyoz/svg"
)

// PathRecord 单个 <path> 的可序列化形式
type PathRecord struct {
	D         string  `json:"d"`
	Fill      string  `json:"fill"`
	Opacity   float64 `json:"opacity"`
	Transform string  `json:"transform,omitempty"`
}

// Document 一份 SVG 的解析结果
type Document struct {
	FrameIndex int          `json:"frameIndex"`
	ViewBox    [4]float64   `json:"viewBox"`
	Paths      []PathRecord `json:"paths"`
}

// Width viewBox 宽
func (d Document) Width() float64 { return d.ViewBox[2] }

// Height viewBox 高
func (d Document) Height() float64 { return d.ViewBox[3] }

// ParseDocument 解析 SVG：viewBox 由 rustyoz/svg 读取，path 属性由 encoding/xml 读取
func ParseDocument(index int, doc string) (Document, error) {
	parsed, err := svg.ParseSvg(doc, fmt.Sprintf("frame-%d", index), 1.0)
	if err != nil {
		return Document{}, fmt.Errorf("parse svg: %w", err)
	}
	vb, err := parseViewBox(parsed.ViewBox)
	if err != nil {
		return Document{}, err
	}
	paths, err := extractPaths(doc)
	if err != nil {
		return Document{}, err
	}
	return Document{FrameIndex: index, ViewBox: vb, Paths: paths}, nil
}

// DefaultParallel ParseAllFrames 在 parallel <= 0 时使用的协程数
const DefaultParallel = 4

// parseFrame 测试时可替换
var parseFrame = ParseDocument

// ParseAllFrames 用至多 parallel 个协程解析多帧，结果与输入顺序一致，返回第一个错误
func ParseAllFrames(docs []string, parallel int) ([]Document, error) {
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	parallel = min(parallel, len(docs))

	results := make([]Document, len(docs))
	errs := make([]error, len(docs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < parallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx], errs[idx] = parseFrame(idx, docs[idx])
			}
		}()
	}
	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return results, nil
}

// MarshalFrames 返回缩进的 JSON
func MarshalFrames(docs []Document) ([]byte, error) {
	return json.MarshalIndent(docs, "", "  ")
}

// parseViewBox 从 viewBox 读取 4 个 float64
func parseViewBox(box string) ([4]float64, error) {
	var vb [4]float64
	fields := strings.FieldsFunc(box, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 4 {
		return vb, fmt.Errorf("invalid viewBox %q", box)
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return vb, fmt.Errorf("invalid viewBox %q: %w", box, err)
		}
		vb[i] = v
	}
	return vb, nil
}

// extractPaths 从 SVG 字符串中提取所有顶层 <path>
func extractPaths(doc string) ([]PathRecord, error) {
	type Path struct {
		D         string `xml:"d,attr"`
		Fill      string `xml:"fill,attr"`
		Opacity   string `xml:"opacity,attr"`
		Transform string `xml:"transform,attr"`
	}

	type SVG struct {
		Paths []Path `xml:"path"`
	}

	var s SVG
	if err := xml.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("parse paths: %w", err)
	}

	paths := make([]PathRecord, len(s.Paths))
	for i, p := range s.Paths {
		opacity := 1.0
		if p.Opacity != "" {
			v, err := strconv.ParseFloat(p.Opacity, 64)
			if err != nil {
				return nil, fmt.Errorf("path %d opacity: %w", i, err)
			}
			opacity = v
		}
		paths[i] = PathRecord{D: p.D, Fill: p.Fill, Opacity: opacity, Transform: p.Transform}
	}
	return paths, nil
}
