package color2contour

import (
	vtypes "img2svg/type"
)

// 顺时针的八邻域（y 轴向下），从西开始
var neighbors8 = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func dirIndex(dx, dy int) int {
	for i, d := range neighbors8 {
		if d[0] == dx && d[1] == dy {
			return i
		}
	}
	return 0
}

// mooreBoundary 沿区域外周顺时针行走。起点是区域在行优先顺序中的第一个像素，其西侧必然不属于该区域。
// 回到起点且下一步与第一步相同时停止。
func mooreBoundary(labels []int32, width, height int, r *region) []vtypes.Point {
	member := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < width && y < height && labels[y*width+x] == r.id
	}

	sx, sy := r.start%width, r.start/width
	points := []vtypes.Point{{X: float64(sx), Y: float64(sy)}}
	cx, cy, back := sx, sy, 0
	var firstX, firstY int
	moved := false

	// 每个边界像素最多被进入 4 次
	limit := 4*r.pixels + 8
	for step := 0; step < limit; step++ {
		nx, ny, nb, ok := mooreStep(member, cx, cy, back)
		if !ok {
			break
		}
		if cx == sx && cy == sy && moved && nx == firstX && ny == firstY {
			break
		}
		if !moved {
			firstX, firstY, moved = nx, ny, true
		}
		cx, cy, back = nx, ny, nb
		if cx != sx || cy != sy {
			points = append(points, vtypes.Point{X: float64(cx), Y: float64(cy)})
		}
	}
	return points
}

// mooreStep 从回溯方向之后顺时针寻找下一个成员像素
func mooreStep(member func(x, y int) bool, cx, cy, back int) (int, int, int, bool) {
	for k := 1; k <= 8; k++ {
		d := (back + k) % 8
		nx, ny := cx+neighbors8[d][0], cy+neighbors8[d][1]
		if !member(nx, ny) {
			continue
		}
		prev := neighbors8[(d+7)%8]
		px, py := cx+prev[0], cy+prev[1]
		return nx, ny, dirIndex(px-nx, py-ny), true
	}
	return 0, 0, 0, false
}
