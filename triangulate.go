package geodrill

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// triangulate splits a polygon with holes into triangles by bridging each
// hole into the outer boundary and ear clipping the resulting simple loop.
// It returns the combined vertex list (outer first, then holes) and triangle
// indices into it, every triangle wound counter-clockwise.
func triangulate(outer []r2.Point, holes [][]r2.Point) ([]r2.Point, []int) {
	if len(outer) < 3 {
		return nil, nil
	}

	verts := make([]r2.Point, 0, len(outer))
	verts = append(verts, outer...)
	if signedArea(verts) < 0 {
		reversePoints(verts)
	}

	loop := make([]int, len(outer))
	for i := range loop {
		loop[i] = i
	}

	type holeSpan struct {
		start, n int
		right    int // index of the rightmost vertex
	}
	spans := make([]holeSpan, 0, len(holes))
	for _, h := range holes {
		if len(h) < 3 {
			continue
		}
		start := len(verts)
		verts = append(verts, h...)
		if signedArea(verts[start:]) > 0 {
			reversePoints(verts[start:])
		}
		right := start
		for i := start + 1; i < len(verts); i++ {
			if verts[i].X > verts[right].X {
				right = i
			}
		}
		spans = append(spans, holeSpan{start: start, n: len(h), right: right})
	}

	// Rightmost holes first so later bridges never cross earlier ones.
	sort.Slice(spans, func(i, j int) bool {
		return verts[spans[i].right].X > verts[spans[j].right].X
	})

	for hi, h := range spans {
		m := verts[h.right]
		blocked := func(p r2.Point) bool {
			if p.X < m.X {
				return true
			}
			for _, vi := range loop {
				if onSegment(verts[vi], m, p) {
					return true
				}
			}
			for _, other := range spans[hi:] {
				for i := 0; i < other.n; i++ {
					if onSegment(verts[other.start+i], m, p) {
						return true
					}
				}
			}
			n := len(loop)
			for i := 0; i < n; i++ {
				a, b := verts[loop[i]], verts[loop[(i+1)%n]]
				if segmentsCross(m, p, a, b) {
					return true
				}
			}
			for _, other := range spans[hi:] {
				for i := 0; i < other.n; i++ {
					a := verts[other.start+i]
					b := verts[other.start+(i+1)%other.n]
					if segmentsCross(m, p, a, b) {
						return true
					}
				}
			}
			return false
		}

		best, bestDist := -1, math.Inf(1)
		fallback, fallbackDist := 0, math.Inf(1)
		for li, vi := range loop {
			dv := verts[vi].Sub(m)
			d := dv.Dot(dv)
			if d < fallbackDist {
				fallback, fallbackDist = li, d
			}
			if d >= bestDist || blocked(verts[vi]) || !locallyInside(verts, loop, li, m) {
				continue
			}
			best, bestDist = li, d
		}
		if best < 0 {
			best = fallback
		}

		spliced := make([]int, 0, len(loop)+h.n+2)
		spliced = append(spliced, loop[:best+1]...)
		off := h.right - h.start
		for i := 0; i <= h.n; i++ {
			spliced = append(spliced, h.start+(off+i)%h.n)
		}
		spliced = append(spliced, loop[best:]...)
		loop = spliced
	}

	return verts, earClip(verts, loop)
}

// earClip triangulates the simple loop given as indices into verts, which
// must wind counter-clockwise.
func earClip(verts []r2.Point, loop []int) []int {
	n := len(loop)
	if n < 3 {
		return nil
	}
	prev := make([]int, n)
	next := make([]int, n)
	for i := range loop {
		prev[i] = (i + n - 1) % n
		next[i] = (i + 1) % n
	}

	tris := make([]int, 0, (n-2)*3)
	remaining := n
	cur := 0
	stall := 0
	for remaining > 3 {
		p, q := prev[cur], next[cur]
		a, b, c := verts[loop[p]], verts[loop[cur]], verts[loop[q]]

		if isEar(verts, loop, next, p, cur, q, a, b, c) {
			tris = append(tris, loop[p], loop[cur], loop[q])
			next[p], prev[q] = q, p
			remaining--
			cur = q
			stall = 0
			continue
		}

		cur = q
		stall++
		if stall < remaining {
			continue
		}

		// No ear left, only possible with self-touching input. Drop the
		// flattest vertex so the loop still terminates.
		flat, flatCross := cur, math.Inf(1)
		for i, k := cur, 0; k < remaining; i, k = next[i], k+1 {
			cr := math.Abs(orient(verts[loop[prev[i]]], verts[loop[i]], verts[loop[next[i]]]))
			if cr < flatCross {
				flat, flatCross = i, cr
			}
		}
		fp, fq := prev[flat], next[flat]
		if orient(verts[loop[fp]], verts[loop[flat]], verts[loop[fq]]) > 0 {
			tris = append(tris, loop[fp], loop[flat], loop[fq])
		}
		next[fp], prev[fq] = fq, fp
		remaining--
		cur = fq
		stall = 0
	}

	p, q := prev[cur], next[cur]
	if orient(verts[loop[p]], verts[loop[cur]], verts[loop[q]]) > 0 {
		tris = append(tris, loop[p], loop[cur], loop[q])
	}
	return tris
}

// isEar reports whether the corner (p, cur, q) is convex and contains no
// other remaining vertex.
func isEar(verts []r2.Point, loop, next []int, p, cur, q int, a, b, c r2.Point) bool {
	if orient(a, b, c) <= 0 {
		return false
	}
	for i := next[q]; i != p; i = next[i] {
		v := verts[loop[i]]
		if v == a || v == b || v == c {
			continue
		}
		if pointInTriangle(v, a, b, c) {
			return false
		}
	}
	return true
}

// locallyInside reports whether m lies inside the loop's interior wedge at
// position li. Bridged vertices occur twice in the loop and only one
// occurrence faces a given hole.
func locallyInside(verts []r2.Point, loop []int, li int, m r2.Point) bool {
	n := len(loop)
	a := verts[loop[(li+n-1)%n]]
	p := verts[loop[li]]
	c := verts[loop[(li+1)%n]]
	if orient(a, p, c) > 0 {
		return orient(a, p, m) > 0 && orient(p, c, m) > 0
	}
	return orient(a, p, m) > 0 || orient(p, c, m) > 0
}

// onSegment reports whether v lies strictly between the endpoints of ab.
func onSegment(v, a, b r2.Point) bool {
	if v == a || v == b {
		return false
	}
	if math.Abs(orient(a, b, v)) > 1e-12 {
		return false
	}
	return v.X >= math.Min(a.X, b.X) && v.X <= math.Max(a.X, b.X) &&
		v.Y >= math.Min(a.Y, b.Y) && v.Y <= math.Max(a.Y, b.Y)
}

// pointInTriangle includes points on the triangle's edges.
func pointInTriangle(p, a, b, c r2.Point) bool {
	return orient(a, b, p) >= 0 && orient(b, c, p) >= 0 && orient(c, a, p) >= 0
}

func reversePoints(pts []r2.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
