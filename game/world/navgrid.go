package world

import (
	"math"

	"github.com/kasuganosora/hidechase/game/ai"
	"github.com/kasuganosora/hidechase/geom"
)

// NavGrid is a walkable grid on the XZ plane at ground level (Y = 0).
// Cell (x, z) covers [x*CellSize, (x+1)*CellSize) on each axis.
// It implements ai.NavSurface.
type NavGrid struct {
	Width    int
	Depth    int
	CellSize float64
	// heights[z][x] is the tallest obstacle covering the cell; 0 means walkable.
	heights [][]float64
}

// NewNavGrid creates a fully walkable grid.
func NewNavGrid(w, d int, cellSize float64) *NavGrid {
	g := &NavGrid{Width: w, Depth: d, CellSize: cellSize}
	g.heights = make([][]float64, d)
	for z := range g.heights {
		g.heights[z] = make([]float64, w)
	}
	return g
}

// BuildNavGrid creates a grid and blocks every cell whose center lies inside
// an obstacle footprint.
func BuildNavGrid(w, d int, cellSize float64, obstacles []ai.Obstacle) *NavGrid {
	g := NewNavGrid(w, d, cellSize)
	for _, o := range obstacles {
		g.Block(o)
	}
	return g
}

// Block marks the cells under o as not walkable.
func (g *NavGrid) Block(o ai.Obstacle) {
	minX, minZ, maxX, maxZ := placedObstacle{Obstacle: o}.footprint()
	for z := 0; z < g.Depth; z++ {
		for x := 0; x < g.Width; x++ {
			c := g.center(x, z)
			if c.X >= minX && c.X <= maxX && c.Z >= minZ && c.Z <= maxZ && o.Bounds.Y > g.heights[z][x] {
				g.heights[z][x] = o.Bounds.Y
			}
		}
	}
}

func (g *NavGrid) inBounds(x, z int) bool {
	return x >= 0 && x < g.Width && z >= 0 && z < g.Depth
}

func (g *NavGrid) walkable(x, z int) bool {
	return g.inBounds(x, z) && g.heights[z][x] == 0
}

func (g *NavGrid) center(x, z int) geom.Vec3 {
	return geom.V((float64(x)+0.5)*g.CellSize, 0, (float64(z)+0.5)*g.CellSize)
}

// Cell returns the grid coordinates containing p.
func (g *NavGrid) Cell(p geom.Vec3) (x, z int) {
	return int(math.Floor(p.X / g.CellSize)), int(math.Floor(p.Z / g.CellSize))
}

// Walkable reports whether p lies on a walkable cell.
func (g *NavGrid) Walkable(p geom.Vec3) bool {
	return g.walkable(g.Cell(p))
}

// SamplePoint returns the walkable cell center nearest to near, if one lies
// within maxSnap.
func (g *NavGrid) SamplePoint(near geom.Vec3, maxSnap float64) (ai.NavHit, bool) {
	cx, cz := g.Cell(near)
	r := int(math.Ceil(maxSnap/g.CellSize)) + 1
	best, bestDist := geom.Zero, math.Inf(1)
	for z := cz - r; z <= cz+r; z++ {
		for x := cx - r; x <= cx+r; x++ {
			if !g.walkable(x, z) {
				continue
			}
			c := g.center(x, z)
			if d := geom.Distance(near, c); d <= maxSnap && d < bestDist {
				best, bestDist = c, d
			}
		}
	}
	if math.IsInf(bestDist, 1) {
		return ai.NavHit{}, false
	}
	return ai.NavHit{Position: best}, true
}

// neighbor offsets and the edge normal seen from the walkable side
var edgeDirs = [4]struct {
	dx, dz int
	normal geom.Vec3
}{
	{1, 0, geom.V(-1, 0, 0)},
	{-1, 0, geom.V(1, 0, 0)},
	{0, 1, geom.V(0, 0, -1)},
	{0, -1, geom.V(0, 0, 1)},
}

// FindClosestEdge returns the point on the walkable boundary nearest to p.
// The normal points away from the blocked side. Grid borders count as edges.
func (g *NavGrid) FindClosestEdge(p geom.Vec3) (ai.NavHit, bool) {
	var best ai.NavHit
	bestDist := math.Inf(1)
	cs := g.CellSize
	for z := 0; z < g.Depth; z++ {
		for x := 0; x < g.Width; x++ {
			if !g.walkable(x, z) {
				continue
			}
			x0, z0 := float64(x)*cs, float64(z)*cs
			for _, d := range edgeDirs {
				if g.walkable(x+d.dx, z+d.dz) {
					continue
				}
				var pt geom.Vec3
				switch {
				case d.dx == 1:
					pt = geom.V(x0+cs, 0, clamp(p.Z, z0, z0+cs))
				case d.dx == -1:
					pt = geom.V(x0, 0, clamp(p.Z, z0, z0+cs))
				case d.dz == 1:
					pt = geom.V(clamp(p.X, x0, x0+cs), 0, z0+cs)
				default:
					pt = geom.V(clamp(p.X, x0, x0+cs), 0, z0)
				}
				if dist := geom.Distance(p, pt); dist < bestDist {
					best, bestDist = ai.NavHit{Position: pt, Normal: d.normal}, dist
				}
			}
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// LineOfSight reports whether nothing at least eyeHeight tall stands between
// a and b on the grid.
func (g *NavGrid) LineOfSight(a, b geom.Vec3, eyeHeight float64) bool {
	seg := b.Sub(a).Flat()
	length := seg.Len()
	dir := seg.Normalized()
	step := g.CellSize / 4
	ax, az := g.Cell(a)
	bx, bz := g.Cell(b)
	for t := 0.0; t <= length; t += step {
		p := a.Add(dir.Scale(t))
		x, z := g.Cell(p)
		if (x == ax && z == az) || (x == bx && z == bz) || !g.inBounds(x, z) {
			continue
		}
		if g.heights[z][x] >= eyeHeight {
			return false
		}
	}
	return true
}
