package game

// Grid constants. Home and work sit at fixed cells; the default grid is
// 10x10.
const (
	DefaultGridSize = 10
	DefaultActors   = 3
	WaitTicks       = 10
)

var (
	HomePos = Position{X: 1, Y: 1}
	WorkPos = Position{X: 6, Y: 8}
)

// ValidPos reports whether p lies on a size x size grid.
func ValidPos(p Position, size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// Adjacent reports whether a and b are distinct neighboring cells,
// diagonals included.
func Adjacent(a, b Position) bool {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	return dx <= 1 && dy <= 1 && !(dx == 0 && dy == 0)
}

// NextStep picks the next cell on the way from current toward target,
// preferring the diagonal, then horizontal, then vertical. Blocked or
// off-grid cells are skipped; when no direction works the actor stays put.
func NextStep(current, target Position, blocked map[Position]bool, size int) Position {
	dx := sign(target.X - current.X)
	dy := sign(target.Y - current.Y)

	diagonal := Position{X: current.X + dx, Y: current.Y + dy}
	if !blocked[diagonal] && ValidPos(diagonal, size) {
		return diagonal
	}
	if dx != 0 {
		horizontal := Position{X: current.X + dx, Y: current.Y}
		if !blocked[horizontal] && ValidPos(horizontal, size) {
			return horizontal
		}
	}
	if dy != 0 {
		vertical := Position{X: current.X, Y: current.Y + dy}
		if !blocked[vertical] && ValidPos(vertical, size) {
			return vertical
		}
	}
	return current
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
