package patrol

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Grid is read-only after parsing. The agent's position is never stored in
// the cells.
type Grid struct {
	width  int
	height int
	cells  []Cell
	start  AgentState
	hash   string
}

type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// Parse builds a Grid from puzzle text. Any agent marker cell is Open; the
// first marker in row-major order is the start.
func (p *Parser) Parse(raw string) (*Grid, error) {
	lines := strings.Split(raw, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, &ParseError{Reason: "empty grid"}
	}

	width := len(lines[0])
	g := &Grid{
		width:  width,
		height: len(lines),
		cells:  make([]Cell, 0, width*len(lines)),
	}

	found := false
	for y, line := range lines {
		if len(line) != width {
			return nil, &ParseError{
				Line:   y + 1,
				Reason: fmt.Sprintf("row has %d cells, expected %d", len(line), width),
			}
		}
		for x := 0; x < len(line); x++ {
			c := line[x]
			switch c {
			case '.':
				g.cells = append(g.cells, Open)
			case '#':
				g.cells = append(g.cells, Blocked)
			case '^', '>', 'v', '<':
				g.cells = append(g.cells, Open)
				if !found {
					g.start = AgentState{Position: Position{X: x, Y: y}, Facing: markerFacing(c)}
					found = true
				}
			default:
				return nil, &ParseError{
					Line:   y + 1,
					Column: x + 1,
					Reason: fmt.Sprintf("unknown cell character %q", c),
				}
			}
		}
	}
	if !found {
		return nil, &ParseError{Reason: "no agent marker (one of ^ v < >)"}
	}

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	g.hash = hex.EncodeToString(sum[:])
	return g, nil
}

func markerFacing(c byte) Direction {
	switch c {
	case '>':
		return Right
	case 'v':
		return Down
	case '<':
		return Left
	default:
		return Up
	}
}

// At returns false when p lies outside the grid. It is the only bounds
// check callers should use.
func (g *Grid) At(p Position) (Cell, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= g.width || p.Y >= g.height {
		return Open, false
	}
	return g.cells[p.Y*g.width+p.X], true
}

func (g *Grid) InBounds(p Position) bool {
	_, ok := g.At(p)
	return ok
}

// FindAgent returns the start state recorded at parse time.
func (g *Grid) FindAgent() AgentState { return g.start }

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }
func (g *Grid) Area() int   { return g.width * g.height }

// Hash is the sha256 of the canonical row text.
func (g *Grid) Hash() string { return g.hash }
