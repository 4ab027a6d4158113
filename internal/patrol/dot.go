package patrol

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

const dotGraphName = "patrol"

// RenderDOT draws the patrol as a directed graph of legs. Nodes are the
// positions where a leg starts or ends; each edge is one straight leg
// labelled with its facing and length. Obstacles, if any, are drawn as
// unconnected red boxes.
func RenderDOT(g *Grid, p *Patrol, obstacles []Position) (string, error) {
	if g == nil || p == nil || len(p.History) == 0 {
		return "", fmt.Errorf("nothing to render")
	}

	out := gographviz.NewGraph()
	if err := out.SetName(dotGraphName); err != nil {
		return "", err
	}
	if err := out.SetDir(true); err != nil {
		return "", err
	}

	r := &dotRenderer{graph: out, grid: g, ids: map[Position]string{}}
	start := p.History[0]
	if _, err := r.node(start.Position, "start "+start.Position.String(), "doublecircle"); err != nil {
		return "", err
	}

	points := p.History
	if p.Outcome == OutcomeLooped {
		points = append(points[:len(points):len(points)], p.Terminal)
	}

	legStart := points[0]
	moves := 0
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if cur.Position != prev.Position {
			moves++
			continue
		}
		if err := r.leg(legStart.Position, prev, moves); err != nil {
			return "", err
		}
		legStart, moves = cur, 0
	}
	if err := r.leg(legStart.Position, points[len(points)-1], moves); err != nil {
		return "", err
	}

	for i, o := range obstacles {
		attrs := map[string]string{
			"label": strconv.Quote("obstacle " + o.String()),
			"shape": "box",
			"color": "red",
		}
		if err := out.AddNode(dotGraphName, fmt.Sprintf("obstacle%d", i), attrs); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

type dotRenderer struct {
	graph *gographviz.Graph
	grid  *Grid
	ids   map[Position]string
}

func (r *dotRenderer) node(p Position, label, shape string) (string, error) {
	if id, ok := r.ids[p]; ok {
		return id, nil
	}
	id := fmt.Sprintf("n%d", len(r.ids))
	attrs := map[string]string{
		"label": strconv.Quote(label),
		"shape": shape,
	}
	if err := r.graph.AddNode(dotGraphName, id, attrs); err != nil {
		return "", err
	}
	r.ids[p] = id
	return id, nil
}

func (r *dotRenderer) leg(from Position, end AgentState, moves int) error {
	if moves == 0 {
		return nil
	}
	src, err := r.node(from, from.String(), "circle")
	if err != nil {
		return err
	}

	label, shape := end.Position.String(), "circle"
	if !r.grid.InBounds(end.Position) {
		label, shape = "exit "+end.Position.String(), "plaintext"
	}
	dst, err := r.node(end.Position, label, shape)
	if err != nil {
		return err
	}
	return r.graph.AddEdge(src, dst, true, map[string]string{
		"label": strconv.Quote(fmt.Sprintf("%s x%d", end.Facing, moves)),
	})
}
