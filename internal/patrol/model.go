package patrol

import (
	"fmt"
	"strconv"
	"strings"
)

type Cell uint8

const (
	Open Cell = iota
	Blocked
)

// Direction is ordered clockwise so that rotation is a modular increment.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directionNames = [...]string{"up", "right", "down", "left"}

func (d Direction) Rotate() Direction {
	return (d + 1) % 4
}

func (d Direction) Reverse() Direction {
	return (d + 2) % 4
}

func (d Direction) Offset() Position {
	switch d {
	case Up:
		return Position{X: 0, Y: -1}
	case Right:
		return Position{X: 1, Y: 0}
	case Down:
		return Position{X: 0, Y: 1}
	default:
		return Position{X: -1, Y: 0}
	}
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "direction(" + strconv.Itoa(int(d)) + ")"
}

func (d Direction) MarshalText() ([]byte, error) {
	if int(d) >= len(directionNames) {
		return nil, fmt.Errorf("invalid direction %d", d)
	}
	return []byte(directionNames[d]), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, name := range directionNames {
		if s == name {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", s)
}

// Position has no implied bounds; validity is checked against a Grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Position) Step(d Direction) Position {
	return p.Add(d.Offset())
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// ParsePosition reads an "x,y" pair.
func ParsePosition(raw string) (Position, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("invalid position %q (expected x,y)", raw)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Position{}, fmt.Errorf("invalid x in position %q: %w", raw, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Position{}, fmt.Errorf("invalid y in position %q: %w", raw, err)
	}
	return Position{X: x, Y: y}, nil
}

type AgentState struct {
	Position Position  `json:"position"`
	Facing   Direction `json:"facing"`
}

func (s AgentState) String() string {
	return s.Position.String() + " " + s.Facing.String()
}

type Outcome string

const (
	OutcomeExited Outcome = "exited"
	OutcomeLooped Outcome = "looped"
)

// Patrol is the result of one walk.
type Patrol struct {
	History  []AgentState `json:"history"`
	Outcome  Outcome      `json:"outcome"`
	Terminal AgentState   `json:"terminal"`
	Visited  int          `json:"visited"`
}

// Extrapolated is a state reached by walking backward from Origin.
type Extrapolated struct {
	State  AgentState `json:"state"`
	Origin AgentState `json:"origin"`
}

type Mode string

const (
	ModeExtrapolate Mode = "extrapolate"
	ModeBruteForce  Mode = "bruteforce"
	ModeCrossCheck  Mode = "crosscheck"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeExtrapolate:
		return ModeExtrapolate, nil
	case ModeBruteForce:
		return ModeBruteForce, nil
	case ModeCrossCheck:
		return ModeCrossCheck, nil
	}
	return "", fmt.Errorf("unknown mode %q (want extrapolate|bruteforce|crosscheck)", s)
}

type Expectation struct {
	Expr   string `json:"expr"`
	Passed bool   `json:"passed"`
}

type Report struct {
	Visited       int          `json:"visited"`
	Terminal      AgentState   `json:"terminal"`
	Outcome       Outcome      `json:"outcome"`
	Mode          Mode         `json:"mode"`
	Obstacles     []Position   `json:"obstacles"`
	LoopCount     int          `json:"loop_count"`
	Disagreements []Position   `json:"disagreements,omitempty"`
	Expectation   *Expectation `json:"expectation,omitempty"`
}
