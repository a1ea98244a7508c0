package engine

import (
	"fmt"
	"strings"
)

// CellKind classifies a grid cell.
type CellKind uint8

const (
	OutOfBounds CellKind = iota
	Wall
	Empty
	Occupied
)

const (
	// MaxGridSize bounds rows and columns so positions fit a single byte in configuration keys
	MaxGridSize = 255
	// MaxBulkMoves caps the number of moves accepted by a single bulk request
	MaxBulkMoves = 50
	// WebSocketBufferSize is the per-client send buffer
	WebSocketBufferSize = 256
)

func (k CellKind) String() string {
	switch k {
	case Wall:
		return "wall"
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	default:
		return "out_of_bounds"
	}
}

// Cell is a single cell of a board snapshot. Token is only meaningful when Kind is Occupied.
type Cell struct {
	Kind  CellKind  `json:"kind"`
	Token TokenKind `json:"token,omitempty"`
}

// Position is a (row, col) coordinate; row 0 is the top of the diagram
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Phase is a token's stage in its one-way Initial -> Hallway -> Final lifecycle.
type Phase uint8

const (
	PhaseInitial Phase = iota
	PhaseHallway
	PhaseFinal
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseHallway:
		return "hallway"
	case PhaseFinal:
		return "final"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Next returns the phase a token enters after a move. It reports false for
// Final and unknown phases instead of panicking.
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhaseInitial:
		return PhaseHallway, true
	case PhaseHallway:
		return PhaseFinal, true
	default:
		return p, false
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	if p > PhaseFinal {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPhase, uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "initial":
		*p = PhaseInitial
	case "hallway":
		*p = PhaseHallway
	case "final":
		*p = PhaseFinal
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPhase, string(text))
	}
	return nil
}

// TokenKind is the rank of a token kind. Kind i belongs in room i.
type TokenKind uint8

// KindSpec describes one token kind
type KindSpec struct {
	Symbol     byte `json:"symbol"`
	Multiplier int  `json:"multiplier"`
}

// Kinds is the ordered kind table of a puzzle
type Kinds []KindSpec

// DefaultKindSymbols are the symbols used when a puzzle does not name its own
const DefaultKindSymbols = "ABCD"

// NewKinds builds a kind table from symbols in rank order. When multipliers is
// empty, kind i costs 10^i per step.
func NewKinds(symbols string, multipliers []int) (Kinds, error) {
	if symbols == "" {
		return nil, fmt.Errorf("%w: no kinds", ErrInvalidKinds)
	}
	if len(multipliers) != 0 && len(multipliers) != len(symbols) {
		return nil, fmt.Errorf("%w: %d multipliers for %d kinds", ErrInvalidKinds, len(multipliers), len(symbols))
	}
	kinds := make(Kinds, 0, len(symbols))
	seen := make(map[byte]bool, len(symbols))
	mult := 1
	for i := 0; i < len(symbols); i++ {
		s := symbols[i]
		switch {
		case s == '#' || s == '.' || s == ' ':
			return nil, fmt.Errorf("%w: reserved symbol %q", ErrInvalidKinds, s)
		case seen[s]:
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidKinds, s)
		}
		seen[s] = true
		m := mult
		if len(multipliers) != 0 {
			m = multipliers[i]
		}
		if m <= 0 {
			return nil, fmt.Errorf("%w: multiplier for %q must be positive", ErrInvalidKinds, s)
		}
		kinds = append(kinds, KindSpec{Symbol: s, Multiplier: m})
		mult *= 10
	}
	return kinds, nil
}

// DefaultKinds returns the A-D table with 1/10/100/1000 multipliers
func DefaultKinds() Kinds {
	kinds, _ := NewKinds(DefaultKindSymbols, nil)
	return kinds
}

// Index looks up a kind by its diagram symbol
func (k Kinds) Index(symbol byte) (TokenKind, bool) {
	for i, spec := range k {
		if spec.Symbol == symbol {
			return TokenKind(i), true
		}
	}
	return 0, false
}

// Symbol returns the diagram symbol of a kind, or '?' when unknown
func (k Kinds) Symbol(kind TokenKind) byte {
	if int(kind) >= len(k) {
		return '?'
	}
	return k[kind].Symbol
}

// Token is one movable unit
type Token struct {
	Kind  TokenKind `json:"kind"`
	Pos   Position  `json:"pos"`
	Phase Phase     `json:"phase"`
}

// Configuration holds every token's state at one instant. Index is the token's
// stable identity assigned at parse time.
type Configuration []Token

// Clone returns an independent copy
func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	copy(out, c)
	return out
}

// Equal reports whether both configurations hold the same token triples in the same order
func (c Configuration) Equal(other Configuration) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Settled reports whether every token is Final
func (c Configuration) Settled() bool {
	for _, t := range c {
		if t.Phase != PhaseFinal {
			return false
		}
	}
	return true
}

// CountFinal returns how many tokens are Final
func (c Configuration) CountFinal() int {
	n := 0
	for _, t := range c {
		if t.Phase == PhaseFinal {
			n++
		}
	}
	return n
}

// Move is a single legal relocation of one token
type Move struct {
	Token int       `json:"token"`
	Kind  TokenKind `json:"kind"`
	From  Position  `json:"from"`
	To    Position  `json:"to"`
	Steps int       `json:"steps"`
	Cost  int       `json:"cost"`
}

// MoveRequest asks to move a token to a destination cell
type MoveRequest struct {
	Token int      `json:"token"`
	To    Position `json:"to"`
}

// MoveHistoryEntry represents a single attempted move in the session history
type MoveHistoryEntry struct {
	Token      int      `json:"token"`
	Symbol     string   `json:"symbol"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	Steps      int      `json:"steps"`
	Cost       int      `json:"cost"`
	Phase      Phase    `json:"phase"`
	Timestamp  int64    `json:"timestamp"`
	Success    bool     `json:"success"`
	MoveNumber int      `json:"move_number"`
}

// BurrowState represents the complete state of an interactive burrow session
type BurrowState struct {
	Tokens     Configuration `json:"tokens"`
	Diagram    []string      `json:"diagram"`
	Cost       int           `json:"cost"`
	Settled    int           `json:"settled"`
	Remaining  int           `json:"remaining"`
	Solved     bool          `json:"solved"`
	Message    string        `json:"message"`
	ConfigName string        `json:"config_name"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset; MoveHistory stays cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	LowerBound int `json:"lower_bound"`
}
