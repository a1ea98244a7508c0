package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targetsOf(t *testing.T, b *Board, cfg Configuration, token int, rules Rules) []Target {
	t.Helper()
	snap, err := b.Snapshot(cfg)
	require.NoError(t, err)
	return NewGenerator(b, rules).Targets(snap, cfg[token])
}

func TestTargets_FromRoomSkipsEntrances(t *testing.T) {
	b, cfg := mustParse(t, classicLayout, DefaultKinds())

	// B at (2,3) climbs one row, then walks to every non-entrance hallway cell
	got := targetsOf(t, b, cfg, 0, StandardRules())
	want := []Target{
		{To: Position{Row: 1, Col: 2}, Steps: 2},
		{To: Position{Row: 1, Col: 1}, Steps: 3},
		{To: Position{Row: 1, Col: 4}, Steps: 2},
		{To: Position{Row: 1, Col: 6}, Steps: 4},
		{To: Position{Row: 1, Col: 8}, Steps: 6},
		{To: Position{Row: 1, Col: 10}, Steps: 8},
		{To: Position{Row: 1, Col: 11}, Steps: 9},
	}
	assert.Equal(t, want, got)
}

func TestTargets_BlockedClimb(t *testing.T) {
	b, cfg := mustParse(t, swapLayout, twoKinds(t))
	// the settled A under the B never moves; make it Initial to check the climb is blocked
	cfg[2].Phase = PhaseInitial
	assert.Empty(t, targetsOf(t, b, cfg, 2, StandardRules()))
}

func TestTargets_HallwayStopsAtOccupiedCell(t *testing.T) {
	b, cfg := mustParse(t, hallwayLayout, twoKinds(t))

	// A at (2,4): left runs into the B at (1,1), right ends at the wall
	got := targetsOf(t, b, cfg, 1, StandardRules())
	assert.Equal(t, []Target{
		{To: Position{Row: 1, Col: 3}, Steps: 2},
		{To: Position{Row: 1, Col: 5}, Steps: 2},
	}, got)

	// B in the hallway cannot enter: its room still holds an A
	assert.Empty(t, targetsOf(t, b, cfg, 0, StandardRules()))
}

func TestTargets_IntoRoomSinksToDeepestCell(t *testing.T) {
	b, cfg := mustParse(t, hallwayLayout, twoKinds(t))
	// park the A out of the way at (1,5); the B can now go home
	cfg[1] = Token{Kind: 0, Pos: Position{Row: 1, Col: 5}, Phase: PhaseHallway}

	got := targetsOf(t, b, cfg, 0, StandardRules())
	assert.Equal(t, []Target{{To: Position{Row: 2, Col: 4}, Steps: 4}}, got)

	// A at (1,5) heads for room A at column 2 and lands on top of the settled A
	got = targetsOf(t, b, cfg, 1, StandardRules())
	assert.Equal(t, []Target{{To: Position{Row: 2, Col: 2}, Steps: 4}}, got)
}

func TestTargets_HallwayPathBlocked(t *testing.T) {
	b, cfg := mustParse(t, hallwayLayout, twoKinds(t))
	cfg[1] = Token{Kind: 0, Pos: Position{Row: 1, Col: 3}, Phase: PhaseHallway}
	// B at (1,1) must pass column 3 to reach room B
	assert.Empty(t, targetsOf(t, b, cfg, 0, StandardRules()))
}

func TestTargets_FinalHasNoMoves(t *testing.T) {
	b, cfg := mustParse(t, swapLayout, twoKinds(t))
	require.Equal(t, PhaseFinal, cfg[3].Phase)
	assert.Empty(t, targetsOf(t, b, cfg, 3, StandardRules()))
}

func TestTargets_CustomStopRule(t *testing.T) {
	b, cfg := mustParse(t, swapLayout, twoKinds(t))
	anywhere := Rules{CanStop: func(*Board, Position) bool { return true }}

	std := targetsOf(t, b, cfg, 0, StandardRules())
	custom := targetsOf(t, b, cfg, 0, anywhere)
	assert.Len(t, std, 3)
	assert.Len(t, custom, 4)
	assert.Contains(t, custom, Target{To: Position{Row: 1, Col: 4}, Steps: 3})
}

func TestPhaseNext_FailsClosed(t *testing.T) {
	next, ok := PhaseInitial.Next()
	assert.True(t, ok)
	assert.Equal(t, PhaseHallway, next)

	next, ok = PhaseHallway.Next()
	assert.True(t, ok)
	assert.Equal(t, PhaseFinal, next)

	_, ok = PhaseFinal.Next()
	assert.False(t, ok)
	_, ok = Phase(9).Next()
	assert.False(t, ok)
}

func TestGenerator_Apply(t *testing.T) {
	b, cfg := mustParse(t, swapLayout, twoKinds(t))
	g := NewGenerator(b, StandardRules())

	next, m, err := g.Apply(cfg, 1, Target{To: Position{Row: 1, Col: 5}, Steps: 2})
	require.NoError(t, err)
	assert.Equal(t, PhaseHallway, next[1].Phase)
	assert.Equal(t, Position{Row: 1, Col: 5}, next[1].Pos)
	assert.Equal(t, 2, m.Cost)
	assert.Equal(t, PhaseInitial, cfg[1].Phase, "input must not be modified")

	_, _, err = g.Apply(cfg, 3, Target{To: Position{Row: 1, Col: 1}, Steps: 3})
	assert.ErrorIs(t, err, ErrTokenFinal)

	_, _, err = g.Apply(cfg, 7, Target{})
	assert.ErrorIs(t, err, ErrNoSuchToken)
}

func TestGenerator_Find(t *testing.T) {
	b, cfg := mustParse(t, swapLayout, twoKinds(t))
	g := NewGenerator(b, StandardRules())
	snap, err := b.Snapshot(cfg)
	require.NoError(t, err)

	tgt, err := g.Find(snap, cfg, 0, Position{Row: 1, Col: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, tgt.Steps)

	_, err = g.Find(snap, cfg, 0, Position{Row: 1, Col: 2})
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = g.Find(snap, cfg, 3, Position{Row: 1, Col: 1})
	assert.ErrorIs(t, err, ErrTokenFinal)
	_, err = g.Find(snap, cfg, -1, Position{Row: 1, Col: 1})
	assert.ErrorIs(t, err, ErrNoSuchToken)
}

// TestMoveProperties walks the reachable configurations of the classic burrow
// and checks every generated move against the stop and purity rules.
func TestMoveProperties(t *testing.T) {
	b, initial := mustParse(t, classicLayout, DefaultKinds())
	g := NewGenerator(b, StandardRules())
	snap := b.NewSnapshot()

	seen := map[string]bool{initial.Key(): true}
	queue := []Configuration{initial}
	checked := 0
	for len(queue) > 0 && len(seen) < 3000 {
		cfg := queue[0]
		queue = queue[1:]
		require.NoError(t, snap.Load(cfg))

		for _, m := range g.Moves(snap, cfg) {
			checked++
			tok := cfg[m.Token]
			next, applied, err := g.Apply(cfg, m.Token, Target{To: m.To, Steps: m.Steps})
			require.NoError(t, err)
			assert.Equal(t, m.Cost, applied.Cost)
			assert.Equal(t, m.Steps*b.Multiplier(tok.Kind), m.Cost)

			switch tok.Phase {
			case PhaseInitial:
				assert.Equal(t, b.HallwayRow(), m.To.Row)
				assert.False(t, b.IsEntrance(m.To.Col), "stopped above an entrance at %s", m.To)
			case PhaseHallway:
				room, ok := b.RoomOf(m.To)
				require.True(t, ok)
				assert.Equal(t, b.DestinationRoom(tok.Kind), room)
				for _, other := range next {
					if r, in := b.RoomOf(other.Pos); in && r == room {
						assert.Equal(t, room, b.DestinationRoom(other.Kind), "stranger in room %d", room)
					}
				}
			default:
				t.Fatalf("final token %d produced a move", m.Token)
			}

			if key := next.Key(); !seen[key] {
				seen[key] = true
				queue = append(queue, next)
			}
		}
	}
	assert.Greater(t, checked, 1000)
}

func TestLegalMoves(t *testing.T) {
	b, cfg := mustParse(t, boxedLayout, twoKinds(t))
	moves, err := LegalMoves(b, StandardRules(), cfg)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	for _, m := range moves {
		assert.Equal(t, Position{Row: 1, Col: 2}, m.To)
		assert.Equal(t, 2, m.Steps)
	}

	b, cfg = mustParse(t, noStopLayout, twoKinds(t))
	moves, err = LegalMoves(b, StandardRules(), cfg)
	require.NoError(t, err)
	assert.Empty(t, moves)
}
