// Package session implements the per-session actor: the single-owner state
// machine that serializes commands, owns the authoritative game state and
// clock, drives an external UCI engine, and fans out events to subscribers.
package session

import (
	"strconv"
	"time"

	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/seekerror/stdlib/pkg/lang"
)

// GamePhase is the session's own lifecycle tag, orthogonal to GameStatus: a
// game can be Ongoing but Paused.
type GamePhase uint8

const (
	Setup GamePhase = iota
	Playing
	Paused
	Finished
)

func (p GamePhase) String() string {
	switch p {
	case Setup:
		return "setup"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "?"
	}
}

// GameModeKind discriminates GameMode.
type GameModeKind uint8

const (
	HumanVsHuman GameModeKind = iota
	HumanVsEngine
	EngineVsEngine
	Analysis
)

// GameMode controls which side(s) the session expects moves from.
type GameMode struct {
	Kind      GameModeKind
	HumanSide rules.Color // meaningful only for HumanVsEngine
}

// isEngineControlled returns true iff the side to move in mode/human terms is
// the engine, given the side to move.
func (m GameMode) isEngineControlled(sideToMove rules.Color) bool {
	switch m.Kind {
	case EngineVsEngine:
		return true
	case HumanVsEngine:
		return sideToMove != m.HumanSide
	default:
		return false
	}
}

// TimerSnapshot is the wall-clock countdown state.
type TimerSnapshot struct {
	WhiteMs    int64
	BlackMs    int64
	ActiveSide lang.Optional[rules.Color] // unset means "none" (not clocked)
}

// EngineConfig configures the attached engine. Changing it while thinking
// cancels the current search and restarts with the new options.
type EngineConfig struct {
	Enabled bool
	Skill   int // 0-20
	Threads int
	HashMB  int
}

// ScoreKind discriminates AnalysisScore.
type ScoreKind uint8

const (
	Centipawns ScoreKind = iota
	Mate
)

// AnalysisScore is a tagged union: either a centipawn evaluation or a forced
// mate in N plies, always from the perspective of the side to move.
// Positive means the side to move is better.
type AnalysisScore struct {
	Kind  ScoreKind
	Value int
}

// ToCP projects the score to a single comparable centipawn value. Mate-in-N
// maps to ±(30000 - 100*N). This projection is for ordering and swing
// detection only, never for display.
func (s AnalysisScore) ToCP() int {
	if s.Kind == Centipawns {
		return s.Value
	}
	if s.Value >= 0 {
		return 30000 - 100*s.Value
	}
	return -30000 - 100*s.Value
}

// Negate flips the score to the opponent's perspective. It is an involution:
// negating twice returns the original score.
func (s AnalysisScore) Negate() AnalysisScore {
	return AnalysisScore{Kind: s.Kind, Value: -s.Value}
}

func (s AnalysisScore) String() string {
	if s.Kind == Mate {
		if s.Value >= 0 {
			return "#" + strconv.Itoa(s.Value)
		}
		return "#-" + strconv.Itoa(-s.Value)
	}
	return strconv.Itoa(s.Value) + "cp"
}

// EngineAnalysis is the normalized result of one engine search; every field
// except PV is optional (the engine may not have reported it yet).
type EngineAnalysis struct {
	Depth    lang.Optional[int]
	SelDepth lang.Optional[int]
	TimeMs   lang.Optional[int]
	Nodes    lang.Optional[uint64]
	NPS      lang.Optional[uint64]
	PV       []string
	Score    lang.Optional[AnalysisScore]
}

// MoveRecord is an applied move enriched with everything derivable from
// having applied it; immutable once appended to a session's history.
type MoveRecord struct {
	Move     rules.Move
	Piece    rules.Piece
	Captured rules.Piece // rules.NoPiece if not a capture
	SAN      string
	FENAfter string
	AppliedAt time.Time
}

// SessionSnapshot is the authoritative, self-sufficient value a client needs
// to restore its UI: every field a reconnecting client could need, with
// nothing else held back in actor-private state.
type SessionSnapshot struct {
	SessionID      string
	FEN            string
	SideToMove     rules.Color
	Phase          GamePhase
	Mode           GameMode
	Status         rules.GameStatus
	History        []MoveRecord
	LastMove       lang.Optional[rules.Move]
	EngineConfig   EngineConfig
	LatestAnalysis lang.Optional[EngineAnalysis]
	EngineThinking bool
	Timer          TimerSnapshot
}
