package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cbodonnell/snek/pkg/game/constants"
	"github.com/cbodonnell/snek/pkg/game/types"
	"github.com/cbodonnell/snek/pkg/log"
)

// DirectionPolicy decides which queued direction wins a tick.
type DirectionPolicy int

const (
	// DirectionPolicyRandom picks uniformly among the queued directions that do not
	// reverse the snake. Several inputs within one tick are therefore nondeterministic.
	DirectionPolicyRandom DirectionPolicy = iota
	// DirectionPolicyLatest picks the most recently queued direction that does not
	// reverse the snake.
	DirectionPolicyLatest
)

func (p DirectionPolicy) String() string {
	switch p {
	case DirectionPolicyRandom:
		return "random"
	case DirectionPolicyLatest:
		return "latest"
	default:
		return "unknown"
	}
}

// ParseDirectionPolicy parses a direction policy name.
// Valid policies are: random, latest.
func ParseDirectionPolicy(policy string) (DirectionPolicy, error) {
	switch policy {
	case "random":
		return DirectionPolicyRandom, nil
	case "latest":
		return DirectionPolicyLatest, nil
	default:
		return DirectionPolicyRandom, fmt.Errorf("unknown direction policy: %s", policy)
	}
}

// Game is a single game of snake on a square toroidal grid.
type Game struct {
	// Width and Height are always equal
	Width  uint
	Height uint
	// Food is nil until the first tick and is placed again as soon as it is eaten
	Food  *types.Point
	Snake *types.Snake
	// Score is the amount of food eaten during the current life
	Score uint
	// Ticks counts every tick since the game was created
	Ticks uint64
	// LifeTicks counts the ticks of the current life
	LifeTicks uint64

	startLength uint
	policy      DirectionPolicy
	rng         *rand.Rand
}

// NewGameOptions contains options for creating a new Game.
type NewGameOptions struct {
	Side            uint
	StartLength     uint
	DirectionPolicy DirectionPolicy
	// Rand is the source of every random choice. A time seeded source is used when nil.
	Rand *rand.Rand
}

// RunSummary describes a life that ended with the snake biting itself.
type RunSummary struct {
	Score  uint
	Length int
	Ticks  uint64
}

// TickResult describes what happened during one call to Run.
type TickResult struct {
	Tick      uint64
	Heading   types.Direction
	Ate       bool
	Restarted bool
	// Run is set when the tick ended a life
	Run *RunSummary
	// Snapshot is a copy of the game taken right after the tick, when available
	Snapshot *Game
}

func NewGame(opts NewGameOptions) *Game {
	side := opts.Side
	if side < constants.MinGridSide {
		side = constants.GridSide
	}
	startLength := opts.StartLength
	if startLength == 0 {
		startLength = constants.SnakeStartLength
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := &Game{
		Width:       side,
		Height:      side,
		startLength: startLength,
		policy:      opts.DirectionPolicy,
		rng:         rng,
	}
	g.Snake = g.buildSnake()
	return g
}

// Run advances the game by one tick using the directions queued since the last tick.
func (g *Game) Run(directions []types.Direction) TickResult {
	g.Ticks++
	g.LifeTicks++

	heading := g.resolveHeading(directions)
	g.Snake.SetDirection(heading)
	g.Snake.Slither()

	result := TickResult{
		Tick:    g.Ticks,
		Heading: heading,
	}

	if g.hasBittenItself() {
		log.Debug("Snake bit itself at %s after %d ticks with score %d", g.Snake.Head(), g.LifeTicks, g.Score)
		result.Restarted = true
		result.Run = &RunSummary{
			Score:  g.Score,
			Length: g.Snake.Len(),
			Ticks:  g.LifeTicks,
		}
		g.restart()
	} else if g.Food != nil && *g.Food == g.Snake.Head() {
		g.Snake.Grow()
		g.Score++
		g.Food = nil
		result.Ate = true
	}

	if g.Food == nil {
		g.placeFood()
	}

	log.Trace("Tick %d: heading=%s head=%s length=%d food=%v score=%d", g.Ticks, heading, g.Snake.Head(), g.Snake.Len(), g.Food, g.Score)
	return result
}

// resolveHeading picks the heading for this tick. The opposite of the current
// heading is never chosen.
func (g *Game) resolveHeading(directions []types.Direction) types.Direction {
	current := g.Snake.Heading
	if len(directions) == 0 {
		return current
	}

	candidates := types.RejectOpposite(directions, current.Opposite())
	if len(candidates) == 0 {
		return current
	}

	if g.policy == DirectionPolicyLatest {
		return candidates[len(candidates)-1]
	}

	heading, err := types.ChooseRandom(g.rng, candidates)
	if err != nil {
		log.Error("Failed to choose a direction from %v: %v", candidates, err)
		return current
	}
	return heading
}

// hasBittenItself reports whether the head shares a cell with any segment that
// is still occupied after the move.
func (g *Game) hasBittenItself() bool {
	head := g.Snake.Head()
	for _, segment := range g.Snake.Body[1:] {
		if segment == head {
			return true
		}
	}
	return false
}

// placeFood puts food on a random free cell. When the board is full no food is placed.
func (g *Game) placeFood() {
	for i := 0; i < constants.FoodPlacementAttempts; i++ {
		candidate := types.Point{
			X: uint(g.rng.Intn(int(g.Width))),
			Y: uint(g.rng.Intn(int(g.Height))),
		}
		if !g.Snake.Contains(candidate) {
			g.Food = &candidate
			return
		}
	}

	var free []types.Point
	for y := uint(0); y < g.Height; y++ {
		for x := uint(0); x < g.Width; x++ {
			p := types.Point{X: x, Y: y}
			if !g.Snake.Contains(p) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		log.Warn("No free cell left for food")
		g.Food = nil
		return
	}
	food := free[g.rng.Intn(len(free))]
	g.Food = &food
}

func (g *Game) restart() {
	g.Snake = g.buildSnake()
	g.Food = nil
	g.Score = 0
	g.LifeTicks = 0
}

func (g *Game) buildSnake() *types.Snake {
	start := types.Point{X: g.Width / 2, Y: g.Height / 2}
	return types.NewSnake(start, g.startLength, types.RandomDirection(g.rng), g.Width)
}

// Copy returns a read-only snapshot of the game. The snapshot cannot be run.
func (g *Game) Copy() *Game {
	c := &Game{
		Width:       g.Width,
		Height:      g.Height,
		Snake:       g.Snake.Copy(),
		Score:       g.Score,
		Ticks:       g.Ticks,
		LifeTicks:   g.LifeTicks,
		startLength: g.startLength,
		policy:      g.policy,
	}
	if g.Food != nil {
		food := *g.Food
		c.Food = &food
	}
	return c
}
