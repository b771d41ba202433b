package types

// Snake is an ordered body of points, head first, moving on a grid of side cells.
type Snake struct {
	// Body[0] is the head and the last element is the tail
	Body []Point `json:"body"`
	// Heading is the direction of the next move
	Heading Direction `json:"heading"`
	// Digesting keeps the tail in place on the next move
	Digesting bool `json:"digesting"`

	side uint
}

// NewSnake lays out length points behind start, opposite to the heading,
// so the body starts as a straight line. A length of 0 is treated as 1.
func NewSnake(start Point, length uint, heading Direction, side uint) *Snake {
	if length == 0 {
		length = 1
	}
	behind := heading.Opposite()
	body := make([]Point, length)
	for i := uint(0); i < length; i++ {
		body[i] = start.Transform(behind, i, side)
	}

	return &Snake{
		Body:    body,
		Heading: heading,
		side:    side,
	}
}

// NewSnakeFromBody builds a snake from an explicit body, head first.
func NewSnakeFromBody(body []Point, heading Direction, side uint) *Snake {
	b := make([]Point, len(body))
	copy(b, body)
	return &Snake{
		Body:    b,
		Heading: heading,
		side:    side,
	}
}

func (s *Snake) Head() Point {
	return s.Body[0]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

// Contains reports whether any segment of the body is at p.
func (s *Snake) Contains(p Point) bool {
	for _, segment := range s.Body {
		if segment == p {
			return true
		}
	}
	return false
}

// Slither moves the snake one cell along its heading. The tail is dropped
// unless the snake is digesting, in which case the body grows by one.
func (s *Snake) Slither() {
	next := s.Head().Transform(s.Heading, 1, s.side)

	body := make([]Point, 0, len(s.Body)+1)
	body = append(body, next)
	body = append(body, s.Body...)

	if s.Digesting {
		s.Digesting = false
	} else {
		body = body[:len(body)-1]
	}
	s.Body = body
}

// Grow defers growth to the next call to Slither.
func (s *Snake) Grow() {
	s.Digesting = true
}

// SetDirection sets the heading. Callers are responsible for rejecting reversals.
func (s *Snake) SetDirection(d Direction) {
	s.Heading = d
}

func (s *Snake) Copy() *Snake {
	body := make([]Point, len(s.Body))
	copy(body, s.Body)
	return &Snake{
		Body:      body,
		Heading:   s.Heading,
		Digesting: s.Digesting,
		side:      s.side,
	}
}
