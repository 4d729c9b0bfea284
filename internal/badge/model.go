package badge

import (
	"time"

	"github.com/lib/pq"
)

// Owner is either a Participant or a Referee.
type Owner interface {
	owner()
}

// Participant earned the badge by completing steps of a relay.
type Participant struct {
	Name  string
	Email string
	Relay string
}

// Referee earned the badge by reviewing for a relay.
type Referee struct {
	ID       int
	Name     string
	Email    string
	Template string
}

func (Participant) owner() {}
func (Referee) owner()     {}

// Record is a badge row together with the data of its owner.
type Record struct {
	ID         int
	ColorCode  int64
	Level      int // attained level
	Levels     int // levels available in the relay
	CourseCode string
	CourseName string
	Owner      Owner

	RenderCount    int
	LastRenderedAt pq.NullTime
	VerifyCount    int
	LastVerifiedAt pq.NullTime
}

// Store is the badge persistence the engine needs.
type Store interface {
	GetBadge(id int) (Record, error)
	MarkRendered(id int, at time.Time) error
	MarkVerified(id int, at time.Time) error
}

// Face returns the drawing parameters of the badge.
func (r Record) Face() Face {
	_, referee := r.Owner.(Referee)
	return Face{
		Color:   DecodeColor(r.ColorCode),
		Level:   r.Level,
		Levels:  r.Levels,
		Referee: referee,
	}
}
