// Package floorplan holds the floor-plan snapshot consumed by the estimate engine:
// floors, rooms, walls and the door/window openings cut into them.
//
// Values are plain data. Editing helpers return modified copies and never touch the
// receiver, so a Layout handed to another goroutine stays stable.
package floorplan

// Orientation names the side of a room a wall sits on.
type Orientation string

const (
	North Orientation = "north"
	South Orientation = "south"
	East  Orientation = "east"
	West  Orientation = "west"
)

// Orientations is the fixed wall order used whenever walls are walked.
var Orientations = []Orientation{North, South, East, West}

// OpeningKind distinguishes doors from windows.
type OpeningKind string

const (
	Door   OpeningKind = "door"
	Window OpeningKind = "window"
)

// Opening is a rectangular cutout in a wall. Dimensions are in feet.
type Opening struct {
	ID        string      `json:"id" validate:"required"`
	Kind      OpeningKind `json:"type" validate:"oneof=door window"`
	Width     float64     `json:"width" validate:"gt=0"`
	Height    float64     `json:"height" validate:"gt=0"`
	PositionX float64     `json:"positionX" validate:"gte=0"`
	// PositionY is the sill height, windows only.
	PositionY *float64 `json:"positionY,omitempty" validate:"omitempty,gte=0"`
}

// Area returns the opening surface in square feet.
func (o Opening) Area() float64 {
	return o.Width * o.Height
}

// Wall is one side of a room. An empty PaintID means the wall is left unpainted.
type Wall struct {
	ID          string      `json:"id" validate:"required"`
	RoomID      string      `json:"roomId" validate:"required"`
	Orientation Orientation `json:"name" validate:"oneof=north south east west"`
	Length      float64     `json:"length" validate:"gt=0"`
	Height      float64     `json:"height" validate:"gt=0"`
	PaintID     string      `json:"paintId,omitempty"`
	Openings    []Opening   `json:"openings" validate:"dive"`
}

// Painted reports whether a paint product is assigned to the wall.
func (w Wall) Painted() bool {
	return w.PaintID != ""
}

// Point is a canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Room is a rectangular room with exactly one wall per orientation.
type Room struct {
	ID     string  `json:"id" validate:"required"`
	Name   string  `json:"name" validate:"required"`
	Length float64 `json:"length" validate:"gt=0"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
	Point
	Walls []Wall `json:"walls" validate:"len=4,dive"`
}

// Wall returns the room's wall facing o.
func (r Room) Wall(o Orientation) (Wall, bool) {
	for _, w := range r.Walls {
		if w.Orientation == o {
			return w, true
		}
	}
	return Wall{}, false
}

// Floor is one storey of the plan.
type Floor struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Rooms []Room `json:"rooms" validate:"dive"`
}

// Layout is the full multi-floor plan.
type Layout struct {
	Floors []Floor `json:"floors" validate:"dive"`
}

// Walls flattens every wall of the layout: floor order, then room order, then
// north, south, east, west. Walls with an unknown orientation come last in their
// room, in their stored order.
func (l Layout) Walls() []Wall {
	var walls []Wall
	for _, f := range l.Floors {
		for _, r := range f.Rooms {
			walls = append(walls, orderedWalls(r.Walls)...)
		}
	}
	return walls
}

func orderedWalls(walls []Wall) []Wall {
	out := make([]Wall, 0, len(walls))
	for _, o := range Orientations {
		for _, w := range walls {
			if w.Orientation == o {
				out = append(out, w)
			}
		}
	}
	for _, w := range walls {
		if !knownOrientation(w.Orientation) {
			out = append(out, w)
		}
	}
	return out
}

func knownOrientation(o Orientation) bool {
	for _, k := range Orientations {
		if k == o {
			return true
		}
	}
	return false
}
