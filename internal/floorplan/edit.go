package floorplan

import (
	"fmt"

	"github.com/google/uuid"
)

// NewRoom builds a room with its four walls. North and south walls span the
// room length, east and west walls span its width.
func NewRoom(name string, length, width, height float64, at Point) Room {
	room := Room{
		ID:     "room-" + uuid.NewString(),
		Name:   name,
		Length: length,
		Width:  width,
		Height: height,
		Point:  at,
	}
	for _, o := range Orientations {
		span := length
		if o == East || o == West {
			span = width
		}
		room.Walls = append(room.Walls, Wall{
			ID:          fmt.Sprintf("wall-%s-%s", uuid.NewString(), o),
			RoomID:      room.ID,
			Orientation: o,
			Length:      span,
			Height:      height,
			Openings:    []Opening{},
		})
	}
	return room
}

// NewFloor returns an empty floor.
func NewFloor(name string) Floor {
	return Floor{ID: "floor-" + uuid.NewString(), Name: name, Rooms: []Room{}}
}

// AddFloor returns a copy of the layout with f appended.
func (l Layout) AddFloor(f Floor) Layout {
	out := l.clone()
	out.Floors = append(out.Floors, f)
	return out
}

// AddRoom returns a copy of the layout with room appended to the given floor.
func (l Layout) AddRoom(floorID string, room Room) (Layout, error) {
	out := l.clone()
	for i := range out.Floors {
		if out.Floors[i].ID == floorID {
			out.Floors[i].Rooms = append(out.Floors[i].Rooms, room)
			return out, nil
		}
	}
	return Layout{}, NewErrNotFound("floor", floorID)
}

// AssignPaint returns a copy of the layout with paintID set on the wall. An empty
// paintID clears the assignment.
func (l Layout) AssignPaint(wallID, paintID string) (Layout, error) {
	return l.updateWall(wallID, func(w *Wall) {
		w.PaintID = paintID
	})
}

// AddOpening returns a copy of the layout with o cut into the wall. A zero id is
// replaced by a generated one.
func (l Layout) AddOpening(wallID string, o Opening) (Layout, error) {
	if o.ID == "" {
		o.ID = fmt.Sprintf("%s-%s", o.Kind, uuid.NewString())
	}
	return l.updateWall(wallID, func(w *Wall) {
		w.Openings = append(w.Openings, o)
	})
}

func (l Layout) updateWall(wallID string, fn func(*Wall)) (Layout, error) {
	out := l.clone()
	for fi := range out.Floors {
		for ri := range out.Floors[fi].Rooms {
			walls := out.Floors[fi].Rooms[ri].Walls
			for wi := range walls {
				if walls[wi].ID == wallID {
					fn(&walls[wi])
					return out, nil
				}
			}
		}
	}
	return Layout{}, NewErrNotFound("wall", wallID)
}

// clone deep-copies every slice so edits on the copy never reach l.
func (l Layout) clone() Layout {
	out := Layout{Floors: make([]Floor, len(l.Floors))}
	for fi, f := range l.Floors {
		f.Rooms = append([]Room(nil), f.Rooms...)
		for ri, r := range f.Rooms {
			r.Walls = append([]Wall(nil), r.Walls...)
			for wi, w := range r.Walls {
				w.Openings = append([]Opening(nil), w.Openings...)
				r.Walls[wi] = w
			}
			f.Rooms[ri] = r
		}
		out.Floors[fi] = f
	}
	return out
}
