package monitor

import (
	"fmt"
	"strings"
)

// Class is the kind of traffic an actor belongs to. Different classes never
// share the lane.
type Class int

const (
	North Class = iota
	South
	Pedestrian

	NumClasses = 3
)

// Classes lists every class in index order.
var Classes = [NumClasses]Class{North, South, Pedestrian}

func (c Class) String() string {
	switch c {
	case North:
		return "North"
	case South:
		return "South"
	case Pedestrian:
		return "Pedestrian"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

func (c Class) Valid() bool {
	return c >= North && c <= Pedestrian
}

// ParseClass accepts a class name, case insensitive, or its first letter.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "south", "s":
		return South, nil
	case "pedestrian", "p":
		return Pedestrian, nil
	}
	return 0, fmt.Errorf("monitor: unknown class %q", s)
}

// rivals returns the two classes that conflict with c.
func (c Class) rivals() [2]Class {
	return [2]Class{(c + 1) % NumClasses, (c + 2) % NumClasses}
}

func (c Class) mustBeValid() {
	if !c.Valid() {
		panic(fmt.Sprintf("monitor: invalid class %d", int(c)))
	}
}
