package orrery

// Direction defines which way a body travels along the standard frame's x-axis.
type Direction uint8

const (
	// Decreasing moves toward -a on the upper half of the ellipse.
	Decreasing Direction = iota + 1
	// Increasing moves toward +a on the lower half of the ellipse.
	Increasing
)

func (d Direction) String() string {
	switch d {
	case Decreasing:
		return "decreasing"
	case Increasing:
		return "increasing"
	}
	panic("cannot stringify unknown direction")
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Decreasing {
		return Increasing
	}
	return Decreasing
}

// sign is the sign of an x displacement in this direction.
func (d Direction) sign() float64 {
	if d == Decreasing {
		return -1
	}
	return 1
}

// half is the sign of y on the half of the ellipse traversed in this direction.
func (d Direction) half() float64 {
	if d == Decreasing {
		return 1
	}
	return -1
}

// apsis returns the x coordinate this direction is heading to.
func (d Direction) apsis(a float64) float64 {
	return d.sign() * a
}

// remaining returns the distance left along x before reaching the apsis.
func (d Direction) remaining(x, a float64) float64 {
	if d == Decreasing {
		return x + a
	}
	return a - x
}

// transition returns the direction to travel from x: it flips only when
// the body sits on (or past) the apsis it was heading to.
func transition(d Direction, x, a float64) Direction {
	if d.remaining(x, a) <= 0 {
		return d.Flip()
	}
	return d
}
