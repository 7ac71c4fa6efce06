package poly

// Shared test fixtures: a small shape vocabulary with const and
// mutating methods, registered into a fresh registry per test so
// registrations never leak between tests.

var (
	mDraw  = NewMethod("draw")
	mArea  = NewMethod("area")
	mName  = NewMethod("name")
	mScale = NewMethod("scale")
)

type circle struct {
	radius int
}

type square struct {
	side int
}

type label struct {
	text string
}

func newShapeExt() *Extensions {
	x := NewExtensions()

	ExtendConst0(x, mDraw, func(c *circle) int { return 7 })
	ExtendConst0(x, mArea, func(c *circle) int { return 3 * c.radius * c.radius })
	ExtendConst0(x, mName, func(c *circle) string { return "circle" })
	Extend1(x, mScale, func(c *circle, f int) int {
		c.radius *= f
		return c.radius
	})

	ExtendConst0(x, mDraw, func(s *square) int { return 4 })
	ExtendConst0(x, mArea, func(s *square) int { return s.side * s.side })
	ExtendConst0(x, mName, func(s *square) string { return "square" })
	Extend1(x, mScale, func(s *square, f int) int {
		s.side *= f
		return s.side
	})

	ExtendConst0(x, mName, func(l *label) string { return l.text })

	return x
}

func drawOnly() *Interface {
	return MustInterface(ConstSig(mDraw))
}

func shapeIface() *Interface {
	return MustInterface(ConstSig(mDraw), ConstSig(mArea), ConstSig(mName), Sig(mScale))
}

func constShapeIface() *Interface {
	return MustInterface(ConstSig(mDraw), ConstSig(mArea), ConstSig(mName))
}
