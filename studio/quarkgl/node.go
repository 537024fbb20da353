package quarkgl

// Node is an element of the scene graph. A node without geometry is a group.
//
// The local transform is Translate(Position) * Rotate(Rotation) * Scale(Scale).
type Node struct {
	Name     string
	Position Vec3
	Rotation Quat
	Scale    Vec3
	Visible  bool

	Geometry *Geometry
	Material *Material

	parent   *Node
	children []*Node
}

// NewGroup returns an empty, visible group node.
func NewGroup(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: QuatIdentity(),
		Scale:    V3(1, 1, 1),
		Visible:  true,
	}
}

// NewMeshNode returns a visible node drawing g with m.
func NewMeshNode(name string, g *Geometry, m *Material) *Node {
	n := NewGroup(name)
	n.Geometry = g
	n.Material = m
	return n
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Add attaches children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches child from n. It reports whether child was attached.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c != child {
			continue
		}
		copy(n.children[i:], n.children[i+1:])
		n.children[len(n.children)-1] = nil
		n.children = n.children[:len(n.children)-1]
		child.parent = nil
		return true
	}
	return false
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() bool {
	if n.parent == nil {
		return false
	}
	return n.parent.Remove(n)
}

// Local returns the node's transform relative to its parent.
func (n *Node) Local() Mat4 {
	scale := n.Scale
	if scale == (Vec3{}) {
		scale = V3(1, 1, 1)
	}
	rot := n.Rotation
	if rot == (Quat{}) {
		rot = QuatIdentity()
	}
	return Mat4Mul(Mat4Translate(n.Position), Mat4Mul(Mat4FromQuat(rot), Mat4Scale(scale)))
}

// World returns the node's transform relative to the root of its graph.
func (n *Node) World() Mat4 {
	m := n.Local()
	for p := n.parent; p != nil; p = p.parent {
		m = Mat4Mul(p.Local(), m)
	}
	return m
}

// RotateOnAxis rotates the node around an axis in its own local space.
func (n *Node) RotateOnAxis(axis Vec3, rad Scalar) {
	rot := n.Rotation
	if rot == (Quat{}) {
		rot = QuatIdentity()
	}
	n.Rotation = rot.Mul(QuatFromAxisAngle(axis, rad)).Normalize()
}

// RotateAroundPoint orbits the node's position around point (both in the
// parent's space) and then spins the node by the same angle on its local
// axis, so the node turns about point like a hinged part.
func (n *Node) RotateAroundPoint(point, axis Vec3, rad Scalar) {
	q := QuatFromAxisAngle(axis, rad)
	n.Position = q.Rotate(n.Position.Sub(point)).Add(point)
	n.RotateOnAxis(axis, rad)
}

// Walk visits every visible node depth first with its world transform.
// Hidden nodes and their subtrees are skipped.
func (n *Node) Walk(fn func(node *Node, world Mat4)) {
	if n == nil {
		return
	}
	parent := Mat4Identity()
	if n.parent != nil {
		parent = n.parent.World()
	}
	n.walk(parent, fn)
}

func (n *Node) walk(parent Mat4, fn func(*Node, Mat4)) {
	if !n.Visible {
		return
	}
	world := Mat4Mul(parent, n.Local())
	fn(n, world)
	for _, c := range n.children {
		c.walk(world, fn)
	}
}
