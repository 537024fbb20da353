package quarkgl

import (
	"math"
	"testing"
)

func TestNodeAddRemove(t *testing.T) {
	root := NewGroup("root")
	a := NewGroup("a")
	b := NewGroup("b")
	root.Add(a, b)
	if len(root.Children()) != 2 || a.Parent() != root {
		t.Fatalf("Add() children = %d, want 2", len(root.Children()))
	}

	other := NewGroup("other")
	other.Add(a)
	if a.Parent() != other || len(root.Children()) != 1 {
		t.Fatalf("re-parenting did not detach from the old parent")
	}

	if !b.RemoveFromParent() {
		t.Fatalf("RemoveFromParent() = false, want true")
	}
	if b.RemoveFromParent() {
		t.Fatalf("second RemoveFromParent() = true, want false")
	}
	if len(root.Children()) != 0 {
		t.Fatalf("root children = %d, want 0", len(root.Children()))
	}
}

func TestNodeWorldComposesParents(t *testing.T) {
	parent := NewGroup("p")
	parent.Position = V3(10, 0, 0)
	child := NewGroup("c")
	child.Position = V3(0, 5, 0)
	parent.Add(child)

	got := Mat4MulPoint(child.World(), Vec3{})
	if !nearVec(got, V3(10, 5, 0), 1e-6) {
		t.Fatalf("World() origin = %+v, want (10,5,0)", got)
	}
}

func TestRotateAroundPoint(t *testing.T) {
	n := NewGroup("key")
	n.Position = V3(0, 0, 0)
	pivot := V3(0, 20, 0)
	n.RotateAroundPoint(pivot, V3(1, 0, 0), math.Pi/2)

	// (0,-20,0) relative to the pivot rotated 90° about +X lands on (0,0,-20).
	if !nearVec(n.Position, V3(0, 20, -20), 1e-4) {
		t.Fatalf("Position = %+v, want (0,20,-20)", n.Position)
	}
	want := QuatFromAxisAngle(V3(1, 0, 0), math.Pi/2)
	if !near(n.Rotation.X, want.X, 1e-6) || !near(n.Rotation.W, want.W, 1e-6) {
		t.Fatalf("Rotation = %+v, want %+v", n.Rotation, want)
	}

	n.RotateAroundPoint(pivot, V3(1, 0, 0), -math.Pi/2)
	if !nearVec(n.Position, Vec3{}, 1e-4) {
		t.Fatalf("Position after undo = %+v, want origin", n.Position)
	}
}

func TestWalkSkipsHidden(t *testing.T) {
	root := NewGroup("root")
	shown := NewGroup("shown")
	hidden := NewGroup("hidden")
	hidden.Visible = false
	hidden.Add(NewGroup("under-hidden"))
	root.Add(shown, hidden)

	var names []string
	root.Walk(func(n *Node, _ Mat4) { names = append(names, n.Name) })
	if len(names) != 2 || names[0] != "root" || names[1] != "shown" {
		t.Fatalf("Walk() visited %v, want [root shown]", names)
	}
}

func TestSceneContains(t *testing.T) {
	s := NewScene()
	g := NewGroup("g")
	leaf := NewGroup("leaf")
	g.Add(leaf)
	if s.Contains(leaf) {
		t.Fatalf("Contains() = true before Add")
	}
	s.Add(g)
	if !s.Contains(leaf) {
		t.Fatalf("Contains() = false after Add")
	}
	if !s.Remove(g) || s.Contains(leaf) {
		t.Fatalf("Remove() did not detach the subtree")
	}
}

func TestCameraOrientationFacesCamera(t *testing.T) {
	cam := Camera{Position: V3(0, 0, 196), Target: Vec3{}, Up: V3(0, 1, 0)}
	q := cam.Orientation()
	// Looking down -Z from +Z: no rotation needed.
	if !near(q.W, 1, 1e-5) && !near(q.W, -1, 1e-5) {
		t.Fatalf("Orientation() = %+v, want identity", q)
	}

	cam.Position = V3(100, 0, 0)
	fwd := cam.Orientation().Rotate(V3(0, 0, -1))
	if !nearVec(fwd, V3(-1, 0, 0), 1e-4) {
		t.Fatalf("forward = %+v, want (-1,0,0)", fwd)
	}
}

func TestBoxAndCircleGeometry(t *testing.T) {
	box := NewBoxGeometry(9, 40, 4)
	if box.Triangles() != 12 {
		t.Fatalf("box triangles = %d, want 12", box.Triangles())
	}
	lo, hi := box.Bounds()
	if !nearVec(lo, V3(-4.5, -20, -2), 1e-6) || !nearVec(hi, V3(4.5, 20, 2), 1e-6) {
		t.Fatalf("box bounds = %+v..%+v", lo, hi)
	}

	c := NewCircleGeometry(5, 1)
	if c.Triangles() != 3 {
		t.Fatalf("circle triangles = %d, want 3 (clamped)", c.Triangles())
	}
}

func TestOrbitControllerApply(t *testing.T) {
	oc := OrbitController{Radius: 196, MaxPitch: 1}
	var cam Camera
	oc.Apply(&cam)
	if !nearVec(cam.Position, V3(0, 0, 196), 1e-3) {
		t.Fatalf("Position = %+v, want (0,0,196)", cam.Position)
	}
	oc.Rotate(0, 5)
	if oc.Pitch != 1 {
		t.Fatalf("Pitch = %v, want clamp to 1", oc.Pitch)
	}
}
