// Package quarkgl is a small software 3D renderer for the piano scene.
//
// It covers what the scene needs and nothing more: a node graph with
// position/orientation/scale, flat-shaded triangle meshes, lit, unlit and
// normal-coloured materials, per-material opacity, a perspective or
// orthographic camera and an orbit controller.
//
// Pipeline (fixed):
//
//	Node graph → World transform → Projection → Clipping → Rasterization → Target.
//
// Opaque meshes are drawn first with depth writes. Transparent meshes follow,
// sorted back to front, depth tested but not written, and blended over the
// target when it can read pixels back (see PixelReader).
//
// All math is float32. Orientations are quaternions; matrices are column-major.
package quarkgl
