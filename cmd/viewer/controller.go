package main

import (
	"histo-viewer/core"
	"histo-viewer/scene"
)

// orbitController turns right-drag into camera orbit and the wheel into zoom.
type orbitController struct {
	lookSpeed  float32
	zoomSpeed  float32
	lastMouseX float64
	lastMouseY float64
	firstMouse bool
	zoom       float32
}

func newOrbitController(window *core.Window) *orbitController {
	oc := &orbitController{
		lookSpeed:  0.005,
		zoomSpeed:  0.25,
		firstMouse: true,
	}
	window.OnScroll(func(dy float64) {
		oc.zoom -= float32(dy) * oc.zoomSpeed
	})
	return oc
}

func (oc *orbitController) Update(window *core.Window, camera *scene.Camera) {
	if window.IsMouseButtonPressed(1) {
		x, y := window.GetCursorPos()
		if oc.firstMouse {
			oc.lastMouseX, oc.lastMouseY = x, y
			oc.firstMouse = false
		}
		camera.Orbit(
			-float32(x-oc.lastMouseX)*oc.lookSpeed,
			float32(y-oc.lastMouseY)*oc.lookSpeed,
		)
		oc.lastMouseX, oc.lastMouseY = x, y
	} else {
		oc.firstMouse = true
	}
	if oc.zoom != 0 {
		camera.Zoom(oc.zoom)
		oc.zoom = 0
	}
}

// keyToggle fires once per key press.
type keyToggle struct {
	key     int
	wasDown bool
}

func (k *keyToggle) Pressed(window *core.Window) bool {
	down := window.IsKeyPressed(k.key)
	fired := down && !k.wasDown
	k.wasDown = down
	return fired
}
