package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/Carmen-Shannon/oxy-ecs/engine/light"
	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-ecs/engine/scene"
	"github.com/Carmen-Shannon/oxy-ecs/engine/window"
	"github.com/Carmen-Shannon/oxy-ecs/internal/config"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	cursorOrbitScale float32 = 0.005
	cursorPanScale   float32 = 0.02
	keyPanSpeed      float32 = 8
)

type demoScene struct {
	ctx      *ecs.Context
	services *renderer.Services

	scene   scene.Scene
	lambert material.Material
	orbit   *camera.OrbitController
	cubes   []*ecs.Entity
	spin    float32
}

// buildDemo populates ctx with a lit grid of cubes on a floor, a key light, a hemisphere fill
// and an orbiting camera.
func buildDemo(ctx *ecs.Context, services *renderer.Services, cfg *config.Config) (*demoScene, error) {
	d := &demoScene{
		ctx:      ctx,
		services: services,
		scene: scene.NewScene("demo",
			scene.WithActive(true),
			scene.WithAmbientColor(mgl32.Vec3{0.05, 0.05, 0.06}),
			scene.WithFog(mgl32.Vec3{0.6, 0.7, 0.8}, 30, 120),
		),
		lambert: material.NewLambertMaterial("cube", mgl32.Vec4{0.8, 0.35, 0.2, 1}),
	}
	types := services.GameObjects

	floor := material.NewLambertMaterial("floor", mgl32.Vec4{0.5, 0.5, 0.5, 1})
	glass := material.NewLambertMaterial("glass", mgl32.Vec4{0.2, 0.5, 0.9, 0.4})
	if _, err := d.spawnMesh("Floor", model.NewPlane("floor", 60, 60), mgl32.Vec3{}, false, floor); err != nil {
		return nil, err
	}

	cube := model.NewCube("cube", 1.5)
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			mat := d.lambert
			if (x+z)%2 != 0 {
				mat = glass
			}
			pos := mgl32.Vec3{float32(x) * 4, 0.75, float32(z) * 4}
			e, err := d.spawnMesh(fmt.Sprintf("Cube %d,%d", x, z), cube, pos, true, mat)
			if err != nil {
				return nil, err
			}
			d.cubes = append(d.cubes, e)
		}
	}

	sun := ctx.CreateEntity(ecs.WithName("Sun"), ecs.WithScene(d.scene))
	if _, err := sun.AddComponent(types.Transform, &game_object.TransformConfig{Position: mgl32.Vec3{20, 30, 10}}); err != nil {
		return nil, err
	}
	if _, err := sun.AddComponent(services.Lights.Light, []light.LightBuilderOption{
		light.WithKind(light.KindDirectional),
		light.WithColor(mgl32.Vec3{1, 0.95, 0.85}),
		light.WithIntensity(1.2),
		light.WithShadows(light.DefaultShadow()),
	}); err != nil {
		return nil, err
	}
	if tr, ok := sun.GetComponent(types.Transform, false).(*game_object.Transform); ok {
		tr.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	}
	if l, ok := sun.GetComponent(services.Lights.Light, false).(*light.Light); ok {
		l.SetCastShadows(true)
	}

	sky := ctx.CreateEntity(ecs.WithName("Sky Light"), ecs.WithScene(d.scene))
	if _, err := sky.AddComponent(services.Lights.Light, []light.LightBuilderOption{
		light.WithKind(light.KindHemisphere),
		light.WithColor(mgl32.Vec3{0.6, 0.7, 0.9}),
		light.WithGroundColor(mgl32.Vec3{0.3, 0.25, 0.2}),
		light.WithIntensity(0.4),
	}); err != nil {
		return nil, err
	}

	cc := cfg.Render.ClearColor
	cam := ctx.CreateEntity(ecs.WithName("Main Camera"), ecs.WithScene(d.scene))
	if _, err := cam.AddComponent(services.Cameras.Camera, []camera.CameraBuilderOption{
		camera.WithFov(50),
		camera.WithClipPlanes(0.1, 500),
		camera.WithClear(camera.ClearSkybox, mgl32.Vec4{float32(cc[0]), float32(cc[1]), float32(cc[2]), float32(cc[3])}),
		camera.WithSkybox(material.NewSkyboxMaterial(mgl32.Vec4{0.35, 0.55, 0.85, 1}, mgl32.Vec4{0.85, 0.85, 0.8, 1})),
	}); err != nil {
		return nil, err
	}
	c, err := cam.AddComponent(services.Cameras.OrbitController, []camera.OrbitControllerOption{
		camera.WithSpherical(30, 0.6, 0.5),
		camera.WithRadiusBounds(3, 200),
	})
	if err != nil {
		return nil, err
	}
	d.orbit = c.(*camera.OrbitController)
	return d, nil
}

// spawnMesh creates an entity drawing mesh with mats at pos.
func (d *demoScene) spawnMesh(name string, mesh model.Mesh, pos mgl32.Vec3, casts bool, mats ...material.Material) (*ecs.Entity, error) {
	types := d.services.GameObjects
	e := d.ctx.CreateEntity(ecs.WithName(name), ecs.WithScene(d.scene))
	if _, err := e.AddComponent(types.Transform, &game_object.TransformConfig{Position: pos}); err != nil {
		return nil, err
	}
	if _, err := e.AddComponent(types.MeshFilter, mesh); err != nil {
		return nil, err
	}
	if _, err := e.AddComponent(types.MeshRenderer, &game_object.MeshRendererConfig{
		Materials:      mats,
		CastShadows:    casts,
		ReceiveShadows: true,
	}); err != nil {
		return nil, err
	}
	return e, nil
}

// handleInput turns mouse and keyboard state into orbit camera moves and spins the cubes.
func (d *demoScene) handleInput(in *window.Input, delta float64) {
	dt := float32(delta)
	dx, dy := in.CursorDelta()
	switch {
	case in.ButtonDown(window.MouseLeft):
		d.orbit.Orbit(-dx*cursorOrbitScale, dy*cursorOrbitScale)
	case in.ButtonDown(window.MouseRight):
		d.orbit.Pan(-dx*cursorPanScale, dy*cursorPanScale)
	}
	if s := in.Scroll(); s != 0 {
		d.orbit.Zoom(s)
	}

	var right, forward float32
	if in.KeyDown(uint32(glfw.KeyD)) {
		right++
	}
	if in.KeyDown(uint32(glfw.KeyA)) {
		right--
	}
	if in.KeyDown(uint32(glfw.KeyW)) {
		forward++
	}
	if in.KeyDown(uint32(glfw.KeyS)) {
		forward--
	}
	if right != 0 || forward != 0 {
		d.orbit.Pan(right*keyPanSpeed*dt, forward*keyPanSpeed*dt)
	}
	if in.KeyPressed(uint32(glfw.KeySpace)) {
		d.orbit.SetTarget(mgl32.Vec3{})
	}

	d.spin += dt
	for i, e := range d.cubes {
		if !e.IsActiveInHierarchy() {
			continue
		}
		tr, ok := e.GetComponent(d.services.GameObjects.Transform, false).(*game_object.Transform)
		if ok {
			tr.SetEulerAngles(0, d.spin*float32(1+i%3)*20, 0)
		}
	}
}
