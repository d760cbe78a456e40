package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
)

// MeshRendererSystem keeps the draw calls of every entity with a Transform, MeshFilter and
// MeshRenderer in step with its mesh and materials. Any change rebuilds all of the entity's
// draw calls.
type MeshRendererSystem struct {
	system.BaseSystem

	services *Services
	used     []bool
}

var _ system.MatcherProvider = &MeshRendererSystem{}
var _ system.ListenerProvider = &MeshRendererSystem{}

// NewMeshRendererSystem creates an unregistered mesh renderer system.
func NewMeshRendererSystem(services *Services) *MeshRendererSystem {
	if services == nil {
		panic("renderer: services are required")
	}
	return &MeshRendererSystem{services: services}
}

func (s *MeshRendererSystem) Matchers() []*ecs.Matcher {
	t := s.services.GameObjects
	return []*ecs.Matcher{ecs.AllOf(t.Transform, t.MeshFilter, t.MeshRenderer)}
}

func (s *MeshRendererSystem) Listeners() []system.Listener {
	return []system.Listener{
		{Topic: game_object.TopicMeshChanged, Fn: s.changed},
		{Topic: game_object.TopicMaterialsChanged, Fn: s.changed},
	}
}

func (s *MeshRendererSystem) OnEntityAdded(e *ecs.Entity, _ *ecs.Group) {
	s.Rebuild(e)
}

func (s *MeshRendererSystem) OnEntityRemoved(e *ecs.Entity, _ *ecs.Group) {
	s.services.DrawCalls.RemoveDrawCalls(e)
}

func (s *MeshRendererSystem) OnDestroy() {
	for _, e := range s.Group(0).Entities() {
		s.services.DrawCalls.RemoveDrawCalls(e)
	}
}

func (s *MeshRendererSystem) changed(c ecs.Component) {
	e := c.Entity()
	if e == nil || !s.Group(0).ContainsEntity(e) {
		return
	}
	s.Rebuild(e)
}

// Rebuild replaces the draw calls of e. Each sub-mesh is drawn with the material in its slot;
// sub-meshes whose slot has no material are skipped. A material no sub-mesh refers to draws
// every sub-mesh.
//
// Parameters:
//   - e: the entity
//
// Returns:
//   - int: the number of draw calls added
func (s *MeshRendererSystem) Rebuild(e *ecs.Entity) int {
	drawCalls := s.services.DrawCalls
	drawCalls.RemoveDrawCalls(e)

	t := s.services.GameObjects
	filter, _ := e.GetComponent(t.MeshFilter, true).(*game_object.MeshFilter)
	mr, _ := e.GetComponent(t.MeshRenderer, true).(*game_object.MeshRenderer)
	tr, _ := e.GetComponent(t.Transform, false).(*game_object.Transform)
	if filter == nil || mr == nil || filter.Mesh() == nil || len(mr.Materials()) == 0 {
		return 0
	}
	mesh := filter.Mesh()
	materials := mr.Materials()

	s.used = append(s.used[:0], make([]bool, len(materials))...)
	added := 0
	emit := func(sub, slot int) {
		d := drawCalls.Pool().Get()
		d.Owner = e
		d.Entity = e
		d.Renderer = mr
		d.Transform = tr
		d.Mesh = mesh
		d.SubMeshIndex = sub
		d.Material = materials[slot]
		d.Instances = mr.Instances()
		drawCalls.AddDrawCall(d)
		added++
	}

	subMeshes := mesh.SubMeshes()
	for i, sm := range subMeshes {
		slot := sm.MaterialIndex()
		if slot >= len(materials) || materials[slot] == nil {
			continue
		}
		s.used[slot] = true
		emit(i, slot)
	}
	for slot, used := range s.used {
		if used || materials[slot] == nil {
			continue
		}
		for i := range subMeshes {
			emit(i, slot)
		}
	}
	return added
}
