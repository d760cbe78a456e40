package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	BaseComponent
	config   any
	inits    int
	uninits  int
	teardown *[]string
}

func (p *probe) Initialize(config any) {
	p.config = config
	p.inits++
}

func (p *probe) Uninitialize() {
	p.uninits++
	if p.teardown != nil {
		*p.teardown = append(*p.teardown, p.Type().Name())
	}
}

type fixture struct {
	ctx  *Context
	a    *ComponentType
	b    *ComponentType
	c    *ComponentType
	log  []string
	made []*probe
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	r := NewRegistry()
	factory := func() Component {
		p := &probe{teardown: &f.log}
		f.made = append(f.made, p)
		return p
	}
	f.a = r.Register("A", factory)
	f.b = r.Register("B", factory)
	f.c = r.Register("C", factory)
	f.ctx = NewContext(WithRegistry(r))
	return f
}

func (f *fixture) add(t *testing.T, e *Entity, ct *ComponentType) Component {
	t.Helper()
	c, err := e.AddComponent(ct, nil)
	require.NoError(t, err)
	return c
}

func TestRegistryAssignsDenseIndices(t *testing.T) {
	r := NewRegistry()
	factory := func() Component { return &probe{} }

	a := r.Register("A", factory)
	b := r.Register("B", factory, WithSingleton(), WithAllowMultiple())
	again := r.Register("A", factory, WithBehaviour())

	assert.Equal(t, 0, a.Index())
	assert.Equal(t, 1, b.Index())
	assert.Same(t, a, again)
	assert.False(t, a.IsBehaviour(), "options are applied on first registration only")
	assert.True(t, b.IsSingleton())
	assert.False(t, b.AllowMultiple(), "singletons never allow multiple")
	assert.Equal(t, 2, r.Count())
	assert.Same(t, b, r.Lookup("B"))
	assert.Nil(t, r.Type(5))
}

func TestRegistryAbstractNeedsNoFactory(t *testing.T) {
	r := NewRegistry()
	assert.NotPanics(t, func() { r.Register("Base", nil, WithAbstract()) })
	assert.Panics(t, func() { r.Register("Concrete", nil) })
}

func TestRegistryMarkers(t *testing.T) {
	f := newFixture(t)
	r := f.ctx.Registry()

	r.MarkAllowMultiple(f.a)
	r.MarkSingleton(f.a)
	r.MarkAllowMultiple(f.a)
	assert.True(t, f.a.IsSingleton())
	assert.False(t, f.a.AllowMultiple(), "singletons never allow multiple")

	r.MarkAbstract(f.b)
	r.MarkBehaviour(f.c)
	r.MarkExecuteInEditMode(f.c)
	r.MarkRequires(f.c, f.b)
	r.MarkRequires(f.c, f.b)
	assert.True(t, f.b.IsAbstract())
	assert.True(t, f.c.IsBehaviour())
	assert.True(t, f.c.ExecuteInEditMode())
	assert.Equal(t, []*ComponentType{f.b}, f.c.Requires())
}

func TestAddComponentErrors(t *testing.T) {
	f := newFixture(t)
	e := f.ctx.CreateEntity(WithName("e"))

	f.add(t, e, f.a)
	_, err := e.AddComponent(f.a, nil)
	assert.ErrorIs(t, err, ErrDuplicateComponent)

	abstract := f.ctx.Registry().Register("Abstract", nil, WithAbstract())
	_, err = e.AddComponent(abstract, nil)
	assert.ErrorIs(t, err, ErrAbstractComponent)

	e.Destroy()
	_, err = e.AddComponent(f.b, nil)
	assert.ErrorIs(t, err, ErrEntityDestroyed)
}

func TestAddComponentAddsRequirementsFirst(t *testing.T) {
	f := newFixture(t)
	needsA := f.ctx.Registry().Register("NeedsA", func() Component { return &probe{} }, WithRequires(f.a))
	e := f.ctx.CreateEntity()

	_, err := e.AddComponent(needsA, "cfg")
	require.NoError(t, err)

	comps := e.Components()
	require.Len(t, comps, 2)
	assert.Same(t, f.a, comps[0].Type())
	assert.Same(t, needsA, comps[1].Type())
	assert.Equal(t, "cfg", comps[1].(*probe).config)
}

func TestSingletonRedirectsToGlobalEntity(t *testing.T) {
	f := newFixture(t)
	settings := f.ctx.Registry().Register("Settings", func() Component { return &probe{} }, WithSingleton())
	e := f.ctx.CreateEntity()

	first, err := e.AddComponent(settings, nil)
	require.NoError(t, err)
	second, err := f.ctx.CreateEntity().AddComponent(settings, nil)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, f.ctx.GlobalEntity(), first.Entity())
	assert.Same(t, first, f.ctx.GetSingleton(settings))
	assert.Empty(t, e.Components())
}

func TestInitializeDeferredUntilActive(t *testing.T) {
	f := newFixture(t)
	e := f.ctx.CreateEntity(WithEnabled(false))

	c := f.add(t, e, f.a).(*probe)
	assert.Zero(t, c.inits)
	assert.False(t, c.IsActiveAndEnabled())

	e.SetEnabled(true)
	assert.Equal(t, 1, c.inits)
	assert.True(t, c.IsActiveAndEnabled())

	e.SetEnabled(false)
	e.SetEnabled(true)
	assert.Equal(t, 1, c.inits, "initialize runs once")
}

func TestGroupMembershipTracksLiveComponents(t *testing.T) {
	f := newFixture(t)
	e := f.ctx.CreateEntity()
	matcher := AllOf(f.a, f.b).NoneOf(f.c)
	g := f.ctx.GetGroup(matcher)

	check := func(step string) {
		t.Helper()
		assert.Equal(t, matcher.Matches(e), g.ContainsEntity(e), step)
	}

	a := f.add(t, e, f.a)
	check("add A")
	assert.False(t, g.ContainsEntity(e))

	b := f.add(t, e, f.b)
	check("add B")
	assert.True(t, g.ContainsEntity(e))

	b.SetEnabled(false)
	check("disable B")
	assert.False(t, g.ContainsEntity(e))

	b.SetEnabled(true)
	check("enable B")
	assert.True(t, g.ContainsEntity(e))

	c := f.add(t, e, f.c)
	check("add C")
	assert.False(t, g.ContainsEntity(e))

	c.SetEnabled(false)
	check("disable C")
	assert.True(t, g.ContainsEntity(e))

	e.SetEnabled(false)
	check("disable entity")
	assert.False(t, g.ContainsEntity(e))

	e.SetEnabled(true)
	check("enable entity")
	assert.True(t, g.ContainsEntity(e))

	e.RemoveComponentInstance(a)
	check("remove A")
	assert.False(t, g.ContainsEntity(e))
	assert.Empty(t, g.Entities())
	assert.Zero(t, g.EntityCount())
}

func TestGroupExistenceFilterIgnoresEnabledState(t *testing.T) {
	f := newFixture(t)
	e := f.ctx.CreateEntity()
	g := f.ctx.GetGroup(AllOf(f.a).WithComponentEnabledFilter(false))

	a := f.add(t, e, f.a)
	assert.True(t, g.ContainsEntity(e))

	a.SetEnabled(false)
	assert.True(t, g.ContainsEntity(e))

	e.RemoveComponent(f.a, false)
	assert.False(t, g.ContainsEntity(e))
}

func TestGroupSeedsExistingEntities(t *testing.T) {
	f := newFixture(t)
	e1 := f.ctx.CreateEntity()
	e2 := f.ctx.CreateEntity()
	f.add(t, e1, f.a)
	f.add(t, e2, f.b)

	g := f.ctx.GetGroup(AnyOf(f.a, f.b))
	assert.ElementsMatch(t, []*Entity{e1, e2}, g.Entities())
	assert.Same(t, g, f.ctx.GetGroup(AnyOf(f.b, f.a)), "equal matchers share a group")
}

func TestGroupEntitiesSnapshotSurvivesMutation(t *testing.T) {
	f := newFixture(t)
	g := f.ctx.GetGroup(AllOf(f.a))
	var entities []*Entity
	for range 3 {
		e := f.ctx.CreateEntity()
		f.add(t, e, f.a)
		entities = append(entities, e)
	}

	snapshot := g.Entities()
	for _, e := range snapshot {
		e.Destroy()
	}
	assert.Equal(t, entities, snapshot)
	assert.Empty(t, g.Entities())
}

func TestGroupSingleEntity(t *testing.T) {
	f := newFixture(t)
	g := f.ctx.GetGroup(AllOf(f.a))
	assert.Nil(t, g.SingleEntity())

	e := f.ctx.CreateEntity()
	f.add(t, e, f.a)
	assert.Same(t, e, g.SingleEntity())

	f.add(t, f.ctx.CreateEntity(), f.a)
	assert.Panics(t, func() { g.SingleEntity() })
}

func TestCollectorNetsOutAddThenRemove(t *testing.T) {
	f := newFixture(t)
	g := f.ctx.GetGroup(AllOf(f.a).ExtraOf(f.b))
	col := g.NewCollector()

	kept := f.ctx.CreateEntity(WithName("kept"))
	f.add(t, kept, f.a)

	transient := f.ctx.CreateEntity(WithName("transient"))
	f.add(t, transient, f.a)
	transient.RemoveComponent(f.a, false)

	b := f.add(t, kept, f.b)

	assert.False(t, col.Empty())
	assert.Equal(t, []*Entity{kept}, compact(col.AddedEntities()))
	assert.Empty(t, col.RemovedEntities())
	assert.Equal(t, []Component{b}, compactComponents(col.AddedComponents()))

	col.Clear()
	assert.True(t, col.Empty())

	kept.RemoveComponentInstance(b)
	f.add(t, kept, f.b)
	assert.Len(t, col.RemovedComponents(), 1, "remove then add records both")
	assert.Len(t, compactComponents(col.AddedComponents()), 1)

	col.Clear()
	kept.Destroy()
	assert.Equal(t, []*Entity{kept}, col.RemovedEntities())
	assert.Empty(t, compactComponents(col.AddedComponents()))
}

func TestCollectorDropsComponentDeltasOfRemovedEntity(t *testing.T) {
	f := newFixture(t)
	g := f.ctx.GetGroup(AllOf(f.a).ExtraOf(f.b))
	e := f.ctx.CreateEntity()
	f.add(t, e, f.a)

	col := g.NewCollector()
	f.add(t, e, f.b)
	e.RemoveComponent(f.a, false)

	assert.Empty(t, compactComponents(col.AddedComponents()))
	assert.Equal(t, []*Entity{e}, col.RemovedEntities())

	g.RemoveCollector(col)
	assert.Empty(t, g.Collectors())
}

func TestDestroyIsIdempotent(t *testing.T) {
	f := newFixture(t)
	e := f.ctx.CreateEntity()
	f.add(t, e, f.a)
	f.add(t, e, f.b)

	destroyed := 0
	f.ctx.ComponentDestroyed.Add(func(Component) { destroyed++ })

	e.Destroy()
	assert.Equal(t, []string{"B", "A"}, f.log, "components are torn down in reverse order")
	assert.Equal(t, 2, destroyed)

	e.Destroy()
	assert.Equal(t, []string{"B", "A"}, f.log)
	assert.Equal(t, 2, destroyed)
	for _, p := range f.made {
		assert.Equal(t, 1, p.uninits)
	}
	assert.False(t, f.ctx.ContainsEntity(e))
}

func TestContextEntitiesCompactAfterDestroy(t *testing.T) {
	f := newFixture(t)
	a := f.ctx.CreateEntity(WithName("a"))
	b := f.ctx.CreateEntity(WithName("b"))
	c := f.ctx.CreateEntity(WithName("c"))

	b.Destroy()
	assert.Equal(t, []*Entity{f.ctx.GlobalEntity(), a, c}, f.ctx.Entities())
	assert.Equal(t, 3, f.ctx.EntityCount())
	assert.Same(t, c, f.ctx.FindEntity("c"))
	assert.Nil(t, f.ctx.FindEntity("b"))
}

func TestContextTopics(t *testing.T) {
	f := newFixture(t)
	e := f.ctx.CreateEntity()
	a := f.add(t, e, f.a)

	var got []Component
	remove := f.ctx.Subscribe("changed", func(c Component) { got = append(got, c) })
	f.ctx.Publish("changed", a)
	f.ctx.Publish("other", a)
	remove()
	f.ctx.Publish("changed", a)

	assert.Equal(t, []Component{a}, got)
}

func TestEntityUUIDIsUnique(t *testing.T) {
	f := newFixture(t)
	a := f.ctx.CreateEntity()
	b := f.ctx.CreateEntity()
	assert.NotEqual(t, a.UUID(), b.UUID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func compact(entities []*Entity) []*Entity {
	var out []*Entity
	for _, e := range entities {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func compactComponents(comps []Component) []Component {
	var out []Component
	for _, c := range comps {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
