package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-ecs/engine/scene"
)

func TestSetParentLinksAndPaths(t *testing.T) {
	ctx := NewContext()
	root := ctx.CreateEntity(WithName("root"))
	arm := ctx.CreateEntity(WithName("arm"))
	hand := ctx.CreateEntity(WithName("hand"))

	require.NoError(t, arm.SetParent(root))
	require.NoError(t, hand.SetParent(arm))

	assert.Same(t, root, arm.Parent())
	assert.Equal(t, "root/arm/hand", hand.Path())
	assert.Same(t, hand, root.Find("arm/hand"))
	assert.Nil(t, root.Find("arm/foot"))
	assert.True(t, root.Contains(hand))
	assert.False(t, hand.Contains(root))
	assert.Equal(t, []*Entity{arm, hand}, root.Descendants())

	require.NoError(t, hand.SetParent(nil))
	assert.Nil(t, hand.Parent())
	assert.Zero(t, arm.ChildCount())
}

func TestSetParentRejectsCycles(t *testing.T) {
	ctx := NewContext()
	a := ctx.CreateEntity(WithName("a"))
	b := ctx.CreateEntity(WithName("b"))
	require.NoError(t, b.SetParent(a))

	assert.ErrorIs(t, a.SetParent(b), ErrCircularParent)
	assert.ErrorIs(t, a.SetParent(a), ErrCircularParent)
	assert.Nil(t, a.Parent(), "hierarchy unchanged on error")
	assert.Same(t, a, b.Parent())
}

func TestSetParentRejectsInvalidTargets(t *testing.T) {
	ctx := NewContext()
	s1 := scene.NewScene("one")
	s2 := scene.NewScene("two")
	a := ctx.CreateEntity(WithScene(s1))
	b := ctx.CreateEntity(WithScene(s2))

	assert.ErrorIs(t, a.SetParent(b), ErrCrossSceneParent)
	assert.ErrorIs(t, ctx.GlobalEntity().SetParent(a), ErrGlobalEntity)

	other := NewContext().CreateEntity(WithScene(s1))
	assert.ErrorIs(t, a.SetParent(other), ErrForeignEntity)

	c := ctx.CreateEntity(WithScene(s1))
	c.Destroy()
	assert.ErrorIs(t, a.SetParent(c), ErrEntityDestroyed)
}

func TestChildOrdering(t *testing.T) {
	ctx := NewContext()
	parent := ctx.CreateEntity()
	var kids []*Entity
	for range 3 {
		k := ctx.CreateEntity()
		require.NoError(t, k.SetParent(parent))
		kids = append(kids, k)
	}

	assert.Equal(t, kids, parent.Children())
	assert.Equal(t, 2, parent.ChildIndex(kids[2]))

	require.True(t, parent.SetChildIndex(kids[2], 0))
	assert.Equal(t, []*Entity{kids[2], kids[0], kids[1]}, parent.Children())
	assert.Same(t, kids[0], parent.ChildAt(1))
	assert.False(t, parent.SetChildIndex(kids[0], 5))
	assert.Equal(t, -1, kids[0].ChildIndex(kids[1]))
}

func TestDisabledParentDeactivatesSubtree(t *testing.T) {
	f := newFixture(t)
	parent := f.ctx.CreateEntity()
	child := f.ctx.CreateEntity()
	require.NoError(t, child.SetParent(parent))
	c := f.add(t, child, f.a)
	g := f.ctx.GetGroup(AllOf(f.a))

	parent.SetEnabled(false)
	assert.False(t, child.IsActiveInHierarchy())
	assert.True(t, child.Enabled())
	assert.False(t, c.IsActiveAndEnabled())
	assert.False(t, g.ContainsEntity(child))

	require.NoError(t, child.SetParent(nil))
	assert.True(t, child.IsActiveInHierarchy())
	assert.True(t, g.ContainsEntity(child))

	require.NoError(t, child.SetParent(parent))
	assert.False(t, g.ContainsEntity(child))
}

func TestDestroyRemovesDescendantsFirst(t *testing.T) {
	f := newFixture(t)
	parent := f.ctx.CreateEntity(WithName("parent"))
	child := f.ctx.CreateEntity(WithName("child"))
	require.NoError(t, child.SetParent(parent))
	f.add(t, parent, f.a)
	f.add(t, child, f.b)

	var order []string
	f.ctx.EntityDestroyed.Add(func(e *Entity) { order = append(order, e.Name()) })

	parent.Destroy()
	assert.Equal(t, []string{"child", "parent"}, order)
	assert.Equal(t, []string{"B", "A"}, f.log)
	assert.True(t, child.IsDestroyed())
	assert.Equal(t, 1, f.ctx.EntityCount(), "only the global entity remains")
}

func TestDestroyChildrenKeepsParent(t *testing.T) {
	ctx := NewContext()
	parent := ctx.CreateEntity()
	for range 3 {
		require.NoError(t, ctx.CreateEntity().SetParent(parent))
	}

	parent.DestroyChildren()
	assert.Zero(t, parent.ChildCount())
	assert.False(t, parent.IsDestroyed())
}

func TestMatcherIDsAreStructural(t *testing.T) {
	r := NewRegistry()
	factory := func() Component { return &probe{} }
	a := r.Register("A", factory)
	b := r.Register("B", factory)
	c := r.Register("C", factory)

	m1 := AllOf(a, b).NoneOf(c)
	m2 := AllOf(b, a, a).NoneOf(c)
	assert.Equal(t, m1.ID(), m2.ID())
	assert.Equal(t, []int{0, 1}, m2.AllOfIndices())
	assert.Equal(t, []int{0, 1, 2}, m1.Components())

	assert.NotEqual(t, m1.ID(), AllOf(a, b).ID())
	assert.NotEqual(t, m1.ID(), m1.WithComponentEnabledFilter(false).ID())
	assert.NotEqual(t, AllOf(a).ID(), AnyOf(a).ID())
	assert.Empty(t, AllOf(a).NoneOfIndices(), "fluent methods do not modify the receiver")
}
