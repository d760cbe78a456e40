package draw_call

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func owned(c *Collector, owner any, n int) []*DrawCall {
	out := make([]*DrawCall, 0, n)
	for i := 0; i < n; i++ {
		d := c.Pool().Get()
		d.Owner = owner
		d.SubMeshIndex = i
		c.AddDrawCall(d)
		out = append(out, d)
	}
	return out
}

func TestCollectorRemovesByOwner(t *testing.T) {
	c := NewCollector()
	a := owned(c, "a", 2)
	b := owned(c, "b", 3)
	owned(c, "c", 1)

	assert.Equal(t, 6, c.Len())
	assert.Equal(t, a, c.DrawCallsOf("a"))

	assert.Equal(t, 2, c.RemoveDrawCalls("a"))
	assert.Zero(t, c.RemoveDrawCalls("a"))
	assert.Zero(t, c.RemoveDrawCalls("unknown"))

	require.Equal(t, 4, c.Len())
	assert.Equal(t, b, c.DrawCalls()[:3], "insertion order is kept")
	assert.Equal(t, "c", c.DrawCalls()[3].Owner)
	assert.Nil(t, c.DrawCallsOf("a"))

	assert.Equal(t, 6, c.Added())
	assert.Equal(t, 2, c.Removed())
	assert.Equal(t, 2, c.Pool().Len())
}

func TestCollectorIgnoresOwnerlessDrawCalls(t *testing.T) {
	c := NewCollector()
	c.AddDrawCall(nil)
	c.AddDrawCall(c.Pool().Get())
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Added())
}

func TestPoolRecyclesResetDrawCalls(t *testing.T) {
	p := &Pool{}
	d := p.Get()
	assert.Equal(t, mgl32.Ident4(), d.Matrix)
	assert.Equal(t, -1, d.DrawCount)

	d.Owner = "x"
	d.Instances = 4
	d.Matrix = mgl32.Translate3D(1, 2, 3)
	p.Put(d)
	p.Put(nil)
	assert.Equal(t, 1, p.Len())

	again := p.Get()
	assert.Same(t, d, again)
	assert.Nil(t, again.Owner)
	assert.Zero(t, again.Instances)
	assert.Equal(t, mgl32.Ident4(), again.Matrix)
	assert.Zero(t, p.Len())
}

func TestSharedPoolAndSkybox(t *testing.T) {
	p := &Pool{}
	a := NewCollector(WithPool(p))
	b := NewCollector(WithPool(p), WithLogger(nil))
	assert.Same(t, a.Pool(), b.Pool())
	assert.NotNil(t, a.SkyboxDrawCall())
	assert.NotSame(t, a.SkyboxDrawCall(), b.SkyboxDrawCall())
}

func TestDrawCountStatistic(t *testing.T) {
	c := NewCollector()
	c.CountDraw()
	c.CountDraw()
	assert.Equal(t, 2, c.DrawCallCount())
	c.ResetDrawCallCount()
	assert.Zero(t, c.DrawCallCount())
}

func TestWorldBoundsFollowMatrix(t *testing.T) {
	d := (&Pool{}).Get()
	center, radius := d.WorldBounds()
	assert.Equal(t, mgl32.Vec3{}, center)
	assert.Zero(t, radius)

	d.Mesh = model.NewCube("cube", 2)
	d.Matrix = mgl32.Translate3D(0, 5, 0).Mul4(mgl32.Scale3D(2, 1, 1))
	center, radius = d.WorldBounds()
	assert.InDelta(t, 5, center.Y(), 1e-5)
	_, local := d.Mesh.Bounds()
	assert.InDelta(t, local*2, radius, 1e-5)
	assert.Equal(t, d.Matrix, d.ModelMatrix())
}
