package shader

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

// ProgramCache maps define masks to the programs compiled for one shader. A failed
// compilation is cached as nil so it is not retried. Get and Prewarm must be called from
// the render goroutine.
type ProgramCache struct {
	shader   Shader
	log      *zap.Logger
	programs map[Mask]*Program
	compiles int
}

// Variant is one define combination to prepare ahead of use.
type Variant struct {
	Defines []string
}

func newProgramCache(s Shader, log *zap.Logger) *ProgramCache {
	return &ProgramCache{
		shader:   s,
		log:      log,
		programs: make(map[Mask]*Program),
	}
}

// Lookup returns the cached entry for key. A cached failure returns (nil, true).
func (c *ProgramCache) Lookup(key Mask) (*Program, bool) {
	p, ok := c.programs[key]
	return p, ok
}

// Compiles returns how many compilations have been attempted.
func (c *ProgramCache) Compiles() int { return c.compiles }

// Len returns the number of cached entries, failures included.
func (c *ProgramCache) Len() int { return len(c.programs) }

// Get returns the program for key, processing and compiling it on a miss.
//
// Parameters:
//   - key: the combined define mask of the variant
//   - defines: the linked define entries the variant is processed with
//   - chunks: extra custom chunks resolved after the shader's own; may be nil
//   - compiler: the backend compiler
//
// Returns:
//   - *Program: the program, or nil if processing or compilation failed
func (c *ProgramCache) Get(key Mask, defines []string, chunks map[string]string, compiler Compiler) *Program {
	if p, ok := c.programs[key]; ok {
		return p
	}
	p, err := c.build(key, defines, chunks)
	if err != nil {
		c.log.Error("shader preprocessing failed", zap.String("shader", c.shader.Name()), zap.Error(err))
		c.programs[key] = nil
		return nil
	}
	return c.compile(p, compiler)
}

// Prewarm processes the given variants concurrently on a worker pool, then compiles them
// in order on the calling goroutine. Variants already cached are skipped.
//
// Parameters:
//   - variants: the define combinations to prepare
//   - chunks: extra custom chunks; may be nil
//   - compiler: the backend compiler
//   - workers: the worker pool size
//
// Returns:
//   - int: the number of programs compiled successfully
func (c *ProgramCache) Prewarm(variants []Variant, chunks map[string]string, compiler Compiler, workers int) int {
	if workers < 1 {
		workers = 1
	}
	keys := make([]Mask, len(variants))
	for i, v := range variants {
		keys[i] = MaskOf(v.Defines)
	}

	built := make([]*Program, len(variants))
	pool := worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
	var wg sync.WaitGroup
	for i, v := range variants {
		if _, ok := c.programs[keys[i]]; ok {
			continue
		}
		wg.Add(1)
		idx, defines := i, v.Defines
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				p, err := c.build(keys[idx], defines, chunks)
				if err != nil {
					c.log.Error("shader preprocessing failed", zap.String("shader", c.shader.Name()), zap.Error(err))
					return nil, err
				}
				built[idx] = p
				return p, nil
			},
		})
	}
	wg.Wait()
	pool.Stop()

	compiled := 0
	for i, p := range built {
		if _, ok := c.programs[keys[i]]; ok {
			continue
		}
		if p == nil {
			c.programs[keys[i]] = nil
			continue
		}
		if c.compile(p, compiler) != nil {
			compiled++
		}
	}
	return compiled
}

// Release frees every compiled program and empties the cache.
func (c *ProgramCache) Release() {
	for key, p := range c.programs {
		if p != nil {
			p.dispose()
		}
		delete(c.programs, key)
	}
}

// build processes and reflects one variant. It only reads immutable shader state.
func (c *ProgramCache) build(key Mask, defines []string, chunks map[string]string) (*Program, error) {
	merged := c.shader.Chunks()
	if len(chunks) > 0 {
		merged = make(map[string]string, len(chunks)+len(c.shader.Chunks()))
		for k, v := range chunks {
			merged[k] = v
		}
		for k, v := range c.shader.Chunks() {
			merged[k] = v
		}
	}

	pp := NewPreProcessor(merged)
	vertex, err := pp.Process(c.shader.Source(StageVertex), defines)
	if err != nil {
		return nil, err
	}
	for _, name := range pp.Unresolved() {
		c.log.Error("cannot resolve #include", zap.String("shader", c.shader.Name()), zap.String("chunk", name))
	}
	fragment, err := pp.Process(c.shader.Source(StageFragment), defines)
	if err != nil {
		return nil, err
	}
	for _, name := range pp.Unresolved() {
		c.log.Error("cannot resolve #include", zap.String("shader", c.shader.Name()), zap.String("chunk", name))
	}

	refl, err := Reflect(vertex, fragment)
	if err != nil {
		return nil, err
	}
	return &Program{
		id:         programIDs.Add(1),
		key:        key,
		shader:     c.shader.Name(),
		vertex:     vertex,
		fragment:   fragment,
		reflection: refl,
	}, nil
}

func (c *ProgramCache) compile(p *Program, compiler Compiler) *Program {
	c.compiles++
	if err := compiler.CompileProgram(p); err != nil {
		c.log.Error("shader compile failed",
			zap.String("shader", c.shader.Name()),
			zap.Stringer("defines", p.key),
			zap.Error(err))
		c.programs[p.key] = nil
		return nil
	}
	c.programs[p.key] = p
	return p
}
