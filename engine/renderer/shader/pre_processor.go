// pre_processor.go turns a shader source plus a define list into plain WGSL. Directives are
// handled in a fixed order:
//   - #include <name> is replaced by the named chunk, recursively. Built-in chunks resolve
//     first, then the custom chunk table. Unresolved includes become empty text.
//   - #ifdef NAME / #ifndef NAME / #else / #endif keep or drop lines by define presence.
//   - valued defines ("NAME VALUE") replace every NAME token with VALUE.
//   - #pragma unroll_loop before a `for (var i = A; i < B; i++) { ... }` loop repeats the body
//     for each i with the index substituted.
package shader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const maxIncludeDepth = 16

var (
	includeRegex = regexp.MustCompile(`(?m)^[ \t]*#include +<([\w\d./]+)>[ \t]*$`)

	// unrollHeadRegex matches the loop header that must follow #pragma unroll_loop.
	unrollHeadRegex = regexp.MustCompile(`^\s*for\s*\(\s*var\s+i\s*=\s*(\d+)\s*;\s*i\s*<\s*(\d+)\s*;\s*i\s*\+\+\s*\)\s*\{`)

	loopIndexRegex = regexp.MustCompile(`\bi\b`)
)

const unrollPragma = "#pragma unroll_loop"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	chunks     map[string]string
	unresolved []string
}

// PreProcessor expands include, conditional, define and loop-unroll directives in WGSL source.
type PreProcessor interface {
	// Process expands source for the given define list.
	// The list of unresolved includes is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw shader source
	//   - defines: the linked define entries, each "NAME" or "NAME VALUE"
	//
	// Returns:
	//   - string: plain WGSL
	//   - error: an error for unbalanced conditionals or malformed unroll loops
	Process(source string, defines []string) (string, error)

	// Unresolved returns the include names that matched no chunk during the last Process call.
	//
	// Returns:
	//   - []string: unresolved chunk names in source order
	Unresolved() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that resolves custom includes from chunks after
// the built-in chunk table.
//
// Parameters:
//   - chunks: custom chunk sources keyed by include name; may be nil
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(chunks map[string]string) PreProcessor {
	return &preProcessor{chunks: chunks}
}

func (p *preProcessor) Unresolved() []string {
	return p.unresolved
}

func (p *preProcessor) Process(source string, defines []string) (string, error) {
	p.unresolved = p.unresolved[:0]

	out := p.resolveIncludes(source, 0)
	out, err := applyConditionals(out, defines)
	if err != nil {
		return "", err
	}
	out = substituteDefines(out, defines)
	return unrollLoops(out)
}

func (p *preProcessor) resolveIncludes(source string, depth int) string {
	return includeRegex.ReplaceAllStringFunc(source, func(line string) string {
		name := includeRegex.FindStringSubmatch(line)[1]
		chunk, ok := builtinChunks[name]
		if !ok {
			chunk, ok = p.chunks[name]
		}
		if !ok || depth >= maxIncludeDepth {
			p.unresolved = append(p.unresolved, name)
			return ""
		}
		return p.resolveIncludes(chunk, depth+1)
	})
}

// applyConditionals evaluates #ifdef/#ifndef/#else/#endif blocks line by line.
func applyConditionals(source string, defines []string) (string, error) {
	present := make(map[string]struct{}, len(defines))
	for _, d := range defines {
		present[defineName(d)] = struct{}{}
	}

	type frame struct {
		parentActive bool
		taken        bool
		sawElse      bool
	}
	var stack []frame
	active := true

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		directive, arg, _ := strings.Cut(trimmed, " ")
		arg = strings.TrimSpace(arg)

		switch directive {
		case "#ifdef", "#ifndef":
			if arg == "" {
				return "", fmt.Errorf("line %d: %s needs a name", i+1, directive)
			}
			_, ok := present[arg]
			cond := ok == (directive == "#ifdef")
			stack = append(stack, frame{parentActive: active, taken: cond})
			active = active && cond
		case "#else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #else without #ifdef", i+1)
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return "", fmt.Errorf("line %d: duplicate #else", i+1)
			}
			top.sawElse = true
			active = top.parentActive && !top.taken
		case "#endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #endif without #ifdef", i+1)
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		default:
			if active {
				out = append(out, line)
			}
		}
	}
	if len(stack) != 0 {
		return "", fmt.Errorf("%d unterminated #ifdef block(s)", len(stack))
	}
	return strings.Join(out, "\n"), nil
}

// substituteDefines replaces each valued define name with its value.
func substituteDefines(source string, defines []string) string {
	for _, d := range defines {
		name, value, ok := strings.Cut(d, " ")
		if !ok {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		source = re.ReplaceAllLiteralString(source, value)
	}
	return source
}

// unrollLoops expands every loop marked with #pragma unroll_loop. The loop body ends at the
// brace matching the header's opening brace.
func unrollLoops(source string) (string, error) {
	var sb strings.Builder
	for {
		at := strings.Index(source, unrollPragma)
		if at < 0 {
			sb.WriteString(source)
			return sb.String(), nil
		}
		sb.WriteString(source[:at])
		rest := source[at+len(unrollPragma):]

		head := unrollHeadRegex.FindStringSubmatchIndex(rest)
		if head == nil {
			return "", fmt.Errorf("%s must precede `for (var i = A; i < B; i++) {`", unrollPragma)
		}
		start, _ := strconv.Atoi(rest[head[2]:head[3]])
		end, _ := strconv.Atoi(rest[head[4]:head[5]])

		bodyStart := head[1]
		depth := 1
		bodyEnd := -1
		for j := bodyStart; j < len(rest); j++ {
			switch rest[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				bodyEnd = j
				break
			}
		}
		if bodyEnd < 0 {
			return "", fmt.Errorf("unterminated unrolled loop")
		}

		body := rest[bodyStart:bodyEnd]
		for i := start; i < end; i++ {
			sb.WriteString("{")
			sb.WriteString(loopIndexRegex.ReplaceAllLiteralString(body, strconv.Itoa(i)))
			sb.WriteString("}")
		}
		source = rest[bodyEnd+1:]
	}
}
