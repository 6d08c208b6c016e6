// Package query is the top-level façade of SPEC_FULL.md §4: it wires the
// lexer/parser, schema registry, semantic analyzer and lowerer (§4.A–§4.D)
// into a single Compile step, and pairs the resulting Program with a
// pkg/exec.Executor bound to concrete Graph/Vector backends for Run. It has
// no direct teacher analog — the teacher wires its own pipeline (parse →
// schema → executor) inline in pkg/cypher/executor.go and cmd/nornicdb, so
// this package plays the role a `helix_gateway` compile+execute entry point
// would, minus any RPC surface (out of scope per spec.md §1).
package query

import (
	"context"
	"fmt"

	"github.com/helixdb/helixql/pkg/exec"
	"github.com/helixdb/helixql/pkg/graphdb"
	"github.com/helixdb/helixql/pkg/ir"
	"github.com/helixdb/helixql/pkg/lang/parser"
	"github.com/helixdb/helixql/pkg/schema"
	"github.com/helixdb/helixql/pkg/sema"
	"github.com/helixdb/helixql/pkg/value"
	"github.com/helixdb/helixql/pkg/vectordb"
)

// Program is a compiled HelixQL source file: its schema registry and the
// lowered IR for every QUERY it declares.
type Program struct {
	Registry *schema.Registry
	IR       *ir.Program
}

// Compile runs the full A→D pipeline of spec.md §2: lex/parse, build the
// schema registry, type-check every query, and lower a clean pass to IR.
//
// Diagnostics are returned alongside a nil Program when semantic analysis
// finds any SeverityError diagnostic (spec.md §7: "compile-time errors are
// collected and returned as a batch before execution begins"). A non-nil
// error return is reserved for lex/parse failures and schema errors, which
// are structural rather than batched diagnostics.
func Compile(source string) (*Program, []sema.Diagnostic, error) {
	src, err := parser.Parse(source)
	if err != nil {
		return nil, nil, fmt.Errorf("query: parse: %w", err)
	}
	reg, err := schema.Build(src)
	if err != nil {
		return nil, nil, fmt.Errorf("query: schema: %w", err)
	}
	result, diags := sema.Analyze(src, reg)
	if sema.HasErrors(diags) {
		return nil, diags, nil
	}
	prog, err := ir.Lower(result)
	if err != nil {
		return nil, diags, fmt.Errorf("query: lowering: %w", err)
	}
	return &Program{Registry: reg, IR: prog}, diags, nil
}

// VectorConfig is the backend-side dimensionality and metric a declared
// V::Name is registered with (Design Notes Open Question (a): the grammar
// carries no dimension/metric, so callers supply it out of band, keyed by
// the VectorType's declared name).
type VectorConfig struct {
	Dim    int
	Metric vectordb.Metric
}

// RegisterVectorTypes registers every V:: declaration in reg against vecs
// using the caller-supplied per-type configuration. It is an error for a
// declared VectorType to have no matching config, or for a config to name
// a VectorType the source never declared — both are almost certainly a
// deployment misconfiguration worth failing loudly on rather than
// defaulting silently.
func RegisterVectorTypes(vecs vectordb.Vector, reg *schema.Registry, configs map[string]VectorConfig) error {
	for _, vt := range reg.Vectors() {
		cfg, ok := configs[vt.Name]
		if !ok {
			return fmt.Errorf("query: V::%s declared but has no VectorConfig", vt.Name)
		}
		if err := vecs.Register(vt.Name, cfg.Dim, cfg.Metric); err != nil {
			return fmt.Errorf("query: registering V::%s: %w", vt.Name, err)
		}
	}
	for name := range configs {
		if _, ok := reg.Vector(name); !ok {
			return fmt.Errorf("query: VectorConfig given for undeclared V::%s", name)
		}
	}
	return nil
}

// Runtime pairs a compiled Program with the backends it executes against.
// It is the caller-facing object cmd/helixql and any embedder build once
// per open database and reuse across queries — the schema registry and
// lowered IR are immutable after Compile (spec.md §5: "the schema registry
// is read-only after load").
//
// Run is safe to call concurrently: sem bounds how many queries actually
// run at once (spec.md §5, "multiple queries execute in parallel as
// independent tasks on a worker pool"), using the same buffered-channel
// semaphore the teacher's pkg/embed.AutoEmbedder.BatchEmbed bounds its
// embedding goroutines with — acquire a slot, defer its release, no
// separate goroutine pool to manage since callers already run Run on
// their own goroutine.
type Runtime struct {
	Program *Program
	exec    *exec.Executor
	sem     chan struct{}
}

// NewRuntime binds a compiled Program to concrete Graph and Vector
// backends (spec.md §6.2), producing the object Run executes queries
// against. workerPoolSize bounds how many Run calls execute concurrently;
// values <= 0 are treated as 1 (see pkg/config.QueryConfig.WorkerPoolSize).
func NewRuntime(prog *Program, g graphdb.Graph, v vectordb.Vector, workerPoolSize int) *Runtime {
	if workerPoolSize <= 0 {
		workerPoolSize = 1
	}
	return &Runtime{
		Program: prog,
		exec:    exec.New(prog.Registry, g, v),
		sem:     make(chan struct{}, workerPoolSize),
	}
}

// Run executes the named query with the given arguments (spec.md §4.E)
// and returns its RETURN-shaped result (spec.md §6.3: JSON-compatible —
// objects for records, arrays for streams, a bare value for a
// single-expression RETURN). It blocks until a worker pool slot is free
// or ctx is done, whichever comes first.
func (r *Runtime) Run(ctx context.Context, name string, args map[string]value.Value) (interface{}, error) {
	q, ok := r.Program.IR.Queries[name]
	if !ok {
		return nil, fmt.Errorf("query: no such query %q", name)
	}
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-r.sem }()
	return r.exec.Run(ctx, q, args)
}

// QueryNames lists every query the compiled Program declares, useful for
// a REPL's tab completion or a `check` subcommand's summary output.
func (p *Program) QueryNames() []string {
	names := make([]string, 0, len(p.IR.Queries))
	for name := range p.IR.Queries {
		names = append(names, name)
	}
	return names
}
