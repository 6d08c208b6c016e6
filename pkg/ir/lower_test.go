package ir

import (
	"testing"

	"github.com/helixdb/helixql/pkg/lang/parser"
	"github.com/helixdb/helixql/pkg/schema"
	"github.com/helixdb/helixql/pkg/sema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *Program {
	t.Helper()
	source, err := parser.Parse(src)
	require.NoError(t, err)
	reg, err := schema.Build(source)
	require.NoError(t, err)
	res, diags := sema.Analyze(source, reg)
	require.False(t, sema.HasErrors(diags), "%v", diags)
	prog, err := Lower(res)
	require.NoError(t, err)
	return prog
}

func TestLowerCreateQueryIsMutating(t *testing.T) {
	prog := compile(t, `
N::User { name: String, age: Integer }

QUERY create(n: String, a: Integer) =>
  u <- AddN<User>({ name: n, age: a })
  RETURN u
`)
	q := prog.Queries["create"]
	require.NotNil(t, q)
	assert.True(t, q.Mutating)
	require.Len(t, q.Body, 1)
	bind := q.Body[0].(*Bind)
	assert.Equal(t, "u", bind.Var)
	addN := bind.Value.(*AddNode)
	assert.Equal(t, "User", addN.Type)
	assert.Len(t, addN.Props, 2)
}

func TestLowerTraversalProducesTraverseStep(t *testing.T) {
	prog := compile(t, `
N::U {}
E::F { From: U, To: U, Properties: {} }

QUERY friends(x: ID) =>
  fs <- N<U>(x)::Out<F>
  RETURN fs
`)
	q := prog.Queries["friends"]
	bind := q.Body[0].(*Bind)
	chain := bind.Value.(*ChainExpr).Chain
	start := chain.Start.(*ScanNodes)
	assert.Equal(t, "U", start.Type)
	require.Len(t, start.IDs, 1)
	require.Len(t, chain.Steps, 1)
	tr := chain.Steps[0].(*Traverse)
	assert.Equal(t, DirOut, tr.Dir)
	assert.Equal(t, "F", tr.EdgeType)
	assert.False(t, q.Mutating)
}

func TestLowerWhereFieldAccessComparatorRewrite(t *testing.T) {
	prog := compile(t, `
N::U { age: Integer }

QUERY adults() =>
  us <- N<U>()::WHERE(_::{age}::GTE(18))
  RETURN us
`)
	q := prog.Queries["adults"]
	bind := q.Body[0].(*Bind)
	chain := bind.Value.(*ChainExpr).Chain
	require.Len(t, chain.Steps, 1)
	filter := chain.Steps[0].(*Filter)
	predChain := filter.Pred.(*ChainExpr).Chain
	require.Len(t, predChain.Steps, 2)
	fa, ok := predChain.Steps[0].(*FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "age", fa.Field)
	cmp := predChain.Steps[1].(*Compare)
	assert.Equal(t, CmpGTE, cmp.Kind)
}

func TestLowerSpreadProjectionExpandsDeclaredFields(t *testing.T) {
	prog := compile(t, `
N::U { name: String, age: Integer }

QUERY shape() =>
  a <- N<U>()::{ name, .. }
  RETURN a
`)
	q := prog.Queries["shape"]
	bind := q.Body[0].(*Bind)
	chain := bind.Value.(*ChainExpr).Chain
	proj := chain.Steps[0].(*Project)
	var names []string
	for _, f := range proj.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "age"}, names)
}

func TestLowerDropNoArgIsNoOp(t *testing.T) {
	prog := compile(t, `
N::U {}

QUERY wipe() =>
  DROP
  RETURN 1
`)
	q := prog.Queries["wipe"]
	require.Len(t, q.Body, 1)
	_, ok := q.Body[0].(*NoOpDrop)
	assert.True(t, ok)
	assert.True(t, q.Mutating)
}
