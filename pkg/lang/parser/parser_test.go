package parser

import (
	"testing"

	"github.com/helixdb/helixql/pkg/lang/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchemaAndSimpleQuery(t *testing.T) {
	src := `
N::User { name: String, age: Integer }

QUERY create(n: String, a: Integer) =>
  u <- AddN<User>({ name: n, age: a })
  RETURN u
`
	source, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, source.Nodes, 1)
	assert.Equal(t, "User", source.Nodes[0].Name)
	require.Len(t, source.Queries, 1)
	q := source.Queries[0]
	assert.Equal(t, "create", q.Name)
	require.Len(t, q.Body, 1)
	assign, ok := q.Body[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "u", assign.Variable)
	_, ok = assign.Value.(*ast.AddNExpr)
	assert.True(t, ok)
}

func TestParseTypedTraversal(t *testing.T) {
	src := `
N::U {}
E::F { From: U, To: U, Properties: {} }

QUERY friends(x: ID) =>
  fs <- N<U>(x)::Out<F>
  RETURN fs
`
	source, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, source.Edges, 1)
	assert.Equal(t, "U", source.Edges[0].From)

	q := source.Queries[0]
	assign := q.Body[0].(*ast.Assignment)
	trav := assign.Value.(*ast.Traversal)
	assert.Equal(t, ast.StartNode, trav.Start.Kind)
	assert.Equal(t, "U", trav.Start.Type)
	require.Len(t, trav.Start.IDs, 1)
	require.Len(t, trav.Steps, 1)
	gs := trav.Steps[0].(*ast.GraphStep)
	assert.Equal(t, ast.DirOut, gs.Dir)
	assert.Equal(t, "F", gs.EdgeType)
}

func TestParseWhereFieldComparator(t *testing.T) {
	src := `
N::User { age: Integer }
QUERY adults() =>
  u <- N<User>::WHERE(_::{age}::GTE(18))
  RETURN u
`
	source, err := Parse(src)
	require.NoError(t, err)
	q := source.Queries[0]
	assign := q.Body[0].(*ast.Assignment)
	trav := assign.Value.(*ast.Traversal)
	require.Len(t, trav.Steps, 1)
	where := trav.Steps[0].(*ast.WhereStep)
	inner := where.Pred.(*ast.Traversal)
	assert.Equal(t, ast.StartAnonymous, inner.Start.Kind)
	require.Len(t, inner.Steps, 2)
	_, ok := inner.Steps[0].(*ast.ObjectStep)
	assert.True(t, ok)
	cmp, ok := inner.Steps[1].(*ast.Comparator)
	require.True(t, ok)
	assert.Equal(t, ast.CmpGTE, cmp.Kind)
}

func TestParseSearchVAndSpreadProjection(t *testing.T) {
	src := `
V::Emb
N::User { name: String }
QUERY near(q: [Float], k: Integer) =>
  r <- SearchV<Emb>(q, k)
  RETURN r

QUERY withProjection() =>
  u <- N<User>::{ id: ID, .. }
  RETURN u
`
	source, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, source.Queries, 2)

	near := source.Queries[0]
	assignNear := near.Body[0].(*ast.Assignment)
	sv := assignNear.Value.(*ast.SearchVExpr)
	assert.Equal(t, "Emb", sv.Type)

	proj := source.Queries[1]
	assignProj := proj.Body[0].(*ast.Assignment)
	trav := assignProj.Value.(*ast.Traversal)
	obj := trav.Steps[0].(*ast.ObjectStep)
	assert.True(t, obj.HasSpread)
	require.Len(t, obj.Fields, 1)
	assert.Equal(t, "id", obj.Fields[0].Name)
}

func TestParseAddEFromTo(t *testing.T) {
	src := `
N::U {}
E::F { From: U, To: U, Properties: {} }
QUERY link(a: ID, b: ID) =>
  e <- AddE<F>({})::From(a)::To(b)
  RETURN e
`
	source, err := Parse(src)
	require.NoError(t, err)
	q := source.Queries[0]
	assign := q.Body[0].(*ast.Assignment)
	add := assign.Value.(*ast.AddEExpr)
	assert.Equal(t, "F", add.Type)
	assert.NotNil(t, add.From)
	assert.NotNil(t, add.To)
}
