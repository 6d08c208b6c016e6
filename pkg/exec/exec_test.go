package exec

import (
	"context"
	"testing"

	"github.com/helixdb/helixql/pkg/graphdb"
	"github.com/helixdb/helixql/pkg/ir"
	"github.com/helixdb/helixql/pkg/lang/parser"
	"github.com/helixdb/helixql/pkg/schema"
	"github.com/helixdb/helixql/pkg/sema"
	"github.com/helixdb/helixql/pkg/value"
	"github.com/helixdb/helixql/pkg/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup compiles src and wires a fresh in-memory Executor, mirroring
// pkg/ir/lower_test.go's compile() helper one layer further down the
// pipeline.
func setup(t *testing.T, src string) (*Executor, *ir.Program, *schema.Registry) {
	t.Helper()
	source, err := parser.Parse(src)
	require.NoError(t, err)
	reg, err := schema.Build(source)
	require.NoError(t, err)
	res, diags := sema.Analyze(source, reg)
	require.False(t, sema.HasErrors(diags), "%v", diags)
	prog, err := ir.Lower(res)
	require.NoError(t, err)

	g, err := graphdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	return New(reg, g, vectordb.NewHNSWVectorIndex()), prog, reg
}

func TestRunCreateReturnsOneNode(t *testing.T) {
	ex, prog, _ := setup(t, `
N::User { name: String, age: Integer }

QUERY create(n: String, a: Integer) =>
  u <- AddN<User>({ name: n, age: a })
  RETURN u
`)
	q := prog.Queries["create"]
	result, err := ex.Run(context.Background(), q, map[string]value.Value{
		"n": value.String("alice"),
		"a": value.Integer(30),
	})
	require.NoError(t, err)
	obj, ok := result.(string)
	require.True(t, ok, "single-node RETURN unwraps to its NodeRef id string, got %T", result)
	assert.NotEmpty(t, obj)
}

func TestRunTypedTraversalFollowsOutEdges(t *testing.T) {
	ex, prog, _ := setup(t, `
N::U {}
E::F { From: U, To: U, Properties: {} }

QUERY friends(x: ID) =>
  fs <- N<U>(x)::Out<F>
  RETURN fs
`)

	ctx := context.Background()
	txn, err := ex.Graph.BeginWrite(ctx)
	require.NoError(t, err)
	a := &graphdb.Node{ID: value.NewID(), Type: "U", Properties: map[string]value.Value{}}
	b := &graphdb.Node{ID: value.NewID(), Type: "U", Properties: map[string]value.Value{}}
	c := &graphdb.Node{ID: value.NewID(), Type: "U", Properties: map[string]value.Value{}}
	require.NoError(t, txn.PutNode(a))
	require.NoError(t, txn.PutNode(b))
	require.NoError(t, txn.PutNode(c))
	require.NoError(t, txn.PutEdge(&graphdb.Edge{ID: value.NewID(), Type: "F", From: a.ID, To: b.ID, Properties: map[string]value.Value{}}))
	require.NoError(t, txn.PutEdge(&graphdb.Edge{ID: value.NewID(), Type: "F", From: a.ID, To: c.ID, Properties: map[string]value.Value{}}))
	require.NoError(t, txn.Commit())

	q := prog.Queries["friends"]
	result, err := ex.Run(ctx, q, map[string]value.Value{"x": value.String(a.ID)})
	require.NoError(t, err)
	ids, ok := result.([]interface{})
	require.True(t, ok)
	require.Len(t, ids, 2)
	assert.ElementsMatch(t, []interface{}{b.ID, c.ID}, ids)
}

// TestRunMultiExpressionReturnProducesTuple covers spec.md §4.F:
// "RETURN e1, e2, ... produces a tuple" — each RETURN expression renders
// to its own slot, so a 2-element stream in one slot and a scalar in
// another must not flatten together into one 3-element array.
func TestRunMultiExpressionReturnProducesTuple(t *testing.T) {
	ex, prog, _ := setup(t, `
N::U {}
E::F { From: U, To: U, Properties: {} }

QUERY tuple(x: ID, n: Integer) =>
  fs <- N<U>(x)::Out<F>
  RETURN fs, n
`)

	ctx := context.Background()
	txn, err := ex.Graph.BeginWrite(ctx)
	require.NoError(t, err)
	a := &graphdb.Node{ID: value.NewID(), Type: "U", Properties: map[string]value.Value{}}
	b := &graphdb.Node{ID: value.NewID(), Type: "U", Properties: map[string]value.Value{}}
	c := &graphdb.Node{ID: value.NewID(), Type: "U", Properties: map[string]value.Value{}}
	require.NoError(t, txn.PutNode(a))
	require.NoError(t, txn.PutNode(b))
	require.NoError(t, txn.PutNode(c))
	require.NoError(t, txn.PutEdge(&graphdb.Edge{ID: value.NewID(), Type: "F", From: a.ID, To: b.ID, Properties: map[string]value.Value{}}))
	require.NoError(t, txn.PutEdge(&graphdb.Edge{ID: value.NewID(), Type: "F", From: a.ID, To: c.ID, Properties: map[string]value.Value{}}))
	require.NoError(t, txn.Commit())

	q := prog.Queries["tuple"]
	result, err := ex.Run(ctx, q, map[string]value.Value{
		"x": value.String(a.ID),
		"n": value.Integer(42),
	})
	require.NoError(t, err)
	tuple, ok := result.([]interface{})
	require.True(t, ok, "multi-expression RETURN must produce a tuple, got %T", result)
	require.Len(t, tuple, 2, "one slot per RETURN expression, not one per item")

	fs, ok := tuple[0].([]interface{})
	require.True(t, ok, "fs's own 2-item stream must stay grouped in its own slot")
	assert.ElementsMatch(t, []interface{}{b.ID, c.ID}, fs)
	assert.Equal(t, int64(42), tuple[1])
}

func TestRunWhereFiltersOnDeclaredField(t *testing.T) {
	ex, prog, _ := setup(t, `
N::User { age: Integer }

QUERY adults() =>
  u <- N<User>::WHERE(_::{age}::GTE(18))
  RETURN u
`)

	ctx := context.Background()
	txn, err := ex.Graph.BeginWrite(ctx)
	require.NoError(t, err)
	var wantIDs []string
	for _, age := range []int64{17, 18, 25} {
		n := &graphdb.Node{ID: value.NewID(), Type: "User", Properties: map[string]value.Value{"age": value.Integer(age)}}
		require.NoError(t, txn.PutNode(n))
		if age >= 18 {
			wantIDs = append(wantIDs, n.ID)
		}
	}
	require.NoError(t, txn.Commit())

	q := prog.Queries["adults"]
	result, err := ex.Run(ctx, q, nil)
	require.NoError(t, err)
	ids, ok := result.([]interface{})
	require.True(t, ok)
	require.Len(t, ids, 2)
	assert.ElementsMatch(t, wantIDs, ids)
}

func TestRunSearchVReturnsAscendingByDistance(t *testing.T) {
	ex, prog, _ := setup(t, `
V::Emb

QUERY near(q: [Float], k: Integer) =>
  r <- SearchV<Emb>(q, k)
  RETURN r
`)
	require.NoError(t, ex.Vectors.Register("Emb", 1, vectordb.MetricEuclidean))

	ctx := context.Background()
	require.NoError(t, ex.Vectors.Put(ctx, "Emb", "far", []float32{0.9}))
	require.NoError(t, ex.Vectors.Put(ctx, "Emb", "near", []float32{0.1}))
	require.NoError(t, ex.Vectors.Put(ctx, "Emb", "mid", []float32{0.5}))

	q := prog.Queries["near"]
	result, err := ex.Run(ctx, q, map[string]value.Value{
		"q": value.Array([]value.Value{value.Float(0.0)}),
		"k": value.Integer(2),
	})
	require.NoError(t, err)
	ids, ok := result.([]interface{})
	require.True(t, ok)
	require.Len(t, ids, 2)
	assert.Equal(t, []interface{}{"near", "mid"}, ids)
}

func TestRunAddEdgeTypeMismatchRollsBackWholeMutation(t *testing.T) {
	ex, prog, _ := setup(t, `
N::User {}
N::Post {}
E::Wrote { From: User, To: User, Properties: {} }

QUERY badWrite(postID: ID) =>
  u <- AddN<User>({})
  e <- AddE<Wrote>({})::From(u)::To(postID)
  RETURN e
`)

	// The mistyped endpoint arrives as a bare id, which passes the static
	// endpoint check, so only the runtime check can reject it.
	ctx := context.Background()
	wtxn, err := ex.Graph.BeginWrite(ctx)
	require.NoError(t, err)
	post := &graphdb.Node{ID: value.NewID(), Type: "Post", Properties: map[string]value.Value{}}
	require.NoError(t, wtxn.PutNode(post))
	require.NoError(t, wtxn.Commit())

	q := prog.Queries["badWrite"]
	_, err = ex.Run(ctx, q, map[string]value.Value{"postID": value.String(post.ID)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntimeTypeMismatch)

	txn, err := ex.Graph.BeginRead(ctx)
	require.NoError(t, err)
	it, err := txn.ScanNodes("User")
	require.NoError(t, err)
	_, ok, err := it.Next()
	require.NoError(t, err)
	assert.False(t, ok, "AddN<User> must not survive a later step's rollback")
}

func TestRunSpreadProjectionIncludesIDAndDeclaredFields(t *testing.T) {
	ex, prog, _ := setup(t, `
N::User { name: String, age: Integer }

QUERY shape() =>
  u <- N<User>()
  RETURN u::{ id: ID, .. }
`)

	ctx := context.Background()
	txn, err := ex.Graph.BeginWrite(ctx)
	require.NoError(t, err)
	n := &graphdb.Node{ID: value.NewID(), Type: "User", Properties: map[string]value.Value{
		"name": value.String("alice"),
		"age":  value.Integer(30),
	}}
	require.NoError(t, txn.PutNode(n))
	require.NoError(t, txn.Commit())

	q := prog.Queries["shape"]
	result, err := ex.Run(ctx, q, nil)
	require.NoError(t, err)
	rec, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, n.ID, rec["id"])
	assert.Equal(t, "alice", rec["name"])
	assert.Equal(t, int64(30), rec["age"])
}
