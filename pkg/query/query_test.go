package query

import (
	"context"
	"testing"
	"time"

	"github.com/helixdb/helixql/pkg/graphdb"
	"github.com/helixdb/helixql/pkg/value"
	"github.com/helixdb/helixql/pkg/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T, src string) *Runtime {
	t.Helper()
	return newRuntimeSized(t, src, 8)
}

func newRuntimeSized(t *testing.T, src string, workerPoolSize int) *Runtime {
	t.Helper()
	prog, diags, err := Compile(src)
	require.NoError(t, err)
	require.NotNil(t, prog, "%v", diags)

	g, err := graphdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	return NewRuntime(prog, g, vectordb.NewHNSWVectorIndex(), workerPoolSize)
}

// TestCompileReportsBatchedDiagnostics is spec.md §8 scenario coverage for
// §7's propagation policy: a query that fails to type-check never reaches
// Lower, and every error is reported together rather than one-at-a-time.
func TestCompileReportsBatchedDiagnostics(t *testing.T) {
	prog, diags, err := Compile(`
N::User { name: String, age: Integer }

QUERY bad() =>
  u <- N<User>::WHERE(_::{age}::GT("not a number"))
  RETURN u
`)
	require.NoError(t, err)
	assert.Nil(t, prog)
	assert.NotEmpty(t, diags)
}

// TestRuntimeRunEndToEnd exercises spec.md §8 scenario S1 through the
// public façade: compile, wire an in-memory Graph backend, run, and get a
// JSON-shaped result back.
func TestRuntimeRunEndToEnd(t *testing.T) {
	rt := newRuntime(t, `
N::User { name: String, age: Integer }

QUERY create(n: String, a: Integer) =>
  u <- AddN<User>({ name: n, age: a })
  RETURN u
`)
	result, err := rt.Run(context.Background(), "create", map[string]value.Value{
		"n": value.String("alice"),
		"a": value.Integer(30),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result)
}

// TestRuntimeRunUnknownQuery covers the façade's own bookkeeping (not part
// of the operator DAG spec.md describes), so it isn't cross-referenced.
func TestRuntimeRunUnknownQuery(t *testing.T) {
	rt := newRuntime(t, `
N::User { name: String }
QUERY only() => u <- N<User> RETURN u
`)
	_, err := rt.Run(context.Background(), "nope", nil)
	require.Error(t, err)
}

func TestProgramQueryNames(t *testing.T) {
	prog, diags, err := Compile(`
N::User { name: String }
QUERY a() => u <- N<User> RETURN u
QUERY b() => u <- N<User> RETURN u
`)
	require.NoError(t, err)
	require.NotNil(t, prog, "%v", diags)
	assert.ElementsMatch(t, []string{"a", "b"}, prog.QueryNames())
}

// TestNewRuntimeSizesWorkerPool covers spec.md §5's worker pool: Run must
// actually be bounded by the configured size, not just accept it.
func TestNewRuntimeSizesWorkerPool(t *testing.T) {
	rt := newRuntimeSized(t, `N::User {} QUERY only() => u <- N<User> RETURN u`, 3)
	assert.Equal(t, 3, cap(rt.sem))
}

// TestNewRuntimeDefaultsNonPositivePoolSizeToOne covers the documented
// fallback for a misconfigured (zero or negative) worker pool size.
func TestNewRuntimeDefaultsNonPositivePoolSizeToOne(t *testing.T) {
	rt := newRuntimeSized(t, `N::User {} QUERY only() => u <- N<User> RETURN u`, 0)
	assert.Equal(t, 1, cap(rt.sem))
}

// TestRuntimeRunBlocksOnFullWorkerPool proves the pool is load-bearing:
// with every slot occupied, Run must wait for one to free up rather than
// running unconditionally, and it must give up when ctx expires first.
func TestRuntimeRunBlocksOnFullWorkerPool(t *testing.T) {
	rt := newRuntimeSized(t, `N::User {} QUERY only() => u <- N<User> RETURN u`, 1)

	rt.sem <- struct{}{} // occupy the only slot
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := rt.Run(ctx, "only", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	<-rt.sem // free the slot back up
	_, err = rt.Run(context.Background(), "only", nil)
	assert.NoError(t, err)
}

func TestRegisterVectorTypesRejectsMismatch(t *testing.T) {
	prog, diags, err := Compile(`V::Emb`)
	require.NoError(t, err)
	require.NotNil(t, prog, "%v", diags)

	vecs := vectordb.NewHNSWVectorIndex()
	err = RegisterVectorTypes(vecs, prog.Registry, map[string]VectorConfig{
		"Other": {Dim: 4, Metric: vectordb.MetricCosine},
	})
	require.Error(t, err)

	err = RegisterVectorTypes(vecs, prog.Registry, map[string]VectorConfig{
		"Emb": {Dim: 4, Metric: vectordb.MetricCosine},
	})
	require.NoError(t, err)
}
