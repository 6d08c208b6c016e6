package graphdb

import (
	"context"
	"testing"

	"github.com/helixdb/helixql/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *BadgerGraph {
	t.Helper()
	g, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestPutAndGetNode(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	tx, err := g.BeginWrite(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateReadOnly, tx.State())

	err = tx.PutNode(&Node{ID: "n1", Type: "User", Properties: map[string]value.Value{
		"name": value.String("Alice"),
		"age":  value.Integer(30),
	}})
	require.NoError(t, err)
	assert.Equal(t, StateWriting, tx.State())
	require.NoError(t, tx.Commit())
	assert.Equal(t, StateCommitted, tx.State())

	rtx, err := g.BeginRead(ctx)
	require.NoError(t, err)
	n, err := rtx.GetNode("n1")
	require.NoError(t, err)
	assert.Equal(t, "User", n.Type)
	assert.Equal(t, value.String("Alice"), n.Properties["name"])
	assert.Equal(t, value.Integer(30), n.Properties["age"])
	require.NoError(t, rtx.Commit())
}

func TestReadOnlyTxnRejectsMutation(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	tx, err := g.BeginRead(ctx)
	require.NoError(t, err)
	err = tx.PutNode(&Node{ID: "n1", Type: "User"})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Equal(t, StateReadOnly, tx.State())
}

func TestScanNodesByType(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	tx, err := g.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.PutNode(&Node{ID: "u1", Type: "User"}))
	require.NoError(t, tx.PutNode(&Node{ID: "u2", Type: "User"}))
	require.NoError(t, tx.PutNode(&Node{ID: "d1", Type: "Doc"}))
	require.NoError(t, tx.Commit())

	rtx, err := g.BeginRead(ctx)
	require.NoError(t, err)
	it, err := rtx.ScanNodes("User")
	require.NoError(t, err)

	var ids []string
	for {
		n, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
}

func TestPutEdgeValidatesEndpointsExist(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	tx, err := g.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.PutNode(&Node{ID: "u1", Type: "User"}))

	err = tx.PutEdge(&Edge{ID: "e1", Type: "FOLLOWS", From: "u1", To: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNeighborsOutAndIn(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	tx, err := g.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.PutNode(&Node{ID: "a", Type: "User"}))
	require.NoError(t, tx.PutNode(&Node{ID: "b", Type: "User"}))
	require.NoError(t, tx.PutNode(&Node{ID: "c", Type: "User"}))
	require.NoError(t, tx.PutEdge(&Edge{ID: "e1", Type: "FOLLOWS", From: "a", To: "b"}))
	require.NoError(t, tx.PutEdge(&Edge{ID: "e2", Type: "FOLLOWS", From: "a", To: "c"}))
	require.NoError(t, tx.PutEdge(&Edge{ID: "e3", Type: "BLOCKS", From: "a", To: "b"}))
	require.NoError(t, tx.Commit())

	rtx, err := g.BeginRead(ctx)
	require.NoError(t, err)

	out, err := rtx.Neighbors("a", "FOLLOWS", DirOut)
	require.NoError(t, err)
	var outIDs []string
	for {
		e, ok, err := out.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		outIDs = append(outIDs, e.ID)
	}
	assert.ElementsMatch(t, []string{"e1", "e2"}, outIDs)

	in, err := rtx.Neighbors("b", "", DirIn)
	require.NoError(t, err)
	var inIDs []string
	for {
		e, ok, err := in.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		inIDs = append(inIDs, e.ID)
	}
	assert.ElementsMatch(t, []string{"e1", "e3"}, inIDs)
}

func TestDeleteNodeCascadesEdges(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	tx, err := g.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.PutNode(&Node{ID: "a", Type: "User"}))
	require.NoError(t, tx.PutNode(&Node{ID: "b", Type: "User"}))
	require.NoError(t, tx.PutEdge(&Edge{ID: "e1", Type: "FOLLOWS", From: "a", To: "b"}))
	require.NoError(t, tx.Commit())

	tx2, err := g.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.DeleteNode("a"))
	require.NoError(t, tx2.Commit())

	rtx, err := g.BeginRead(ctx)
	require.NoError(t, err)
	_, err = rtx.GetEdge("e1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = rtx.GetNode("a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = rtx.GetNode("b")
	assert.NoError(t, err)
}

func TestRollbackDiscardsChanges(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	tx, err := g.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.PutNode(&Node{ID: "n1", Type: "User"}))
	require.NoError(t, tx.Rollback())
	assert.Equal(t, StateAborted, tx.State())

	rtx, err := g.BeginRead(ctx)
	require.NoError(t, err)
	_, err = rtx.GetNode("n1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelledContextStopsRead(t *testing.T) {
	g := newTestGraph(t)
	ctx, cancel := context.WithCancel(context.Background())

	tx, err := g.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.PutNode(&Node{ID: "n1", Type: "User"}))
	require.NoError(t, tx.Commit())

	rtx, err := g.BeginRead(ctx)
	require.NoError(t, err)
	cancel()
	_, err = rtx.GetNode("n1")
	assert.Error(t, err)
}
