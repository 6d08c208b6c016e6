package schema

import (
	"testing"

	"github.com/helixdb/helixql/pkg/lang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResolvesForwardEdgeReference(t *testing.T) {
	src, err := parser.Parse(`
E::F { From: U, To: U, Properties: {} }
N::U { name: String }
`)
	require.NoError(t, err)

	reg, err := Build(src)
	require.NoError(t, err)

	edge, ok := reg.Edge("F")
	require.True(t, ok)
	assert.Equal(t, "U", edge.From)
	assert.Equal(t, "U", edge.To)
}

func TestBuildRejectsUnknownEndpoint(t *testing.T) {
	src, err := parser.Parse(`E::F { From: U, To: U, Properties: {} }`)
	require.NoError(t, err)

	_, err = Build(src)
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "UnknownEndpoint", se.Kind)
}

func TestBuildRejectsDuplicateNode(t *testing.T) {
	src, err := parser.Parse(`
N::U { a: String }
N::U { b: Integer }
`)
	require.NoError(t, err)

	_, err = Build(src)
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Duplicate", se.Kind)
}

func TestEdgesFromAndTo(t *testing.T) {
	src, err := parser.Parse(`
N::U {}
N::P {}
E::Follows { From: U, To: U, Properties: {} }
E::Owns { From: U, To: P, Properties: {} }
`)
	require.NoError(t, err)
	reg, err := Build(src)
	require.NoError(t, err)

	assert.Len(t, reg.EdgesFrom("U"), 2)
	assert.Len(t, reg.EdgesTo("P"), 1)
}
