package sema

import (
	"testing"

	"github.com/helixdb/helixql/pkg/lang/parser"
	"github.com/helixdb/helixql/pkg/schema"
	"github.com/helixdb/helixql/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) (*Result, []Diagnostic) {
	t.Helper()
	source, err := parser.Parse(src)
	require.NoError(t, err)
	reg, err := schema.Build(source)
	require.NoError(t, err)
	return Analyze(source, reg)
}

func TestAnalyzeSimpleCreateQuery(t *testing.T) {
	res, diags := analyze(t, `
N::User { name: String, age: Integer }

QUERY create(n: String, a: Integer) =>
  u <- AddN<User>({ name: n, age: a })
  RETURN u
`)
	require.Empty(t, diags)
	info := res.Queries["create"]
	require.NotNil(t, info)
	assert.True(t, info.Mutating)
	require.Len(t, info.ReturnTypes, 1)
	assert.Equal(t, KindNodeStream, info.ReturnTypes[0].Kind)
	assert.Equal(t, "User", info.ReturnTypes[0].Elem)
}

func TestAnalyzeTraversalAndEndpointValidation(t *testing.T) {
	res, diags := analyze(t, `
N::U { name: String }
E::F { From: U, To: U, Properties: {} }

QUERY friends(x: ID) =>
  fs <- N<U>(x)::Out<F>
  RETURN fs
`)
	require.Empty(t, diags)
	info := res.Queries["friends"]
	require.Len(t, info.ReturnTypes, 1)
	assert.Equal(t, KindNodeStream, info.ReturnTypes[0].Kind)
	assert.Equal(t, "U", info.ReturnTypes[0].Elem)
}

func TestAnalyzeRejectsMismatchedEdgeEndpoint(t *testing.T) {
	_, diags := analyze(t, `
N::U {}
N::P {}
E::Owns { From: U, To: P, Properties: {} }

QUERY bad() =>
  x <- N<P>()::Out<Owns>
  RETURN x
`)
	require.NotEmpty(t, diags)
	assert.Equal(t, DiagTypeError, diags[0].Code)
}

func TestAnalyzeWhereComparatorOnField(t *testing.T) {
	res, diags := analyze(t, `
N::U { age: Integer }

QUERY adults() =>
  us <- N<U>()::WHERE(_::{age}::GTE(18))
  RETURN us
`)
	require.Empty(t, diags)
	info := res.Queries["adults"]
	require.Len(t, info.ReturnTypes, 1)
	assert.Equal(t, KindNodeStream, info.ReturnTypes[0].Kind)
}

func TestAnalyzeObjectStepSpreadAndExclude(t *testing.T) {
	res, diags := analyze(t, `
N::U { name: String, age: Integer }

QUERY shape() =>
  a <- N<U>()::{ name, .. }
  b <- N<U>()::!{age}
  RETURN a, b
`)
	require.Empty(t, diags)
	info := res.Queries["shape"]
	require.Len(t, info.ReturnTypes, 2)
	assert.Equal(t, KindRecord, info.ReturnTypes[0].Kind)
	assert.Equal(t, KindRecord, info.ReturnTypes[1].Kind)
}

func TestAnalyzeAddNRejectsMissingField(t *testing.T) {
	_, diags := analyze(t, `
N::User { name: String, age: Integer }

QUERY create(n: String) =>
  u <- AddN<User>({ name: n })
  RETURN u
`)
	require.NotEmpty(t, diags)
	assert.Equal(t, DiagSchemaError, diags[0].Code)
}

func TestAnalyzeAddERequiresMatchingEndpointTypes(t *testing.T) {
	res, diags := analyze(t, `
N::U { }
E::F { From: U, To: U, Properties: {} }

QUERY link(a: ID, b: ID) =>
  e <- AddE<F>({})::From(a)::To(b)
  RETURN e
`)
	require.Empty(t, diags)
	info := res.Queries["link"]
	require.Len(t, info.ReturnTypes, 1)
	assert.Equal(t, KindEdgeStream, info.ReturnTypes[0].Kind)
}

func TestAnalyzeDropNoArgWarns(t *testing.T) {
	_, diags := analyze(t, `
N::U {}

QUERY wipe() =>
  DROP
  RETURN 1
`)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagWarnDropNoop, diags[0].Code)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestAnalyzeUnknownIdentifierIsResolveError(t *testing.T) {
	_, diags := analyze(t, `
N::U {}

QUERY bad() =>
  RETURN missing
`)
	require.NotEmpty(t, diags)
	assert.Equal(t, DiagResolveError, diags[0].Code)
}

func TestAnalyzeSearchVTypesQueryAndK(t *testing.T) {
	res, diags := analyze(t, `
V::Doc

QUERY search(v: [Float]) =>
  hits <- SearchV<Doc>(v, 10)
  RETURN hits
`)
	require.Empty(t, diags)
	info := res.Queries["search"]
	assert.Equal(t, KindVectorStream, info.ReturnTypes[0].Kind)
	assert.Equal(t, value.KindFloat, info.ParamTypes["v"].ArrayOf.Scalar)
}

func TestAnalyzeComparatorRejectsNonNumeric(t *testing.T) {
	_, diags := analyze(t, `
N::U { name: String }

QUERY bad() =>
  x <- N<U>()::WHERE(_::{name}::GT(1))
  RETURN x
`)
	require.NotEmpty(t, diags)
	assert.Equal(t, DiagTypeError, diags[0].Code)
}
