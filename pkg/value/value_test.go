package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqual(t *testing.T) {
	assert.True(t, Integer(3).Equal(Integer(3)))
	assert.False(t, Integer(3).Equal(Integer(4)))
	assert.False(t, Integer(3).Equal(Float(3)))
	assert.True(t, Null.Equal(Null))
	assert.True(t, Array([]Value{String("a"), Integer(1)}).Equal(Array([]Value{String("a"), Integer(1)})))
}

func TestValueCompare(t *testing.T) {
	c, err := Compare(Integer(1), Float(2.5))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	_, err = Compare(String("a"), Integer(1))
	assert.Error(t, err)
}

func TestRecordOrderPreserved(t *testing.T) {
	r := NewRecord()
	r.Set("id", String("x"))
	r.Set("name", String("alice"))
	r.Set("age", Integer(30))

	assert.Equal(t, []string{"id", "name", "age"}, r.Keys)
	out := r.ToInterface()
	assert.Equal(t, "alice", out["name"])
}

func TestNewIDIsValidUUID(t *testing.T) {
	id := NewID()
	assert.True(t, ValidID(id))
	assert.False(t, ValidID("not-a-uuid"))
}
