package factor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareVariable(t *testing.T) {
	vs := NewVariables()

	v, err := vs.Declare(7, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, v.ID)
	assert.Equal(t, 10, v.Card)
	assert.Equal(t, 1, vs.Len())

	// Redeclaring with the same domain size returns the existing variable.
	again, err := vs.Declare(7, 10)
	require.NoError(t, err)
	assert.Equal(t, v, again)
	assert.Equal(t, 1, vs.Len())
}

func TestDeclareVariable_InvalidDomain(t *testing.T) {
	vs := NewVariables()

	_, err := vs.Declare(1, 0)
	assert.ErrorIs(t, err, ErrInvalidDomain)

	_, err = vs.Declare(1, -3)
	assert.ErrorIs(t, err, ErrInvalidDomain)

	assert.Equal(t, 0, vs.Len(), "failed declarations must not register anything")
}

func TestDeclareVariable_DuplicateID(t *testing.T) {
	vs := NewVariables()

	_, err := vs.Declare(1, 5)
	require.NoError(t, err)

	_, err = vs.Declare(1, 6)
	assert.ErrorIs(t, err, ErrDuplicateID)

	// The original declaration survives untouched.
	v, ok := vs.Get(1)
	require.True(t, ok)
	assert.Equal(t, 5, v.Card)
}

func TestVariablesAll_SortedByID(t *testing.T) {
	vs := NewVariables()
	for _, id := range []int{5, 1, 3} {
		_, err := vs.Declare(id, 2)
		require.NoError(t, err)
	}

	all := vs.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 3, 5}, []int{all[0].ID, all[1].ID, all[2].ID})
}
