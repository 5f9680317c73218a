package cachekey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldane-cache/autocache/cachekey"
)

func TestNewKeyRejectsEmptyName(t *testing.T) {
	_, err := cachekey.NewKey("", 1)
	require.Error(t, err)
}

func TestNewSingletonKeySerialize(t *testing.T) {
	k, err := cachekey.NewSingletonKey("user", 1)
	require.NoError(t, err)
	assert.Equal(t, "user-v1", k.Serialize())
}

func TestNewMonoKeySerialize(t *testing.T) {
	k, err := cachekey.NewMonoKey("user", 1, cachekey.Int(42))
	require.NoError(t, err)
	assert.Equal(t, "42-user-v1", k.Serialize())
}

func TestNewMonoKeyNoNameSerialize(t *testing.T) {
	k, err := cachekey.NewMonoKey("", 1, cachekey.Int(42))
	require.NoError(t, err)
	assert.Equal(t, "42-v1", k.Serialize())
}

func TestEqualityIffSerializeEqual(t *testing.T) {
	a, err := cachekey.NewKey("user", 1, cachekey.Int(42), cachekey.Str("x"))
	require.NoError(t, err)
	b, err := cachekey.NewKey("user", 1, cachekey.Int(42), cachekey.Str("x"))
	require.NoError(t, err)
	c, err := cachekey.NewKey("user", 1, cachekey.Int(43), cachekey.Str("x"))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Serialize(), b.Serialize())
	assert.Equal(t, a.Hash(), b.Hash())

	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Serialize(), c.Serialize())
}

func TestListAndMappingRendering(t *testing.T) {
	k, err := cachekey.NewKey("q", 2, cachekey.List{cachekey.Int(1), cachekey.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, "q-v2-[1,2]", k.Serialize())

	m, err := cachekey.NewKey("q", 2, cachekey.Mapping{
		{Key: cachekey.Str("a"), Value: cachekey.Int(1)},
		{Key: cachekey.Str("b"), Value: cachekey.Int(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "q-v2-{a=1,b=2}", m.Serialize())
}

func TestVersionChangeInvalidatesKeySpace(t *testing.T) {
	v1, err := cachekey.NewSingletonKey("user", 1)
	require.NoError(t, err)
	v2, err := cachekey.NewSingletonKey("user", 2)
	require.NoError(t, err)
	assert.False(t, v1.Equal(v2))
}
