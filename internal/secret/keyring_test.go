package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStore()

	got, err := s.Get(TableGenTokenKey)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set(TableGenTokenKey, []byte("tok-1")))
	require.NoError(t, s.Set(TableGenTokenKey, []byte("tok-2")))

	got, err = s.Get(TableGenTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", string(got))

	require.NoError(t, s.Delete(TableGenTokenKey))
	require.NoError(t, s.Delete(TableGenTokenKey))

	got, err = s.Get(TableGenTokenKey)
	require.NoError(t, err)
	assert.Nil(t, got)
}
