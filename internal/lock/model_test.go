package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	holds := []Hold{
		{ID: "past", ExpiresAt: now.Add(-time.Second)},
		{ID: "future", ExpiresAt: now.Add(time.Second)},
		{ID: "boundary", ExpiresAt: now},
	}

	expired := FindExpired(holds, now)
	require.Len(t, expired, 2)
	assert.Equal(t, "past", expired[0].ID)
	assert.Equal(t, "boundary", expired[1].ID)

	assert.Empty(t, FindExpired(nil, now))
	assert.Len(t, holds, 3)
}

func TestMetadataValueAndScan(t *testing.T) {
	v, err := Metadata(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	v, err = Metadata{"cart": "42"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"cart":"42"}`, string(v.([]byte)))

	var m Metadata
	require.NoError(t, m.Scan([]byte(`{"source":"app"}`)))
	assert.Equal(t, "app", m["source"])

	require.NoError(t, m.Scan(`{}`))
	assert.Nil(t, m)

	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)

	assert.Error(t, m.Scan(42))
	assert.Error(t, m.Scan([]byte(`not json`)))
}

func TestMetadataClone(t *testing.T) {
	orig := Metadata{"a": "1"}
	clone := orig.Clone()
	clone["a"] = "2"

	assert.Equal(t, "1", orig["a"])
	assert.Nil(t, Metadata(nil).Clone())
}
