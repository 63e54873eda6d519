package farmos

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestBundle(t *testing.T) {
	assert.Equal(t, "activity", Bundle("log--activity"))
	assert.Equal(t, "animal", Bundle("asset--animal"))
	assert.Equal(t, "user", Bundle("user"))
	assert.Equal(t, "", Bundle(""))
}

func TestRefs(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		data := gjson.Parse(`{"type":"asset--animal","id":"a1"}`)
		assert.Equal(t, []Ref{{ID: "a1", Type: "animal"}}, Refs(data))
	})

	t.Run("array", func(t *testing.T) {
		data := gjson.Parse(`[{"type":"asset--land","id":"a1"},{"type":"asset--plant","id":"a2"}]`)
		assert.Equal(t, []Ref{
			{ID: "a1", Type: "land"},
			{ID: "a2", Type: "plant"},
		}, Refs(data))
	})

	t.Run("null and missing", func(t *testing.T) {
		assert.Nil(t, Refs(gjson.Parse(`null`)))
		assert.Nil(t, Refs(gjson.Result{}))
	})

	t.Run("entries without id are skipped", func(t *testing.T) {
		data := gjson.Parse(`[{"type":"asset--land"},{"type":"asset--plant","id":"a2"}]`)
		assert.Equal(t, []Ref{{ID: "a2", Type: "plant"}}, Refs(data))
	})
}

// References whose resources were sideloaded gain a name; every other
// ref keeps its raw {type, id} form. Resolution never drops a ref.
func TestIncluded_Resolve(t *testing.T) {
	doc := gjson.Parse(`{
		"data": [],
		"included": [
			{"type": "asset--land", "id": "a1", "attributes": {"name": "North Field"}},
			{"type": "asset--animal", "id": "a2", "attributes": {}}
		]
	}`)

	inc := IndexIncluded(doc)
	require.Len(t, inc, 2)

	refs := inc.Resolve([]Ref{
		{ID: "a1", Type: "land"},
		{ID: "a2", Type: "animal"},
		{ID: "a3", Type: "plant"},
	})

	assert.Equal(t, []Ref{
		{ID: "a1", Type: "land", Name: "North Field"},
		{ID: "a2", Type: "animal"},
		{ID: "a3", Type: "plant"},
	}, refs)
}

func TestIncluded_ResolveEmptyDocument(t *testing.T) {
	inc := IndexIncluded(gjson.Parse(`{"data": []}`))

	refs := inc.Resolve([]Ref{{ID: "a1", Type: "land"}})
	assert.Equal(t, []Ref{{ID: "a1", Type: "land"}}, refs)
}

func TestText(t *testing.T) {
	t.Run("formatted text object", func(t *testing.T) {
		v := gjson.Parse(`{"value": "Moved the herd.", "format": "default"}`)
		require.NotNil(t, Text(v))
		assert.Equal(t, "Moved the herd.", *Text(v))
	})

	t.Run("plain string", func(t *testing.T) {
		v := gjson.Parse(`"plain note"`)
		require.NotNil(t, Text(v))
		assert.Equal(t, "plain note", *Text(v))
	})

	t.Run("absent or null", func(t *testing.T) {
		assert.Nil(t, Text(gjson.Result{}))
		assert.Nil(t, Text(gjson.Parse(`null`)))
	})
}

func TestEpochToISO(t *testing.T) {
	t.Run("unix seconds", func(t *testing.T) {
		v := gjson.Parse(`1719834000`)
		require.NotNil(t, EpochToISO(v))
		assert.Equal(t, "2024-07-01T11:40:00Z", *EpochToISO(v))
	})

	t.Run("non-numeric passes through", func(t *testing.T) {
		v := gjson.Parse(`"2024-07-01T11:40:00+00:00"`)
		require.NotNil(t, EpochToISO(v))
		assert.Equal(t, "2024-07-01T11:40:00+00:00", *EpochToISO(v))
	})

	t.Run("absent or null", func(t *testing.T) {
		assert.Nil(t, EpochToISO(gjson.Result{}))
		assert.Nil(t, EpochToISO(gjson.Parse(`null`)))
	})
}

func TestISOToEpoch(t *testing.T) {
	epoch, err := ISOToEpoch("2024-07-01T11:40:00Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1719834000), epoch)

	t.Run("bare date is start of day UTC", func(t *testing.T) {
		epoch, err := ISOToEpoch("2024-07-01")
		require.NoError(t, err)
		assert.Equal(t, int64(1719792000), epoch)
	})

	t.Run("offset is honoured", func(t *testing.T) {
		epoch, err := ISOToEpoch("2024-07-01T13:40:00+02:00")
		require.NoError(t, err)
		assert.Equal(t, int64(1719834000), epoch)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := ISOToEpoch("next tuesday")
		assert.Error(t, err)
	})
}

// Second-precision timestamps survive a full ISO -> epoch -> ISO trip.
func TestDateRoundTrip(t *testing.T) {
	for _, iso := range []string{
		"2024-07-01T11:40:00Z",
		"2020-01-01T00:00:00Z",
		"1999-12-31T23:59:59Z",
	} {
		epoch, err := ISOToEpoch(iso)
		require.NoError(t, err)

		got := EpochToISO(gjson.Parse(strconv.FormatInt(epoch, 10)))
		require.NotNil(t, got)
		assert.Equal(t, iso, *got, "round trip for %s", iso)
	}
}
