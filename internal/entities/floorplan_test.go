package entities

import (
	"encoding/json"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorplanItems_JSONRoundTrip(t *testing.T) {
	doc := FloorplanDocument{
		Floor: 15,
		Items: FloorplanItems{
			Seats: []FloorplanSeat{
				{ID: 1, Code: "C-1", Name: "홍길동", X: 10, Y: 20, Width: 70, Height: 50, UserID: null.Int64From(3)},
				{ID: 2, Code: "C-2", X: 90, Y: 20, Width: 70, Height: 50},
			},
			Facilities: []FloorplanFacility{
				{ID: 3, Name: "회의실", FacilityType: "facility-room", X: 200, Y: 0, Width: 100, Height: 80},
			},
		},
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded FloorplanDocument
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, doc.Floor, decoded.Floor)
	assert.Equal(t, doc.Items.Seats, decoded.Items.Seats)
	assert.Equal(t, doc.Items.Facilities, decoded.Items.Facilities)
}

func TestFloorplanItems_MarshalTags(t *testing.T) {
	items := FloorplanItems{
		Seats:      []FloorplanSeat{{ID: 1}},
		Facilities: []FloorplanFacility{{ID: 2, Name: "프린터", FacilityType: "facility-equip"}},
	}

	raw, err := json.Marshal(items)
	require.NoError(t, err)

	var tagged []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &tagged))
	require.Len(t, tagged, 2)
	assert.Equal(t, "seat", tagged[0]["type"])
	assert.Equal(t, "facility", tagged[1]["type"])
}

func TestFloorplanItems_UnmarshalUnknownType(t *testing.T) {
	var items FloorplanItems
	err := json.Unmarshal([]byte(`[{"type":"wall","id":1}]`), &items)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "неизвестный тип")
}

func TestFloorplanItems_UnmarshalEmpty(t *testing.T) {
	var items FloorplanItems
	require.NoError(t, json.Unmarshal([]byte(`[]`), &items))
	assert.Empty(t, items.Seats)
	assert.Empty(t, items.Facilities)
}

func TestFloorplanItems_MaxID(t *testing.T) {
	items := FloorplanItems{
		Seats:      []FloorplanSeat{{ID: 4}, {ID: 12}},
		Facilities: []FloorplanFacility{{ID: 9}},
	}
	assert.Equal(t, int64(12), items.MaxID())

	assert.Equal(t, int64(0), FloorplanItems{}.MaxID())
}
