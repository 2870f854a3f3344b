package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseIDKeyRoundTrip(t *testing.T) {
	for _, id := range []CaseID{
		{Segment: 1, Board: 12, Room: RoomOpen},
		{Segment: 3, Board: 7},
		{Segment: 2, Board: 1, Room: RoomClosed},
	} {
		got, err := ParseCaseID(id.Key())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
	_, err := ParseCaseID("12o")
	assert.Error(t, err)
}

func TestTournamentCounts(t *testing.T) {
	tour := &Tournament{Segments: []*Segment{
		{Boards: []*Board{
			{Number: 1, Instances: []*Instance{{Room: RoomOpen}, {Room: RoomClosed}}},
			{Number: 2, Instances: []*Instance{{Room: RoomOpen}}},
		}},
		{Boards: []*Board{
			{Number: 1, Instances: []*Instance{{Room: RoomClosed}}},
		}},
	}}
	assert.Equal(t, 3, tour.BoardCount())
	assert.Equal(t, 4, tour.HandCount())
	assert.Equal(t, []CaseID{
		{1, 1, RoomOpen}, {1, 1, RoomClosed}, {1, 2, RoomOpen}, {2, 1, RoomClosed},
	}, tour.CaseIDs())
}

func TestInferOrder(t *testing.T) {
	tests := []struct {
		name string
		ids  []CaseID
		want Order
	}{
		{"no rooms", []CaseID{{1, 1, ""}, {1, 2, ""}}, OrderOCOC},
		{"open closed", []CaseID{{1, 1, "o"}, {1, 1, "c"}, {1, 2, "o"}}, OrderOCOC},
		{"closed open", []CaseID{{1, 1, "c"}, {1, 1, "o"}}, OrderCOCO},
		{"grouped", []CaseID{{1, 1, "o"}, {1, 2, "o"}, {1, 1, "c"}}, OrderOOCC},
		{"single", []CaseID{{1, 1, "o"}}, OrderOCOC},
		{"open room only", []CaseID{{1, 1, "o"}, {1, 2, "o"}, {1, 3, "o"}}, OrderOCOC},
		{"closed room only", []CaseID{{1, 1, "c"}, {1, 2, "c"}}, OrderOCOC},
		{"mismatched boards", []CaseID{{1, 1, "o"}, {1, 2, "c"}}, OrderUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferOrder(tt.ids))
		})
	}
}

func TestHandsAndHCP(t *testing.T) {
	const deal = "E:5432.5432.5432.5 T98.T98.T98.T987 76.J76.J76.J6432 AKQJ.AKQ.AKQ.AKQ"
	hands, err := Hands(deal)
	require.NoError(t, err)
	assert.Equal(t, "AKQJ.AKQ.AKQ.AKQ", hands[0])
	assert.Equal(t, "5432.5432.5432.5", hands[1])

	pts, err := HCP(deal)
	require.NoError(t, err)
	assert.Equal(t, [4]int{37, 0, 0, 3}, pts)

	fp, err := Fingerprint(deal)
	require.NoError(t, err)
	fpN, err := Fingerprint("N:AKQJ.AKQ.AKQ.AKQ 5432.5432.5432.5 T98.T98.T98.T987 76.J76.J76.J6432")
	require.NoError(t, err)
	assert.Equal(t, fpN, fp)

	for _, bad := range []string{"", "N:AKQ", "X:a.b.c.d a.b.c.d a.b.c.d a.b.c.d", "N:AK.Q a.b.c.d a.b.c.d a.b.c.d"} {
		_, err := Hands(bad)
		assert.Error(t, err, bad)
	}
}

func TestDealer(t *testing.T) {
	assert.Equal(t, 0, Dealer(1))
	assert.Equal(t, 3, Dealer(4))
	assert.Equal(t, 0, Dealer(5))
	assert.Equal(t, 0, Dealer(0))
}
