package codec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/record"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const linHandText = "md|3SAKQJHAKQDAKQCAKQ,S5432H5432D5432C5,ST98HT98DT98CT987,|mb|1C|mb|p!|pc|CA|mc|13|"

func TestPassthrough_DecodeLIN(t *testing.T) {
	src := strings.Join([]string{
		"vg|Final,Seg 1,I,1,2,A,0,B,0|",
		"qx|o1|pn|S1,W1,N1,E1|" + linHandText,
		"qx|c1|" + linHandText,
		"qx|o2|md|1S2,,,|",
		"vg|Final 2,Seg 2,I,3,4,A,0,B,0|",
		"qx|o1|md|1S2,,,|",
	}, "\n") + "\n"
	path := write(t, "100.lin", src)

	tour, err := Passthrough{}.Decode(path, format.LINVG)
	require.NoError(t, err)
	require.Len(t, tour.Segments, 2)
	assert.Equal(t, "Final", tour.Segments[0].Title)
	assert.Equal(t, "Final 2", tour.Segments[1].Title)
	assert.Equal(t, 3, tour.BoardCount())
	assert.Equal(t, 4, tour.HandCount())

	b := tour.Segments[0].Boards[0]
	assert.Equal(t, "N:T98.T98.T98.T987 76.J76.J76.J6432 AKQJ.AKQ.AKQ.AKQ 5432.5432.5432.5", b.Deal)
	require.Len(t, b.Instances, 2)
	open := b.Instances[0]
	assert.Equal(t, record.RoomOpen, open.Room)
	assert.Equal(t, [4]string{"N1", "E1", "S1", "W1"}, open.Players)
	assert.Equal(t, "1C p", open.Auction)
	assert.Equal(t, "CA", open.Play)
	assert.Equal(t, "13", open.Result)
	assert.Equal(t, record.RoomClosed, b.Instances[1].Room)

	assert.Equal(t, []record.CaseID{
		{Segment: 1, Board: 1, Room: "o"}, {Segment: 1, Board: 1, Room: "c"},
		{Segment: 1, Board: 2, Room: "o"}, {Segment: 2, Board: 1, Room: "o"},
	}, tour.CaseIDs())
}

func TestPassthrough_DecodePBN(t *testing.T) {
	src := strings.Join([]string{
		`[Event "Club Pairs"]`,
		`[Board "3"]`,
		`[North "Nadia"]`,
		`[South "Sam"]`,
		`[Deal "N:AKQJ.AKQ.AKQ.AKQ 5432.5432.5432.5 T98.T98.T98.T987 76.J76.J76.J6432"]`,
		`[Result "12"]`,
		`[Auction "S"]`,
		`1C Pass 1H`,
		`Pass`,
		``,
		`[Board "4"]`,
		`[Deal "N:- - - -"]`,
	}, "\n")
	tour, err := Passthrough{}.Decode(write(t, "club.pbn", src), format.PBN)
	require.NoError(t, err)
	require.Equal(t, 2, tour.BoardCount())
	b := tour.Segments[0].Boards[0]
	assert.Equal(t, 3, b.Number)
	assert.Equal(t, "Nadia", b.Instances[0].Players[0])
	assert.Equal(t, "Sam", b.Instances[0].Players[2])
	assert.Equal(t, "1C Pass 1H Pass", b.Instances[0].Auction)
	assert.Equal(t, "12", b.Instances[0].Result)
	assert.True(t, strings.HasPrefix(b.Deal, "N:AKQJ"))
}

func TestPassthrough_DecodeErrors(t *testing.T) {
	_, err := Passthrough{}.Decode(write(t, "empty.pbn", `[Event "x"]`), format.PBN)
	assert.ErrorIs(t, err, errNoHands)

	_, err = Passthrough{}.Decode(write(t, "bad.lin", "qx|o1|md|3SXZ,,,|\n"), format.LIN)
	assert.Error(t, err)

	_, err = Passthrough{}.Decode(filepath.Join(t.TempDir(), "missing.lin"), format.LIN)
	assert.Error(t, err)
}

func TestPassthrough_Encode(t *testing.T) {
	src := "qx|o1|md|1S2,,,|\n"
	tour, err := Passthrough{}.Decode(write(t, "o01abc.lin", src), format.LINRP)
	require.NoError(t, err)

	got, err := Passthrough{}.Encode(tour, format.LINRP)
	require.NoError(t, err)
	assert.Equal(t, src, got)

	got, err = Passthrough{}.Encode(tour, format.LIN)
	require.NoError(t, err, "LIN dialects share one text form")
	assert.Equal(t, src, got)

	_, err = Passthrough{}.Encode(tour, format.PBN)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Passthrough{}.Encode(&record.Tournament{}, format.PBN)
	assert.ErrorIs(t, err, ErrUnsupported)
}

type stubCodec struct{ text string }

func (s stubCodec) Decode(string, format.Format) (*record.Tournament, error) {
	return &record.Tournament{}, nil
}

func (s stubCodec) Encode(*record.Tournament, format.Format) (string, error) {
	return s.text, nil
}

func TestRegistry(t *testing.T) {
	r := Default()
	r.Register(format.TXT, stubCodec{text: "plain"})

	got, err := r.Encode(&record.Tournament{}, format.TXT)
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	_, err = r.Encode(&record.Tournament{}, format.RBN)
	assert.ErrorIs(t, err, ErrUnsupported, "falls back to passthrough")
	assert.IsType(t, Passthrough{}, r.For(format.EML))
}
