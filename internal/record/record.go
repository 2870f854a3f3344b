// Package record is the in-memory view of a hand-record file that the
// conversion pipeline works with. Codecs fill it in; the pipeline reads it,
// attaches double-dummy results and hands it back to codecs for encoding.
package record

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/data-bridge/bridgeflow/internal/format"
)

// Room is the seating room of one table result.
type Room string

const (
	RoomNone   Room = ""
	RoomOpen   Room = "o"
	RoomClosed Room = "c"
)

// CaseID identifies one board, or one room of one board, within a file.
// Boards are qualified by segment so that two segments of the same file
// may reuse board numbers.
type CaseID struct {
	Segment int
	Board   int
	Room    Room
}

// Key is the textual cache key, e.g. "1:12o" or "2:7".
func (c CaseID) Key() string {
	return strconv.Itoa(c.Segment) + ":" + strconv.Itoa(c.Board) + string(c.Room)
}

func (c CaseID) String() string { return c.Key() }

var reCaseKey = regexp.MustCompile(`^(\d+):(\d+)([oc]?)$`)

// ParseCaseID is the inverse of [CaseID.Key].
func ParseCaseID(s string) (CaseID, error) {
	m := reCaseKey.FindStringSubmatch(s)
	if m == nil {
		return CaseID{}, fmt.Errorf("malformed case id %q", s)
	}
	seg, _ := strconv.Atoi(m[1])
	board, _ := strconv.Atoi(m[2])
	return CaseID{Segment: seg, Board: board, Room: Room(m[3])}, nil
}

// Instance is one table result of a board.
type Instance struct {
	Room    Room
	Players [4]string // North, East, South, West.
	Auction string
	Play    string
	Result  string

	// Trace is the double-dummy play trace, filled in by the pipeline.
	Trace string
}

// Board is one deal with its table results.
type Board struct {
	Number    int
	Deal      string // Deal in PBN notation, e.g. "N:AKQ.… …".
	Instances []*Instance

	// DDTable is the double-dummy trick table, filled in by the pipeline.
	DDTable string
}

// Segment is a contiguous part of a match or tournament.
type Segment struct {
	Title  string
	Event  string
	Date   string
	Boards []*Board
}

// Source is the raw text a tournament was decoded from.
type Source struct {
	Format format.Format
	Text   string
}

// Tournament is a decoded hand-record file.
type Tournament struct {
	Segments []*Segment

	// Source is set by codecs that keep the original text.
	Source Source

	// Order is the room order of the instances, resolved by the pipeline.
	Order Order
}

// Boards calls fn for every board with its segment-qualified id, in file order.
func (t *Tournament) Boards(fn func(id CaseID, b *Board)) {
	for si, seg := range t.Segments {
		for _, b := range seg.Boards {
			fn(CaseID{Segment: si + 1, Board: b.Number}, b)
		}
	}
}

// Instances calls fn for every table result, in file order.
func (t *Tournament) Instances(fn func(id CaseID, b *Board, in *Instance)) {
	t.Boards(func(id CaseID, b *Board) {
		for _, in := range b.Instances {
			fn(CaseID{Segment: id.Segment, Board: id.Board, Room: in.Room}, b, in)
		}
	})
}

// BoardCount returns the number of boards over all segments.
func (t *Tournament) BoardCount() int {
	n := 0
	for _, seg := range t.Segments {
		n += len(seg.Boards)
	}
	return n
}

// HandCount returns the number of table results over all segments.
func (t *Tournament) HandCount() int {
	n := 0
	t.Boards(func(_ CaseID, b *Board) { n += len(b.Instances) })
	return n
}

// CaseIDs returns the ids of every table result in file order.
func (t *Tournament) CaseIDs() []CaseID {
	var ids []CaseID
	t.Instances(func(id CaseID, _ *Board, _ *Instance) { ids = append(ids, id) })
	return ids
}
