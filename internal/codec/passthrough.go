package codec

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/record"
)

// Passthrough decodes any known format into the record model from its hand
// markers and the fields it can read cheaply (deal, players, auction, play,
// result for LIN and PBN). It encodes only back to the format it read, by
// re-emitting the original text.
type Passthrough struct{}

var errNoHands = errors.New("no hands found")

// Decode implements [Decoder].
func (Passthrough) Decode(path string, f format.Format) (*record.Tournament, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	scan, err := format.ScanHands(strings.NewReader(text), f)
	if err != nil {
		return nil, err
	}
	if len(scan.Marks) == 0 {
		return nil, errNoHands
	}

	t := &record.Tournament{Source: record.Source{Format: f, Text: text}}
	titles := segmentTitles(f, text)
	var (
		seg    *record.Segment
		segNo  int
		boards map[int]*record.Board
	)
	for i, m := range scan.Marks {
		if seg == nil || m.Segment != segNo {
			seg = &record.Segment{}
			if len(t.Segments) < len(titles) {
				seg.Title = titles[len(t.Segments)]
			}
			t.Segments = append(t.Segments, seg)
			segNo = m.Segment
			boards = make(map[int]*record.Board)
		}

		h, err := extract(f, scan.Chunks[i])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", m.Line, err)
		}
		b, ok := boards[m.Board]
		if !ok {
			b = &record.Board{Number: m.Board}
			boards[m.Board] = b
			seg.Boards = append(seg.Boards, b)
		}
		if b.Deal == "" {
			b.Deal = h.deal
		}
		if seg.Event == "" {
			seg.Event = h.event
		}
		if seg.Date == "" {
			seg.Date = h.date
		}
		b.Instances = append(b.Instances, &record.Instance{
			Room:    record.Room(m.Room),
			Players: h.players,
			Auction: h.auction,
			Play:    h.play,
			Result:  h.result,
		})
	}
	return t, nil
}

// Encode implements [Encoder]. Only the source format, or another LIN
// dialect of a LIN source, can be produced.
func (Passthrough) Encode(t *record.Tournament, f format.Format) (string, error) {
	src := t.Source.Format
	if t.Source.Text == "" || !(src == f || (src.IsLIN() && f.IsLIN())) {
		return "", fmt.Errorf("%w: %s to %s", ErrUnsupported, src, f)
	}
	return t.Source.Text, nil
}

// hand is what the passthrough reads from one hand's text.
type hand struct {
	deal    string
	players [4]string
	auction string
	play    string
	result  string
	event   string
	date    string
}

var (
	reLINTitle = regexp.MustCompile(`(?m)(?:^|\|)vg\|([^,|]*)`)
	rePBNEvent = regexp.MustCompile(`(?m)^\[Event\s+"([^"]*)"\]`)
	reRBNTitle = regexp.MustCompile(`(?m)^T\s+(.*)$`)
)

func segmentTitles(f format.Format, text string) []string {
	var re *regexp.Regexp
	switch {
	case f.IsLIN():
		re = reLINTitle
	case f == format.RBN:
		re = reRBNTitle
	default:
		return nil
	}
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

func extract(f format.Format, chunk string) (hand, error) {
	switch {
	case f.IsLIN():
		return extractLIN(chunk)
	case f == format.PBN:
		return extractPBN(chunk), nil
	}
	return hand{}, nil
}

// --- LIN ---

var reLINPair = regexp.MustCompile(`([a-z]{2})\|([^|]*)\|`)

// linSeats maps the position in a LIN pn or md list (South, West, North,
// East) to the record seat index (North, East, South, West).
var linSeats = [4]int{2, 3, 0, 1}

func extractLIN(chunk string) (hand, error) {
	var h hand
	var bids, cards []string
	for _, m := range reLINPair.FindAllStringSubmatch(chunk, -1) {
		switch m[1] {
		case "md":
			deal, err := linDeal(m[2])
			if err != nil {
				return h, err
			}
			h.deal = deal
		case "pn":
			for i, name := range strings.Split(m[2], ",") {
				if i < 4 {
					h.players[linSeats[i]] = strings.TrimSpace(name)
				}
			}
		case "mb":
			bids = append(bids, strings.TrimSuffix(m[2], "!"))
		case "pc":
			cards = append(cards, m[2])
		case "mc":
			h.result = m[2]
		}
	}
	h.auction = strings.Join(bids, " ")
	h.play = strings.Join(cards, " ")
	return h, nil
}

const ranks = "AKQJT98765432"

// linDeal converts a LIN md value ("3SAKH..D..C..,S..,S..,") to a PBN deal.
// A missing fourth hand is filled with the remaining cards.
func linDeal(md string) (string, error) {
	if md == "" {
		return "", errors.New("empty md field")
	}
	md = md[1:] // Dealer digit.
	lists := strings.Split(md, ",")
	var seats [4]string
	var used [4]map[byte]bool
	for s := range used {
		used[s] = make(map[byte]bool)
	}
	given := 0
	for i := 0; i < 4 && i < len(lists); i++ {
		suits, err := linHand(strings.TrimSpace(lists[i]))
		if err != nil {
			return "", err
		}
		if suits == nil {
			continue
		}
		given++
		for s, cs := range suits {
			for j := 0; j < len(cs); j++ {
				used[s][cs[j]] = true
			}
		}
		seats[linSeats[i]] = strings.Join(suits, ".")
	}
	if given == 3 {
		var rest [4]string
		for s := range rest {
			for j := 0; j < len(ranks); j++ {
				if !used[s][ranks[j]] {
					rest[s] += string(ranks[j])
				}
			}
		}
		for i := range seats {
			if seats[i] == "" {
				seats[i] = strings.Join(rest[:], ".")
			}
		}
	}
	for i := range seats {
		if seats[i] == "" {
			seats[i] = "-"
		}
	}
	return "N:" + strings.Join(seats[:], " "), nil
}

// linHand splits "SAKHQJD2C543" into four suit strings, spades first.
// An empty hand returns nil.
func linHand(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	suits := make([]string, 4)
	cur := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		switch c {
		case 'S':
			cur = 0
			continue
		case 'H':
			cur = 1
			continue
		case 'D':
			cur = 2
			continue
		case 'C':
			cur = 3
			continue
		}
		if c == '1' && i+1 < len(s) && s[i+1] == '0' {
			c = 'T'
			i++
		}
		if cur < 0 || !strings.ContainsRune(ranks, rune(c)) {
			return nil, fmt.Errorf("bad card %q in hand %q", s[i], s)
		}
		suits[cur] += string(c)
	}
	return suits, nil
}

// --- PBN ---

var rePBNTag = regexp.MustCompile(`^\[(\w+)\s+"([^"]*)"\]`)

var pbnSeats = map[string]int{"North": 0, "East": 1, "South": 2, "West": 3}

func extractPBN(chunk string) hand {
	var h hand
	var section *[]string
	var auction, play []string
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		m := rePBNTag.FindStringSubmatch(line)
		if m == nil {
			if section != nil {
				*section = append(*section, strings.Fields(line)...)
			}
			continue
		}
		section = nil
		switch m[1] {
		case "Deal":
			h.deal = m[2]
		case "Event":
			h.event = m[2]
		case "Date":
			h.date = m[2]
		case "Result":
			h.result = m[2]
		case "Auction":
			section = &auction
		case "Play":
			section = &play
		default:
			if s, ok := pbnSeats[m[1]]; ok {
				h.players[s] = m[2]
			}
		}
	}
	h.auction = strings.Join(auction, " ")
	h.play = strings.Join(play, " ")
	return h
}
