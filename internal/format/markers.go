package format

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// markers holds the line patterns that locate hands in one dialect.
// hand must capture the board number in the group named "board" and may
// capture a room letter in "room". room, when set, names the room of the
// most recent hand. segment, when set, starts a new segment.
type markers struct {
	segment *regexp.Regexp
	hand    *regexp.Regexp
	room    *regexp.Regexp
}

var (
	linMarkers = markers{
		segment: regexp.MustCompile(`(?:^|\|)vg\|`),
		hand:    regexp.MustCompile(`qx\|(?P<room>[oc]?)(?P<board>\d+)`),
	}
	textMarkers = markers{
		hand: regexp.MustCompile(`(?i)^\s*(?:board|bd\.?)\s*(?:no\.?\s*)?(?P<board>\d+)`),
		room: regexp.MustCompile(`(?i)^\s*(open|closed)\s+room`),
	}
	markerTable = map[Format]markers{
		LIN:    linMarkers,
		LINRP:  linMarkers,
		LINVG:  linMarkers,
		LINTRN: linMarkers,
		PBN: {
			segment: regexp.MustCompile(`^\[Stage\s+"`),
			hand:    regexp.MustCompile(`^\[Board\s+"(?P<board>\d+)"\]`),
			room:    regexp.MustCompile(`^\[Room\s+"(Open|Closed)"\]`),
		},
		RBN: {
			segment: regexp.MustCompile(`^S\s`),
			hand:    regexp.MustCompile(`^B\s+(?P<board>\d+)`),
			room:    regexp.MustCompile(`^R\s+([OC])`),
		},
		RBX: {
			segment: regexp.MustCompile(`S\{`),
			hand:    regexp.MustCompile(`B\{(?P<board>\d+)`),
			room:    regexp.MustCompile(`R\{([OC])`),
		},
		TXT: textMarkers,
		EML: textMarkers,
		REC: textMarkers,
	}
)

// Mark is one hand found in a raw file.
type Mark struct {
	Segment int    // 1-based.
	Board   int
	Room    string // "o", "c" or "".
	Line    int    // 1-based line of the hand marker.
}

// HandScan is the raw structure of a hand-record file.
type HandScan struct {
	Lines int
	Marks []Mark

	// Chunks[i] is the raw text of hand i, from its marker up to the next
	// marker. Text before the first marker belongs to no hand.
	Chunks []string
}

func (s *HandScan) appendChunk(text string) {
	if n := len(s.Chunks); n > 0 && text != "" {
		s.Chunks[n-1] += text
	}
}

// submatch returns group i of a FindAllStringSubmatchIndex match, or "".
func submatch(line string, loc []int, i int) string {
	if i < 0 || loc[2*i] < 0 {
		return ""
	}
	return line[loc[2*i]:loc[2*i+1]]
}

// Boards returns the number of distinct (segment, board) pairs.
func (s HandScan) Boards() int {
	seen := make(map[[2]int]bool, len(s.Marks))
	for _, m := range s.Marks {
		seen[[2]int{m.Segment, m.Board}] = true
	}
	return len(seen)
}

// ScanHands reads r line by line and locates every hand marker of format f.
// It never interprets the hands themselves.
func ScanHands(r io.Reader, f Format) (HandScan, error) {
	mk, ok := markerTable[f]
	if !ok {
		return HandScan{}, errUnknownFormat(f)
	}

	var scan HandScan
	segment := 1
	seenHandInSegment := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		scan.Lines++
		line := sc.Text()

		segLine := mk.segment != nil && mk.segment.MatchString(line)
		if segLine {
			if seenHandInSegment {
				segment++
				seenHandInSegment = false
			}
		}

		locs := mk.hand.FindAllStringSubmatchIndex(line, -1)
		switch {
		case len(locs) == 0 && !segLine:
			scan.appendChunk(line + "\n")
		case len(locs) > 0:
			scan.appendChunk(line[:locs[0][0]])
		}
		for i, loc := range locs {
			end := len(line)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			board, err := strconv.Atoi(submatch(line, loc, mk.hand.SubexpIndex("board")))
			if err != nil {
				scan.appendChunk(line[loc[0]:end])
				continue
			}
			scan.Marks = append(scan.Marks, Mark{
				Segment: segment,
				Board:   board,
				Room:    submatch(line, loc, mk.hand.SubexpIndex("room")),
				Line:    scan.Lines,
			})
			scan.Chunks = append(scan.Chunks, line[loc[0]:end])
			if end == len(line) {
				scan.appendChunk("\n")
			}
			seenHandInSegment = true
		}

		if mk.room != nil && len(scan.Marks) > 0 {
			if m := mk.room.FindStringSubmatch(line); m != nil {
				last := &scan.Marks[len(scan.Marks)-1]
				if last.Room == "" {
					last.Room = strings.ToLower(m[1][:1])
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return HandScan{}, err
	}
	return scan, nil
}

type errUnknownFormat Format

func (e errUnknownFormat) Error() string {
	return "no hand markers for format " + Format(e).String()
}
