package record

import (
	"fmt"
	"strings"
)

// Seat indexes are North, East, South, West.
const seats = "NESW"

// Hands splits a PBN deal ("N:<hand> <hand> <hand> <hand>") into the four
// hands indexed North, East, South, West. Missing hands ("-") come back empty.
func Hands(deal string) ([4]string, error) {
	var out [4]string
	if len(deal) < 2 || deal[1] != ':' {
		return out, fmt.Errorf("deal %q: missing seat prefix", deal)
	}
	first := strings.IndexByte(seats, deal[0]&^0x20)
	if first < 0 {
		return out, fmt.Errorf("deal %q: bad seat %q", deal, deal[0])
	}
	parts := strings.Fields(deal[2:])
	if len(parts) != 4 {
		return out, fmt.Errorf("deal %q: want 4 hands, got %d", deal, len(parts))
	}
	for i, h := range parts {
		if h == "-" {
			h = ""
		} else if strings.Count(h, ".") != 3 {
			return out, fmt.Errorf("deal %q: hand %q needs 4 suits", deal, h)
		}
		out[(first+i)%4] = h
	}
	return out, nil
}

var honourPoints = map[byte]int{'A': 4, 'K': 3, 'Q': 2, 'J': 1}

// HCP returns the high-card points of each seat, North first.
func HCP(deal string) ([4]int, error) {
	var pts [4]int
	hands, err := Hands(deal)
	if err != nil {
		return pts, err
	}
	for i, h := range hands {
		for j := 0; j < len(h); j++ {
			pts[i] += honourPoints[h[j]&^0x20]
		}
	}
	return pts, nil
}

// Fingerprint is a canonical form of a deal, independent of which seat the
// PBN text starts with, so the same cards compare equal across files.
func Fingerprint(deal string) (string, error) {
	hands, err := Hands(deal)
	if err != nil {
		return "", err
	}
	return "N:" + strings.ToUpper(strings.Join(hands[:], " ")), nil
}

// Dealer returns the seat index (0 = North) that deals board n.
func Dealer(n int) int {
	if n < 1 {
		return 0
	}
	return (n - 1) % 4
}
