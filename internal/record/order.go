package record

// Order is the sequence in which open- and closed-room results of the same
// boards appear in a file.
type Order int

const (
	OrderUnknown Order = iota
	OrderOCOC          // Open then closed, board by board (standard).
	OrderCOCO          // Closed then open, board by board.
	OrderOOCC          // All open results of a segment, then all closed.
)

func (o Order) String() string {
	switch o {
	case OrderOCOC:
		return "OCOC"
	case OrderCOCO:
		return "COCO"
	case OrderOOCC:
		return "OOCC"
	}
	return "unknown"
}

// InferOrder guesses the room order from the case sequence of a file.
// Files without room information, or with only one room, are OCOC.
func InferOrder(ids []CaseID) Order {
	var rooms []CaseID
	distinct := make(map[Room]bool, 2)
	for _, id := range ids {
		if id.Room != RoomNone {
			rooms = append(rooms, id)
			distinct[id.Room] = true
		}
	}
	if len(distinct) < 2 {
		return OrderOCOC
	}

	// Two leading results from the same room mean the rooms are grouped.
	if rooms[0].Room == rooms[1].Room {
		return OrderOOCC
	}

	first := rooms[0]
	second := rooms[1]
	if first.Board == second.Board && first.Segment == second.Segment {
		if first.Room == RoomClosed {
			return OrderCOCO
		}
		return OrderOCOC
	}
	return OrderUnknown
}
