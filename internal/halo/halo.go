// Package halo implements the neighbor-to-neighbor ghost-cell exchange
// protocol: direction-tagged messages on bounded per-tile mailboxes, sent
// once per iteration before the stencil runs.
package halo

import (
	"fmt"
	"log"

	"github.com/dramalf/wave2d/internal/wavetile"
)

// MailboxCapacity is the bounded capacity of each tile's inbound mailbox.
// Senders block once a receiver's mailbox is full, providing intrinsic
// backpressure.
const MailboxCapacity = 4

// Direction identifies the sender's outgoing side. The receiver maps it to
// the opposite ghost slot: a message tagged "top" (sent upward) is injected
// into the receiver's bottom ghost row, and so on.
type Direction int

const (
	DirUnknown Direction = 0
	DirTop     Direction = 1
	DirBottom  Direction = 2
	DirLeft    Direction = 3
	DirRight   Direction = 4
)

// Message is one ghost-row/column payload traveling between two tiles'
// mailboxes.
type Message struct {
	Data []float64
	Tag  Direction
}

// Mailbox is a tile's bounded inbound queue.
type Mailbox chan Message

// NewMailbox allocates a mailbox with the protocol's standard capacity.
func NewMailbox() Mailbox {
	return make(Mailbox, MailboxCapacity)
}

// Neighbors holds the four neighbor tile ids for one tile, each -1 if there
// is no neighbor in that direction (i.e. the tile is on that global edge).
type Neighbors struct {
	Top, Bottom, Left, Right int
}

// ComputeNeighbors derives the four neighbor tile ids from a tile's position
// in the Px×Py grid.
func ComputeNeighbors(tid, px, py int) Neighbors {
	x := tid % px
	y := tid / px

	n := Neighbors{Top: -1, Bottom: -1, Left: -1, Right: -1}
	if y > 0 {
		n.Top = tid - px
	}
	if y < py-1 {
		n.Bottom = tid + px
	}
	if x > 0 {
		n.Left = tid - 1
	}
	if x < px-1 {
		n.Right = tid + 1
	}
	return n
}

// Exchange runs one full round of the halo protocol for t: it sends the
// tile's inward-most interior rows/columns to each existing neighbor's
// mailbox, then drains inbox for exactly as many valid messages as there are
// neighbors, injecting each into the matching ghost slot.
//
// mailboxes must be indexed by tile id and sized Px*Py; inbox must be t's
// own mailbox (mailboxes[t.TID]). A message with an unrecognized tag is
// logged and dropped without counting toward the expected receive count, so
// a stray or corrupt message cannot silently complete the round early.
func Exchange(t *wavetile.Tile, inbox Mailbox, mailboxes []Mailbox, neighbors Neighbors) error {
	if err := send(t, mailboxes, neighbors); err != nil {
		return err
	}
	return receive(t, inbox, neighbors)
}

func send(t *wavetile.Tile, mailboxes []Mailbox, n Neighbors) error {
	if n.Top >= 0 {
		row, ok := t.ExtractRow(1)
		if !ok {
			return fmt.Errorf("halo: tile %d cannot extract row 1 for top neighbor", t.TID)
		}
		mailboxes[n.Top] <- Message{Data: row, Tag: DirTop}
	}
	if n.Bottom >= 0 {
		row, ok := t.ExtractRow(t.GridM - 2)
		if !ok {
			return fmt.Errorf("halo: tile %d cannot extract row %d for bottom neighbor", t.TID, t.GridM-2)
		}
		mailboxes[n.Bottom] <- Message{Data: row, Tag: DirBottom}
	}
	if n.Left >= 0 {
		col, ok := t.ExtractCol(1)
		if !ok {
			return fmt.Errorf("halo: tile %d cannot extract col 1 for left neighbor", t.TID)
		}
		mailboxes[n.Left] <- Message{Data: col, Tag: DirLeft}
	}
	if n.Right >= 0 {
		col, ok := t.ExtractCol(t.GridN - 2)
		if !ok {
			return fmt.Errorf("halo: tile %d cannot extract col %d for right neighbor", t.TID, t.GridN-2)
		}
		mailboxes[n.Right] <- Message{Data: col, Tag: DirRight}
	}
	return nil
}

func receive(t *wavetile.Tile, inbox Mailbox, n Neighbors) error {
	expected := 0
	for _, id := range []int{n.Top, n.Bottom, n.Left, n.Right} {
		if id >= 0 {
			expected++
		}
	}

	received := 0
	for received < expected {
		msg := <-inbox
		switch msg.Tag {
		case DirTop:
			// sender's top is our bottom ghost
			if !t.UpdateRow(t.GridM-1, msg.Data) {
				return fmt.Errorf("halo: tile %d failed to update bottom ghost row", t.TID)
			}
		case DirBottom:
			if !t.UpdateRow(0, msg.Data) {
				return fmt.Errorf("halo: tile %d failed to update top ghost row", t.TID)
			}
		case DirLeft:
			if !t.UpdateCol(t.GridN-1, msg.Data) {
				return fmt.Errorf("halo: tile %d failed to update right ghost col", t.TID)
			}
		case DirRight:
			if !t.UpdateCol(0, msg.Data) {
				return fmt.Errorf("halo: tile %d failed to update left ghost col", t.TID)
			}
		default:
			log.Printf("halo: tile %d dropped message with unknown direction tag %d", t.TID, msg.Tag)
			continue
		}
		received++
	}
	return nil
}
