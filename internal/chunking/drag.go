package chunking

import "chunkforge/internal/models"

type DragState int

const (
	DragIdle DragState = iota
	DragActive
)

// DragSession is the single-gesture state machine behind boundary drags.
// One gesture at a time: Begin refuses while another drag is active, and the
// list is only mutated by Release. Moves compute preview offsets; Cancel
// discards the preview with nothing to roll back.
type DragSession struct {
	state     DragState
	chunkID   string
	edge      Edge
	origStart int
	origEnd   int
	preview   int
}

func (s *DragSession) State() DragState { return s.state }

// Begin starts a gesture on one edge of an offset-bearing chunk. Returns
// false, leaving the session idle, when a gesture is already active or the
// chunk cannot be dragged.
func (s *DragSession) Begin(chunks []models.Chunk, chunkID string, edge Edge) bool {
	if s.state != DragIdle {
		return false
	}
	if edge != EdgeStart && edge != EdgeEnd {
		return false
	}
	i := indexByID(chunks, chunkID)
	if i < 0 || !chunks[i].HasOffsets() {
		return false
	}
	start, end, _ := chunks[i].Span()
	s.state = DragActive
	s.chunkID = chunkID
	s.edge = edge
	s.origStart = start
	s.origEnd = end
	if edge == EdgeStart {
		s.preview = start
	} else {
		s.preview = end
	}
	return true
}

// Move updates the gesture's preview boundary from a raw pointer offset and
// returns the clamped, snapped position the edge would take. No list state
// changes until Release.
func (s *DragSession) Move(document string, rawOffset int) (int, bool) {
	if s.state != DragActive {
		return 0, false
	}
	switch s.edge {
	case EdgeStart:
		s.preview = snapLineStart(document, clamp(rawOffset, 0, s.origEnd-1))
	case EdgeEnd:
		s.preview = snapLineEnd(document, clamp(rawOffset, s.origStart+1, len(document)))
	}
	return s.preview, true
}

// Release commits the gesture through Resize and returns the session to
// idle. Releasing without a prior Move commits the original boundary, which
// Resize treats as a no-op change.
func (s *DragSession) Release(chunks []models.Chunk, document string) []models.Chunk {
	if s.state != DragActive {
		return chunks
	}
	out := Resize(chunks, document, s.chunkID, s.edge, s.preview)
	s.reset()
	return out
}

// Cancel discards the gesture.
func (s *DragSession) Cancel() {
	if s.state != DragActive {
		return
	}
	s.reset()
}

func (s *DragSession) reset() {
	*s = DragSession{}
}
