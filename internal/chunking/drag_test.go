package chunking

import (
	"testing"

	"chunkforge/internal/models"
)

func TestDragLifecycle(t *testing.T) {
	chunks := twoChunks(t)
	var s DragSession

	if s.State() != DragIdle {
		t.Fatalf("fresh session must be idle")
	}
	if !s.Begin(chunks, chunks[0].ChunkID, EdgeEnd) {
		t.Fatalf("begin refused on a valid chunk")
	}
	if s.State() != DragActive {
		t.Fatalf("begin did not activate the session")
	}

	pos, ok := s.Move(editDoc, 12)
	if !ok || pos != 18 {
		t.Fatalf("move preview = %d, want 18", pos)
	}
	// Nothing is committed while the gesture is live.
	if sOff, eOff := span(t, chunks[0]); sOff != 0 || eOff != 29 {
		t.Fatalf("move must not mutate the list")
	}

	out := s.Release(chunks, editDoc)
	if s.State() != DragIdle {
		t.Fatalf("release must return to idle")
	}
	if _, e := span(t, out[0]); e != 18 {
		t.Fatalf("release did not commit the preview")
	}
}

func TestDragBeginRefusals(t *testing.T) {
	chunks := twoChunks(t)
	var s DragSession

	if s.Begin(chunks, "missing", EdgeEnd) {
		t.Fatalf("unknown chunk must refuse")
	}
	if s.Begin(chunks, chunks[0].ChunkID, Edge("middle")) {
		t.Fatalf("bad edge must refuse")
	}
	legacy := append(chunks, models.Chunk{ChunkID: "legacy", Text: "no offsets"})
	if s.Begin(legacy, "legacy", EdgeEnd) {
		t.Fatalf("offsetless chunk must refuse")
	}
	if s.State() != DragIdle {
		t.Fatalf("refused begins must leave the session idle")
	}

	if !s.Begin(chunks, chunks[0].ChunkID, EdgeEnd) {
		t.Fatalf("valid begin failed")
	}
	if s.Begin(chunks, chunks[1].ChunkID, EdgeStart) {
		t.Fatalf("second gesture must refuse while one is active")
	}
}

func TestDragMoveRequiresActiveGesture(t *testing.T) {
	var s DragSession
	if _, ok := s.Move(editDoc, 10); ok {
		t.Fatalf("move on idle session must report failure")
	}
}

func TestDragCancelDiscardsPreview(t *testing.T) {
	chunks := twoChunks(t)
	var s DragSession
	s.Begin(chunks, chunks[0].ChunkID, EdgeEnd)
	s.Move(editDoc, 12)
	s.Cancel()
	if s.State() != DragIdle {
		t.Fatalf("cancel must idle the session")
	}
	if _, e := span(t, chunks[0]); e != 29 {
		t.Fatalf("cancel must leave chunks untouched")
	}
	// The session is reusable after cancel.
	if !s.Begin(chunks, chunks[1].ChunkID, EdgeStart) {
		t.Fatalf("session must accept a new gesture after cancel")
	}
}

func TestDragReleaseWithoutMoveIsNoOp(t *testing.T) {
	chunks := twoChunks(t)
	var s DragSession
	s.Begin(chunks, chunks[0].ChunkID, EdgeEnd)
	out := s.Release(chunks, editDoc)
	if sOff, eOff := span(t, out[0]); sOff != 0 || eOff != 29 {
		t.Fatalf("release without move changed offsets to [%d,%d)", sOff, eOff)
	}
}

func TestDragStartEdgePreview(t *testing.T) {
	chunks := twoChunks(t)
	var s DragSession
	s.Begin(chunks, chunks[1].ChunkID, EdgeStart)
	pos, ok := s.Move(editDoc, 21)
	if !ok || pos != 18 {
		t.Fatalf("start preview = %d, want 18", pos)
	}
	out := s.Release(chunks, editDoc)
	if sOff, _ := span(t, out[1]); sOff != 18 {
		t.Fatalf("start edge commit = %d, want 18", sOff)
	}
}
