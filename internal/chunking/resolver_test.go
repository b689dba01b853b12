package chunking

import "testing"

func checkInvariants(t *testing.T, document string, rs []Resolved) {
	t.Helper()
	for i, r := range rs {
		if r.Start < 0 || r.Start >= r.End || r.End > len(document) {
			t.Fatalf("chunk %d: bad range [%d,%d) in doc of %d", i, r.Start, r.End, len(document))
		}
		if r.Text != document[r.Start:r.End] {
			t.Fatalf("chunk %d: text is not the document slice", i)
		}
		if r.Start != 0 && document[r.Start-1] != '\n' {
			t.Fatalf("chunk %d: start %d not line-aligned", i, r.Start)
		}
		if r.End != len(document) && document[r.End-1] != '\n' {
			t.Fatalf("chunk %d: end %d not line-aligned", i, r.End)
		}
	}
}

func TestResolveExactMatch(t *testing.T) {
	doc := "alpha beta\ngamma delta\nepsilon\n"
	frags := fragmentsFromTexts([]string{"alpha beta\n", "gamma delta\n", "epsilon\n"})
	rs := ResolveOffsets(doc, frags)
	if len(rs) != 3 {
		t.Fatalf("expected 3 resolved, got %d", len(rs))
	}
	checkInvariants(t, doc, rs)
	wantStarts := []int{0, 11, 23}
	for i, r := range rs {
		if r.Start != wantStarts[i] {
			t.Fatalf("chunk %d: start %d want %d", i, r.Start, wantStarts[i])
		}
		if !r.Placed {
			t.Fatalf("chunk %d: expected placed", i)
		}
	}
}

func TestResolveSnapsMidLineBoundaries(t *testing.T) {
	doc := "one two three\nfour five six\n"
	// Fragment starts and ends mid-line; both ends must expand outward.
	rs := ResolveOffsets(doc, fragmentsFromTexts([]string{"two three\nfour"}))
	if len(rs) != 1 {
		t.Fatalf("expected 1 resolved, got %d", len(rs))
	}
	checkInvariants(t, doc, rs)
	if rs[0].Start != 0 || rs[0].End != len(doc) {
		t.Fatalf("expected full-doc snap, got [%d,%d)", rs[0].Start, rs[0].End)
	}
}

func TestResolveTrimmedRetry(t *testing.T) {
	doc := "first line\nsecond line\n"
	// Raw fragment carries padding that does not exist in the document.
	rs := ResolveOffsets(doc, fragmentsFromTexts([]string{"  second line  "}))
	if len(rs) != 1 {
		t.Fatalf("expected 1 resolved, got %d", len(rs))
	}
	checkInvariants(t, doc, rs)
	if !rs[0].Placed {
		t.Fatalf("trimmed match should count as placed")
	}
	if rs[0].Text != "second line\n" {
		t.Fatalf("unexpected text: %q", rs[0].Text)
	}
}

func TestResolveSequentialFallback(t *testing.T) {
	doc := "aaa\nbbb\nccc\n"
	rs := ResolveOffsets(doc, fragmentsFromTexts([]string{"aaa\n", "zzz not here"}))
	if len(rs) != 2 {
		t.Fatalf("expected 2 resolved, got %d", len(rs))
	}
	checkInvariants(t, doc, rs)
	if !rs[0].Placed {
		t.Fatalf("first fragment should be placed")
	}
	if rs[1].Placed {
		t.Fatalf("missing fragment must be flagged as not placed")
	}
	if rs[1].Start != 4 {
		t.Fatalf("fallback should start at the cursor, got %d", rs[1].Start)
	}
}

func TestResolveCursorIsMonotonic(t *testing.T) {
	doc := "dup\ndup\ndup\n"
	rs := ResolveOffsets(doc, fragmentsFromTexts([]string{"dup\n", "dup\n", "dup\n"}))
	checkInvariants(t, doc, rs)
	for i := 1; i < len(rs); i++ {
		if rs[i].Start < rs[i-1].End {
			t.Fatalf("chunk %d begins before previous end", i)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	doc := "x one\ny two\nz three\n"
	frags := fragmentsFromTexts([]string{"x one\n", "y two\nz", "three"})
	a := ResolveOffsets(doc, frags)
	b := ResolveOffsets(doc, frags)
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Start != b[i].Start || a[i].End != b[i].End || a[i].Placed != b[i].Placed {
			t.Fatalf("chunk %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSnapLineBoundsAlreadyAligned(t *testing.T) {
	doc := "ab\ncd\nef\n"
	s, e := snapToLineBounds(doc, 3, 6)
	if s != 3 || e != 6 {
		t.Fatalf("aligned range must not move, got [%d,%d)", s, e)
	}
}

func TestSnapLineEndIncludesNewline(t *testing.T) {
	doc := "abcd\nefgh\n"
	if got := snapLineEnd(doc, 2); got != 5 {
		t.Fatalf("expected snap to 5, got %d", got)
	}
	if got := snapLineEnd(doc, len(doc)); got != len(doc) {
		t.Fatalf("document end must stay put, got %d", got)
	}
}

func TestSnapLineStartBackward(t *testing.T) {
	doc := "abcd\nefgh\n"
	if got := snapLineStart(doc, 7); got != 5 {
		t.Fatalf("expected snap to 5, got %d", got)
	}
	if got := snapLineStart(doc, 5); got != 5 {
		t.Fatalf("aligned start must stay put, got %d", got)
	}
}
