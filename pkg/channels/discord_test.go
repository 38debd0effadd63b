package channels

import (
	"strings"
	"testing"
)

func TestSplitMessage_ShortContentSingleChunk(t *testing.T) {
	chunks := splitMessage("hello", 1500)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("expected single chunk, got %v", chunks)
	}
}

func TestSplitMessage_PrefersNewlineBoundary(t *testing.T) {
	line := strings.Repeat("a", 80)
	content := strings.Repeat(line+"\n", 30)

	chunks := splitMessage(content, 1500)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1500 {
			t.Errorf("chunk %d exceeds limit: %d", i, len(chunk))
		}
	}
	// Splitting on a newline never cuts a line of a's in half.
	first := strings.TrimSpace(chunks[0])
	for _, l := range strings.Split(first, "\n") {
		if l != line {
			t.Fatalf("line cut mid-way: %q", l)
		}
	}
}

func TestSplitMessage_FallsBackToSpaceBoundary(t *testing.T) {
	word := strings.Repeat("b", 90)
	content := strings.TrimSpace(strings.Repeat(word+" ", 30))

	chunks := splitMessage(content, 1500)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1500 {
			t.Errorf("chunk %d exceeds limit: %d", i, len(chunk))
		}
	}
}

func TestSplitMessage_HardSplitWithoutBoundaries(t *testing.T) {
	content := strings.Repeat("c", 3200)

	chunks := splitMessage(content, 1500)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1500 || len(chunks[1]) != 1500 || len(chunks[2]) != 200 {
		t.Fatalf("unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSplitMessage_ReassemblesWithoutLoss(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("some digest text with words ", 200))

	chunks := splitMessage(content, 1500)
	joined := strings.Join(chunks, " ")
	if strings.Join(strings.Fields(joined), " ") != strings.Join(strings.Fields(content), " ") {
		t.Fatal("content lost or duplicated across chunks")
	}
}

func TestBaseChannel_AllowList(t *testing.T) {
	c := NewBaseChannel("discord", []string{"user-1", "user-2"})

	if !c.IsAllowed("user-1") {
		t.Error("expected user-1 allowed")
	}
	if c.IsAllowed("user-3") {
		t.Error("expected user-3 denied")
	}
}

func TestBaseChannel_EmptyAllowListAllowsAll(t *testing.T) {
	c := NewBaseChannel("discord", nil)
	if !c.IsAllowed("anyone") {
		t.Error("expected empty allow list to allow everyone")
	}
}

func TestBaseChannel_AllowListStripsAtPrefix(t *testing.T) {
	c := NewBaseChannel("discord", []string{"@user-1"})
	if !c.IsAllowed("user-1") {
		t.Error("expected @-prefixed entry to match bare id")
	}
}
