package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"feeddeck/internal/feedapi"
)

func TestStyleItemTitle_ByState(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	unread := th.StyleItemTitle(feedapi.Item{Read: feedapi.Unread}, "Unread")
	if !strings.Contains(unread, "\x1b[") {
		t.Fatalf("expected styled unread title, got %q", unread)
	}

	read := th.StyleItemTitle(feedapi.Item{Read: feedapi.Read}, "Read")
	if !strings.Contains(read, "\x1b[") {
		t.Fatalf("expected styled read title, got %q", read)
	}

	bookmarked := th.StyleItemTitle(feedapi.Item{Bookmarked: 1}, "Bookmarked")
	if !strings.Contains(bookmarked, "\x1b[") {
		t.Fatalf("expected styled bookmarked title, got %q", bookmarked)
	}

	if got := th.StyleItemTitle(feedapi.Item{}, ""); got != "" {
		t.Fatalf("empty title must stay empty, got %q", got)
	}
}

func TestRenderActiveLine(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	if got := th.RenderActiveLine(false, "plain"); got != "plain" {
		t.Fatalf("inactive line must pass through, got %q", got)
	}
	if got := th.RenderActiveLine(true, "active"); !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected styled active line, got %q", got)
	}
}
