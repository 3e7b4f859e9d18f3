package tui

import (
	"fmt"
	"strings"

	"feeddeck/internal/feedapi"
	"feeddeck/internal/nav"
	"feeddeck/internal/render/article"
	"feeddeck/internal/stats"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.th.Title.Render("FeedDeck"))
	b.WriteString("\n")
	b.WriteString("arrows/wasd/hjkl: move | enter/o: open | e: unread filter | Q: mark all read | r: refresh | q: quit\n\n")

	b.WriteString(m.railView())
	b.WriteString("\n")
	b.WriteString(m.listView())
	if m.st.ArticleLoading || m.st.Article != nil {
		b.WriteString("\n")
		b.WriteString(m.articleView())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	return b.String()
}

// railView renders the All scope and the categories, with the expanded
// category's feeds indented beneath it.
func (m Model) railView() string {
	var b strings.Builder
	b.WriteString(m.th.Section.Render("Categories"))
	b.WriteString("\n")

	b.WriteString(m.railLine(nav.CategoryAnchor(nil), "  All"))
	for i := range m.st.Categories {
		cat := m.st.Categories[i]
		expanded := m.st.ExpandedCategory != nil && *m.st.ExpandedCategory == cat.ID

		chevron := "▸"
		if expanded {
			chevron = "▾"
		}
		line := m.th.Chevron.Render(chevron) + " " + cat.Title
		if m.agg != nil {
			if badge := stats.Badge(m.agg.CategoryUnread(cat.ID)); badge != "" {
				line += " " + m.th.UnreadBadge.Render(badge)
			}
		}
		b.WriteString(m.railLine(nav.CategoryAnchor(&cat.ID), line))

		if !expanded {
			continue
		}
		for _, feed := range m.st.CategoryFeeds[cat.ID] {
			b.WriteString(m.feedLine(feed))
		}
	}
	return b.String()
}

func (m Model) feedLine(feed feedapi.Feed) string {
	line := "    " + feed.Title
	if m.agg != nil {
		if badge := stats.Badge(m.agg.FeedUnread(feed.ID)); badge != "" {
			line += " " + m.th.UnreadBadge.Render(badge)
		}
	}
	if feed.Error != "" {
		line += " " + m.th.FeedError.Render("!")
	}
	return m.railLine(nav.FeedAnchor(feed.ID), line)
}

func (m Model) railLine(anchor, line string) string {
	active := m.st.ActiveNav == nav.LevelCategories && m.activeAnchor() == anchor
	if m.focusAnchor == anchor && active {
		return m.th.FocusedLine.Render(line) + "\n"
	}
	return m.th.RenderActiveLine(active, line) + "\n"
}

// activeAnchor is the rail row the selection currently rests on.
func (m Model) activeAnchor() string {
	if m.st.SelectedFeed != nil {
		return nav.FeedAnchor(*m.st.SelectedFeed)
	}
	return nav.CategoryAnchor(m.st.SelectedCategory)
}

func (m Model) listView() string {
	var b strings.Builder
	header := "Items"
	if m.st.UnreadOnly {
		header = "Items (unread)"
	}
	b.WriteString(m.th.Section.Render(header))
	b.WriteString("\n")

	if m.loading && len(m.st.Items) == 0 {
		b.WriteString("Loading items...\n")
		return b.String()
	}
	if len(m.st.Items) == 0 {
		b.WriteString("No items.\n")
		return b.String()
	}

	rows := m.listViewportRows()
	end := m.listTop + rows
	if end > len(m.st.Items) {
		end = len(m.st.Items)
	}
	for i := m.listTop; i < end; i++ {
		item := m.st.Items[i]
		selected := m.st.ActiveNav == nav.LevelItems &&
			m.st.SelectedItem != nil && *m.st.SelectedItem == item.ID

		marker := "  "
		if selected {
			marker = "> "
		}
		line := marker + m.th.StyleItemTitle(item, item.Title)
		if item.FeedTitle != "" {
			line += "  " + item.FeedTitle
		}
		if !item.Published.IsZero() {
			line += "  " + item.Published.Format("2006-01-02")
		}
		b.WriteString(m.th.RenderActiveLine(selected, line))
		b.WriteString("\n")
	}
	if end < len(m.st.Items) {
		b.WriteString(fmt.Sprintf("  … %d more\n", len(m.st.Items)-end))
	}
	return b.String()
}

func (m Model) articleView() string {
	var b strings.Builder
	if m.st.ArticleLoading {
		b.WriteString(m.th.StatusLoad.Render("Loading article..."))
		b.WriteString("\n")
		return b.String()
	}

	item := *m.st.Article
	b.WriteString(m.th.Section.Render(item.Title))
	b.WriteString("\n")
	if item.URL != "" {
		b.WriteString(item.URL)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	lines := article.ContentLines(item, m.contentWidth())
	limit := m.articleBodyRows()
	for i, line := range lines {
		if i >= limit {
			b.WriteString("…\n")
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.th.StatusWarn.Render("Error: " + m.err.Error())
	case m.loading:
		return m.th.StatusLoad.Render("Loading...")
	case m.status != "":
		return m.th.StatusInfo.Render(m.status)
	}
	if m.agg != nil {
		if badge := stats.Badge(m.agg.TotalUnread()); badge != "" {
			return m.th.UnreadBadge.Render(badge + " unread")
		}
	}
	return ""
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	if m.width > 100 {
		return 100
	}
	return m.width
}

func (m Model) articleBodyRows() int {
	if m.height <= 0 {
		return 20
	}
	rows := m.height/2 - 4
	if rows < 5 {
		rows = 5
	}
	return rows
}
