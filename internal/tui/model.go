package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"feeddeck/internal/coordinator"
	"feeddeck/internal/feedapi"
	"feeddeck/internal/nav"
	"feeddeck/internal/scroll"
	"feeddeck/internal/stats"
	"feeddeck/internal/tui/theme"
	"feeddeck/internal/urlstate"
)

type Service interface {
	Categories(ctx context.Context) ([]feedapi.Category, error)
	CategoryFeeds(ctx context.Context, categoryID int64) ([]feedapi.Feed, error)
	MarkItemRead(ctx context.Context, id int64) error
	MarkManyRead(ctx context.Context, scope feedapi.MarkScope) error
	SaveLocation(ctx context.Context, location string) error
}

type StatsProvider interface {
	RefreshFeedStats(ctx context.Context) error
	RefreshCategoryStats(ctx context.Context) error
	FeedUnread(id int64) int
	CategoryUnread(id int64) int
	TotalUnread() int
}

type categoriesLoadedMsg struct{ categories []feedapi.Category }

type categoriesErrorMsg struct{ err error }

type categoryFeedsLoadedMsg struct {
	categoryID int64
	feeds      []feedapi.Feed
}

type categoryFeedsErrorMsg struct{ err error }

type itemsLoadedMsg struct{ res coordinator.ListResult }

type articleLoadedMsg struct{ res coordinator.ItemResult }

type markReadDoneMsg struct {
	id  int64
	err error
}

type markScopeDoneMsg struct{ err error }

type locationSaveErrorMsg struct{ err error }

type statsRefreshedMsg struct{ err error }

type statsTickMsg struct{}

type scrollActionMsg struct{ action scroll.Action }

type openURLDoneMsg struct{ err error }

type clearStatusMsg struct{ id int }

type Model struct {
	service Service
	coord   *coordinator.Coordinator
	agg     StatsProvider
	writer  *urlstate.Writer
	seeder  *urlstate.Seeder
	seedSel urlstate.Selection
	driver  *scroll.Driver
	events  chan tea.Msg
	logger  *slog.Logger

	st nav.State
	th theme.Theme

	focusAnchor string
	listTop     int
	width       int
	height      int
	loading     bool
	status      string
	statusID    int
	err         error
	openURLFn   func(string) error

	requestTimeout time.Duration
}

func NewModel(service Service, coord *coordinator.Coordinator, agg StatsProvider, pageSize int) Model {
	m := Model{
		service:        service,
		coord:          coord,
		agg:            agg,
		st:             nav.NewState(pageSize),
		th:             theme.Default(),
		events:         make(chan tea.Msg, 8),
		logger:         slog.Default(),
		openURLFn:      openURLInBrowser,
		requestTimeout: 10 * time.Second,
	}
	m.driver = scroll.New(
		func() { m.events <- scrollActionMsg{action: scroll.ActionLoadMore} },
		func() { m.events <- scrollActionMsg{action: scroll.ActionRefreshTop} },
	)
	return m
}

// SetLocation wires the persisted-location writer and one-time seeder.
func (m *Model) SetLocation(writer *urlstate.Writer, seeder *urlstate.Seeder, raw string) {
	m.writer = writer
	m.seeder = seeder
	m.seedSel = urlstate.Decode(raw)
}

// SetCachedItems paints the last cached page before the first network
// response arrives.
func (m *Model) SetCachedItems(items []feedapi.Item) {
	m.st.Items = items
}

func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

func (m *Model) SetOpenURLFunc(fn func(string) error) {
	m.openURLFn = fn
}

func (m Model) Init() tea.Cmd {
	if m.service == nil {
		return nil
	}
	cmds := []tea.Cmd{
		loadCategoriesCmd(m.service, m.requestTimeout),
		m.fetchListCmd(m.st.ListParams()),
		m.waitEventCmd(),
	}
	if m.agg != nil {
		cmds = append(cmds, statsRefreshCmd(m.agg, m.requestTimeout), statsTickCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case categoriesLoadedMsg:
		m.st.Categories = msg.categories
		m.err = nil
		cmd := m.seedCmds()
		return m, cmd

	case categoriesErrorMsg:
		m.err = msg.err
		m.logger.Warn("category load failed", "err", msg.err)
		return m, nil

	case categoryFeedsLoadedMsg:
		m.st = nav.ApplyCategoryFeeds(m.st, msg.categoryID, msg.feeds)
		cmd := m.seedCmds()
		return m, cmd

	case categoryFeedsErrorMsg:
		m.err = msg.err
		m.logger.Warn("feed load failed", "err", msg.err)
		return m, nil

	case itemsLoadedMsg:
		if msg.res.Err != nil {
			if errors.Is(msg.res.Err, coordinator.ErrSuperseded) {
				return m, nil
			}
			m.loading = false
			m.err = msg.res.Err
			m.logger.Warn("item list fetch failed", "err", msg.res.Err)
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.st = nav.ApplyItems(m.st, msg.res.Items)
		m.clampListTop()
		return m, nil

	case articleLoadedMsg:
		if msg.res.Err != nil {
			if errors.Is(msg.res.Err, coordinator.ErrSuperseded) {
				return m, nil
			}
			if errors.Is(msg.res.Err, coordinator.ErrAlreadyRequested) {
				// The article is already current or its fetch is pending;
				// either way this rejection must not leave the pane stuck
				// on the loading placeholder.
				m.st.ArticleLoading = false
				return m, nil
			}
			m.st.ArticleLoading = false
			m.err = msg.res.Err
			m.logger.Warn("article fetch failed", "err", msg.res.Err)
			return m, nil
		}
		m.err = nil
		m.st = nav.ApplyArticle(m.st, msg.res.Item)
		return m, nil

	case markReadDoneMsg:
		if msg.err != nil {
			m.logger.Warn("mark read failed", "id", msg.id, "err", msg.err)
			return m, nil
		}
		if m.agg != nil {
			return m, statsRefreshCmd(m.agg, m.requestTimeout)
		}
		return m, nil

	case markScopeDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = "Marked all as read"
		m.statusID++
		cmds := []tea.Cmd{clearStatusCmd(m.statusID, 3 * time.Second)}
		if m.agg != nil {
			cmds = append(cmds, statsRefreshCmd(m.agg, m.requestTimeout))
		}
		return m, tea.Batch(cmds...)

	case locationSaveErrorMsg:
		m.logger.Warn("location save failed", "err", msg.err)
		return m, nil

	case statsRefreshedMsg:
		if msg.err != nil {
			m.logger.Warn("stats refresh failed", "err", msg.err)
		}
		return m, nil

	case statsTickMsg:
		cmds := []tea.Cmd{statsTickCmd()}
		if m.agg != nil {
			cmds = append(cmds, statsRefreshCmd(m.agg, m.requestTimeout))
		}
		return m, tea.Batch(cmds...)

	case scrollActionMsg:
		return m.handleScrollAction(msg.action)

	case openURLDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusID++
			return m, clearStatusCmd(m.statusID, 4*time.Second)
		}
		return m, nil

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.driver != nil {
			m.driver.Close()
		}
		if m.coord != nil {
			m.coord.Close()
		}
		return m, tea.Quit
	case "up", "w", "W", "k", "K":
		return m.dispatch(nav.CmdUp)
	case "down", "s", "S", "j", "J":
		return m.dispatch(nav.CmdDown)
	case "left", "a", "A", "h", "H":
		return m.dispatch(nav.CmdLeft)
	case "right", "d", "D", "l", "L":
		return m.dispatch(nav.CmdRight)
	case "enter", "o", "O":
		return m.dispatch(nav.CmdOpen)
	case "Q":
		return m.dispatch(nav.CmdMarkScopeRead)
	case "e", "E":
		return m.dispatch(nav.CmdToggleUnread)
	case "r", "R":
		m.loading = true
		return m, m.fetchListCmd(m.st.ListParams())
	}
	return m, nil
}

// dispatch advances the selection state machine and schedules the
// resulting effects.
func (m Model) dispatch(cmd nav.Command) (tea.Model, tea.Cmd) {
	next, effects := nav.HandleCommand(m.st, cmd)
	m.st = next
	c := m.runEffects(effects)
	m.observeListPosition()
	return m, c
}

func (m *Model) runEffects(effects []nav.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, eff := range effects {
		switch eff := eff.(type) {
		case nav.FetchList:
			m.loading = true
			cmds = append(cmds, m.fetchListCmd(eff.Params))
		case nav.FetchItem:
			cmds = append(cmds, m.fetchItemCmd(eff.ID))
		case nav.MarkRead:
			cmds = append(cmds, markReadCmd(m.service, eff.ID, m.requestTimeout))
		case nav.MarkScopeRead:
			cmds = append(cmds, markScopeCmd(m.service, eff.Scope, m.requestTimeout))
		case nav.WriteLocation:
			cmds = append(cmds, m.writeLocationCmd(eff))
		case nav.LoadCategoryFeeds:
			cmds = append(cmds, loadCategoryFeedsCmd(m.service, eff.CategoryID, m.requestTimeout))
		case nav.RefreshFeedStats:
			if m.agg != nil {
				cmds = append(cmds, statsRefreshCmd(m.agg, m.requestTimeout))
			}
		case nav.Focus:
			m.focusAnchor = eff.Anchor
		case nav.ScrollTop:
			m.listTop = 0
		case nav.OpenURL:
			cmds = append(cmds, openURLCmd(m.openURLFn, eff.URL))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// seedCmds attempts the one-time selection restore. A location naming a
// feed waits for that category's feed list before resolving.
func (m *Model) seedCmds() tea.Cmd {
	if m.seeder == nil || m.seeder.Done() || m.st.Categories == nil {
		return nil
	}

	var feeds []feedapi.Feed
	if m.seedSel.FeedID != nil {
		if m.seedSel.CategoryID != nil {
			cached, ok := m.st.CategoryFeeds[*m.seedSel.CategoryID]
			if !ok {
				return loadCategoryFeedsCmd(m.service, *m.seedSel.CategoryID, m.requestTimeout)
			}
			feeds = cached
		}
		if feeds == nil {
			feeds = []feedapi.Feed{}
		}
	}

	sel, ok := m.seeder.Seed(m.st.Categories, feeds)
	if !ok {
		return nil
	}

	var effects []nav.Effect
	if sel.FeedID != nil {
		if idx := indexOfFeed(feeds, *sel.FeedID); idx >= 0 {
			m.st, effects = nav.SelectFeed(m.st, feeds[idx])
			return m.runEffects(effects)
		}
	}
	m.st, effects = nav.SelectCategory(m.st, sel.CategoryID, false)
	return m.runEffects(effects)
}

func (m Model) handleScrollAction(action scroll.Action) (tea.Model, tea.Cmd) {
	switch action {
	case scroll.ActionLoadMore:
		m.st.PageSize += m.st.DefaultPageSize
		m.loading = true
		return m, tea.Batch(m.fetchListCmd(m.st.ListParams()), m.waitEventCmd())
	case scroll.ActionRefreshTop:
		m.loading = true
		return m, tea.Batch(m.fetchListCmd(m.st.ListParams()), m.waitEventCmd())
	}
	return m, m.waitEventCmd()
}

// observeListPosition feeds the paging driver whenever the item cursor
// moves, keeping the visible window up to date.
func (m *Model) observeListPosition() {
	if m.driver == nil || m.st.ActiveNav != nav.LevelItems {
		return
	}
	m.clampListTop()
	m.driver.Observe(scroll.Position{
		Offset:   m.listTop,
		Viewport: m.listViewportRows(),
		Content:  len(m.st.Items),
	})
}

// clampListTop keeps the selected item inside the visible window.
func (m *Model) clampListTop() {
	idx := m.selectedItemIndex()
	if idx < 0 {
		m.listTop = 0
		return
	}
	rows := m.listViewportRows()
	if idx < m.listTop {
		m.listTop = idx
	}
	if idx >= m.listTop+rows {
		m.listTop = idx - rows + 1
	}
}

func (m Model) selectedItemIndex() int {
	if m.st.SelectedItem == nil {
		return -1
	}
	for i, it := range m.st.Items {
		if it.ID == *m.st.SelectedItem {
			return i
		}
	}
	return -1
}

func (m Model) listViewportRows() int {
	if m.height <= 0 {
		return 10
	}
	rows := m.height/2 - 4
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m Model) fetchListCmd(params feedapi.ListItemsParams) tea.Cmd {
	if m.coord == nil {
		return nil
	}
	ch := m.coord.FetchList(params)
	return func() tea.Msg {
		return itemsLoadedMsg{res: <-ch}
	}
}

func (m Model) fetchItemCmd(id int64) tea.Cmd {
	if m.coord == nil {
		return nil
	}
	ch := m.coord.FetchItem(id)
	return func() tea.Msg {
		return articleLoadedMsg{res: <-ch}
	}
}

func (m Model) writeLocationCmd(eff nav.WriteLocation) tea.Cmd {
	if m.writer == nil {
		return nil
	}
	writer := m.writer
	sel := urlstate.Selection{CategoryID: eff.CategoryID, FeedID: eff.FeedID}
	return func() tea.Msg {
		if _, err := writer.Write(sel); err != nil {
			return locationSaveErrorMsg{err: err}
		}
		return nil
	}
}

func (m Model) waitEventCmd() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func loadCategoriesCmd(service Service, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		categories, err := service.Categories(ctx)
		if err != nil {
			return categoriesErrorMsg{err: err}
		}
		return categoriesLoadedMsg{categories: categories}
	}
}

func loadCategoryFeedsCmd(service Service, categoryID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		feeds, err := service.CategoryFeeds(ctx, categoryID)
		if err != nil {
			return categoryFeedsErrorMsg{err: err}
		}
		return categoryFeedsLoadedMsg{categoryID: categoryID, feeds: feeds}
	}
}

func markReadCmd(service Service, id int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return markReadDoneMsg{id: id, err: service.MarkItemRead(ctx, id)}
	}
}

func markScopeCmd(service Service, scope feedapi.MarkScope, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return markScopeDoneMsg{err: service.MarkManyRead(ctx, scope)}
	}
}

func statsRefreshCmd(agg StatsProvider, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := agg.RefreshFeedStats(ctx); err != nil {
			return statsRefreshedMsg{err: err}
		}
		return statsRefreshedMsg{err: agg.RefreshCategoryStats(ctx)}
	}
}

func statsTickCmd() tea.Cmd {
	return tea.Tick(stats.RefreshInterval, func(time.Time) tea.Msg {
		return statsTickMsg{}
	})
}

func openURLCmd(open func(string) error, rawURL string) tea.Cmd {
	return func() tea.Msg {
		if open == nil {
			return openURLDoneMsg{}
		}
		return openURLDoneMsg{err: open(rawURL)}
	}
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open url in browser: %w", err)
	}
	return nil
}

func indexOfFeed(feeds []feedapi.Feed, id int64) int {
	for i, f := range feeds {
		if f.ID == id {
			return i
		}
	}
	return -1
}
