package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"feedscroll/internal/config"
	"feedscroll/internal/domain"
	"feedscroll/internal/eventbus"
	"feedscroll/internal/paging"
	"feedscroll/internal/scrollview"
)

// Model renders the infinitely scrolling feed. Scrolling moves a
// window (offset..offset+height) over the loaded items; every
// movement republishes the visible positions to the tracker and runs
// the paging trigger checks against the window edges.
type Model struct {
	logger  logrus.FieldLogger
	bus     eventbus.EventBus
	cfg     *config.Config
	ctrl    *paging.Controller[domain.PageKey, domain.FeedItem]
	tracker *scrollview.Tracker
	anchor  *scrollview.Anchor

	styles  *Styles
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	width    int
	height   int
	offset   int // index of the first rendered item
	status   paging.Status
	errText  string
	showHelp bool
}

// NewModel creates a new UI model
func NewModel(
	logger logrus.FieldLogger,
	bus eventbus.EventBus,
	cfg *config.Config,
	ctrl *paging.Controller[domain.PageKey, domain.FeedItem],
	tracker *scrollview.Tracker,
	anchor *scrollview.Anchor,
) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		logger:  logger.WithField("component", "ui"),
		bus:     bus,
		cfg:     cfg,
		ctrl:    ctrl,
		tracker: tracker,
		anchor:  anchor,
		styles:  NewStyles(),
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
		status:  paging.StatusLoadingFirstPage,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case DeferredMsg:
		msg.Fn()
		return m, nil

	case scrollStepMsg:
		return m, m.stepScroll(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.scrollBy(-1)
	case key.Matches(msg, m.keys.Down):
		m.scrollBy(1)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(-m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(m.listHeight())
	case key.Matches(msg, m.keys.Home):
		return m, m.jumpTo(0)
	case key.Matches(msg, m.keys.End):
		return m, m.jumpTo(m.maxOffset())
	case key.Matches(msg, m.keys.Retry):
		m.errText = ""
		m.ctrl.RetryLastFailedRequest()
	case key.Matches(msg, m.keys.Refresh):
		m.errText = ""
		m.offset = 0
		m.bus.Publish(domain.RefreshRequestedEvent{})
		m.ctrl.Refresh(nil)
		m.syncViewport()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch ev := event.(type) {
	case domain.PageLoadedEvent:
		if ev.Version != m.ctrl.Version() {
			m.logger.WithField("key", ev.Key).Debug("Dropping stale page response")
			return
		}
		if ev.Direction == paging.DirectionPrevious.String() {
			m.ctrl.PrependPage(ev.Items, ev.PrevKey, nil)
			m.offset = m.anchor.Current()
		} else {
			var prev *domain.PageKey
			if ev.Direction == paging.DirectionInitial.String() {
				prev = ev.PrevKey
			}
			m.ctrl.AppendPage(ev.Items, ev.NextKey, prev)
		}
		m.syncViewport()

	case domain.PageFailedEvent:
		if ev.Version != m.ctrl.Version() {
			m.logger.WithField("key", ev.Key).Debug("Dropping stale page failure")
			return
		}
		m.errText = ev.Err.Error()
		m.ctrl.FailPage(ev.Key, ev.Err)

	case domain.StatusChangedEvent:
		m.status = m.ctrl.Status()
	}
}

func (m *Model) scrollBy(delta int) {
	m.scrollTo(m.offset + delta)
}

// jumpTo routes Home/End navigation through the scroll planner: far
// destinations land in one jump, destinations already near the
// visible range slide a line at a time over the plan's duration.
func (m *Model) jumpTo(target int) tea.Cmd {
	first, fok := m.tracker.FirstVisibleIndex()
	last, lok := m.tracker.LastVisibleIndex()
	plan := scrollview.PlanScroll(target, first, last, fok && lok)
	if !plan.Animate {
		m.scrollTo(plan.Target)
		return nil
	}

	steps := plan.Target - m.offset
	if steps < 0 {
		steps = -steps
	}
	if steps == 0 {
		return nil
	}
	every := plan.Duration / time.Duration(steps)
	return tickScroll(scrollStepMsg{target: plan.Target, every: every})
}

func (m *Model) stepScroll(msg scrollStepMsg) tea.Cmd {
	switch {
	case m.offset < msg.target:
		m.scrollTo(m.offset + 1)
	case m.offset > msg.target:
		m.scrollTo(m.offset - 1)
	}
	if m.offset == msg.target {
		return nil
	}
	return tickScroll(msg)
}

func tickScroll(msg scrollStepMsg) tea.Cmd {
	return tea.Tick(msg.every, func(time.Time) tea.Msg { return msg })
}

func (m *Model) scrollTo(target int) {
	if target < 0 {
		target = 0
	}
	if max := m.maxOffset(); target > max {
		target = max
	}
	m.offset = target
	m.anchor.Set(target)
	m.syncViewport()
}

// syncViewport republishes the visible item positions and runs the
// trigger checks against the new window edges.
func (m *Model) syncViewport() {
	items := m.ctrl.Items()
	lh := m.listHeight()

	if max := m.maxOffset(); m.offset > max {
		m.offset = max
	}

	end := m.offset + lh
	if end > len(items) {
		end = len(items)
	}

	positions := make([]scrollview.ItemPosition, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		positions = append(positions, scrollview.ItemPosition{
			Index:        i,
			LeadingEdge:  float64(i-m.offset) / float64(lh),
			TrailingEdge: float64(i-m.offset+1) / float64(lh),
		})
	}
	m.tracker.Update(positions)

	if last, ok := m.tracker.LastVisibleIndex(); ok {
		m.ctrl.CheckNextPageRequest(last)
	}
	if first, ok := m.tracker.FirstVisibleIndex(); ok {
		m.ctrl.CheckPreviousPageRequest(first)
	}
}

func (m *Model) listHeight() int {
	lh := m.height - 4
	if lh < 1 {
		lh = 1
	}
	return lh
}

func (m *Model) maxOffset() int {
	max := len(m.ctrl.Items()) - m.listHeight()
	if max < 0 {
		max = 0
	}
	return max
}

// View implements tea.Model
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("feedscroll"))
	b.WriteString("\n\n")

	items := m.ctrl.Items()
	lh := m.listHeight()
	end := m.offset + lh
	if end > len(items) {
		end = len(items)
	}

	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderItem(items[i]))
		b.WriteString("\n")
	}
	for i := end - m.offset; i < lh; i++ {
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))

	return b.String()
}

func (m *Model) renderItem(item domain.FeedItem) string {
	line := fmt.Sprintf("%s %s %s",
		m.styles.Timestamp.Render(item.CreatedAt.Format("15:04")),
		m.styles.Author.Render(fmt.Sprintf("@%-9s", item.Author)),
		m.styles.Body.Render(item.Body),
	)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m *Model) statusLine() string {
	count := len(m.ctrl.Items())

	switch m.status {
	case paging.StatusLoadingFirstPage:
		return m.styles.StatusLoading.Render(m.spinner.View() + " loading feed…")
	case paging.StatusLoadingNextPage:
		return m.styles.Status.Render(fmt.Sprintf("%d items · ", count)) +
			m.styles.StatusLoading.Render(m.spinner.View()+" loading more…")
	case paging.StatusLoadingPreviousPage:
		return m.styles.Status.Render(fmt.Sprintf("%d items · ", count)) +
			m.styles.StatusLoading.Render(m.spinner.View()+" loading earlier…")
	case paging.StatusCompleted:
		return m.styles.StatusDone.Render(fmt.Sprintf("%d items · end of feed", count))
	case paging.StatusNextCompleted:
		return m.styles.Status.Render(fmt.Sprintf("%d items · caught up, scroll up for earlier posts", count))
	case paging.StatusPreviousCompleted:
		return m.styles.Status.Render(fmt.Sprintf("%d items · at the beginning", count))
	case paging.StatusNoItemsFound:
		return m.styles.Dim.Render("nothing here yet")
	case paging.StatusFirstPageError, paging.StatusNextPageError, paging.StatusPreviousPageError:
		msg := m.errText
		if msg == "" {
			msg = "fetch failed"
		}
		return m.styles.StatusError.Render("✗ "+msg) + m.styles.Status.Render(" · press r to retry")
	default:
		return m.styles.Status.Render(fmt.Sprintf("%d items", count))
	}
}
