package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"animerec/internal/domain"
	"animerec/internal/history"
)

// RecommenderPort is the TUI-facing subset of the recommendation service.
type RecommenderPort interface {
	Recommend(name string, k int) (domain.Result, error)
	SearchGenres(text string, k int) (domain.Result, error)
	TopRated(n int) []domain.Item
	MostPopular(n int) []domain.Item
	Summary() string
}

// HistorySink receives every successful query, e.g. for persistence.
type HistorySink interface {
	Append(e history.Entry) error
}

type page int

const (
	pageRecommend page = iota
	pageHome
)

// Options configures the TUI.
type Options struct {
	K       int
	TopN    int
	History *history.Log
	Sink    HistorySink
}

// NotFoundMessage is shown when a title is not in the catalog.
const NotFoundMessage = "Title not found. Try another title."

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  RecommenderPort
	opts     Options
	input    textinput.Model
	viewport viewport.Model
	page     page
	result   *domain.Result
	status   string
	ready    bool
}

// New creates a new TUI model instance.
func New(service RecommenderPort, opts Options) Model {
	if opts.History == nil {
		opts.History = history.New(50)
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Anime title (prefix ? to search genres), Enter to search"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		opts:     opts,
		input:    ti,
		viewport: vp,
		status:   "Loaded. Type a title. Tab switches to Home.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, input box, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.page == pageHome {
				m.page = pageRecommend
				m.status = "Recommend"
			} else {
				m.page = pageHome
				m.status = "Home"
			}
			m.refresh()
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.query(q)
				m.page = pageRecommend
				m.refresh()
				return m, nil
			}
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) query(q string) {
	var (
		res domain.Result
		err error
	)
	if genres, ok := strings.CutPrefix(q, "?"); ok {
		res, err = m.service.SearchGenres(strings.TrimSpace(genres), m.opts.K)
	} else {
		res, err = m.service.Recommend(q, m.opts.K)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		m.status = NotFoundMessage
		m.result = nil
		return
	case err != nil:
		m.status = "Error: " + err.Error()
		m.result = nil
		return
	}
	m.result = &res
	m.status = fmt.Sprintf("Recommendations for %q", q)
	e := history.Entry{Query: q, Results: res.Results, At: time.Now()}
	m.opts.History.Append(e)
	if m.opts.Sink != nil {
		if err := m.opts.Sink.Append(e); err != nil {
			m.status += " (history not saved: " + err.Error() + ")"
		}
	}
}

func (m *Model) refresh() {
	if m.page == pageHome {
		m.viewport.SetContent(m.renderHome())
	} else {
		m.viewport.SetContent(m.renderRecommend())
	}
	m.viewport.GotoTop()
}

// View renders the TUI layout and current page.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Anime Recommender · Recommend"
	if m.page == pageHome {
		title = "Anime Recommender · Home"
	}
	header := headerStyle.Render(title)
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.service.Summary())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderRecommend() string {
	if m.result == nil {
		return "No results yet."
	}
	if len(m.result.Results) == 0 {
		return "No other titles to recommend."
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Recommendations for: "+m.result.Query) + "\n")
	for i, r := range m.result.Results {
		b.WriteString(RenderCard(i+1, r.Item, fmt.Sprintf("distance %.3f", r.Distance)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHome() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Top %d by rating", m.opts.TopN)) + "\n")
	for i, it := range m.service.TopRated(m.opts.TopN) {
		b.WriteString(RenderCard(i+1, it, ""))
		b.WriteString("\n")
	}
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Top %d by members", m.opts.TopN)) + "\n")
	for i, it := range m.service.MostPopular(m.opts.TopN) {
		b.WriteString(RenderCard(i+1, it, fmt.Sprintf("members %d", it.Members)))
		b.WriteString("\n")
	}
	b.WriteString(sectionStyle.Render("Previous recommendations") + "\n")
	entries := m.opts.History.Entries()
	if len(entries) == 0 {
		b.WriteString("No recommendations yet. Search a title on the Recommend page.\n")
		return b.String()
	}
	for _, e := range entries {
		b.WriteString(queryStyle.Render("Recommendations for: "+e.Query) + "\n")
		for i, r := range e.Results {
			b.WriteString(RenderCard(i+1, r.Item, ""))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderCard formats one item as a bordered card.
func RenderCard(rank int, it domain.Item, extra string) string {
	lines := []string{
		cardTitleStyle.Render(fmt.Sprintf("%d. %s", rank, it.Name)),
		fmt.Sprintf("Genre: %s", it.Category),
		fmt.Sprintf("Rating: %.2f", it.Rating),
	}
	if extra != "" {
		lines = append(lines, extra)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

var (
	accent         = lipgloss.Color("#cc0000")
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	queryStyle     = lipgloss.NewStyle().Italic(true).Foreground(accent)
	cardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	cardStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(accent).PaddingLeft(1)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
