package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tatianab/narrative-engine/internal/engine"
	"github.com/tatianab/narrative-engine/internal/models"
)

type sessionState int

const (
	stateStart sessionState = iota
	stateLoading
	statePlaying
	stateError
)

const startPlaceholder = "回车开始默认世界，输入一句创意生成新世界，/continue 继续存档"

// Options configures the UI.
type Options struct {
	// Preset is a world to start in instead of the built-in one, from a
	// world file or a share token.
	Preset    *models.WorldConfig
	ShareBase string
	Logger    *zap.Logger
}

type model struct {
	state     sessionState
	game      *engine.Game
	opts      Options
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	notice    string
	width     int
	height    int
	events    chan tea.Msg // open while a turn streams
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFA500")).
			Padding(1, 3)
)

func NewModel(g *engine.Game, opts Options) model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ti := textinput.New()
	ti.Placeholder = startPlaceholder
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	return model{
		state:     stateStart,
		game:      g,
		opts:      opts,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type worldReadyMsg struct {
	err error
}

type chunkMsg string

type turnDoneMsg struct {
	result engine.TurnResult
	err    error
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			switch m.state {
			case stateStart:
				return m.start(strings.TrimSpace(m.textInput.Value()))
			case statePlaying:
				if s := m.game.State(); s != nil && s.PendingMajorEvent != nil {
					m.report(m.game.DismissEvent())
					m.refresh()
					return m, nil
				}
				input := strings.TrimSpace(m.textInput.Value())
				if input == "" || m.events != nil {
					return m, nil
				}
				m.textInput.Reset()
				return m.handleInput(input)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 8
		if m.state == statePlaying {
			m.refresh()
		}

	case worldReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.enterPlay()
		return m, nil

	case chunkMsg:
		m.refresh()
		return m, listen(m.events)

	case turnDoneMsg:
		m.events = nil
		if msg.err != nil {
			m.notice = msg.err.Error()
		} else if msg.result.Outcome == engine.OutcomeFallback {
			m.opts.Logger.Warn("Turn fell back", zap.String("reason", msg.result.Reason))
		}
		m.refresh()
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil
	}

	if m.state == stateStart || m.state == statePlaying {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// start handles the start screen: an empty line starts the preset or
// built-in world, /continue loads the save, anything else is a world idea.
func (m model) start(input string) (tea.Model, tea.Cmd) {
	m.textInput.Reset()
	switch input {
	case "":
		if err := m.game.Init(m.opts.Preset); err != nil {
			return m, errCmd(err)
		}
		m.enterPlay()
		return m, nil
	case "/continue":
		if !m.game.Load(context.Background()) {
			m.notice = "没有可用的存档"
			return m, nil
		}
		m.enterPlay()
		return m, nil
	case "/quit":
		return m, tea.Quit
	}
	m.state = stateLoading
	return m, m.generateWorld(input)
}

func (m *model) enterPlay() {
	m.state = statePlaying
	m.notice = ""
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.logWidth(), max(m.height-8, 5))
	}
	m.textInput.Placeholder = "你要做什么？输入序号选择行动，或 /help"
	m.refresh()
}

func (m model) handleInput(input string) (tea.Model, tea.Cmd) {
	m.notice = ""
	s := m.game.State()
	if n, err := strconv.Atoi(input); err == nil && s != nil {
		if n < 1 || n > len(s.CurrentActions) {
			m.notice = fmt.Sprintf("没有第 %d 个行动", n)
			return m, nil
		}
		input = s.CurrentActions[n-1]
	}
	if !strings.HasPrefix(input, "/") {
		return m.send(input)
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	arg = strings.TrimSpace(arg)
	world := m.game.World()
	switch name {
	case "quit":
		return m, tea.Quit
	case "help":
		m.notice = helpText
	case "scene":
		id, ok := sceneID(world, arg)
		if !ok {
			m.notice = "可前往：" + sceneList(world)
			return m, nil
		}
		m.report(m.game.SelectScene(id))
	case "talk":
		id, ok := characterID(world, arg)
		if !ok {
			m.notice = "可交谈：" + characterList(world, s)
			return m, nil
		}
		m.report(m.game.SelectCharacter(id))
	case "wait":
		m.report(m.game.AdvanceTime())
	case "save":
		if err := m.game.Save(context.Background()); err != nil {
			m.report(err)
		} else {
			m.notice = "已保存"
		}
	case "share":
		link, err := m.game.ShareURL(m.opts.ShareBase)
		if err != nil {
			m.report(err)
		} else {
			m.notice = "分享链接：" + link
		}
	case "restart":
		m.report(m.game.Reset(context.Background()))
		m.state = stateStart
		m.textInput.Placeholder = startPlaceholder
		return m, nil
	default:
		m.notice = "未知命令 /" + name
	}
	m.refresh()
	return m, nil
}

const helpText = "/scene 场景 · /talk 角色（/talk 结束对话）· /wait 推进时间 · /save · /share · /restart · /quit"

func (m *model) report(err error) {
	if err == nil {
		return
	}
	m.opts.Logger.Warn("Command failed", zap.Error(err))
	if errors.Is(err, engine.ErrTurnInFlight) {
		m.notice = "叙述者还在讲述中……"
		return
	}
	m.notice = err.Error()
}

// send starts a turn. The reply streams through m.events, one chunkMsg per
// fragment followed by a turnDoneMsg.
func (m model) send(text string) (tea.Model, tea.Cmd) {
	events := make(chan tea.Msg, 64)
	m.events = events
	g := m.game
	go func() {
		defer close(events)
		res, err := g.Send(context.Background(), text, func(c string) { events <- chunkMsg(c) })
		events <- turnDoneMsg{result: res, err: err}
	}()
	m.refresh()
	return m, listen(events)
}

func listen(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return errMsg{err} }
}

func (m model) generateWorld(hint string) tea.Cmd {
	return func() tea.Msg {
		return worldReadyMsg{err: m.game.NewWorld(context.Background(), hint)}
	}
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.7)
}

func (m *model) refresh() {
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateStart:
		world := m.game.World()
		if m.opts.Preset != nil {
			world = m.opts.Preset
		}
		s = fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			titleStyle.Render(world.Icon+" "+world.Title),
			gameStyle.Width(max(m.width-4, 20)).Render(world.Description),
			m.textInput.View(),
		)
		if m.notice != "" {
			s += "\n\n" + helpStyle.Render(m.notice)
		}

	case stateLoading:
		s = "\n  正在生成世界，请稍候……\n"

	case statePlaying:
		if ev := m.pendingEvent(); ev != nil {
			s = modalStyle.Render(titleStyle.Render("⚡ "+ev.Title) + "\n\n" + ev.Description + "\n\n" + helpStyle.Render("按回车继续"))
			break
		}
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)
		footer := helpStyle.Render(helpText)
		if m.notice != "" {
			footer = helpStyle.Render(m.notice)
		}
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			m.renderActions(),
			m.textInput.View(),
			footer,
		)

	case stateError:
		s = fmt.Sprintf("\n  出错了：%v\n\n按 Esc 退出。", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) pendingEvent() *models.KeyEvent {
	if s := m.game.State(); s != nil {
		return s.PendingMajorEvent
	}
	return nil
}

func Run(g *engine.Game, opts Options) error {
	p := tea.NewProgram(NewModel(g, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
