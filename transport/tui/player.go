package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/wricardo/mcp-training/arcade/game/catalog"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/memory"
	"github.com/wricardo/mcp-training/arcade/game/puzzle"
)

// frameInterval is how often the screen is redrawn while nothing changes
const frameInterval = 100 * time.Millisecond

// Options configures a terminal play session
type Options struct {
	Game   engine.GameID
	Config catalog.Config // nil uses the built-in defaults
	Sink   engine.StatsSink
	// HighScore loads the stored best on every Ready
	HighScore func(ctx context.Context) (int, error)
	Seed      int64
	Scheduler engine.Scheduler
	Log       zerolog.Logger
}

type changedMsg struct{}

type frameMsg time.Time

type model struct {
	ctx       context.Context
	game      engine.GameID
	info      catalog.Info
	cfg       catalog.Config
	runner    *engine.Runner
	updates   chan struct{}
	highScore func(ctx context.Context) (int, error)
	log       zerolog.Logger

	snap    any
	cursor  int
	message string
}

func newModel(ctx context.Context, opts Options) (model, error) {
	info, err := catalog.Describe(opts.Game)
	if err != nil {
		return model{}, err
	}

	cfg := opts.Config
	if cfg == nil {
		if cfg, err = catalog.DefaultConfig(opts.Game); err != nil {
			return model{}, err
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g, err := catalog.NewGame(opts.Game, cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return model{}, err
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = engine.NewTickerScheduler()
	}
	sink := opts.Sink
	if sink == nil {
		sink = engine.SinkFunc(func(context.Context, engine.GameID, engine.GameResult) error { return nil })
	}

	m := model{
		ctx:       ctx,
		game:      opts.Game,
		info:      info,
		cfg:       cfg,
		updates:   make(chan struct{}, 1),
		highScore: opts.HighScore,
		log:       opts.Log,
	}

	runnerOpts := []engine.RunnerOption{
		engine.WithLogger(opts.Log),
		engine.WithContext(ctx),
		engine.WithOnChange(m.changed),
	}
	if ms, ok := sched.(*engine.ManualScheduler); ok {
		runnerOpts = append(runnerOpts, engine.WithClock(ms.Now))
	}
	m.runner = engine.NewRunner(g, sched, sink, runnerOpts...)
	m.snap = m.runner.Snapshot()
	return m, nil
}

// Run plays one game in the terminal until the player quits
func Run(ctx context.Context, opts Options) error {
	m, err := newModel(ctx, opts)
	if err != nil {
		return err
	}
	defer m.runner.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// changed wakes the program without blocking the runner
func (m model) changed(any) {
	select {
	case m.updates <- struct{}{}:
	default:
	}
}

func waitForChange(updates chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return changedMsg{}
	}
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.updates), frameCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case changedMsg:
		m.snap = m.runner.Snapshot()
		return m, waitForChange(m.updates)
	case frameMsg:
		m.snap = m.runner.Snapshot()
		return m, frameCmd()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		m.ready()
		return m.refresh(), nil
	case "b":
		if m.runner.Status() != engine.StatusPlaying {
			m.runner.Lobby()
			m.message = ""
		}
		return m.refresh(), nil
	case "enter":
		switch m.runner.Status() {
		case engine.StatusLobby, engine.StatusOver:
			m.ready()
		case engine.StatusReady:
			m.runner.Start()
			m.message = ""
		}
		return m.refresh(), nil
	}

	if m.runner.Status() != engine.StatusPlaying {
		return m, nil
	}

	switch m.game {
	case engine.Memory, engine.Puzzle:
		m = m.moveCursor(key)
	default:
		a, err := engine.Normalize(m.game, key)
		if err != nil {
			return m, nil
		}
		if !m.runner.Act(a) {
			m.message = fmt.Sprintf("%s ignored", a.Kind)
		} else {
			m.message = ""
		}
	}
	return m.refresh(), nil
}

func (m *model) ready() {
	hs := 0
	if m.highScore != nil {
		var err error
		if hs, err = m.highScore(m.ctx); err != nil {
			m.log.Warn().Err(err).Msg("loading high score")
			hs = 0
		}
	}
	m.runner.Ready(hs)
	m.cursor = 0
	m.message = ""
}

// moveCursor walks the selection over a card or tile grid
func (m model) moveCursor(key string) model {
	cols, cells := gridShape(m.snap)
	if cols == 0 || cells == 0 {
		return m
	}

	switch key {
	case "up", "w", "k":
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case "down", "s", "j":
		if m.cursor+cols < cells {
			m.cursor += cols
		}
	case "left", "a", "h":
		if m.cursor%cols > 0 {
			m.cursor--
		}
	case "right", "d", "l":
		if m.cursor%cols < cols-1 && m.cursor+1 < cells {
			m.cursor++
		}
	case " ", "x":
		if m.runner.Act(engine.Action{Kind: engine.ActSelect, Cell: m.cursor}) {
			m.message = ""
		} else {
			m.message = fmt.Sprintf("cell %d cannot be selected", m.cursor)
		}
	}
	return m
}

func (m model) refresh() model {
	m.snap = m.runner.Snapshot()
	return m
}

func gridShape(snap any) (cols, cells int) {
	switch st := snap.(type) {
	case *memory.State:
		return st.Columns, len(st.Cards)
	case *puzzle.State:
		return st.Size, len(st.Tiles)
	}
	return 0, 0
}
