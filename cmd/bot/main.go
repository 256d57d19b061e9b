// Command bot plays the Memory and Puzzle games against a running arcade
// server through the REST API. It is handy for smoke testing a deployment
// and for filling the leaderboard with reference scores.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/memory"
	"github.com/wricardo/mcp-training/arcade/game/puzzle"
)

// searchLimit bounds the puzzle solver. A 3x3 board has 181440 states.
const searchLimit = 200000

// errUnsolved is returned when the solver gives up on a board
var errUnsolved = errors.New("no solution within search limit")

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "bot",
		Usage: "Play Memory or Puzzle sessions through the arcade REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "base URL of the arcade server",
				Sources: cli.EnvVars("API_URL"),
			},
			&cli.StringFlag{
				Name:  "game",
				Value: "memory",
				Usage: "game to play (memory or puzzle)",
			},
			&cli.StringFlag{
				Name:  "player",
				Value: "bot",
				Usage: "player id recorded with the results",
			},
			&cli.IntFlag{
				Name:  "rounds",
				Value: 1,
				Usage: "number of sessions to play",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			game, err := engine.ParseGameID(cmd.String("game"))
			if err != nil {
				return err
			}
			client := NewClient(cmd.String("api-url"))
			for round := 1; round <= cmd.Int("rounds"); round++ {
				res, err := client.Play(ctx, game, cmd.String("player"))
				if err != nil {
					return fmt.Errorf("round %d: %w", round, err)
				}
				logger.Info().
					Int("round", round).
					Str("session", res.SessionID).
					Int("moves", res.Moves).
					Int("score", res.Score).
					Msg("Game finished")
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error().Err(err).Msg("bot failed")
		os.Exit(1)
	}
}

// Client talks to the arcade REST API
type Client struct {
	baseURL string
	client  *http.Client
	// pause runs while a Memory mismatch is still on display
	pause func()
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		pause:   func() { time.Sleep(250 * time.Millisecond) },
	}
}

// Outcome summarises a finished session
type Outcome struct {
	SessionID string
	Moves     int
	Score     int
}

type sessionResponse struct {
	ID     string          `json:"id"`
	Game   engine.GameID   `json:"game"`
	Status engine.Status   `json:"status"`
	State  json.RawMessage `json:"state"`
}

type actionResponse struct {
	Accepted bool            `json:"accepted"`
	Status   engine.Status   `json:"status"`
	State    json.RawMessage `json:"state"`
}

// Play creates a session for game, plays it to the end and returns the outcome
func (c *Client) Play(ctx context.Context, game engine.GameID, player string) (*Outcome, error) {
	var sess sessionResponse
	if err := c.call(ctx, http.MethodPost, "/api/sessions", map[string]string{
		"game":      string(game),
		"player_id": player,
	}, &sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	for _, step := range []string{"ready", "start"} {
		if err := c.call(ctx, http.MethodPost, "/api/sessions/"+sess.ID+"/"+step, nil, &sess); err != nil {
			return nil, fmt.Errorf("%s: %w", step, err)
		}
	}

	switch game {
	case engine.Memory:
		return c.playMemory(ctx, sess)
	case engine.Puzzle:
		return c.playPuzzle(ctx, sess)
	}
	return nil, fmt.Errorf("bot cannot play %s", game)
}

func (c *Client) act(ctx context.Context, sessionID, action string) (*actionResponse, error) {
	var res actionResponse
	if err := c.call(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/action", map[string]string{
		"action": action,
	}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// playMemory remembers every symbol it has seen and flips known pairs first
func (c *Client) playMemory(ctx context.Context, sess sessionResponse) (*Outcome, error) {
	var st memory.State
	if err := json.Unmarshal(sess.State, &st); err != nil {
		return nil, fmt.Errorf("decode memory state: %w", err)
	}
	seen := make(map[int]int) // card id -> symbol

	learn := func(raw json.RawMessage) error {
		if err := json.Unmarshal(raw, &st); err != nil {
			return fmt.Errorf("decode memory state: %w", err)
		}
		for _, card := range st.Cards {
			if card.Symbol >= 0 {
				seen[card.ID] = card.Symbol
			}
		}
		return nil
	}

	flip := func(id int) error {
		for {
			res, err := c.act(ctx, sess.ID, fmt.Sprintf("select:%d", id))
			if err != nil {
				return err
			}
			if err := learn(res.State); err != nil {
				return err
			}
			if res.Accepted || res.Status == engine.StatusOver {
				return nil
			}
			if !st.Pending() {
				return fmt.Errorf("flip %d rejected", id)
			}
			c.pause()
		}
	}

	for st.Status == engine.StatusPlaying {
		first, second := nextPair(st.Cards, seen)
		if err := flip(first); err != nil {
			return nil, err
		}
		if second < 0 {
			second = partner(st.Cards, seen, first)
		}
		if second < 0 {
			return nil, errors.New("no card left to flip")
		}
		if err := flip(second); err != nil {
			return nil, err
		}
	}
	return &Outcome{SessionID: sess.ID, Moves: st.Moves, Score: st.Score}, nil
}

// nextPair picks a known matching pair, or an unknown card and -1
func nextPair(cards []memory.Card, seen map[int]int) (int, int) {
	bySymbol := make(map[int]int)
	for _, card := range cards {
		sym, ok := seen[card.ID]
		if !ok || card.Matched {
			continue
		}
		if other, ok := bySymbol[sym]; ok {
			return other, card.ID
		}
		bySymbol[sym] = card.ID
	}
	for _, card := range cards {
		if _, ok := seen[card.ID]; !ok && !card.Matched {
			return card.ID, -1
		}
	}
	return -1, -1
}

// partner finds the known twin of first, falling back to any unseen card
func partner(cards []memory.Card, seen map[int]int, first int) int {
	if cards[first].Matched {
		return -1
	}
	sym := seen[first]
	fallback := -1
	for _, card := range cards {
		if card.ID == first || card.Matched {
			continue
		}
		s, ok := seen[card.ID]
		if ok && s == sym {
			return card.ID
		}
		if !ok && fallback < 0 {
			fallback = card.ID
		}
	}
	return fallback
}

func (c *Client) playPuzzle(ctx context.Context, sess sessionResponse) (*Outcome, error) {
	var st puzzle.State
	if err := json.Unmarshal(sess.State, &st); err != nil {
		return nil, fmt.Errorf("decode puzzle state: %w", err)
	}
	path, err := solve(st.Tiles, st.Size, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("%dx%d board: %w", st.Size, st.Size, err)
	}

	for _, cell := range path {
		res, err := c.act(ctx, sess.ID, fmt.Sprintf("select:%d,%d", cell.Y, cell.X))
		if err != nil {
			return nil, err
		}
		if !res.Accepted {
			return nil, fmt.Errorf("slide of %d,%d rejected", cell.Y, cell.X)
		}
		if err := json.Unmarshal(res.State, &st); err != nil {
			return nil, fmt.Errorf("decode puzzle state: %w", err)
		}
	}
	if st.Status != engine.StatusOver {
		return nil, fmt.Errorf("puzzle still %s after %d moves", st.Status, len(path))
	}
	return &Outcome{SessionID: sess.ID, Moves: st.Moves, Score: st.Score}, nil
}

// solve returns the cells to click, in order, to reach the solved board
func solve(start puzzle.Tiles, size, limit int) ([]engine.Position, error) {
	key := func(t puzzle.Tiles) string {
		b := make([]byte, len(t))
		for i, v := range t {
			b[i] = byte(v)
		}
		return string(b)
	}
	if puzzle.Solved(start) {
		return nil, nil
	}

	// parent maps a board to the board it came from
	parent := map[string]string{key(start): ""}
	boards := map[string]puzzle.Tiles{key(start): slices.Clone(start)}
	frontier := []puzzle.Tiles{slices.Clone(start)}
	for len(frontier) > 0 {
		var next []puzzle.Tiles
		for _, cur := range frontier {
			ck := key(cur)
			for _, nb := range puzzle.Neighbors(cur, size) {
				nk := key(nb)
				if _, ok := parent[nk]; ok {
					continue
				}
				if len(parent) >= limit {
					return nil, errUnsolved
				}
				parent[nk] = ck
				boards[nk] = nb
				if puzzle.Solved(nb) {
					return trace(nk, parent, boards, size), nil
				}
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return nil, errUnsolved
}

// trace walks back from the goal. Each step clicks the tile that lands
// where the blank was before the slide, i.e. the next board's blank.
func trace(goal string, parent map[string]string, boards map[string]puzzle.Tiles, size int) []engine.Position {
	var path []engine.Position
	for k := goal; parent[k] != ""; k = parent[k] {
		e := puzzle.EmptyIndex(boards[k])
		path = append(path, engine.Position{X: e % size, Y: e / size})
	}
	slices.Reverse(path)
	return path
}

func (c *Client) call(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
