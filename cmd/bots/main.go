// Command bots fills a lobby with automated players. Each bot opens its own
// WebSocket connection, joins, and plays at random until the game ends:
// accusing a living player every day, voting on every defense, and using its
// role's night action. It is handy for exercising a server without gathering
// a full table of people.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ekincelikten/rp-game-server/game/engine"
	"github.com/ekincelikten/rp-game-server/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bots",
		Usage: "fill a lobby with automated players",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "roster", Value: "classic", Usage: "roster the server deals (sets the number of bots)"},
			&cli.IntFlag{Name: "count", Usage: "number of bots (default: roster capacity)"},
			&cli.StringFlag{Name: "prefix", Value: "bot", Usage: "nickname prefix"},
			&cli.DurationFlag{Name: "delay", Value: 500 * time.Millisecond, Usage: "maximum think time before each move"},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Minute, Usage: "give up after this long"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger.InitLogger(cmd.String("log-level"))

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			roster, err := FetchRoster(ctx, cmd.String("url"), cmd.String("roster"))
			if err != nil {
				return err
			}

			count := int(cmd.Int("count"))
			if count <= 0 {
				count = roster.Capacity
			}

			winner, err := runBots(ctx, cmd.String("url"), roster, count, cmd.String("prefix"), cmd.Duration("delay"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "%s win\n", winner)
			return nil
		},
	}
}

// runBots plays count bots concurrently and returns the winner reported to
// the first bot that finished its game
func runBots(ctx context.Context, serverURL string, roster *engine.GameConfig, count int, prefix string, delay time.Duration) (string, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winner  string
		lastErr error
	)

	for i := 1; i <= count; i++ {
		bot := NewBot(fmt.Sprintf("%s%d", prefix, i), roster, rand.New(rand.NewPCG(rand.Uint64(), uint64(i))), delay)

		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := bot.Play(ctx, serverURL)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.L().Warn("bot stopped", zap.String("bot", bot.nickname), zap.Error(err))
				lastErr = err
				return
			}
			if winner == "" {
				winner = result
			}
		}()
	}
	wg.Wait()

	if winner == "" {
		if lastErr == nil {
			return "", fmt.Errorf("no bot finished a game")
		}
		return "", fmt.Errorf("no bot finished a game: %w", lastErr)
	}
	return winner, nil
}
