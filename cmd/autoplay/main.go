// Command autoplay plays Snake against a running server over the REST API.
//
// It optionally stores a session key first (GET /snake?count=N), starts a
// game, then steers toward each apple until the game is won, lost, or the
// move limit is reached. On a win the disclosed key is printed.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/snake-game-server/game/engine"
)

// Options control one autoplay run
type Options struct {
	ConfigID string
	// Count is sent to GET /snake when WithKey is set
	Count    int64
	WithKey  bool
	MaxMoves int
	Delay    time.Duration
}

// Result summarizes a finished run
type Result struct {
	GameID string
	Moves  int
	Score  int
	Status engine.Status
	Key    string
}

var errNoWin = errors.New("game not won")

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("autoplay failed")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Play Snake against a game server until the key is won",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("SNAKE_URL")},
			&cli.StringFlag{Name: "config", Usage: "Ruleset to start (default: server default)"},
			&cli.IntFlag{Name: "count", Usage: "Store the key derived from this count before starting"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "Maximum moves before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between moves"},
			&cli.BoolFlag{Name: "v", Usage: "Log every move"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("v") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			client, err := NewClient(cmd.String("url"))
			if err != nil {
				return err
			}

			res, err := Play(ctx, client, Options{
				ConfigID: cmd.String("config"),
				Count:    int64(cmd.Int("count")),
				WithKey:  cmd.IsSet("count"),
				MaxMoves: int(cmd.Int("max-moves")),
				Delay:    cmd.Duration("delay"),
			})
			if err != nil {
				return err
			}

			log.Info().
				Str("game_id", res.GameID).
				Int("moves", res.Moves).
				Int("score", res.Score).
				Str("status", string(res.Status)).
				Msg("game finished")

			if res.Status != engine.StatusSuccess {
				return errNoWin
			}
			if res.Key != "" {
				fmt.Println(res.Key)
			}
			return nil
		},
	}
}

// Play runs one game to completion or until opts.MaxMoves
func Play(ctx context.Context, client *Client, opts Options) (*Result, error) {
	if opts.WithKey {
		if err := client.IssueKey(ctx, opts.Count); err != nil {
			return nil, fmt.Errorf("issue key: %w", err)
		}
	}

	snap, err := client.Start(ctx, opts.ConfigID)
	if err != nil {
		return nil, err
	}
	info, err := client.Game(ctx, snap.GameID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("game_id", snap.GameID).
		Str("config", info.ConfigName).
		Int("grid_size", info.GridSize).
		Int("win_threshold", info.WinThreshold).
		Msg("game started")

	strategy := NewStrategy(info.GridSize)
	res := &Result{GameID: snap.GameID}

	for res.Moves < opts.MaxMoves && snap.Status == engine.StatusOngoing {
		dir, ok := strategy.NextMove(*snap)
		if !ok {
			log.Warn().Stringer("head", snap.Snake[0]).Msg("no safe move left")
		}

		out, err := client.Move(ctx, snap.GameID, dir)
		if err != nil {
			return res, err
		}
		res.Moves++
		snap = &out.Snapshot
		if out.Key != "" {
			res.Key = out.Key
		}

		log.Debug().
			Str("direction", string(dir)).
			Int("score", snap.Score).
			Str("status", string(snap.Status)).
			Msg("move")

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	res.Score, res.Status = snap.Score, snap.Status
	return res, nil
}
