package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/Amund211/blacksmith/internal/adapters/customerprovider"
	"github.com/Amund211/blacksmith/internal/adapters/database"
	"github.com/Amund211/blacksmith/internal/adapters/feedback"
	"github.com/Amund211/blacksmith/internal/adapters/ledger"
	"github.com/Amund211/blacksmith/internal/app"
	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/logging"
	"github.com/google/uuid"
)

const maxStepsPerDay = 200_000

type simulation struct {
	game    *app.Game
	history func(ctx context.Context, sessionID string) (domain.SessionHistory, error)
	bot     *bot
}

func newSimulation(ctx context.Context, seed uint64, skill float64, ledgerPath string, logger *slog.Logger) (*simulation, func(), error) {
	db, err := database.NewSQLiteDatabase(ledgerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	err = database.NewDatabaseMigrator(db, database.DialectSQLite, logger.With("component", "migrator")).Migrate(ctx, "")
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}

	repo := ledger.NewRepository(db, database.DialectSQLite, "")

	// The wall clock of the ledger follows the virtual time of the game
	clock := time.Now().UTC()
	nowFunc := func() time.Time { return clock }

	static := customerprovider.NewStatic(rand.New(rand.NewPCG(seed, seed+1)))

	game := app.NewGame(uuid.NewString(), app.GameDeps{
		Rand:            rand.New(rand.NewPCG(seed+2, seed+3)),
		Feedback:        feedback.NewLogSink(slog.LevelDebug),
		RequestCustomer: app.BuildRequestCustomer(static, nil, app.CustomerTimeout, time.After),
		NewID:           uuid.NewString,
		NowFunc:         nowFunc,
		Hooks:           app.BuildLedgerHooks(repo),
	})

	b := &bot{
		game:  game,
		skill: skill,
		rng:   rand.New(rand.NewPCG(seed+4, seed+5)),
	}
	b.advance = func(dt time.Duration) {
		clock = clock.Add(dt)
		game.Advance(ctx, dt)
	}

	return &simulation{
		game:    game,
		history: repo.GetHistory,
		bot:     b,
	}, func() { db.Close() }, nil
}

func (s *simulation) run(ctx context.Context, days int) (domain.SessionHistory, error) {
	playErr := s.bot.playDays(ctx, days, days*maxStepsPerDay)

	history, err := s.history(ctx, s.game.Snapshot().SessionID)
	if err != nil {
		return domain.SessionHistory{}, fmt.Errorf("failed to read history: %w", err)
	}

	return history, playErr
}

func printHistory(history domain.SessionHistory, state domain.GameState) {
	for _, day := range history.Days {
		fmt.Printf("Day %d: %d gold, %+d reputation, %d customers\n", day.Day, day.GoldEarned, day.ReputationEarned, day.CustomersServed)
	}
	for _, craft := range history.Crafts {
		fmt.Printf("  day %d %s %s for %s: quality %d, paid %d, reputation %+d\n",
			craft.Day, craft.Item.Material, craft.Item.Type, craft.CustomerName, craft.Item.Quality, craft.Item.Value, craft.ReputationGain)
	}
	fmt.Printf("Finished on day %d with %d gold and %d reputation\n", state.Day, state.Gold, state.Reputation)
}

func main() {
	days := flag.Int("days", 5, "number of days to play")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	skill := flag.Float64("skill", 0.9, "chance that the bot waits for the ideal moment, between 0 and 1")
	ledgerPath := flag.String("ledger", database.SQLITE_IN_MEMORY, "sqlite ledger path")
	verbose := flag.Bool("v", false, "log every feedback event")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := logging.AddToContext(context.Background(), logger)

	sim, closeLedger, err := newSimulation(ctx, *seed, *skill, *ledgerPath, logger)
	if err != nil {
		logger.Error("Failed to set up simulation", "error", err.Error())
		os.Exit(1)
	}
	defer closeLedger()

	logger.Info("Starting simulation", "days", *days, "seed", *seed, "skill", *skill)

	history, err := sim.run(ctx, *days)
	printHistory(history, sim.game.State())
	if errors.Is(err, errStuck) {
		logger.Info("The smithy went bankrupt", "day", sim.game.State().Day)
		return
	}
	if err != nil {
		logger.Error("Simulation failed", "error", err.Error())
		closeLedger()
		os.Exit(1)
	}
}
