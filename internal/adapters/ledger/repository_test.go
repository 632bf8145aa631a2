package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amund211/blacksmith/internal/adapters/database"
	"github.com/Amund211/blacksmith/internal/domain"
)

type repositoryFactory func(t *testing.T, schemaSuffix string) *Repository

func newSQLiteRepository(t *testing.T, _ string) *Repository {
	db, err := database.NewSQLiteDatabase(database.SQLITE_IN_MEMORY)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	err = database.NewDatabaseMigrator(db, database.DialectSQLite, logger).Migrate(t.Context(), "")
	require.NoError(t, err)

	return NewRepository(db, database.DialectSQLite, "")
}

func newPostgresRepositoryFactory(db *sqlx.DB) repositoryFactory {
	return func(t *testing.T, schemaSuffix string) *Repository {
		require.NotEmpty(t, schemaSuffix, "schemaSuffix must not be empty")
		schema := fmt.Sprintf("ledger_repo_test_%s", schemaSuffix)

		db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schema)))

		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		err := database.NewDatabaseMigrator(db, database.DialectPostgres, logger).Migrate(t.Context(), schema)
		require.NoError(t, err)

		return NewRepository(db, database.DialectPostgres, schema)
	}
}

func makeSessionID(x int) string {
	if x < 0 || x > 9999 {
		panic("x must be between 0 and 9999")
	}
	return fmt.Sprintf("00000000-0000-0000-0000-%012x", x)
}

func TestSQLiteRepository(t *testing.T) {
	t.Parallel()

	runRepositoryTests(t, newSQLiteRepository)
}

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping db tests in short mode.")
	}
	t.Parallel()

	db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
	require.NoError(t, err)

	runRepositoryTests(t, newPostgresRepositoryFactory(db))
}

func runRepositoryTests(t *testing.T, newRepository repositoryFactory) {
	t.Helper()

	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	newCraft := func(sessionID string, day int, minutes int) domain.CraftRecord {
		return domain.CraftRecord{
			SessionID:    sessionID,
			Day:          day,
			CustomerName: fmt.Sprintf("Customer %d", minutes),
			IsBoss:       minutes%2 == 1,
			Item: domain.Item{
				Type:     domain.ItemSword,
				Material: domain.MaterialIron,
				Quality:  94,
				Value:    47,
			},
			Scores: domain.Scores{
				Cutting:   100,
				Forging:   82,
				Quenching: 99.5,
			},
			ReputationGain: 5,
			MaterialCost:   20,
			CraftedAt:      start.Add(time.Duration(minutes) * time.Minute),
		}
	}

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		repo := newRepository(t, "empty_history")

		history, err := repo.GetHistory(t.Context(), makeSessionID(1))
		require.NoError(t, err)
		require.Equal(t, domain.SessionHistory{
			Crafts: []domain.CraftRecord{},
			Days:   []domain.DayRecord{},
		}, history)
	})

	t.Run("crafts and days are read back in order", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepository(t, "read_back")
		sessionID := makeSessionID(2)
		otherSessionID := makeSessionID(3)

		// Stored out of order
		crafts := []domain.CraftRecord{
			newCraft(sessionID, 1, 3),
			newCraft(sessionID, 1, 1),
			newCraft(sessionID, 2, 10),
			newCraft(otherSessionID, 1, 2),
		}
		for _, craft := range crafts {
			require.NoError(t, repo.RecordCraft(ctx, craft))
		}

		day := domain.DayRecord{
			SessionID:        sessionID,
			Day:              1,
			CustomersServed:  3,
			GoldEarned:       141,
			ReputationEarned: 15,
			ClosedAt:         start.Add(5 * time.Minute),
		}
		require.NoError(t, repo.RecordDay(ctx, day))

		history, err := repo.GetHistory(ctx, sessionID)
		require.NoError(t, err)
		require.Equal(t, []domain.CraftRecord{crafts[1], crafts[0], crafts[2]}, history.Crafts)
		require.Equal(t, []domain.DayRecord{day}, history.Days)
	})

	t.Run("recording a day again overwrites it", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepository(t, "day_overwrite")
		sessionID := makeSessionID(4)

		first := domain.DayRecord{
			SessionID:        sessionID,
			Day:              2,
			CustomersServed:  3,
			GoldEarned:       10,
			ReputationEarned: 3,
			ClosedAt:         start,
		}
		second := first
		second.GoldEarned = 99
		second.ClosedAt = start.Add(time.Hour)

		require.NoError(t, repo.RecordDay(ctx, first))
		require.NoError(t, repo.RecordDay(ctx, second))

		history, err := repo.GetHistory(ctx, sessionID)
		require.NoError(t, err)
		require.Equal(t, []domain.DayRecord{second}, history.Days)
	})

	t.Run("times are stored in UTC", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepository(t, "utc")
		sessionID := makeSessionID(5)

		craft := newCraft(sessionID, 1, 0)
		craft.CraftedAt = time.Date(2026, 3, 14, 14, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
		require.NoError(t, repo.RecordCraft(ctx, craft))

		history, err := repo.GetHistory(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, history.Crafts, 1)
		require.Equal(t, start, history.Crafts[0].CraftedAt)
	})

	t.Run("session ids must be normalized", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepository(t, "normalized")

		require.Error(t, repo.RecordCraft(ctx, newCraft("0000000000000000000000000000000A", 1, 0)))
		require.Error(t, repo.RecordDay(ctx, domain.DayRecord{SessionID: "session-id", Day: 1}))
		_, err := repo.GetHistory(ctx, "not-a-uuid")
		require.Error(t, err)
	})

	t.Run("concurrent writes", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepository(t, "concurrent")
		sessionID := makeSessionID(6)

		var wg sync.WaitGroup
		for i := range 10 {
			wg.Go(func() {
				err := repo.RecordCraft(ctx, newCraft(sessionID, 1, i))
				assert.NoError(t, err)
			})
		}
		wg.Wait()

		history, err := repo.GetHistory(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, history.Crafts, 10)
		for i, craft := range history.Crafts {
			require.Equal(t, start.Add(time.Duration(i)*time.Minute), craft.CraftedAt)
		}
	})
}
