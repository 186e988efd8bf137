package postgres

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/maxviazov/cricket-stats-service/internal/repository"
	"github.com/maxviazov/cricket-stats-service/internal/repository/contract"
)

var (
	pool   *pgxpool.Pool
	dsn    string
	skippy bool
)

func TestMain(m *testing.M) {
	if os.Getenv("CONTRACT_TESTS") != "1" {
		// allow skipping contract tests unless explicitly enabled
		skippy = true
		os.Exit(m.Run())
	}

	dsn = buildDSNFromEnv()
	if dsn == "" {
		fmt.Println("[contract] DATABASE_URL or APP_POSTGRES_* env not set; skipping")
		skippy = true
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	pool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("[contract] pgxpool new error:", err)
		os.Exit(1)
	}
	if err := pool.Ping(ctx); err != nil {
		fmt.Println("[contract] db ping error:", err)
		os.Exit(1)
	}

	// start from a clean schema every run
	if err := repository.Migrate(ctx, pool, repository.MigrateReset, zerolog.New(io.Discard)); err != nil {
		fmt.Println("[contract] migrate error:", err)
		os.Exit(1)
	}

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

func skipIfNeeded(t *testing.T) {
	if skippy {
		t.Skip("contract tests skipped; set CONTRACT_TESTS=1 and provide DB env")
	}
}

func buildDSNFromEnv() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	user := firstNonEmpty(os.Getenv("APP_POSTGRES_USER"), os.Getenv("POSTGRES_USER"), os.Getenv("DB_USER"))
	pass := firstNonEmpty(os.Getenv("APP_POSTGRES_PASSWORD"), os.Getenv("POSTGRES_PASSWORD"), os.Getenv("DB_PASSWORD"))
	host := firstNonEmpty(os.Getenv("APP_POSTGRES_HOST"), os.Getenv("POSTGRES_HOST"), "localhost")
	port := firstNonEmpty(os.Getenv("APP_POSTGRES_PORT"), os.Getenv("POSTGRES_PORT"), "5432")
	db := firstNonEmpty(os.Getenv("APP_POSTGRES_DB"), os.Getenv("POSTGRES_DB"), os.Getenv("DB_NAME"))
	ssl := firstNonEmpty(os.Getenv("APP_POSTGRES_SSLMODE"), os.Getenv("POSTGRES_SSLMODE"), "disable")
	if user == "" || pass == "" || db == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, ssl)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateAll(t *testing.T) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE TABLE deliveries, innings, matches, players, teams, player_stats, team_stats RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
}

// Factories used by contract suites

func makeRepos(t *testing.T) (contract.Repos, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return contract.Repos{
		Matches:    NewMatchRepository(pool),
		Innings:    NewInningsRepository(pool),
		Deliveries: NewDeliveryRepository(pool),
		Teams:      NewTeamRepository(pool),
		Players:    NewPlayerRepository(pool),
		Stats:      NewStatsRepository(pool),
		Analytics:  NewAnalyticsRepository(pool),
		Tx:         NewTxManager(pool),
	}, func() { truncateAll(t) }
}

func makePinger(t *testing.T) (repository.Pinger, func()) {
	skipIfNeeded(t)
	return NewPinger(pool), func() {}
}

// Wire the contract suites to Postgres factories

func TestMatchRepository_PostgresContract(t *testing.T) {
	contract.RunMatchRepositoryContract(t, makeRepos)
}

func TestInningsAndDelivery_PostgresContract(t *testing.T) {
	contract.RunInningsAndDeliveryContract(t, makeRepos)
}

func TestTeamAndPlayer_PostgresContract(t *testing.T) {
	contract.RunTeamAndPlayerContract(t, makeRepos)
}

func TestStatsRepository_PostgresContract(t *testing.T) {
	contract.RunStatsRepositoryContract(t, makeRepos)
}

func TestAnalytics_PostgresContract(t *testing.T) {
	contract.RunAnalyticsContract(t, makeRepos)
}

func TestTxManager_PostgresContract(t *testing.T) {
	contract.RunTxManagerContract(t, makeRepos)
}

func TestPinger_PostgresContract(t *testing.T) {
	contract.RunPingerContract(t, makePinger)
}

func TestPageArgs(t *testing.T) {
	limit, offset := pageArgs(repository.Page{})
	if limit != nil || offset != 0 {
		t.Fatalf("zero page must be unbounded, got %v %d", limit, offset)
	}
	limit, offset = pageArgs(repository.Page{Limit: 5, Offset: -3})
	if limit != 5 || offset != 0 {
		t.Fatalf("unexpected args: %v %d", limit, offset)
	}
}

func TestContainsPattern(t *testing.T) {
	if got := containsPattern(" 50%_off "); got != `%50\%\_off%` {
		t.Fatalf("unexpected pattern %q", got)
	}
}
