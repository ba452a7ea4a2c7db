package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"futureself/config"
	"futureself/internal/models"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(ctx context.Context, cfg config.DBConfig) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	// Set connection pool parameters
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	// Connect with timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection works
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates any missing tables and indexes.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

func (db *PostgresDB) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
        SELECT id::text, first_name, age, gender, location
        FROM user_profiles
        WHERE id = $1
    `

	var (
		profile  models.UserProfile
		age      *int32
		gender   *string
		location *string
	)
	err := db.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID, &profile.FirstName, &age, &gender, &location,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", notFound(err))
	}

	if age != nil {
		profile.Age = models.Some(int(*age))
	}
	profile.Gender = models.FromPtr(gender)
	profile.Location = models.FromPtr(location)

	return &profile, nil
}

func (db *PostgresDB) GetCalibration(ctx context.Context, userID string) (*models.CalibrationRecord, error) {
	query := `
        SELECT user_id::text, goals, goals_importance, desired_changes, motivation_now,
               stakes, current_situation, completed_at
        FROM calibration_data
        WHERE user_id = $1
    `

	var (
		rec         models.CalibrationRecord
		goals       []byte
		completedAt *time.Time
	)
	err := db.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID, &goals, &rec.GoalsImportance, &rec.DesiredChanges, &rec.MotivationNow,
		&rec.Stakes, &rec.CurrentSituation, &completedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get calibration: %w", notFound(err))
	}

	if rec.Goals, err = decodeGoals(goals); err != nil {
		return nil, err
	}
	rec.CompletedAt = models.FromPtr(completedAt)

	return &rec, nil
}

const planColumns = `
        id::text, user_id::text, goal_title, goal_category, vision, goal_90_day,
        steps, current_step, context_data::text, is_active
`

// GetPlan returns the plan only if userID owns it.
func (db *PostgresDB) GetPlan(ctx context.Context, userID, planID string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + `
        FROM plans
        WHERE id = $1 AND user_id = $2
    `
	plan, err := scanPlan(db.pool.QueryRow(ctx, query, planID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

// GetActivePlan returns the user's most recently updated active plan.
func (db *PostgresDB) GetActivePlan(ctx context.Context, userID string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + `
        FROM plans
        WHERE user_id = $1 AND is_active
        ORDER BY updated_at DESC
        LIMIT 1
    `
	plan, err := scanPlan(db.pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get active plan: %w", err)
	}
	return plan, nil
}

func scanPlan(row pgx.Row) (*models.Plan, error) {
	var (
		plan        models.Plan
		steps       []byte
		contextData string
		currentStep int32
	)
	err := row.Scan(
		&plan.ID, &plan.UserID, &plan.Title, &plan.Category, &plan.Vision, &plan.Goal90Day,
		&steps, &currentStep, &contextData, &plan.IsActive,
	)
	if err != nil {
		return nil, notFound(err)
	}

	if plan.Steps, err = decodeSteps(steps); err != nil {
		return nil, err
	}
	if plan.ContextData, err = decodeContextData([]byte(contextData)); err != nil {
		return nil, err
	}
	plan.CurrentStep = int(currentStep)
	plan.ClampCurrentStep()

	return &plan, nil
}

func threadTable(t models.Thread) (table, column string, err error) {
	switch t.Scope {
	case models.ThreadGeneral:
		return "conversations", "user_id", nil
	case models.ThreadPlan:
		return "plan_conversations", "plan_id", nil
	default:
		return "", "", fmt.Errorf("unknown thread scope %q", t.Scope)
	}
}

// RecentTurns returns the newest limit turns of a thread, oldest first.
func (db *PostgresDB) RecentTurns(ctx context.Context, thread models.Thread, limit int) ([]models.Turn, error) {
	table, column, err := threadTable(thread)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
        SELECT id, user_id::text, role, message, created_at
        FROM (
            SELECT id, user_id, role, message, created_at
            FROM %s
            WHERE %s = $1
            ORDER BY created_at DESC, id DESC
            LIMIT $2
        ) recent
        ORDER BY created_at ASC, id ASC
    `, table, column)

	rows, err := db.pool.Query(ctx, query, thread.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []models.Turn
	for rows.Next() {
		var (
			turn models.Turn
			role string
		)
		if err := rows.Scan(&turn.ID, &turn.UserID, &role, &turn.Message, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.Role = models.Role(role)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}

	return turns, nil
}

// AppendTurn inserts a turn; the database assigns id and created_at, which are
// written back into turn.
func (db *PostgresDB) AppendTurn(ctx context.Context, thread models.Thread, turn *models.Turn) error {
	var (
		query string
		args  []interface{}
	)
	switch thread.Scope {
	case models.ThreadGeneral:
		query = `
            INSERT INTO conversations (user_id, role, message)
            VALUES ($1, $2, $3)
            RETURNING id, created_at
        `
		args = []interface{}{thread.ID, string(turn.Role), turn.Message}
	case models.ThreadPlan:
		query = `
            INSERT INTO plan_conversations (plan_id, user_id, role, message)
            VALUES ($1, $2, $3, $4)
            RETURNING id, created_at
        `
		args = []interface{}{thread.ID, turn.UserID, string(turn.Role), turn.Message}
	default:
		return fmt.Errorf("unknown thread scope %q", thread.Scope)
	}

	if err := db.pool.QueryRow(ctx, query, args...).Scan(&turn.ID, &turn.CreatedAt); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// LinkTelegram binds a Telegram account to a user, replacing any earlier link.
func (db *PostgresDB) LinkTelegram(ctx context.Context, telegramID int64, userID string) error {
	query := `
        INSERT INTO telegram_links (telegram_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (telegram_id) DO UPDATE
        SET user_id = $2, updated_at = NOW()
    `

	_, err := db.pool.Exec(ctx, query, telegramID, userID)
	if err != nil {
		return fmt.Errorf("failed to link telegram account: %w", err)
	}
	return nil
}

func (db *PostgresDB) GetTelegramLink(ctx context.Context, telegramID int64) (string, error) {
	query := `
        SELECT user_id::text
        FROM telegram_links
        WHERE telegram_id = $1
    `

	var userID string
	if err := db.pool.QueryRow(ctx, query, telegramID).Scan(&userID); err != nil {
		return "", fmt.Errorf("failed to get telegram link: %w", notFound(err))
	}
	return userID, nil
}
