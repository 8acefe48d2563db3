package planet

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"planets-api/internal/shared/database"
	"planets-api/internal/shared/errors"
)

// Repository is the persistence boundary for planets. Absence on reads is a
// classified not-found error, never a panic; handlers decide how write
// failures surface.
type Repository interface {
	ListAll(ctx context.Context) ([]Planet, error)
	GetByID(ctx context.Context, id int) (*Planet, error)
	Create(ctx context.Context, data Data, createdBy, updatedBy string) (*Planet, error)
	UpdateByID(ctx context.Context, id int, data Data, updatedBy string) (*Planet, error)
	DeleteByID(ctx context.Context, id int) error
	SetPhotoFilename(ctx context.Context, id int, filename string) (*Planet, error)
}

type PostgresRepository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewPostgresRepository(db *database.DB, logger *slog.Logger) *PostgresRepository {
	logger.Debug("Initializing planet repository")

	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

const planetColumns = "id, name, description, diameter, photo_filename, created_by, updated_by, created_at, updated_at"

func scanPlanet(row interface{ Scan(dest ...any) error }) (*Planet, error) {
	var p Planet
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Diameter,
		&p.PhotoFilename,
		&p.CreatedBy,
		&p.UpdatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Planet, error) {
	logger := r.logger.With("component", "planet_repository", "operation", "list_all")
	logger.Debug("Retrieving all planets")

	query := fmt.Sprintf("SELECT %s FROM planets ORDER BY id", planetColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query planets", "error", err)
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var planets []Planet
	for rows.Next() {
		p, err := scanPlanet(rows)
		if err != nil {
			logger.Error("Failed to scan planet row", "error", err)
			return nil, fmt.Errorf("failed to scan planet: %w", err)
		}
		planets = append(planets, *p)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating planets: %w", err)
	}

	logger.Debug("Planets retrieved", "count", len(planets))
	return planets, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Planet, error) {
	logger := r.logger.With("component", "planet_repository", "operation", "get_by_id", "planet_id", id)
	logger.Debug("Getting planet by ID")

	query := fmt.Sprintf("SELECT %s FROM planets WHERE id = $1", planetColumns)

	p, err := scanPlanet(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			logger.Debug("Planet not found")
			return nil, errors.NotFoundf("planet %d not found", id)
		}
		logger.Error("Failed to get planet", "error", err)
		return nil, fmt.Errorf("failed to get planet: %w", err)
	}

	logger.Debug("Planet retrieved")
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, data Data, createdBy, updatedBy string) (*Planet, error) {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "create",
		"name", data.Name,
	)
	logger.Debug("Creating planet")

	query := fmt.Sprintf(`
		INSERT INTO planets (name, description, diameter, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, planetColumns)

	p, err := scanPlanet(r.db.QueryRowContext(ctx, query, data.Name, data.Description, data.Diameter, createdBy, updatedBy))
	if err != nil {
		logger.Error("Failed to create planet", "error", err)
		return nil, fmt.Errorf("failed to create planet: %w", err)
	}

	logger.Debug("Planet created successfully", "planet_id", p.ID)
	return p, nil
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, id int, data Data, updatedBy string) (*Planet, error) {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "update_by_id",
		"planet_id", id,
	)
	logger.Debug("Updating planet")

	query := fmt.Sprintf(`
		UPDATE planets
		SET name = $2, description = $3, diameter = $4, updated_by = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, planetColumns)

	p, err := scanPlanet(r.db.QueryRowContext(ctx, query, id, data.Name, data.Description, data.Diameter, updatedBy))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			logger.Debug("Planet not found for update")
			return nil, errors.NotFoundf("planet %d not found", id)
		}
		logger.Error("Failed to update planet", "error", err)
		return nil, fmt.Errorf("failed to update planet: %w", err)
	}

	logger.Debug("Planet updated successfully")
	return p, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id int) error {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "delete_by_id",
		"planet_id", id,
	)
	logger.Debug("Deleting planet")

	result, err := r.db.ExecContext(ctx, "DELETE FROM planets WHERE id = $1", id)
	if err != nil {
		logger.Error("Failed to delete planet", "error", err)
		return fmt.Errorf("failed to delete planet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.Error("Failed to read affected rows", "error", err)
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		logger.Debug("Planet not found for delete")
		return errors.NotFoundf("planet %d not found", id)
	}

	logger.Debug("Planet deleted successfully")
	return nil
}

func (r *PostgresRepository) SetPhotoFilename(ctx context.Context, id int, filename string) (*Planet, error) {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "set_photo_filename",
		"planet_id", id,
	)
	logger.Debug("Setting planet photo filename")

	query := fmt.Sprintf(`
		UPDATE planets
		SET photo_filename = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, planetColumns)

	p, err := scanPlanet(r.db.QueryRowContext(ctx, query, id, filename))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			logger.Debug("Planet not found for photo update")
			return nil, errors.NotFoundf("planet %d not found", id)
		}
		logger.Error("Failed to set photo filename", "error", err)
		return nil, fmt.Errorf("failed to set photo filename: %w", err)
	}

	logger.Debug("Photo filename set successfully", "photo_filename", filename)
	return p, nil
}
