// dao/user_dao.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

type UserDAO struct {
	pool     *pgxpool.Pool
	auditSvc audit.Service
}

func NewUserDAO(pool *pgxpool.Pool, auditSvc audit.Service) *UserDAO {
	return &UserDAO{pool: pool, auditSvc: auditSvc}
}

const userColumns = `id, username, email, first_name, last_name, role,
	is_active, is_staff, is_superuser, password_hash, created_at, updated_at, last_login`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &role,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

func (d *UserDAO) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := d.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, role,
			is_active, is_staff, is_superuser, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName, string(user.Role),
		user.IsActive, user.IsStaff, user.IsSuperuser, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return recipe_errors.ErrEmailTaken
		}
		return fmt.Errorf("%w: failed to create user: %v", recipe_errors.ErrDatabaseOperation, err)
	}

	d.recordWrite(ctx, user.ID, "user.create", "user", user.ID)
	return nil
}

func (d *UserDAO) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe_errors.ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to get user: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return user, nil
}

func (d *UserDAO) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe_errors.ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to get user by email: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return user, nil
}

func (d *UserDAO) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	tag, err := d.pool.Exec(ctx, `
		UPDATE users SET username = $2, first_name = $3, last_name = $4, updated_at = $5
		WHERE id = $1`,
		user.ID, user.Username, user.FirstName, user.LastName, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to update user: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	if tag.RowsAffected() == 0 {
		return recipe_errors.ErrUserNotFound
	}

	d.recordWrite(ctx, user.ID, "user.update", "user", user.ID)
	return nil
}

func (d *UserDAO) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: failed to update password: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	if tag.RowsAffected() == 0 {
		return recipe_errors.ErrUserNotFound
	}

	d.recordWrite(ctx, userID, "user.change_password", "user", userID)
	return nil
}

func (d *UserDAO) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := d.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`,
		userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: failed to update last login: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return nil
}

// ListActiveUsers returns active accounts, used by the daily digest.
func (d *UserDAO) ListActiveUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list active users: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan user: %v", recipe_errors.ErrDatabaseOperation, err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// AdminEmails returns superuser addresses for export notifications.
func (d *UserDAO) AdminEmails(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx, `SELECT email FROM users WHERE is_superuser`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list admin emails: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%w: failed to scan email: %v", recipe_errors.ErrDatabaseOperation, err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// UserExportRow is one line of the weekly user-data export.
type UserExportRow struct {
	UserID            string
	Username          string
	Email             string
	Role              string
	IsActive          bool
	FullName          string
	CreatedAt         time.Time
	LastLogin         *time.Time
	TotalRecipes      int
	TotalRatingsGiven int
	TotalFavorites    int
	AvgRatingReceived float64
}

// ExportRows aggregates per-user activity for the CSV export in one query.
func (d *UserDAO) ExportRows(ctx context.Context) ([]UserExportRow, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT u.id, u.username, u.email, u.role, u.is_active,
			trim(concat(u.first_name, ' ', u.last_name)),
			u.created_at, u.last_login,
			(SELECT count(*) FROM recipes r WHERE r.author_id = u.id),
			(SELECT count(*) FROM ratings rt WHERE rt.user_id = u.id),
			(SELECT count(*) FROM favorites f WHERE f.user_id = u.id),
			coalesce((SELECT round(avg(rt.rating), 2)
				FROM ratings rt JOIN recipes r ON r.id = rt.recipe_id
				WHERE r.author_id = u.id), 0)
		FROM users u
		ORDER BY u.created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query export rows: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var result []UserExportRow
	for rows.Next() {
		var r UserExportRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Email, &r.Role, &r.IsActive,
			&r.FullName, &r.CreatedAt, &r.LastLogin,
			&r.TotalRecipes, &r.TotalRatingsGiven, &r.TotalFavorites,
			&r.AvgRatingReceived); err != nil {
			return nil, fmt.Errorf("%w: failed to scan export row: %v", recipe_errors.ErrDatabaseOperation, err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (d *UserDAO) recordWrite(ctx context.Context, userID, action, resourceType, resourceID string) {
	if d.auditSvc == nil {
		return
	}
	entry := audit.Entry{
		UserID:        userID,
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		AccessGranted: true,
	}
	if err := d.auditSvc.Record(ctx, entry); err != nil {
		logWarnAudit(action, err)
	}
}
