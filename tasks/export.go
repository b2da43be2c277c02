// tasks/export.go
package tasks

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/config"
	"github.com/aniketsuryawanshi1/recipe-hub-api/dao"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

// ExportJob writes the weekly user-activity CSV under the media exports
// directory and notifies admins where to find it.
type ExportJob struct {
	userDAO      *dao.UserDAO
	notification *util.NotificationService
	now          func() time.Time
}

func NewExportJob(userDAO *dao.UserDAO, notification *util.NotificationService) *ExportJob {
	return &ExportJob{
		userDAO:      userDAO,
		notification: notification,
		now:          time.Now,
	}
}

func (j *ExportJob) Run(ctx context.Context) error {
	rows, err := j.userDAO.ExportRows(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	dir := exportDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: failed to create directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("user_export_%s.csv", j.now().Format("2006-01-02")))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: failed to create file: %w", err)
	}

	w := csv.NewWriter(f)
	header := []string{"user_id", "username", "email", "role", "is_active", "full_name",
		"created_at", "last_login", "total_recipes", "total_ratings_given",
		"total_favorites", "avg_rating_received"}
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("export: %w", err)
	}
	for _, r := range rows {
		lastLogin := ""
		if r.LastLogin != nil {
			lastLogin = r.LastLogin.Format(time.RFC3339)
		}
		record := []string{
			r.UserID, r.Username, r.Email, r.Role, strconv.FormatBool(r.IsActive),
			r.FullName, r.CreatedAt.Format(time.RFC3339), lastLogin,
			strconv.Itoa(r.TotalRecipes), strconv.Itoa(r.TotalRatingsGiven),
			strconv.Itoa(r.TotalFavorites), strconv.FormatFloat(r.AvgRatingReceived, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("export: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	logger.Info("User export written",
		zap.String("path", path),
		zap.Int("rows", len(rows)))

	admins, err := j.userDAO.AdminEmails(ctx)
	if err != nil {
		logger.Error("Failed to load admin emails for export notification", zap.Error(err))
		return nil
	}
	body := fmt.Sprintf("The weekly user export (%d users) is available at %s.", len(rows), path)
	return j.notification.NotifyAdmins(ctx, admins, "Weekly user export ready", body)
}

// CleanupJob removes exports older than the configured retention period.
type CleanupJob struct {
	now func() time.Time
}

func NewCleanupJob() *CleanupJob {
	return &CleanupJob{now: time.Now}
}

func (j *CleanupJob) Run(ctx context.Context) error {
	retention := config.GetInt("exports.retentionDays")
	if retention <= 0 {
		retention = 28
	}
	cutoff := j.now().AddDate(0, 0, -retention)

	dir := exportDir()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove old export",
					zap.String("path", path), zap.Error(err))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		logger.Info("Old exports removed", zap.Int("count", removed))
	}
	return nil
}

func exportDir() string {
	dir := config.GetString("media.root")
	if dir == "" {
		dir = "media"
	}
	return filepath.Join(dir, "exports")
}
