// tasks/digest.go
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aniketsuryawanshi1/recipe-hub-api/dao"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

const (
	digestRecentDays    = 7
	digestRecentLimit   = 5
	digestFeaturedLimit = 3
	digestSendWorkers   = 8
)

// DigestJob assembles and sends the daily recipe digest to active users.
// Weekend runs are skipped.
type DigestJob struct {
	userDAO      *dao.UserDAO
	recipeDAO    *dao.RecipeDAO
	notification *util.NotificationService
	now          func() time.Time
}

func NewDigestJob(userDAO *dao.UserDAO, recipeDAO *dao.RecipeDAO,
	notification *util.NotificationService) *DigestJob {
	return &DigestJob{
		userDAO:      userDAO,
		recipeDAO:    recipeDAO,
		notification: notification,
		now:          time.Now,
	}
}

func (j *DigestJob) Run(ctx context.Context) error {
	now := j.now()
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		logger.Info("Skipping digest on weekend", zap.String("weekday", now.Weekday().String()))
		return nil
	}

	since := now.AddDate(0, 0, -digestRecentDays)
	recent, err := j.recipeDAO.ListRecent(ctx, since, digestRecentLimit)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}
	featured, err := j.recipeDAO.ListFeatured(ctx, digestFeaturedLimit)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}
	if len(recent) == 0 && len(featured) == 0 {
		logger.Info("No recipes for digest, skipping")
		return nil
	}

	users, err := j.userDAO.ListActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}

	body := buildDigestBody(recent, featured)
	subject := fmt.Sprintf("Recipe digest for %s", now.Format("January 2, 2006"))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(digestSendWorkers)
	for _, user := range users {
		user := user
		g.Go(func() error {
			if err := j.notification.SendEmail(gctx, user.Email, subject, body); err != nil {
				logger.Error("Failed to send digest",
					zap.String("userID", user.ID),
					zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Digest sent",
		zap.Int("users", len(users)),
		zap.Int("recentRecipes", len(recent)),
		zap.Int("featuredRecipes", len(featured)))
	return nil
}

func buildDigestBody(recent, featured []*model.Recipe) string {
	var b strings.Builder
	if len(recent) > 0 {
		b.WriteString("New this week:\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "  - %s by %s\n", r.Title, r.Author.Username)
		}
	}
	if len(featured) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Featured picks:\n")
		for _, r := range featured {
			fmt.Fprintf(&b, "  - %s by %s\n", r.Title, r.Author.Username)
		}
	}
	return b.String()
}
