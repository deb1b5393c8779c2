package digest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"github.com/hollydays/wishlist-backend/pkg/logger"
	"github.com/hollydays/wishlist-backend/pkg/mailer"
)

// JobName identifies the digest job in logs and metrics.
const JobName = "wishlist-digest"

// JobParams configure the digest job.
type JobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Repo   Repository
	Mailer mailer.Mailer
}

// NewJob builds the daily digest job. Each run collects the change-log
// entries written since the last run, emails every household member a
// per-list summary, and marks the entries notified.
func NewJob(params JobParams) (*Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("digest repository required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &Job{
		logg:   params.Logger,
		db:     params.DB,
		repo:   params.Repo,
		mailer: params.Mailer,
	}, nil
}

// Job implements the cron job interface for the daily digest.
type Job struct {
	logg   *logger.Logger
	db     txRunner
	repo   Repository
	mailer mailer.Mailer
}

func (j *Job) Name() string { return JobName }

// listKey identifies the list a change-log entry belongs to. Exactly one of
// the two ids is set.
type listKey struct {
	ownerID     uuid.UUID
	proxyListID uuid.UUID
}

type listSummary struct {
	key     listKey
	title   string
	entries []models.ChangeLogEntry
}

// Run settles the change log in a transaction, then sends email outside it.
// A failed send only loses that recipient's copy of this digest; the entries
// are already marked notified so the next run starts clean.
func (j *Job) Run(ctx context.Context) error {
	var (
		entries  []models.ChangeLogEntry
		accounts []models.Account
		proxies  []models.ProxyList
	)
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repo.WithTx(tx)

		var err error
		entries, err = repo.ListUnnotified(ctx)
		if err != nil {
			return fmt.Errorf("list unnotified entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		accounts, err = repo.ListAccounts(ctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		proxies, err = repo.FindProxyLists(ctx, proxyListIDs(entries))
		if err != nil {
			return fmt.Errorf("load proxy lists: %w", err)
		}

		ids := make([]uuid.UUID, 0, len(entries))
		for _, entry := range entries {
			ids = append(ids, entry.ID)
		}
		if err := repo.MarkNotified(ctx, ids); err != nil {
			return fmt.Errorf("mark notified: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		j.logg.Info(ctx, "no wishlist changes since last digest")
		return nil
	}

	summaries := groupByList(entries, accounts, proxies)
	var sendErrs error
	sent := 0
	for _, account := range accounts {
		body := j.renderDigest(account, summaries)
		if body == "" {
			continue
		}
		if err := j.mailer.Send(ctx, account.Email, "Wishlist updates", body); err != nil {
			sendErrs = multierr.Append(sendErrs, fmt.Errorf("send to %s: %w", account.Email, err))
			continue
		}
		sent++
	}
	if sendErrs != nil {
		j.logg.Error(ctx, "some digest emails failed", sendErrs)
	}

	statsCtx := j.logg.WithFields(ctx, map[string]any{
		"entries": len(entries),
		"lists":   len(summaries),
		"emails":  sent,
	})
	j.logg.Info(statsCtx, "digest run complete")
	return nil
}

// renderDigest builds the email body for one recipient. Changes to the
// recipient's own list are left out; the digest exists to tell everyone
// else what changed, and surprises on the owner's list stay surprises.
func (j *Job) renderDigest(recipient models.Account, summaries []listSummary) string {
	var b strings.Builder
	for _, summary := range summaries {
		if summary.key.ownerID == recipient.ID {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", summary.title)
		for _, entry := range summary.entries {
			fmt.Fprintf(&b, "  - %s %s\n", entry.ItemName, pastTense(entry.ChangeType))
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("Hi %s,\n\nHere is what changed on the wishlists you follow:\n\n%s", recipient.Name, b.String())
}

func groupByList(entries []models.ChangeLogEntry, accounts []models.Account, proxies []models.ProxyList) []listSummary {
	accountNames := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}
	proxyNames := make(map[uuid.UUID]string, len(proxies))
	for _, p := range proxies {
		proxyNames[p.ID] = p.Name
	}

	index := map[listKey]int{}
	var summaries []listSummary
	for _, entry := range entries {
		var key listKey
		var title string
		switch {
		case entry.OwnerID != nil:
			key = listKey{ownerID: *entry.OwnerID}
			title = fmt.Sprintf("%s's wishlist", accountNames[*entry.OwnerID])
		case entry.ProxyListID != nil:
			key = listKey{proxyListID: *entry.ProxyListID}
			title = fmt.Sprintf("%s (managed list)", proxyNames[*entry.ProxyListID])
		default:
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(summaries)
			index[key] = i
			summaries = append(summaries, listSummary{key: key, title: title})
		}
		summaries[i].entries = append(summaries[i].entries, entry)
	}
	return summaries
}

func proxyListIDs(entries []models.ChangeLogEntry) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, entry := range entries {
		if entry.ProxyListID == nil || seen[*entry.ProxyListID] {
			continue
		}
		seen[*entry.ProxyListID] = true
		ids = append(ids, *entry.ProxyListID)
	}
	return ids
}

func pastTense(changeType string) string {
	switch changeType {
	case models.ChangeTypeAdded:
		return "was added"
	case models.ChangeTypeUpdated:
		return "was updated"
	case models.ChangeTypeDeleted:
		return "was removed"
	default:
		return "changed"
	}
}
