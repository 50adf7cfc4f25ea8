package core

import (
	"time"

	"github.com/example/rentalhub/internal/models"
)

// TrialDays is the length of the free trial.
const TrialDays = 7

const day = 24 * time.Hour

// ResolveAccessTier derives the access tier of an account at instant now.
//
// Elapsed days are ceil(|now - trialStartDate| / 24h): a trial started one second ago has
// used one day, and a trial is still active on its seventh elapsed day (with zero days
// left). Administrators are not special-cased here.
func ResolveAccessTier(account *models.User, now time.Time) models.AccessTier {
	if account == nil {
		return models.AccessTier{TrialStatus: models.TrialNone}
	}

	tier := models.AccessTier{TrialStatus: models.TrialNone}
	if account.TrialStartDate != nil {
		elapsed := elapsedDays(now.Sub(*account.TrialStartDate))
		if elapsed <= TrialDays {
			tier.TrialStatus = models.TrialActive
			tier.DaysLeft = clampDays(TrialDays - elapsed)
		} else {
			tier.TrialStatus = models.TrialExpired
		}
	}

	tier.ContentUnlocked = account.IsPaid || tier.TrialStatus == models.TrialActive
	return tier
}

func elapsedDays(diff time.Duration) int {
	if diff < 0 {
		diff = -diff
	}
	days := diff / day
	if diff%day != 0 {
		days++
	}
	return int(days)
}

func clampDays(d int) int {
	if d < 0 {
		return 0
	}
	if d > TrialDays {
		return TrialDays
	}
	return d
}
