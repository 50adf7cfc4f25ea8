package models

// TrialStatus is the derived state of an account's free trial.
type TrialStatus string

const (
	TrialNone    TrialStatus = "none"
	TrialActive  TrialStatus = "active"
	TrialExpired TrialStatus = "expired"
)

// AccessTier is derived from a User on every request and never persisted.
type AccessTier struct {
	TrialStatus     TrialStatus `json:"trialStatus"`
	DaysLeft        int         `json:"daysLeft"`
	ContentUnlocked bool        `json:"contentUnlocked"`
}
