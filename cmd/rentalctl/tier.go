package main

import (
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/models"
)

type tierReport struct {
	UID             string             `yaml:"uid"`
	Email           string             `yaml:"email"`
	IsPaid          bool               `yaml:"isPaid"`
	IsAdmin         bool               `yaml:"isAdmin"`
	TrialStartDate  *time.Time         `yaml:"trialStartDate,omitempty"`
	TrialStatus     models.TrialStatus `yaml:"trialStatus"`
	DaysLeft        int                `yaml:"daysLeft"`
	ContentUnlocked bool               `yaml:"contentUnlocked"`
}

func newTierCmd(e *env) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "tier",
		Short: "Print the resolved access tier of an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := e.users.GetByID(cmd.Context(), uid)
			if err != nil {
				return err
			}
			tier := core.ResolveAccessTier(user, time.Now())

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(tierReport{
				UID:             user.ID,
				Email:           user.Email,
				IsPaid:          user.IsPaid,
				IsAdmin:         user.IsAdmin,
				TrialStartDate:  user.TrialStartDate,
				TrialStatus:     tier.TrialStatus,
				DaysLeft:        tier.DaysLeft,
				ContentUnlocked: tier.ContentUnlocked,
			})
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "Firebase Auth UID")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
