package cmd

import (
	"fmt"
	"os"

	"github.com/mentorconnect/goaltracker/internal/app"
	"github.com/spf13/cobra"
)

func ImportCmd() *cobra.Command {
	var ownerEmail, file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create a goal from a markdown file",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return withApp(ctx, func(a *app.App) error {
				owner, err := a.UserService.ByEmail(ctx, ownerEmail)
				if err != nil {
					return err
				}
				goal, err := a.GoalService.ImportGoal(ctx, owner.ID, source)
				if err != nil {
					return err
				}
				fmt.Printf("imported %q as %s (%d milestones, %d%%)\n", goal.Title, goal.ID, len(goal.Milestones), goal.Progress)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ownerEmail, "owner", "", "mentee email")
	cmd.Flags().StringVar(&file, "file", "", "markdown file")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func DigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Send the help request digest to mentors now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				sent, err := a.HelpDigest.Run(cmd.Context())
				fmt.Println("digests sent:", sent)
				return err
			})
		},
	}
}
