package cmd

import (
	"fmt"
	"strings"

	"github.com/mentorconnect/goaltracker/internal/app"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/spf13/cobra"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var email, name, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				u, err := a.UserService.CreateUser(cmd.Context(), email, name, model.Role(strings.ToUpper(role)))
				if err != nil {
					return err
				}
				fmt.Printf("created %s %s (%s)\n", u.Role, u.ID, u.Email)
				return nil
			})
		},
	}
	create.Flags().StringVar(&email, "email", "", "email address")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&role, "role", string(model.RoleMentee), "ADMIN, MENTOR or MENTEE")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}

func AssignCmd() *cobra.Command {
	var mentorEmail, menteeEmail string
	var remove bool

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a mentor to a mentee",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app.App) error {
				mentor, err := a.UserService.ByEmail(ctx, mentorEmail)
				if err != nil {
					return fmt.Errorf("mentor: %w", err)
				}
				mentee, err := a.UserService.ByEmail(ctx, menteeEmail)
				if err != nil {
					return fmt.Errorf("mentee: %w", err)
				}

				if remove {
					err = a.AssignmentService.Unassign(ctx, mentor.ID, mentee.ID)
					if err != nil {
						return err
					}
					fmt.Printf("unassigned %s from %s\n", mentor.Email, mentee.Email)
					return nil
				}

				_, err = a.AssignmentService.Assign(ctx, mentor.ID, mentee.ID)
				if err != nil {
					return err
				}
				fmt.Printf("assigned %s to %s\n", mentor.Email, mentee.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mentorEmail, "mentor", "", "mentor email")
	cmd.Flags().StringVar(&menteeEmail, "mentee", "", "mentee email")
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the assignment instead")
	_ = cmd.MarkFlagRequired("mentor")
	_ = cmd.MarkFlagRequired("mentee")

	return cmd
}

func TokenCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				u, err := a.UserService.ByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				token, err := a.AuthService.GenerateJWT(u)
				if err != nil {
					return err
				}
				fmt.Println(token)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
