package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"storypals/internal/chatclient"
	"storypals/internal/domain"
)

func newCharactersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "characters",
		Short: "List the characters you can chat with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			characters, err := a.client.Characters(cmd.Context())
			if err != nil {
				return describe(err)
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, c := range characters {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Description)
			}
			return w.Flush()
		},
	}
}

func newChildrenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "children [id]",
		Short: "List the child profiles of your account, or show one with its progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.showChild(cmd.Context(), args[0])
			}
			children, err := a.client.Children(cmd.Context())
			if err != nil {
				return describe(err)
			}
			if len(children) == 0 {
				fmt.Fprintln(a.out, "No child profiles yet.")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tAGE\tGROUP\tREADING\tINTERESTS")
			for _, c := range children {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Age, c.AgeGroup, c.ReadingLevel, strings.Join(c.Interests, ", "))
			}
			return w.Flush()
		},
	}
}

func (a *app) showChild(ctx context.Context, id string) error {
	child, err := a.client.Child(ctx, id)
	if err != nil {
		return describe(err)
	}
	var (
		progress []domain.LearningProgress
		reviews  []domain.ParentReview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		progress, err = a.client.ChildProgress(gctx, child.ID)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = a.client.ChildReviews(gctx, child.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return describe(err)
	}

	fmt.Fprintf(a.out, "%s, %d (%s)\n", child.Name, child.Age, child.AgeGroup)
	fmt.Fprintf(a.out, "Reading level: %s\n", child.ReadingLevel)
	if len(child.Interests) > 0 {
		fmt.Fprintf(a.out, "Interests: %s\n", strings.Join(child.Interests, ", "))
	}

	fmt.Fprintln(a.out, "\nProgress:")
	if len(progress) == 0 {
		fmt.Fprintln(a.out, "  nothing recorded yet")
	} else {
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  DATE\tCHARACTER\tSCORE\tWORDS\tTOPICS")
		for _, p := range progress {
			fmt.Fprintf(w, "  %s\t%s\t%.0f\t%s\t%s\n", p.CreatedAt.Local().Format(time.DateOnly), p.CharacterID, p.EngagementScore,
				strings.Join(p.VocabularyLearned, ", "), strings.Join(p.TopicsDiscussed, ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.out, "\nReviews:")
	if len(reviews) == 0 {
		fmt.Fprintln(a.out, "  no reviews yet")
		return nil
	}
	for _, r := range reviews {
		stars := "-"
		if r.Rating != nil {
			stars = strings.Repeat("*", *r.Rating)
		}
		fmt.Fprintf(a.out, "  %s %-5s %s\n", r.CreatedAt.Local().Format(time.DateOnly), stars, r.Notes)
	}
	return nil
}

func newReviewCmd(a *app) *cobra.Command {
	var (
		character string
		notes     string
		rating    int
	)
	cmd := &cobra.Command{
		Use:   "review <child-id>",
		Short: "Leave a note about a child's chats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := chatclient.ReviewRequest{ChildID: args[0], CharacterID: character, Notes: notes}
			if cmd.Flags().Changed("rating") {
				req.Rating = &rating
			}
			if _, err := a.client.AddReview(cmd.Context(), req); err != nil {
				return describe(err)
			}
			fmt.Fprintln(a.out, "Review saved.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&character, "character", "c", "", "character the review is about")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "review text")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5")
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change the display name of your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := a.prompt("Display name: ", name)
			if err != nil {
				return err
			}
			user, err := a.client.UpdateProfile(cmd.Context(), value)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(a.out, "Display name set to %s\n", user.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show chat activity per character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.client.Interactions(cmd.Context(), days)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(a.out, "Last %d days: %d messages\n\n", report.Days, report.TotalMessages)
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHARACTER\tYOU\tREPLIES\tLAST ACTIVITY")
			for _, ci := range report.ByCharacter {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", ci.CharacterID, ci.UserMessages, ci.BotMessages, ci.LastActivity.Local().Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(a.out)
			for _, d := range report.Daily {
				fmt.Fprintf(a.out, "%s %s %d\n", d.Day, strings.Repeat("#", min(d.Messages, 60)), d.Messages)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "window in days")
	return cmd
}
