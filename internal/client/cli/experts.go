package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/views"
)

// Experts lists providers, optionally by skill and by category:
//
//	experts -c 2 golang
func (a *App) Experts(ctx context.Context, args []string) error {
	var categoryID int
	var skill []string
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			if i+1 == len(args) {
				return usage("experts")
			}
			id, err := strconv.Atoi(args[i+1])
			if err != nil {
				return usage("experts")
			}
			categoryID = id
			i++
			continue
		}
		skill = append(skill, args[i])
	}

	users, err := a.directory.Experts(ctx, models.UserQuery{Skill: strings.Join(skill, " ")})
	if err != nil {
		return err
	}

	if categoryID != 0 {
		cats, err := a.directory.Categories(ctx)
		if err != nil {
			return err
		}
		users = views.ExpertFilter(users, cats, categoryID)
	}

	if len(users) == 0 {
		printlnFn("No experts found.")
		return nil
	}
	for _, u := range users {
		printlnFn(views.ExpertLine(u))
	}
	return nil
}

func (a *App) Categories(ctx context.Context, _ []string) error {
	cats, err := a.directory.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		printf("#%d %s  %s", c.ID, c.Name, c.Description)
	}
	return nil
}

// Expert shows the public profile: skills, weekly availability and reviews.
func (a *App) Expert(ctx context.Context, args []string) error {
	id, err := idArg("expert", args)
	if err != nil {
		return err
	}

	u, err := a.directory.User(ctx, id)
	if err != nil {
		return err
	}
	printUser(u)

	slots, err := a.directory.Availability(ctx, id)
	if err != nil {
		return err
	}
	printAvailability(slots)

	reviews, err := a.meetings.Reviews(ctx, models.ReviewQuery{Reviewee: id})
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		printlnFn("No reviews yet.")
		return nil
	}
	printlnFn("Reviews:")
	for _, r := range reviews {
		printf("  %d/5 by %s: %s", r.Rating, r.ReviewerName, r.Feedback)
	}
	return nil
}

func printUser(u models.User) {
	printf("#%d %s (@%s)", u.ID, u.FullName(), u.Username)
	if u.Headline != "" {
		printlnFn(u.Headline)
	}
	if u.Bio != "" {
		printlnFn(u.Bio)
	}
	if len(u.Skills) == 0 {
		printlnFn("No skills listed.")
		return
	}
	printlnFn("Skills:")
	for _, s := range u.Skills {
		printf("  #%d %s, %s, %d years", s.ID, s.SkillName, s.SkillLevel, s.YearsExperience)
	}
}

func printAvailability(slots []models.Availability) {
	if len(slots) == 0 {
		printlnFn("No availability set.")
		return
	}
	printlnFn("Availability:")
	for _, s := range slots {
		state := ""
		if !s.IsAvailable {
			state = " (unavailable)"
		}
		day := s.DayName
		if day == "" {
			day = "day " + strconv.Itoa(s.DayOfWeek)
		}
		printf("  #%d %s %s-%s%s", s.ID, day, s.StartTime, s.EndTime, state)
	}
}
