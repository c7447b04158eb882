package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/filex"
)

// maxAvatarSize bounds profile picture uploads.
const maxAvatarSize = 5 << 20

func (a *App) Profile(ctx context.Context, _ []string) error {
	if err := a.auth.ReloadUser(ctx); err != nil {
		return err
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	printUser(u)
	printf("Email: %s", u.Email)
	if u.ProfilePicture != "" {
		printf("Avatar: %s", u.ProfilePicture)
	}

	slots, err := a.directory.Availability(ctx, u.ID)
	if err != nil {
		return err
	}
	printAvailability(slots)
	return nil
}

// EditProfile prompts for each field with its current value; an empty answer
// keeps it.
func (a *App) EditProfile(ctx context.Context, _ []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	ask := func(label, current string) (*string, error) {
		v, err := getSimpleText(a.reader, label+" ["+current+"]", a.out)
		if err != nil {
			return nil, err
		}
		return optional(v), nil
	}

	var upd models.ProfileUpdate
	if upd.FirstName, err = ask("First name", u.FirstName); err != nil {
		return err
	}
	if upd.LastName, err = ask("Last name", u.LastName); err != nil {
		return err
	}
	if upd.Headline, err = ask("Headline", u.Headline); err != nil {
		return err
	}
	bio, err := getMultiline(a.reader, "Bio (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	upd.Bio = optional(bio)

	if upd.Empty() {
		printlnFn("Nothing to update.")
		return nil
	}
	if err := a.auth.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	printlnFn("Profile updated.")
	return nil
}

func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("avatar")
	}
	path := strings.Join(args, " ")
	data, err := filex.ReadLimited(path, maxAvatarSize)
	if err != nil {
		return err
	}
	if err := a.auth.UploadAvatar(ctx, filepath.Base(path), data); err != nil {
		return err
	}
	printlnFn("Avatar updated.")
	return nil
}

func (a *App) AddSkill(ctx context.Context, _ []string) error {
	var req models.SkillRequest
	var err error
	if req.SkillName, err = getSimpleText(a.reader, "Skill", a.out); err != nil {
		return err
	}
	level, err := getSimpleText(a.reader, "Level (beginner, intermediate, advanced, expert)", a.out)
	if err != nil {
		return err
	}
	req.SkillLevel = models.SkillLevel(strings.ToLower(level))
	years, err := getSimpleText(a.reader, "Years of experience [0]", a.out)
	if err != nil {
		return err
	}
	if req.YearsExperience, err = parseInt("years_experience", years, 0); err != nil {
		return err
	}

	skill, err := a.directory.AddSkill(ctx, req)
	if err != nil {
		return err
	}
	printf("Skill #%d added.", skill.ID)
	return a.auth.ReloadUser(ctx)
}

func (a *App) DeleteSkill(ctx context.Context, args []string) error {
	id, err := idArg("delskill", args)
	if err != nil {
		return err
	}
	if err := a.directory.DeleteSkill(ctx, id); err != nil {
		return err
	}
	printlnFn("Skill removed.")
	return a.auth.ReloadUser(ctx)
}

func (a *App) AddAvailability(ctx context.Context, _ []string) error {
	req := models.AvailabilityRequest{IsAvailable: true}

	day, err := getSimpleText(a.reader, "Day of week (0 Monday ... 6 Sunday)", a.out)
	if err != nil {
		return err
	}
	if req.DayOfWeek, err = parseInt("day_of_week", day, -1); err != nil {
		return err
	}
	if req.StartTime, err = getSimpleText(a.reader, "From (HH:MM)", a.out); err != nil {
		return err
	}
	if req.EndTime, err = getSimpleText(a.reader, "To (HH:MM)", a.out); err != nil {
		return err
	}

	slot, err := a.directory.AddAvailability(ctx, req)
	if err != nil {
		return err
	}
	printf("Availability #%d added.", slot.ID)
	return nil
}

func (a *App) DeleteAvailability(ctx context.Context, args []string) error {
	id, err := idArg("delavail", args)
	if err != nil {
		return err
	}
	if err := a.directory.DeleteAvailability(ctx, id); err != nil {
		return err
	}
	printlnFn("Availability removed.")
	return nil
}
