package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	apiclient "github.com/Saku-iyadurai/GivingteamChallenge/pkg/api/client"
)

var buildVersion = "dev"

const requestTimeout = 15 * time.Second

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "team":
		err = commandTeam(args)
	case "contribute":
		err = commandContribute(args)
	case "leaderboard":
		err = commandLeaderboard(args)
	case "watch":
		err = commandWatch(args)
	case "search":
		err = commandSearch(args)
	case "donate":
		err = commandDonate(args)
	case "donations":
		err = commandDonations(args)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// apiFlag registers the shared --api flag on a subcommand.
func apiFlag(fs *flag.FlagSet) *string {
	return fs.String("api", "", "API base URL (default $GIVECTL_API or http://localhost:5000)")
}

func newClient(api string) (*apiclient.Client, error) {
	base := strings.TrimSpace(api)
	if base == "" {
		base = strings.TrimSpace(os.Getenv("GIVECTL_API"))
	}
	return apiclient.New(base)
}

func commandTeam(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: givectl team [create|list|show]")
	}
	sub := args[0]
	switch sub {
	case "create":
		return teamCreate(args[1:])
	case "list":
		return teamList(args[1:])
	case "show":
		return teamShow(args[1:])
	default:
		return fmt.Errorf("unknown team command: %s", sub)
	}
}

func teamCreate(args []string) error {
	fs := flag.NewFlagSet("team create", flag.ExitOnError)
	name := fs.String("name", "", "Team name")
	goal := fs.Float64("goal", 0, "Fundraising goal")
	api := apiFlag(fs)
	fs.Parse(args)

	if strings.TrimSpace(*name) == "" {
		return errors.New("--name is required")
	}

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	team, err := client.CreateTeam(ctx, *name, *goal)
	if err != nil {
		return err
	}
	fmt.Printf("team created: %d (%s) goal=%s\n", team.ID, team.Name, formatAmount(team.Goal))
	return nil
}

func teamList(args []string) error {
	fs := flag.NewFlagSet("team list", flag.ExitOnError)
	api := apiFlag(fs)
	fs.Parse(args)

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	teams, err := client.ListTeams(ctx)
	if err != nil {
		return err
	}
	for _, t := range teams {
		fmt.Printf("%d\t%s\t%s/%s\t%d members\n", t.ID, t.Name, formatAmount(t.TotalContributions), formatAmount(t.Goal), len(t.Members))
	}
	return nil
}

func teamShow(args []string) error {
	fs := flag.NewFlagSet("team show", flag.ExitOnError)
	id := fs.Int64("id", 0, "Team identifier")
	api := apiFlag(fs)
	fs.Parse(args)

	if *id <= 0 {
		return errors.New("--id is required")
	}

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	team, err := client.GetTeam(ctx, *id)
	if err != nil {
		return err
	}
	printTeam(team)
	return nil
}

func commandContribute(args []string) error {
	fs := flag.NewFlagSet("contribute", flag.ExitOnError)
	id := fs.Int64("team", 0, "Team identifier")
	name := fs.String("name", "", "Contributor name")
	amount := fs.Float64("amount", 0, "Contribution amount")
	api := apiFlag(fs)
	fs.Parse(args)

	if *id <= 0 {
		return errors.New("--team is required")
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("--name is required")
	}

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	team, err := client.Contribute(ctx, *id, *name, *amount)
	if err != nil {
		return err
	}
	fmt.Printf("contribution recorded: %s now at %s of %s\n", team.Name, formatAmount(team.TotalContributions), formatAmount(team.Goal))
	return nil
}

func commandLeaderboard(args []string) error {
	fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	limit := fs.Int("limit", 0, "Maximum number of teams to display")
	api := apiFlag(fs)
	fs.Parse(args)

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	entries, err := client.Leaderboard(ctx)
	if err != nil {
		return err
	}
	count := len(entries)
	if *limit > 0 && *limit < count {
		count = *limit
	}
	for i := 0; i < count; i++ {
		e := entries[i]
		fmt.Printf("%d\t%s\t%s\n", i+1, e.Name, formatAmount(e.TotalContributions))
	}
	return nil
}

func commandWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	id := fs.Int64("team", 0, "Team identifier")
	api := apiFlag(fs)
	fs.Parse(args)

	if *id <= 0 {
		return errors.New("--team is required")
	}

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "watching team %d, press Ctrl+C to stop\n", *id)
	return client.WatchTeam(ctx, *id, func(team apiclient.Team) error {
		fmt.Printf("%s\t%s\t%s/%s\t%.0f%%\t%d members\n",
			time.Now().Format(time.TimeOnly), team.Name,
			formatAmount(team.TotalContributions), formatAmount(team.Goal), team.Progress*100, len(team.Members))
		return nil
	})
}

func commandSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	api := apiFlag(fs)
	fs.Parse(args)

	term := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if term == "" {
		return errors.New("usage: givectl search [--api URL] <term>")
	}

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	found, err := client.SearchCauses(ctx, term)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Println("no causes found")
		return nil
	}
	for _, c := range found {
		fmt.Printf("%s\t%s\t%s\n", c.ID, c.Name, c.Link)
	}
	return nil
}

func commandDonate(args []string) error {
	fs := flag.NewFlagSet("donate", flag.ExitOnError)
	nonprofit := fs.String("nonprofit", "", "Nonprofit identifier from search")
	amount := fs.Float64("amount", 0, "Donation amount")
	api := apiFlag(fs)
	fs.Parse(args)

	if strings.TrimSpace(*nonprofit) == "" {
		return errors.New("--nonprofit is required")
	}

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	d, err := client.Donate(ctx, *nonprofit, *amount)
	if err != nil {
		return err
	}
	fmt.Printf("donation recorded: %s %s to %s\n", d.ID, formatAmount(d.Amount), d.NonprofitID)
	return nil
}

func commandDonations(args []string) error {
	fs := flag.NewFlagSet("donations", flag.ExitOnError)
	api := apiFlag(fs)
	fs.Parse(args)

	client, err := newClient(*api)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	donations, err := client.ListDonations(ctx)
	if err != nil {
		return err
	}
	for _, d := range donations {
		fmt.Printf("%s\t%s\t%s\t%s\n", d.ID, d.NonprofitID, formatAmount(d.Amount), d.Timestamp.Format(time.RFC3339))
	}
	return nil
}

func printTeam(team apiclient.Team) {
	fmt.Printf("%s (#%d)\n", team.Name, team.ID)
	fmt.Printf("  raised: %s of %s\n", formatAmount(team.TotalContributions), formatAmount(team.Goal))
	if !team.CreatedAt.IsZero() {
		fmt.Printf("  created: %s\n", team.CreatedAt.Format(time.RFC3339))
	}
	for _, m := range team.Members {
		fmt.Printf("  - %s\t%s\n", m.Name, formatAmount(m.Amount))
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printUsage() {
	fmt.Println(`givectl - command line client for the giving API

Usage:
  givectl team create --name NAME --goal AMOUNT
  givectl team list
  givectl team show --id ID
  givectl contribute --team ID --name NAME --amount AMOUNT
  givectl leaderboard [--limit N]
  givectl watch --team ID
  givectl search TERM
  givectl donate --nonprofit ID --amount AMOUNT
  givectl donations
  givectl version

Every command accepts --api URL. Without it GIVECTL_API is used, falling
back to http://localhost:5000.`)
}

func printVersion() {
	fmt.Println(buildVersion)
}
