package command

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	sdk "github.com/accessmatic/dashboard/sdk/go"
	"github.com/accessmatic/dashboard/sdk/go/internal/cli/output"
)

// AnalyticsCommand returns the analytics command.
func AnalyticsCommand() *cli.Command {
	return &cli.Command{
		Name:  "analytics",
		Usage: "Show dashboard analytics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "Start date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "to", Usage: "End date (YYYY-MM-DD)"},
		},
		Action: runAnalytics,
	}
}

// SummaryCommand returns the summary command.
func SummaryCommand() *cli.Command {
	return &cli.Command{
		Name:   "summary",
		Usage:  "Show the dashboard overview cards",
		Action: runSummary,
	}
}

// SnippetCommand returns the snippet command.
func SnippetCommand() *cli.Command {
	return &cli.Command{
		Name:      "snippet",
		Usage:     "Print the widget embed snippet",
		ArgsUsage: "[API_KEY]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "create", Usage: "Create a new API key with this name and embed it"},
		},
		Action: runSnippet,
	}
}

func parseDate(c *cli.Context, name string) (time.Time, error) {
	s := c.String(name)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, s)
	}
	return t, nil
}

func runAnalytics(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	from, err := parseDate(c, "from")
	if err != nil {
		return err
	}
	to, err := parseDate(c, "to")
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("--to must not be before --from")
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	stats, err := rt.Client.Analytics.Dashboard(ctx, sdk.AnalyticsOptions{From: from, To: to})
	if err != nil {
		return wrapAuthError(err)
	}
	return rt.Print(c, analyticsView(stats))
}

func runSummary(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	summary, err := rt.Client.Summary(ctx)
	if err != nil {
		return wrapAuthError(err)
	}
	return rt.Print(c, summaryView(summary))
}

func runSnippet(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	key := c.Args().First()
	name := c.String("create")
	switch {
	case key != "" && name != "":
		return fmt.Errorf("pass either API_KEY or --create, not both")
	case key == "" && name == "":
		return fmt.Errorf("API_KEY argument or --create is required")
	case name != "":
		ctx, cancel := rt.Context(c)
		defer cancel()
		created, err := rt.Client.APIKeys.Create(ctx, sdk.APIKeyCreateRequest{Name: name})
		if err != nil {
			return wrapAuthError(err)
		}
		key = created.Key
	}
	snippet, err := sdk.EmbedSnippet(key)
	if err != nil {
		return err
	}
	return rt.Print(c, snippetView{Snippet: snippet})
}

type analyticsView sdk.DashboardAnalytics

func (v analyticsView) Table() output.Table {
	t := output.Table{Headers: []string{"METRIC", "VALUE"}}
	t.AddRow("Total Documents", strconv.Itoa(v.TotalDocuments))
	t.AddRow("Processed Documents", strconv.Itoa(v.ProcessedDocuments))
	score := "--"
	if v.AverageScore != nil {
		score = strconv.FormatFloat(*v.AverageScore, 'f', 1, 64)
	}
	t.AddRow("Average Score", score)
	t.AddRow("Active API Keys", strconv.Itoa(v.ActiveAPIKeys))
	t.AddRow("Plan", output.Or(v.Plan, sdk.DefaultPlan))

	statuses := make([]string, 0, len(v.DocumentsByStatus))
	for status := range v.DocumentsByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		t.AddRow("Status: "+status, strconv.Itoa(v.DocumentsByStatus[sdk.DocumentStatus(status)]))
	}
	return t
}

type summaryView sdk.DashboardSummary

func (v summaryView) Table() output.Table {
	t := output.Table{Headers: []string{"CARD", "VALUE"}}
	for _, card := range sdk.DashboardSummary(v).Cards() {
		t.AddRow(card.Title, card.Value)
	}
	return t
}

type snippetView struct {
	Snippet string `json:"snippet"`
}

func (v snippetView) Table() output.Table {
	return output.Table{Rows: [][]string{{v.Snippet}}}
}
