package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	sdk "github.com/accessmatic/dashboard/sdk/go"
	"github.com/accessmatic/dashboard/sdk/go/internal/cli/output"
)

// DocumentsCommand returns the documents command.
func DocumentsCommand() *cli.Command {
	return &cli.Command{
		Name:    "documents",
		Aliases: []string{"docs"},
		Usage:   "Inspect submitted documents",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List documents",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter by status: pending, processing, completed, failed"},
					&cli.StringFlag{Name: "search", Usage: "Filter by filename"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of documents"},
					&cli.IntFlag{Name: "offset", Usage: "Number of documents to skip"},
				},
				Action: runDocumentsList,
			},
		},
	}
}

func parseDocumentStatus(s string) (sdk.DocumentStatus, error) {
	switch status := sdk.DocumentStatus(s); status {
	case "", sdk.DocumentStatusPending, sdk.DocumentStatusProcessing, sdk.DocumentStatusCompleted, sdk.DocumentStatusFailed:
		return status, nil
	default:
		return "", fmt.Errorf("unknown document status %q", s)
	}
}

func runDocumentsList(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	status, err := parseDocumentStatus(c.String("status"))
	if err != nil {
		return err
	}
	if c.Int("limit") < 0 || c.Int("offset") < 0 {
		return fmt.Errorf("limit and offset must not be negative")
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	docs, err := rt.Client.Documents.List(ctx, sdk.DocumentListOptions{
		Status: status,
		Search: c.String("search"),
		Limit:  c.Int("limit"),
		Offset: c.Int("offset"),
	})
	if err != nil {
		return wrapAuthError(err)
	}
	return rt.Print(c, documentList(docs))
}

type documentList []sdk.Document

func (l documentList) Table() output.Table {
	t := output.Table{Headers: []string{"ID", "FILENAME", "STATUS", "SCORE", "PAGES", "CREATED"}}
	for _, d := range l {
		score := "-"
		if d.AccessibilityScore != nil {
			score = strconv.FormatFloat(*d.AccessibilityScore, 'f', 1, 64)
		}
		pages := "-"
		if d.PageCount > 0 {
			pages = strconv.Itoa(d.PageCount)
		}
		t.AddRow(d.ID.String(), d.Filename, string(d.Status), score, pages, output.Time(d.CreatedAt))
	}
	return t
}
