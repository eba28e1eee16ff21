package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	sdk "github.com/accessmatic/dashboard/sdk/go"
	"github.com/accessmatic/dashboard/sdk/go/internal/cli/output"
)

// APIKeysCommand returns the apikeys command.
func APIKeysCommand() *cli.Command {
	return &cli.Command{
		Name:    "apikeys",
		Aliases: []string{"keys"},
		Usage:   "Manage widget API keys",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List API keys",
				Action: runAPIKeysList,
			},
			{
				Name:  "create",
				Usage: "Create an API key and print its secret once",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Key name", Required: true},
				},
				Action: runAPIKeysCreate,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke an API key",
				ArgsUsage: "KEY_ID",
				Action:    runAPIKeysRevoke,
			},
		},
	}
}

func runAPIKeysList(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	keys, err := rt.Client.APIKeys.List(ctx)
	if err != nil {
		return wrapAuthError(err)
	}
	return rt.Print(c, apiKeyList(keys))
}

func runAPIKeysCreate(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	key, err := rt.Client.APIKeys.Create(ctx, sdk.APIKeyCreateRequest{Name: c.String("name")})
	if err != nil {
		return wrapAuthError(err)
	}
	return rt.Print(c, createdKey(key))
}

func runAPIKeysRevoke(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one KEY_ID argument")
	}
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return fmt.Errorf("KEY_ID must not be empty")
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	if err := rt.Client.APIKeys.Revoke(ctx, sdk.ID(id)); err != nil {
		return wrapAuthError(err)
	}
	return rt.Print(c, message{Message: "Revoked " + id})
}

type apiKeyList []sdk.APIKey

func (l apiKeyList) Table() output.Table {
	t := output.Table{Headers: []string{"ID", "NAME", "KEY", "ACTIVE", "CREATED", "LAST USED"}}
	for _, k := range l {
		t.AddRow(k.ID.String(), k.Name, k.Redacted(), output.Bool(k.IsActive), output.Time(k.CreatedAt), output.OptionalTime(k.LastUsedAt))
	}
	return t
}

type createdKey sdk.APIKey

func (k createdKey) Table() output.Table {
	t := output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("ID", k.ID.String())
	t.AddRow("Name", k.Name)
	t.AddRow("Key", k.Key)
	t.AddRow("Created", output.Time(k.CreatedAt))
	return t
}
