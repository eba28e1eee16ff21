package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	sdk "github.com/accessmatic/dashboard/sdk/go"
	"github.com/accessmatic/dashboard/sdk/go/auth"
	"github.com/accessmatic/dashboard/sdk/go/internal/cli/output"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)", EnvVars: []string{"ACCESSMATIC_PASSWORD"}},
		},
		Action: runLogin,
	}
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)", EnvVars: []string{"ACCESSMATIC_PASSWORD"}},
			&cli.StringFlag{Name: "name", Usage: "Full name"},
			&cli.StringFlag{Name: "organization", Usage: "Organization name"},
		},
		Action: runRegister,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored access token",
		Action: runLogout,
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Validate the stored token and show the signed-in user",
		Action: runWhoami,
	}
}

func password(c *cli.Context) (string, error) {
	if p := c.String("password"); p != "" {
		return p, nil
	}
	fmt.Fprint(c.App.ErrWriter, "Password: ")
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

func runLogin(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	pw, err := password(c)
	if err != nil {
		return err
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	resp, err := rt.Sessions.Login(ctx, c.String("email"), pw)
	if err != nil {
		return err
	}
	return printAuthenticated(c, rt, resp)
}

func runRegister(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	pw, err := password(c)
	if err != nil {
		return err
	}
	req := sdk.RegisterRequest{
		Email:            c.String("email"),
		Password:         pw,
		FullName:         c.String("name"),
		OrganizationName: c.String("organization"),
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	resp, err := rt.Sessions.Register(ctx, req)
	if err != nil {
		return err
	}
	return printAuthenticated(c, rt, resp)
}

func printAuthenticated(c *cli.Context, rt *Runtime, resp sdk.AuthResponse) error {
	current := rt.Sessions.Current()
	if !current.Authenticated() {
		return errors.New("backend accepted the credentials but returned no access token")
	}
	rt.Logger.Info().Msg("session stored")
	return rt.Print(c, newSessionView(rt, current))
}

func runLogout(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	if _, err := rt.Sessions.Logout(ctx); err != nil {
		return err
	}
	return rt.Print(c, message{Message: "Logged out."})
}

func runWhoami(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	ctx, cancel := rt.Context(c)
	defer cancel()

	current, err := rt.Sessions.Restore(ctx)
	if err != nil {
		if errors.Is(err, sdk.ErrTokenExpired) {
			return errors.New("stored token has expired (run `accessmatic login`)")
		}
		return wrapAuthError(err)
	}
	if !current.Authenticated() {
		return errors.New("not logged in (run `accessmatic login`)")
	}
	return rt.Print(c, newSessionView(rt, current))
}

// sessionView is the signed-in identity as shown by login and whoami.
type sessionView struct {
	State     sdk.SessionState `json:"state"`
	User      *sdk.User        `json:"user,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

func newSessionView(rt *Runtime, s sdk.Session) sessionView {
	v := sessionView{State: s.State, User: s.User}
	if token, ok := rt.Client.Session().Get(); ok {
		if claims, err := auth.ParseUnverified(token); err == nil {
			if exp, ok := claims.Expiry(); ok {
				v.ExpiresAt = &exp
			}
		}
	}
	return v
}

func (v sessionView) Table() output.Table {
	t := output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("State", string(v.State))
	if u := v.User; u != nil {
		t.AddRow("Email", output.Or(u.Email, "-"))
		t.AddRow("Name", output.Or(u.FullName, "-"))
		t.AddRow("Role", output.Or(string(u.Role), "-"))
		t.AddRow("Organization", output.Or(u.OrganizationName, "-"))
	}
	if v.ExpiresAt != nil {
		t.AddRow("Token Expires", output.Time(*v.ExpiresAt))
	}
	return t
}
