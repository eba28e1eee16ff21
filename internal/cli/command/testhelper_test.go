package command

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/accessmatic/dashboard/sdk/go/testutil"
)

// cliResult captures one run of the app.
type cliResult struct {
	Stdout string
	Stderr string
	Err    error
}

// cliEnv is a fake backend plus an isolated session directory.
type cliEnv struct {
	t       *testing.T
	backend *testutil.Backend
	dir     string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, key := range []string{"ACCESSMATIC_API_KEY", "ACCESSMATIC_PASSWORD", "ACCESSMATIC_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)
	return &cliEnv{t: t, backend: backend, dir: t.TempDir()}
}

func (e *cliEnv) run(args ...string) cliResult {
	e.t.Helper()
	return e.runWithInput("", args...)
}

func (e *cliEnv) runWithInput(stdin string, args ...string) cliResult {
	e.t.Helper()
	app := App()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	full := []string{
		"accessmatic",
		"--api-url", e.backend.URL(),
		"--session-backend", "file",
		"--session-dir", e.dir,
		"--env-file", filepath.Join(e.dir, "absent.env"),
	}
	err := app.Run(append(full, args...))
	return cliResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

func (e *cliEnv) login(email, password string) {
	e.t.Helper()
	e.backend.AddAccount(email, password)
	if res := e.run("login", "--email", email, "--password", password); res.Err != nil {
		e.t.Fatalf("login: %v (stderr %q)", res.Err, res.Stderr)
	}
}
