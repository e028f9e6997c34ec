// Package cli implements the cof terminal client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"expertcof/internal/appctx"
	"expertcof/internal/bootstrap"
	sharedauth "expertcof/internal/shared/auth"
)

// Version is stamped at build time with -ldflags "-X expertcof/internal/cli.Version=...".
var Version = "dev"

var errSignedOut = errors.New("Usuário não autenticado. Execute `cof login`.")

// Runtime is what every command runs against.
type Runtime struct {
	App     *bootstrap.App
	Session *appctx.Context
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	// Spinner shows progress on Err during slow calls.
	Spinner bool

	reader *bufio.Reader
}

// NewRootCommand builds the cof command tree.
func NewRootCommand(rt *Runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "cof",
		Short:         "Expert COF - análise de Circulares de Oferta de Franquia",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(rt.In)
	root.SetOut(rt.Out)
	root.SetErr(rt.Err)

	root.AddCommand(
		newLoginCommand(rt),
		newSignupCommand(rt),
		newForgotPasswordCommand(rt),
		newLogoutCommand(rt),
		newUploadCommand(rt),
		newStatsCommand(rt),
		newHistoryCommand(rt),
		newRecentCommand(rt),
		newShowCommand(rt),
		newCompareCommand(rt),
		newExportCommand(rt),
		newProfileCommand(rt),
		newThemeCommand(rt),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree against args and prints failures to Err.
func Execute(ctx context.Context, rt *Runtime, args []string) int {
	root := NewRootCommand(rt)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		rt.palette().poor.Fprintln(rt.Err, err)
		return 1
	}
	return 0
}

func (rt *Runtime) palette() palette {
	return paletteFor(rt.Session.Theme())
}

// authed returns a context carrying the caller's access token for the
// record store, plus the user id and the token itself.
func (rt *Runtime) authed(ctx context.Context) (context.Context, string, *oauth2.Token, error) {
	tok, err := rt.Session.Token(ctx)
	if err != nil {
		if errors.Is(err, appctx.ErrSignedOut) {
			return nil, "", nil, errSignedOut
		}
		return nil, "", nil, err
	}
	userID := rt.Session.UserID()
	if userID == "" {
		return nil, "", nil, errSignedOut
	}
	return sharedauth.WithAccessToken(ctx, tok.AccessToken), userID, tok, nil
}

// busy runs fn with a spinner showing msg.
func (rt *Runtime) busy(msg string, fn func() error) error {
	if !rt.Spinner {
		return fn()
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(rt.Err))
	s.Suffix = " " + msg
	s.Start()
	defer s.Stop()
	return fn()
}

// prompt reads one line from In after printing label to Err.
func (rt *Runtime) prompt(label string) (string, error) {
	if rt.reader == nil {
		rt.reader = bufio.NewReader(rt.In)
	}
	fmt.Fprint(rt.Err, label)
	line, err := rt.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// valueOrPrompt returns v, asking for it when empty.
func (rt *Runtime) valueOrPrompt(v, label string) (string, error) {
	if strings.TrimSpace(v) != "" {
		return v, nil
	}
	return rt.prompt(label)
}

// TerminalRuntime wires a Runtime to the process's standard streams.
func TerminalRuntime(app *bootstrap.App, session *appctx.Context) *Runtime {
	return &Runtime{
		App:     app,
		Session: session,
		In:      os.Stdin,
		Out:     color.Output,
		Err:     color.Error,
		Spinner: !color.NoColor,
	}
}
