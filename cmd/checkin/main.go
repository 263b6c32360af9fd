// checkin is the operator command line for the check-in service. It verifies
// ticket codes, checks attendees in and out, and shows event counts. The scan
// command reads codes from stdin, one per line, the way a handheld scanner
// types them.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"eventcheckin/internal/adapters/auth"
	"eventcheckin/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	server    string
	token     string
	eventID   string
	devUser   string
	devEmail  string
	devSecret string
	timeout   time.Duration
	verbose   bool
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("checkin", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.server, "server", envOr("CHECKIN_SERVER", "http://localhost:8080"), "check-in service base URL")
	flagSet.StringVar(&opts.token, "token", os.Getenv("CHECKIN_TOKEN"), "bearer token of the operator")
	flagSet.StringVarP(&opts.eventID, "event", "e", os.Getenv("CHECKIN_EVENT"), "event ID")
	flagSet.StringVar(&opts.devUser, "dev-user", "", "mint a short-lived token for this user ID instead of --token")
	flagSet.StringVar(&opts.devEmail, "dev-email", "", "email claim of the minted token")
	flagSet.StringVar(&opts.devSecret, "dev-secret", os.Getenv("JWT_SECRET"), "signing secret for --dev-user")
	flagSet.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(stdout, flagSet)
		return errors.New("missing command")
	}

	token := opts.token
	if opts.devUser != "" {
		if opts.devSecret == "" {
			return errors.New("--dev-user requires --dev-secret or JWT_SECRET")
		}
		minted, err := auth.NewJWTIssuer(opts.devSecret).Issue(opts.devUser, opts.devEmail, time.Hour)
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		token = minted
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	c := client.New(client.Config{BaseURL: opts.server, Token: token, Timeout: opts.timeout}, logger)

	cmd, rest := args[0], args[1:]
	needEvent := func() error {
		if opts.eventID == "" {
			return fmt.Errorf("%s needs --event", cmd)
		}
		return nil
	}
	needArg := func(name string) (string, error) {
		if len(rest) != 1 {
			return "", fmt.Errorf("usage: checkin %s <%s>", cmd, name)
		}
		return rest[0], nil
	}

	switch cmd {
	case "verify":
		code, err := needArg("ticket-code")
		if err != nil {
			return err
		}
		v, err := c.Verify(ctx, code, opts.eventID)
		if err != nil {
			return err
		}
		if !v.Valid {
			fmt.Fprintf(stdout, "INVALID  %s\n", v.Message)
			return nil
		}
		fmt.Fprintf(stdout, "VALID    %s  %s\n", v.TicketCode, holder(v.User.FullName, v.User.Email))
		if v.IsCheckedIn && v.CheckInDate != nil {
			fmt.Fprintf(stdout, "checked in at %s\n", formatTime(*v.CheckInDate))
		} else {
			fmt.Fprintln(stdout, "not checked in")
		}
		return nil

	case "check-in", "uncheck-in":
		if err := needEvent(); err != nil {
			return err
		}
		code, err := needArg("ticket-code")
		if err != nil {
			return err
		}
		if cmd == "check-in" {
			res, err := c.CheckIn(ctx, opts.eventID, code)
			if err != nil {
				return describe(err)
			}
			if res.CheckInDate == nil {
				fmt.Fprintf(stdout, "checked in %s\n", res.User.FullName)
				return nil
			}
			fmt.Fprintf(stdout, "checked in %s at %s\n", res.User.FullName, formatTime(*res.CheckInDate))
			return nil
		}
		res, err := c.UncheckIn(ctx, opts.eventID, code)
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(stdout, "check-in of %s undone\n", res.User.FullName)
		return nil

	case "counts":
		if err := needEvent(); err != nil {
			return err
		}
		counts, err := c.Counts(ctx, opts.eventID)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s (%s): %d/%d checked in\n",
			counts.EventName, counts.LocationType, counts.CheckedInCount, counts.TotalAttendees)
		return nil

	case "list":
		if err := needEvent(); err != nil {
			return err
		}
		entries, err := c.CheckIns(ctx, opts.eventID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CHECKED IN\tNAME\tEMAIL")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", formatTime(e.CheckInDate), e.User.FullName, e.User.Email)
		}
		return tw.Flush()

	case "attendees":
		if err := needEvent(); err != nil {
			return err
		}
		attendees, err := c.Attendees(ctx, opts.eventID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tAPPROVED")
		for _, a := range attendees {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", a.ID, a.Name, a.Email, a.IsApproved)
		}
		return tw.Flush()

	case "ticket":
		if err := needEvent(); err != nil {
			return err
		}
		attendeeID, err := needArg("attendee-id")
		if err != nil {
			return err
		}
		code, err := c.AttendeeTicket(ctx, opts.eventID, attendeeID)
		if err != nil {
			return describe(err)
		}
		fmt.Fprintln(stdout, code)
		return nil

	case "scan":
		if err := needEvent(); err != nil {
			return err
		}
		return scanLoop(ctx, client.NewScanFlow(c, opts.eventID), stdin, stdout)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// scanLoop drives a ScanFlow from line input. Each non-empty line is a ticket
// code; confirmations are read from the same input.
func scanLoop(ctx context.Context, flow *client.ScanFlow, stdin io.Reader, stdout io.Writer) error {
	lines := bufio.NewScanner(stdin)
	ask := func(prompt string, def bool) (bool, bool) {
		fmt.Fprint(stdout, prompt)
		if !lines.Scan() {
			return false, false
		}
		switch strings.ToLower(strings.TrimSpace(lines.Text())) {
		case "":
			return def, true
		case "y", "yes":
			return true, true
		default:
			return false, true
		}
	}

	fmt.Fprintln(stdout, "scan a ticket code (q to quit)")
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(stdout, "> ")
		if !lines.Scan() {
			return lines.Err()
		}
		code := strings.TrimSpace(lines.Text())
		switch code {
		case "":
			continue
		case "q", "quit":
			return nil
		}

		flow.Cancel()
		view, err := flow.Scan(ctx, code)
		if err != nil {
			return err
		}
		for view.State == client.StateConfirming || view.State == client.StateAlreadyCheckedIn {
			var yes, ok bool
			if view.State == client.StateConfirming {
				yes, ok = ask(fmt.Sprintf("%s  check in? [Y/n] ", view.HolderName), true)
				if !ok {
					return nil
				}
				if !yes {
					view = flow.Cancel()
					break
				}
				view, err = flow.Confirm(ctx)
			} else {
				since := ""
				if view.CheckInDate != nil {
					since = " since " + formatTime(*view.CheckInDate)
				}
				yes, ok = ask(fmt.Sprintf("%s  already checked in%s. undo? [y/N] ", view.HolderName, since), false)
				if !ok {
					return nil
				}
				if !yes {
					view = flow.Cancel()
					break
				}
				view, err = flow.Undo(ctx)
			}
			if err != nil {
				return err
			}
		}
		printResult(stdout, view)
	}
}

func printResult(w io.Writer, view client.ScanView) {
	switch view.Outcome {
	case client.OutcomeCheckedIn:
		fmt.Fprintf(w, "OK       %s checked in\n", view.HolderName)
	case client.OutcomeUndone:
		fmt.Fprintf(w, "UNDONE   %s\n", view.HolderName)
	case client.OutcomeInvalid:
		fmt.Fprintf(w, "INVALID  %s\n", view.Message)
	case client.OutcomeFailed:
		fmt.Fprintf(w, "FAILED   %s\n", view.Message)
	default:
		fmt.Fprintln(w, "skipped")
	}
}

func describe(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if at, ok := apiErr.CheckInDate(); ok {
			return fmt.Errorf("%s: already checked in at %s", apiErr.Code, formatTime(at))
		}
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	return err
}

func holder(name, email string) string {
	if email == "" {
		return name
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `checkin: operator tool for event check-in.

Usage:
  checkin [flags] <command> [args]

Commands:
  verify <ticket-code>       show the holder and status of a ticket
  check-in <ticket-code>     check a ticket in
  uncheck-in <ticket-code>   undo a check-in
  counts                     checked-in and approved attendee counts
  list                       check-in history, most recent first
  attendees                  event roster
  ticket <attendee-id>       ticket code of an approved attendee
  scan                       read codes from stdin and confirm each one

Flags:
%s`, flagSet.FlagUsages())
}
