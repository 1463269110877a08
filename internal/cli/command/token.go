package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pwdless-go/pkg/token"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage login tokens",
		Subcommands: []*cli.Command{
			{
				Name:   "store",
				Usage:  "Store a token for a user, replacing any previous one",
				Flags:  []cli.Flag{userFlag(), tokenFlag(), ttlFlag(), originFlag()},
				Action: tokenStore,
			},
			{
				Name:   "issue",
				Usage:  "Generate and store a new token; the plaintext is printed once",
				Flags:  []cli.Flag{userFlag(), ttlFlag(), originFlag()},
				Action: tokenIssue,
			},
			{
				Name:   "auth",
				Usage:  "Check a token for a user",
				Flags:  []cli.Flag{userFlag(), tokenFlag()},
				Action: tokenAuth,
			},
			{
				Name:   "invalidate",
				Usage:  "Remove the token of a user",
				Flags:  []cli.Flag{userFlag()},
				Action: tokenInvalidate,
			},
			{
				Name:  "clear",
				Usage: "Remove every token",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm removal of all tokens",
					},
				},
				Action: tokenClear,
			},
			{
				Name:   "count",
				Usage:  "Count stored records, expired ones included",
				Action: tokenCount,
			},
		},
	}
}

type storeResult struct {
	User      string        `json:"user" yaml:"user"`
	Token     string        `json:"token,omitempty" yaml:"token,omitempty" table:"-"`
	TTL       time.Duration `json:"ttl" yaml:"ttl"`
	ExpiresAt time.Time     `json:"expires_at" yaml:"expires_at"`
	Origin    string        `json:"origin" yaml:"origin"`
}

type authResult struct {
	User   string `json:"user" yaml:"user"`
	Valid  bool   `json:"valid" yaml:"valid"`
	Origin string `json:"origin" yaml:"origin"`
}

type statusResult struct {
	User   string `json:"user,omitempty" yaml:"user,omitempty"`
	Status string `json:"status" yaml:"status"`
}

type countResult struct {
	Records int `json:"records" yaml:"records"`
}

func ttlFor(c *cli.Context, s *session) time.Duration {
	if ttl := c.Duration("ttl"); ttl != 0 {
		return ttl
	}
	return s.cfg.Store.DefaultTTL
}

// readToken returns the --token value, reading one line from stdin when
// it is "-".
func readToken(c *cli.Context) (string, error) {
	t := c.String("token")
	if t != "-" {
		return t, nil
	}
	var r io.Reader = os.Stdin
	if c.App.Reader != nil {
		r = c.App.Reader
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func tokenStore(c *cli.Context) error {
	plain, err := readToken(c)
	if err != nil {
		return err
	}
	return withSession(c, func(ctx context.Context, s *session) error {
		ttl := ttlFor(c, s)
		if err := s.store.StoreOrUpdate(ctx, plain, c.String("user"), ttl, c.String("origin")); err != nil {
			return err
		}
		return render(c, storeResult{
			User:      c.String("user"),
			TTL:       ttl,
			ExpiresAt: time.Now().Add(ttl).Truncate(time.Second),
			Origin:    c.String("origin"),
		})
	})
}

func tokenIssue(c *cli.Context) error {
	plain, err := token.Generate()
	if err != nil {
		return err
	}
	return withSession(c, func(ctx context.Context, s *session) error {
		ttl := ttlFor(c, s)
		if err := s.store.StoreOrUpdate(ctx, plain, c.String("user"), ttl, c.String("origin")); err != nil {
			return err
		}
		res := storeResult{
			User:      c.String("user"),
			Token:     plain,
			TTL:       ttl,
			ExpiresAt: time.Now().Add(ttl).Truncate(time.Second),
			Origin:    c.String("origin"),
		}
		if err := render(c, res); err != nil {
			return err
		}
		// The table view hides the token column so it is printed on its own.
		if f := c.String("output"); f == "" || strings.EqualFold(f, "table") {
			fmt.Fprintf(writer(c), "\ntoken: %s\n", plain)
		}
		return nil
	})
}

func tokenAuth(c *cli.Context) error {
	plain, err := readToken(c)
	if err != nil {
		return err
	}
	return withSession(c, func(ctx context.Context, s *session) error {
		valid, origin, err := s.store.Authenticate(ctx, plain, c.String("user"))
		if err != nil {
			return err
		}
		return render(c, authResult{User: c.String("user"), Valid: valid, Origin: origin})
	})
}

func tokenInvalidate(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *session) error {
		if err := s.store.InvalidateUser(ctx, c.String("user")); err != nil {
			return err
		}
		return render(c, statusResult{User: c.String("user"), Status: "invalidated"})
	})
}

func tokenClear(c *cli.Context) error {
	if !c.Bool("yes") {
		return errors.New("refusing to remove all tokens without --yes")
	}
	return withSession(c, func(ctx context.Context, s *session) error {
		if err := s.store.Clear(ctx); err != nil {
			return err
		}
		return render(c, statusResult{Status: "cleared"})
	})
}

func tokenCount(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *session) error {
		n, err := s.store.Length(ctx)
		if err != nil {
			return err
		}
		return render(c, countResult{Records: n})
	})
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "User ID",
		Required: true,
	}
}

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "token",
		Aliases:  []string{"t"},
		Usage:    "Plaintext token, or - to read it from stdin",
		Required: true,
	}
}

func ttlFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:  "ttl",
		Usage: "Token lifetime (default: store.default_ttl)",
	}
}

func originFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "origin",
		Usage: "URL to return the user to after login",
	}
}
