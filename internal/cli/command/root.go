package command

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/pwdless-go/internal/cli/output"
	"github.com/yndnr/pwdless-go/internal/infra/buildinfo"
	"github.com/yndnr/pwdless-go/internal/telemetry/metric"
)

const metaRegistry = "registry"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "pwdless-cli",
		Usage:   "Administer the passwordless login token store",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[metaRegistry] = prometheus.NewRegistry()
			return nil
		},
		After: printStats,
	}
}

// globalFlags returns the global CLI flags. Flags that mirror a
// configuration key override the file and PWDLESS_ environment values.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (YAML)",
			EnvVars: []string{"PWDLESS_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Record backend: memory, badger, sql, redis",
		},
		&cli.StringFlag{
			Name:  "dsn",
			Usage: "SQL data source name (backend sql)",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Badger data directory (backend badger)",
		},
		&cli.StringFlag{
			Name:  "redis-addr",
			Usage: "Redis address host:port (backend redis)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:  "stats",
			Usage: "Print store counters gathered during the command",
		},
	}
}

// flagOverrides maps explicitly set global flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	keys := map[string]string{
		"backend":    "backend.type",
		"dsn":        "backend.sql.dsn",
		"data-dir":   "backend.badger.dir",
		"redis-addr": "backend.redis.addr",
		"log-level":  "log.level",
	}
	overrides := make(map[string]any)
	for flag, key := range keys {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	return overrides
}

func registry(c *cli.Context) *prometheus.Registry {
	if reg, ok := c.App.Metadata[metaRegistry].(*prometheus.Registry); ok {
		return reg
	}
	return nil
}

// render writes data to the app writer in the --output format.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

type statRow struct {
	Metric string  `json:"metric" yaml:"metric"`
	Labels string  `json:"labels" yaml:"labels"`
	Value  float64 `json:"value" yaml:"value"`
}

func printStats(c *cli.Context) error {
	if !c.Bool("stats") {
		return nil
	}
	reg := registry(c)
	if reg == nil {
		return nil
	}
	samples, err := metric.Summarize(reg)
	if err != nil {
		return fmt.Errorf("gather stats: %w", err)
	}

	rows := make([]statRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, statRow{Metric: s.Name, Labels: joinLabels(s.Labels), Value: s.Value})
	}
	return render(c, rows)
}

func joinLabels(labels map[string]string) string {
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
