package command

import (
	"fmt"
	"sort"
	"time"

	"github.com/knadh/koanf/maps"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/pwdless-go/internal/cli/output"
	"github.com/yndnr/pwdless-go/internal/config"
	"github.com/yndnr/pwdless-go/internal/infra/confloader"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Inspect the effective configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration with secrets masked",
				Action: configShow,
			},
			{
				Name:   "verify",
				Usage:  "Load and validate the configuration",
				Action: configVerify,
			},
		},
	}
}

type configEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	flat := confloader.Flatten(config.Sanitize(cfg))
	for k, v := range flat {
		if d, ok := v.(time.Duration); ok {
			flat[k] = d.String()
		}
	}

	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format).Format(writer(c), maps.Unflatten(flat, "."))
	}

	entries := make([]configEntry, 0, len(flat))
	for k, v := range flat {
		entries = append(entries, configEntry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return render(c, entries)
}

func configVerify(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer(c), "configuration ok (backend %s, hash %s)\n", cfg.Backend.Type, cfg.Hash.Algorithm)
	return err
}
