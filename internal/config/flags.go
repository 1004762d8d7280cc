package config

import (
	"flag"
	"os"
	"time"

	"carlog/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-f string   primary store file path
//	-d string   sqlite mirror path
//	-u string   remote document store base URL
//	-n string   remote namespace segment
//	-s string   sync identifier
//	-k string   sync secret
//	-p int      background poll interval in seconds
//
// The function filters os.Args to only the flags it knows about, via
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-d", "-u", "-n", "-s", "-k", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StorePath, "f", cfg.StorePath, "primary store file path")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "sqlite mirror path")
	fs.StringVar(&cfg.RemoteBaseURL, "u", cfg.RemoteBaseURL, "remote document store base URL")
	fs.StringVar(&cfg.RemoteNamespace, "n", cfg.RemoteNamespace, "remote namespace segment")
	fs.StringVar(&cfg.SyncID, "s", cfg.SyncID, "sync identifier")
	fs.StringVar(&cfg.SyncSecret, "k", cfg.SyncSecret, "sync secret")
	pollSeconds := fs.Int("p", int(cfg.PollInterval.Seconds()), "poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollSeconds) * time.Second
}
