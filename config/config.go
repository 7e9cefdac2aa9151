// Package config is the flag-driven configuration surface for cmd/edisd:
// no environment variables are read, only command-line flags.
package config

import "flag"

// Config holds every setting the router and RESP front end need to start.
type Config struct {
	Host      string
	Port      int
	DataDir   string
	Databases int

	Quiet       bool
	Verbose     bool
	VeryVerbose bool
}

// Parse builds a Config from command-line flags.
func Parse() *Config {
	c := &Config{}
	flag.StringVar(&c.Host, "h", "", "The listening host.")
	flag.IntVar(&c.Port, "p", 6380, "The listening port.")
	flag.StringVar(&c.DataDir, "d", "./data", "Data dir -- one edis-<index> subdirectory per shard.")
	flag.IntVar(&c.Databases, "databases", 16, "Number of keyspace shards.")
	flag.BoolVar(&c.Verbose, "v", false, "Enable verbose logging.")
	flag.BoolVar(&c.Quiet, "q", false, "Quiet logging. Totally silent.")
	flag.BoolVar(&c.VeryVerbose, "vv", false, "Enable very verbose logging.")
	flag.Parse()
	return c
}
