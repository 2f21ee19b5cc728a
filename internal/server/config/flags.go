package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, hours
//	-w int      bcrypt work factor
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string   From address for notification emails
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other packages.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-w", "-u", "-p", "-b", "-g", "-e", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token_validity_duration (in hours)")
	fs.IntVar(&config.HashCost, "w", config.HashCost, "bcrypt work factor")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.EmailSender, "m", config.EmailSender, "notification email sender")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Hour
}
