package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/presto-relay/presto/internal/badge"
	"github.com/presto-relay/presto/internal/codec"
	"github.com/presto-relay/presto/internal/config"
	"github.com/presto-relay/presto/internal/database"

	"github.com/rs/zerolog"
)

const usage = `usage: badgetool <command> [arguments]

commands:
  encode -key K [-d] N        mask the integer N with key K
  decode -key K TOKEN         recover the integer in TOKEN
  newkey                      print a fresh random key
  inspect [-salt S] [-iterations I] FILE.png
                              print the payload embedded in a badge
  verify FILE.png             check a badge against the database
  migrate                     create the badge table
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "encode":
		err = encode(args)
	case "decode":
		err = decode(args)
	case "newkey":
		fmt.Println(codec.NewKey())
	case "inspect":
		err = inspect(args, logger)
	case "verify":
		err = verify(args, logger)
	case "migrate":
		err = migrate()
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func encode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	key := fs.String("key", codec.FixedKey, "32 hex digit key")
	deterministic := fs.Bool("d", false, "deterministic encoding")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("encode takes exactly one integer")
	}
	n, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %v", fs.Arg(0), err)
	}
	token, err := codec.Encode(n, *key, *deterministic)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func decode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	key := fs.String("key", codec.FixedKey, "32 hex digit key")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("decode takes exactly one token")
	}
	n, err := codec.Decode(fs.Arg(0), *key)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func inspect(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	salt := fs.String("salt", os.Getenv("BADGE_HASH_SALT"), "payload signature salt")
	iterations := fs.Int("iterations", envInt("BADGE_HASH_ITERATIONS", 1), "payload signature iterations")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect takes exactly one file")
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("unable to decode %s: %v", fs.Arg(0), err)
	}
	engine := badge.NewEngine(nil, badge.Hasher{Salt: []byte(*salt), Iterations: *iterations}, nil, logger)
	p, err := engine.Inspect(img)
	if err != nil {
		return err
	}
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func verify(args []string, logger zerolog.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("verify takes exactly one file")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("unable to load config: %v", err)
	}
	conn, err := database.GetDbConn(cfg.DatabaseUser, cfg.DatabasePassword, cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseName, cfg.DatabaseSSLMode)
	if err != nil {
		return fmt.Errorf("unable to connect to postgres: %v", err)
	}
	defer database.CloseDbConn(conn)

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	engine := badge.NewEngine(
		badge.NewRepository(conn),
		badge.Hasher{Salt: cfg.BadgeHashSalt, Iterations: cfg.BadgeHashIterations},
		nil,
		logger,
	)
	rec, err := engine.VerifyPNG(f)
	if err != nil {
		return err
	}
	p := rec.Payload()
	fmt.Printf("valid: badge %d of %s, %s level %d (verification #%d)\n", rec.ID, p.Name, p.CourseCode, p.Level, rec.VerifyCount)
	return nil
}

func migrate() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("unable to load config: %v", err)
	}
	conn, err := database.GetDbConn(cfg.DatabaseUser, cfg.DatabasePassword, cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseName, cfg.DatabaseSSLMode)
	if err != nil {
		return fmt.Errorf("unable to connect to postgres: %v", err)
	}
	defer database.CloseDbConn(conn)
	if err := badge.NewRepository(conn).CreateTable(); err != nil {
		return err
	}
	log.Println("badge table ready")
	return nil
}

func envInt(name string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return fallback
	}
	return n
}
