package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/arhyth/ledgerxgo"
)

// seeder writes a demo snapshot so the server has something to serve
// on a fresh checkout.
func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfp := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	var cfg ledgerxgo.Config
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	if err = yaml.NewDecoder(cfgfl).Decode(&cfg); err != nil {
		logger.Fatal().Err(err).Msg("error decoding config file")
	}
	cfgfl.Close()

	ldgr := ledgerxgo.NewLedger(&logger)
	seeds := []ledgerxgo.CreateAccountReq{
		{Name: "Alice", OpeningBalance: decimal.NewFromInt(100)},
		{Name: "Bob", OpeningBalance: decimal.NewFromInt(50)},
		{Name: "Carol, Inc.", OpeningBalance: decimal.RequireFromString("1234.56")},
	}
	for _, req := range seeds {
		if _, err := ldgr.CreateAccount(req); err != nil {
			logger.Fatal().Err(err).Str("name", req.Name).Msg("error seeding account")
		}
	}
	if err := ldgr.Save(cfg.Snapshot.Path); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Snapshot.Path).Msg("error saving snapshot")
	}
	logger.Info().Str("path", cfg.Snapshot.Path).Int("accounts", len(seeds)).Msg("snapshot seeded")
}
