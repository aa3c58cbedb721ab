package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/settlers/assets"
	"github.com/robalobadob/settlers/internal/board"
	"github.com/robalobadob/settlers/internal/config"
	"github.com/robalobadob/settlers/internal/game"
	"github.com/robalobadob/settlers/internal/history"
	"github.com/robalobadob/settlers/internal/httpserver"
	"github.com/robalobadob/settlers/internal/match"
	"github.com/robalobadob/settlers/internal/seed"
	"github.com/robalobadob/settlers/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	layout, costs, err := loadBoard(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load board configuration")
	}

	salt := cfg.SeedSalt
	if salt == "" {
		if salt, err = seed.NewSalt(); err != nil {
			log.Fatal().Err(err).Msg("seed salt")
		}
		log.Warn().Msg("SEED_SALT not set; boards will not be reproducible across restarts")
	}

	db, err := openDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer db.Close()
	if err := migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	hist := history.NewStore(db)
	live := store.NewMemoryStore()
	lobby := match.NewLobby(match.Deps{
		Rules:    game.NewRules(layout, costs),
		Salt:     salt,
		Store:    live,
		Recorder: hist,
	})

	srv := httpserver.New(cfg, layout, costs, lobby, live, hist)
	log.Info().Str("port", cfg.Port).Msg("starting settlers server")
	if err := srv.Start(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// loadBoard reads the layout and cost table from the configured files, or
// the embedded defaults when unset.
func loadBoard(cfg config.Config) (*board.Layout, board.Costs, error) {
	var (
		layout *board.Layout
		costs  board.Costs
		err    error
	)
	if cfg.BoardLayoutFile != "" {
		layout, err = board.LoadLayoutFile(cfg.BoardLayoutFile)
	} else {
		layout, err = assets.DefaultLayout()
	}
	if err != nil {
		return nil, nil, err
	}
	if cfg.BuildCostFile != "" {
		costs, err = board.LoadCostsFile(cfg.BuildCostFile)
	} else {
		costs, err = assets.DefaultCosts()
	}
	if err != nil {
		return nil, nil, err
	}
	return layout, costs, nil
}
