// Command seed loads an ingredient catalog file into the database.
//
// The file is a JSON array of {"name", "measurement_unit"} objects. Names are
// lower-cased before insert so prefix search behaves the same regardless of
// how the source file was capitalized; duplicate name/unit pairs are skipped
// by the upsert.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/foodgram/go-foodgram-backend/internal/config"
	"github.com/foodgram/go-foodgram-backend/internal/domain"
	"github.com/foodgram/go-foodgram-backend/internal/repo"
	"github.com/foodgram/go-foodgram-backend/internal/sysutil"
)

// catalogEntry mirrors one element of the catalog file.
type catalogEntry struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)

	file := flag.String("file", cfg.IngredFile, "path to the ingredient catalog JSON file")
	flag.Parse()

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("read catalog failed")
	}

	var entries []catalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("parse catalog failed")
	}

	items, skipped := normalize(entries)
	if len(items) == 0 {
		log.Fatal().Str("file", *file).Msg("catalog contains no usable entries")
	}

	db, err := repo.OpenSQLite(cfg.DBPath, false)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	inserted, err := repo.UpsertIngredients(ctx, db, items)
	if err != nil {
		log.Fatal().Err(err).Msg("upsert failed")
	}

	log.Info().
		Str("file", *file).
		Int("read", len(entries)).
		Int("skipped", skipped).
		Int64("inserted", inserted).
		Int64("existing", int64(len(items))-inserted).
		Msg("catalog loaded")
}

// normalize lower-cases names, trims whitespace, and drops blank or duplicate
// entries. The first occurrence of a name/unit pair wins.
func normalize(entries []catalogEntry) ([]domain.Ingredient, int) {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(entries))

	items := make([]domain.Ingredient, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		name := lower.String(strings.TrimSpace(e.Name))
		unit := strings.TrimSpace(e.MeasurementUnit)
		if name == "" || unit == "" {
			skipped++
			continue
		}
		key := name + "\x00" + unit
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		seen[key] = struct{}{}
		items = append(items, domain.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return items, skipped
}
