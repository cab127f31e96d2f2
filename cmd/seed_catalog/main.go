// seed_catalog carga o actualiza el catálogo de productos desde un archivo Excel.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.xlsx]
// Por defecto busca catalogo.xlsx en el directorio actual.
// Columnas de la primera hoja: A nombre, B unidad, C umbral de reposición. Fila 1 = encabezado.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/hotel-inventory/internal/infrastructure/excel"
	"github.com/jhoicas/hotel-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/hotel-inventory/pkg/config"
	"github.com/jhoicas/hotel-inventory/pkg/logger"
)

func main() {
	path := "catalogo.xlsx"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "seed_catalog"})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir catálogo")
	}
	defer f.Close()

	sheet, err := excel.ParseCatalog(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}
	for _, bad := range sheet.Invalid {
		log.Warn().Int("row", bad.Row).Str("name", bad.ProductName).Str("reason", bad.Reason).Msg("fila omitida")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	// Todo el archivo en una transacción: o entra completo o no entra nada.
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		repo := postgres.NewProductRepository(tx)
		for i := range sheet.Products {
			if err := repo.Upsert(ctx, &sheet.Products[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("guardar catálogo")
	}

	log.Info().
		Int("products", len(sheet.Products)).
		Int("skipped", len(sheet.Invalid)).
		Str("path", path).
		Msg("catálogo actualizado")
}
