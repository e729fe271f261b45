package main

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/backend/kvstore"
	"mystore-pos/internal/backend/memstore"
	"mystore-pos/internal/backend/restapi"
	"mystore-pos/internal/backend/sqlstore"
	"mystore-pos/internal/catalog"
	"mystore-pos/internal/config"
	"mystore-pos/internal/database"
	"mystore-pos/internal/export"
	"mystore-pos/internal/sale"
	"mystore-pos/internal/scanner"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// openBackend builds the configured strategy. The returned func releases it.
func openBackend(cfg *config.Config) (backend.Backend, func(), error) {
	switch cfg.Backend {
	case backend.KindSQL:
		db, err := database.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, err
		}
		return sqlstore.New(db), func() {}, nil
	case backend.KindKV:
		kv, err := kvstore.Open(cfg.KVPath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {
			if err := kv.Close(); err != nil {
				log.Println("kv close:", err)
			}
		}, nil
	case backend.KindSeed:
		return memstore.New(nil), func() {}, nil
	default:
		return restapi.New(cfg.APIBaseURL, cfg.APITimeout), func() {}, nil
	}
}

// listen serves until the app stops. A failed Listen releases the backend
// first, since the log.Fatal that follows skips deferred calls.
func listen(app *fiber.App, addr string, release func()) error {
	if err := app.Listen(addr); err != nil {
		release()
		return err
	}
	return nil
}

func main() {
	cfg := config.Load()

	be, closeFn, err := openBackend(cfg)
	if err != nil {
		log.Fatal("backend init failed: ", err)
	}
	closeBackend := sync.OnceFunc(closeFn)
	defer closeBackend()
	log.Printf("backend: %s", cfg.Backend)

	var fallback *backend.Dataset
	if cfg.SeedFallback {
		fallback = backend.Seed()
	}
	store := catalog.New(be, fallback)

	// the terminal starts even when the backend is down; the banner says so
	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
	if err := store.Load(ctx); err != nil {
		log.Println("[WARN] initial load:", err)
	}
	cancel()

	renderer := export.PDFRenderer{}
	workflow := sale.New(store, be, renderer, sale.WithSeller(cfg.DefaultSeller))
	keys := sale.NewKeyDispatcher(workflow)
	decoder := scanner.NewDecoder()

	app := fiber.New(fiber.Config{
		ReadTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	}))

	api := app.Group("/api")

	api.Get("/status", catalog.StatusHandler(store))
	api.Post("/reload", catalog.ReloadHandler(store))

	// Catalog
	api.Get("/products", catalog.ListProductsHandler(store))
	api.Post("/products", catalog.CreateProductHandler(store))
	api.Get("/products/code/:code", catalog.ProductByCodeHandler(store))
	api.Put("/products/:id", catalog.UpdateProductHandler(store))
	api.Delete("/products/:id", catalog.DeleteProductHandler(store))

	api.Get("/clients", catalog.ListClientsHandler(store))
	api.Post("/clients", catalog.CreateClientHandler(store))
	api.Put("/clients/:id", catalog.UpdateClientHandler(store))
	api.Delete("/clients/:id", catalog.DeleteClientHandler(store))

	api.Get("/company", catalog.GetCompanyHandler(store))
	api.Put("/company", catalog.UpdateCompanyHandler(store))

	// Sales history
	api.Get("/sales", export.ListSalesHandler(store))
	api.Get("/sales/:id", export.GetSaleHandler(store))
	api.Get("/sales/:id/invoice", export.SaleInvoiceHandler(store, renderer))

	// Current sale
	api.Get("/sale", sale.ViewHandler(workflow))
	api.Post("/sale/lines", sale.AddLineHandler(workflow))
	api.Put("/sale/lines/:productId", sale.UpdateLineHandler(workflow))
	api.Delete("/sale/lines/:productId", sale.RemoveLineHandler(workflow))
	api.Put("/sale/client", sale.SetClientHandler(workflow))
	api.Put("/sale/seller", sale.SetSellerHandler(workflow))
	api.Post("/sale/pay", sale.PayHandler(workflow))
	api.Post("/sale/invoice", sale.InvoiceHandler(workflow))
	api.Post("/sale/reset", sale.ResetHandler(workflow))
	api.Post("/sale/keys", sale.KeyHandler(workflow, keys))

	// Reports
	api.Get("/reports/sales.pdf", export.SalesPDFHandler(store))
	api.Get("/reports/sales.xlsx", export.SalesXLSXHandler(store))
	api.Get("/reports/daily", export.DailyHandler(store))

	api.Post("/scan", scanner.ScanHandler(decoder, store.LookupCode))

	log.Printf("Server listening on :%s", cfg.HTTPPort)
	if err := listen(app, ":"+cfg.HTTPPort, closeBackend); err != nil {
		log.Fatal(err)
	}
}
