package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"

	"mystore-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LookupFunc resolves a scanned code to a product.
type LookupFunc func(ctx context.Context, code string) (*models.Product, error)

type ScanResponse struct {
	Code    string          `json:"code"`
	Product *models.Product `json:"product,omitempty"`
}

func decodeUpload(fh *multipart.FileHeader) (image.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return img, nil
}

// POST /api/scan (multipart, one or more "frame" files; ?lookup=1 resolves the product)
func ScanHandler(dec Decoder, lookup LookupFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Se esperaba un formulario multipart")
		}
		files := form.File["frame"]
		if len(files) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Falta la imagen (frame)")
		}

		frames := make(Images, 0, len(files))
		for _, fh := range files {
			img, err := decodeUpload(fh)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Imagen inválida: "+err.Error())
			}
			frames = append(frames, img)
		}

		code, err := Scan(c.UserContext(), frames, dec)
		if errors.Is(err, ErrNoCode) {
			return fiber.NewError(fiber.StatusNotFound, "No se detectó ningún código")
		}
		if err != nil {
			return err
		}

		res := ScanResponse{Code: code}
		if c.QueryBool("lookup") && lookup != nil {
			p, err := lookup(c.UserContext(), code)
			if err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
			}
			res.Product = p
		}
		return c.JSON(res)
	}
}
