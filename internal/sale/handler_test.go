package sale

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mystore-pos/internal/input"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	w, _, _, _ := newTestWorkflow(t)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	api := app.Group("/api")
	api.Get("/sale", ViewHandler(w))
	api.Post("/sale/lines", AddLineHandler(w))
	api.Put("/sale/lines/:productId", UpdateLineHandler(w))
	api.Delete("/sale/lines/:productId", RemoveLineHandler(w))
	api.Post("/sale/pay", PayHandler(w))
	api.Post("/sale/invoice", InvoiceHandler(w))
	api.Post("/sale/keys", KeyHandler(w, NewKeyDispatcher(w)))
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSaleHTTPFlow(t *testing.T) {
	app := newTestApp(t)

	resp := send(t, app, http.MethodPost, "/api/sale/lines", `{"input":"1","quantity":2}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	added := decode[LineResponse](t, resp)
	assert.Equal(t, 2, added.Line.Quantity)
	assert.True(t, added.View.CanPay)

	resp = send(t, app, http.MethodPost, "/api/sale/keys", `{"key":"Enter","scope":"add","value":"7401000000028"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	key := decode[KeyResponse](t, resp)
	assert.Equal(t, input.Delivered, key.Outcome)
	assert.Len(t, key.View.Lines, 2)

	resp = send(t, app, http.MethodPost, "/api/sale/pay", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	paid := decode[View](t, resp)
	assert.Equal(t, Paid, paid.State)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, "27.00", paid.Total.StringFixed(2))

	resp = send(t, app, http.MethodPost, "/api/sale/invoice", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "factura_1.pdf")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))

	resp = send(t, app, http.MethodPost, "/api/sale/invoice", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestEnterOutsideAddScopeIsSwallowed(t *testing.T) {
	app := newTestApp(t)

	for _, scope := range []string{"", "multiline", "client"} {
		resp := send(t, app, http.MethodPost, "/api/sale/keys", `{"key":"Enter","scope":"`+scope+`","value":"1"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		key := decode[KeyResponse](t, resp)
		assert.NotEqual(t, input.Delivered, key.Outcome, scope)
		assert.Empty(t, key.View.Lines, scope)
	}
}

func TestUpdateLineReportsCap(t *testing.T) {
	app := newTestApp(t)

	resp := send(t, app, http.MethodPost, "/api/sale/lines", `{"input":"3"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send(t, app, http.MethodPut, "/api/sale/lines/3", `{"quantity":500}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[LineResponse](t, resp)
	assert.Equal(t, 40, updated.Line.Quantity)
	assert.NotEmpty(t, updated.Warning)

	resp = send(t, app, http.MethodDelete, "/api/sale/lines/7", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddUnknownProduct(t *testing.T) {
	app := newTestApp(t)

	resp := send(t, app, http.MethodPost, "/api/sale/lines", `{"input":"0000"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	res := decode[map[string]string](t, resp)
	assert.Equal(t, "Producto no encontrado", res["error"])

	resp = send(t, app, http.MethodPost, "/api/sale/pay", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddLineRejectsExplicitZeroQuantity(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{`{"input":"1","quantity":0}`, `{"input":"1","quantity":-2}`} {
		resp := send(t, app, http.MethodPost, "/api/sale/lines", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	resp := send(t, app, http.MethodPost, "/api/sale/keys", `{"key":"Enter","scope":"add","value":"1","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/sale", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[View](t, resp).Lines)

	resp = send(t, app, http.MethodPost, "/api/sale/lines", `{"input":"1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, decode[LineResponse](t, resp).Line.Quantity)
}
