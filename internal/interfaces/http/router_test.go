package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-manager/internal/application/analytics"
	"github.com/jhoicas/invoice-manager/internal/application/billing"
	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/application/settings"
	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/memory"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/pdf"
	settingsstore "github.com/jhoicas/invoice-manager/internal/infrastructure/settings"
	apphttp "github.com/jhoicas/invoice-manager/internal/interfaces/http"
	"github.com/jhoicas/invoice-manager/internal/observability"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type fakeMailer struct{ sent []billing.EmailMessage }

func (m *fakeMailer) Send(_ context.Context, msg billing.EmailMessage) error {
	m.sent = append(m.sent, msg)
	return nil
}

type testEnv struct {
	app    *fiber.App
	store  *memory.Store
	mailer *fakeMailer
}

// newTestEnv monta la API completa sobre el almacén en memoria.
func newTestEnv(t *testing.T, invoiceRepo repository.InvoiceRepository) *testEnv {
	t.Helper()
	store := memory.NewStore()
	if invoiceRepo == nil {
		invoiceRepo = store.Invoices()
	}
	svc := settings.NewService(
		settingsstore.NewFileStore(filepath.Join(t.TempDir(), "company.json")),
		entity.PlaceholderCompanySettings(),
	)
	mailer := &fakeMailer{}
	pdfUC := billing.NewPDFUseCase(invoiceRepo, svc, pdf.NewMarotoPDFGenerator(pdf.Options{}))

	app := apphttp.NewApp(apphttp.AppConfig{
		Name:    "invoice-manager-test",
		Metrics: observability.NewMetrics("test"),
		Logger:  zerolog.Nop(),
	})
	apphttp.Router(app, apphttp.RouterDeps{
		InvoiceUC:    billing.NewInvoiceUseCase(invoiceRepo, billing.InvoiceConfig{Now: clock}),
		SuggestionUC: billing.NewSuggestionUseCase(invoiceRepo),
		ClientUC:     billing.NewClientUseCase(store.Clients()),
		PDFUC:        pdfUC,
		EmailUC:      billing.NewEmailUseCase(invoiceRepo, pdfUC, svc, mailer, "$"),
		DashboardUC:  analytics.NewDashboardUseCase(invoiceRepo, store.Clients()).WithClock(clock),
		Settings:     svc,
		Logger:       zerolog.Nop(),
	})
	return &testEnv{app: app, store: store, mailer: mailer}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
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

func scenarioRequest() dto.InvoiceRequest {
	return dto.InvoiceRequest{
		Customer: dto.CustomerDTO{Name: "Acme", Email: "billing@acme.test", Phone: "555-0101"},
		Items: []dto.InvoiceItemRequest{
			{Description: "Horas de soporte", Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
			{Description: "Licencia", Quantity: 1, UnitPrice: decimal.RequireFromString("25.00")},
		},
		TaxRate: decimal.RequireFromString("10"),
	}
}

func (e *testEnv) createInvoice(t *testing.T, in dto.InvoiceRequest) dto.InvoiceResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/invoices", in)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[dto.InvoiceResponse](t, resp)
}

// failingItemsRepo simula un fallo del backend al insertar líneas.
type failingItemsRepo struct {
	repository.InvoiceRepository
}

func (failingItemsRepo) CreateItems(context.Context, string, []*entity.InvoiceItem) error {
	return errors.Join(domain.ErrRemote, errors.New("500 insert invoice_items"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Infraestructura
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYMetrics(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	env.do(t, http.MethodGet, "/api/invoices", nil)
	resp = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "test_http_requests_total", "el middleware debe registrar las peticiones")
	assert.Contains(t, string(raw), `method="GET"`)
}

func TestRutaInexistente_404JSON(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotFound, decode[dto.ErrorResponse](t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestCrearFactura_Escenario(t *testing.T) {
	env := newTestEnv(t, nil)

	got := env.createInvoice(t, scenarioRequest())

	assert.Equal(t, "INV-0001", got.InvoiceNumber)
	assert.Equal(t, "2024-01-15", got.InvoiceDate)
	assert.Equal(t, "2024-02-14", got.DueDate, "vencimiento = fecha + 30 días")
	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("55")), "subtotal: %s", got.Subtotal)
	assert.True(t, got.TaxAmount.Equal(decimal.RequireFromString("5.5")), "impuesto: %s", got.TaxAmount)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("60.5")), "total: %s", got.Total)
	assert.Equal(t, "PENDING", got.PaymentStatus)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Horas de soporte", got.Items[0].Description, "se conserva el orden de las líneas")

	second := env.createInvoice(t, scenarioRequest())
	assert.Equal(t, "INV-0002", second.InvoiceNumber)
}

func TestCrearFactura_Errores(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/api/invoices", "{no-json")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidBody, decode[dto.ErrorResponse](t, resp).Code)

	noItems := scenarioRequest()
	noItems.Items = nil
	resp = env.do(t, http.MethodPost, "/api/invoices", noItems)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNoItems, decode[dto.ErrorResponse](t, resp).Code)

	noName := scenarioRequest()
	noName.Customer.Name = ""
	resp = env.do(t, http.MethodPost, "/api/invoices", noName)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, apphttp.CodeValidation, body.Code)
	assert.NotEmpty(t, body.Fields, "los errores de validación se informan por campo")

	dup := scenarioRequest()
	dup.InvoiceNumber = "FAC-9"
	env.createInvoice(t, dup)
	resp = env.do(t, http.MethodPost, "/api/invoices", dup)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCrearFactura_GuardadoParcial(t *testing.T) {
	store := memory.NewStore()
	env := newTestEnv(t, failingItemsRepo{InvoiceRepository: store.Invoices()})

	resp := env.do(t, http.MethodPost, "/api/invoices", scenarioRequest())
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, apphttp.CodePartialSave, body.Code)
	require.NotEmpty(t, body.InvoiceID)

	orphan, err := store.Invoices().GetByID(context.Background(), body.InvoiceID)
	require.NoError(t, err)
	require.NotNil(t, orphan, "la cabecera queda guardada")
	assert.Empty(t, orphan.Items)
}

func TestFactura_ConsultarActualizarEliminar(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.createInvoice(t, scenarioRequest())

	resp := env.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, created.InvoiceNumber, decode[dto.InvoiceResponse](t, resp).InvoiceNumber)

	resp = env.do(t, http.MethodGet, "/api/invoices/number/INV-0001", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[dto.InvoiceResponse](t, resp).ID)

	upd := scenarioRequest()
	upd.InvoiceNumber = created.InvoiceNumber
	upd.Items = upd.Items[:1]
	resp = env.do(t, http.MethodPut, "/api/invoices/"+created.ID, upd)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode[dto.InvoiceResponse](t, resp)
	assert.Len(t, updated.Items, 1)
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("33")), "total: %s", updated.Total)

	resp = env.do(t, http.MethodPatch, "/api/invoices/"+created.ID+"/status", dto.UpdatePaymentStatusRequest{PaymentStatus: "PAID"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PAID", decode[dto.InvoiceResponse](t, resp).PaymentStatus)

	resp = env.do(t, http.MethodPatch, "/api/invoices/"+created.ID+"/status", dto.UpdatePaymentStatusRequest{PaymentStatus: "LOST"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/invoices/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp = env.do(t, http.MethodDelete, "/api/invoices/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListarFacturas_Filtros(t *testing.T) {
	env := newTestEnv(t, nil)

	old := scenarioRequest()
	old.InvoiceDate = "2023-11-01"
	old.Customer.Name = "Globex"
	globex := env.createInvoice(t, old)
	env.createInvoice(t, scenarioRequest())

	resp := env.do(t, http.MethodGet, "/api/invoices?limit=10", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	all := decode[dto.InvoiceListResponse](t, resp)
	require.Len(t, all.Items, 2)
	assert.Equal(t, 2, all.Page.Total)
	assert.Equal(t, "2024-01-15", all.Items[0].InvoiceDate, "más reciente primero")

	resp = env.do(t, http.MethodGet, "/api/invoices?overdue=true", nil)
	overdue := decode[dto.InvoiceListResponse](t, resp)
	require.Len(t, overdue.Items, 1)
	assert.Equal(t, "Globex", overdue.Items[0].Customer.Name)
	assert.Equal(t, "overdue", overdue.Items[0].DueState)

	resp = env.do(t, http.MethodGet, "/api/invoices?q=glob", nil)
	assert.Len(t, decode[dto.InvoiceListResponse](t, resp).Items, 1)

	resp = env.do(t, http.MethodGet, "/api/invoices?from=2024-01-01&to=2024-01-31", nil)
	assert.Len(t, decode[dto.InvoiceListResponse](t, resp).Items, 1)

	resp = env.do(t, http.MethodPatch, "/api/invoices/"+globex.ID+"/status", dto.UpdatePaymentStatusRequest{PaymentStatus: "OVERDUE"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/invoices?status=OVERDUE", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	byStatus := decode[dto.InvoiceListResponse](t, resp)
	require.Len(t, byStatus.Items, 1)
	assert.Equal(t, globex.ID, byStatus.Items[0].ID)

	resp = env.do(t, http.MethodGet, "/api/invoices?from=15/01/2024", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPreview_NoPersiste(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/api/invoices/preview", scenarioRequest())
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decode[dto.InvoiceResponse](t, resp)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("60.5")))

	resp = env.do(t, http.MethodPost, "/api/invoices/preview/pdf", scenarioRequest())
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "invoice-PREVIEW.pdf")

	resp = env.do(t, http.MethodGet, "/api/invoices", nil)
	assert.Empty(t, decode[dto.InvoiceListResponse](t, resp).Items, "la vista previa no guarda nada")
}

func TestDescargarPDF(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.createInvoice(t, scenarioRequest())

	resp := env.do(t, http.MethodGet, "/api/invoices/"+created.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-INV-0001.pdf"`, resp.Header.Get("Content-Disposition"))
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")), "el cuerpo debe ser un PDF")

	resp = env.do(t, http.MethodGet, "/api/invoices/missing/pdf", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEmailYRecordatorio(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.createInvoice(t, scenarioRequest())

	resp := env.do(t, http.MethodPost, "/api/invoices/"+created.ID+"/email", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "billing@acme.test", env.mailer.sent[0].To)
	assert.Equal(t, "Invoice INV-0001", env.mailer.sent[0].Subject)
	require.Len(t, env.mailer.sent[0].Attachments, 1)

	resp = env.do(t, http.MethodPost, "/api/invoices/"+created.ID+"/email", dto.SendInvoiceEmailRequest{To: "no-es-email"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/invoices/"+created.ID+"/reminder", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, env.mailer.sent, 2)
	assert.Equal(t, "Payment Reminder - Invoice INV-0001", env.mailer.sent[1].Subject)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes, sugerencias, ajustes y panel
// ──────────────────────────────────────────────────────────────────────────────

func TestSugerenciasDeCliente(t *testing.T) {
	env := newTestEnv(t, nil)
	env.createInvoice(t, scenarioRequest())
	env.createInvoice(t, scenarioRequest())

	resp := env.do(t, http.MethodGet, "/api/customers/suggestions?name=ac", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[[]dto.CustomerSuggestionDTO](t, resp)
	require.Len(t, list, 1, "se deduplican los clientes")
	assert.Equal(t, "Acme", list[0].Name)

	resp = env.do(t, http.MethodGet, "/api/customers/suggestions?name=a", nil)
	assert.Empty(t, decode[[]dto.CustomerSuggestionDTO](t, resp))

	resp = env.do(t, http.MethodGet, "/api/customers/match?name=Acme&phone=555-0101", nil)
	match := decode[dto.CustomerMatchResponse](t, resp)
	assert.True(t, match.Found)
	require.NotNil(t, match.Customer)
	assert.Equal(t, "billing@acme.test", match.Customer.Email)

	resp = env.do(t, http.MethodGet, "/api/customers/unique", nil)
	assert.Len(t, decode[[]dto.CustomerSuggestionDTO](t, resp), 1)
}

func TestClientes_CRUD(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/api/clients", dto.ClientRequest{Name: "Initech", Email: "ap@initech.test"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.ClientResponse](t, resp)
	require.NotEmpty(t, created.ID)

	resp = env.do(t, http.MethodPost, "/api/clients", dto.ClientRequest{Name: "X", Email: "mal"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/clients?q=init", nil)
	list := decode[dto.ClientListResponse](t, resp)
	require.Len(t, list.Items, 1)

	resp = env.do(t, http.MethodPut, "/api/clients/"+created.ID, dto.ClientRequest{Name: "Initech LLC"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Initech LLC", decode[dto.ClientResponse](t, resp).Name)

	resp = env.do(t, http.MethodDelete, "/api/clients/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/clients/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAjustesDeEmpresa(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/api/settings/company", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Your Company Name", decode[dto.CompanySettingsDTO](t, resp).CompanyName)

	in := dto.CompanySettingsDTO{CompanyName: "Acme Billing", CompanyEmail: "hola@acme.test"}
	resp = env.do(t, http.MethodPut, "/api/settings/company", in)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/settings/company", nil)
	assert.Equal(t, "Acme Billing", decode[dto.CompanySettingsDTO](t, resp).CompanyName)

	resp = env.do(t, http.MethodPost, "/api/settings/company/reload", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme Billing", decode[dto.CompanySettingsDTO](t, resp).CompanyName, "se relee lo guardado")

	resp = env.do(t, http.MethodGet, "/api/settings/company/defaults", nil)
	assert.Equal(t, "Your Company Name", decode[dto.CompanySettingsDTO](t, resp).CompanyName)

	resp = env.do(t, http.MethodPut, "/api/settings/company", dto.CompanySettingsDTO{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "el nombre es obligatorio")
}

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv(t, nil)
	paid := env.createInvoice(t, scenarioRequest())
	env.createInvoice(t, scenarioRequest())
	env.do(t, http.MethodPatch, "/api/invoices/"+paid.ID+"/status", dto.UpdatePaymentStatusRequest{PaymentStatus: "PAID"})

	resp := env.do(t, http.MethodGet, "/api/dashboard/summary", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decode[dto.DashboardSummaryDTO](t, resp)
	assert.Equal(t, 2, got.TotalInvoices)
	assert.Equal(t, 1, got.PendingInvoices)
	assert.True(t, got.TotalRevenue.Equal(decimal.RequireFromString("60.5")), "ingresos: %s", got.TotalRevenue)
	assert.Len(t, got.RecentInvoices, 2)
}
