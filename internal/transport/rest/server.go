package rest

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/service/catalog"
	"github.com/vladislavdragonenkov/sales/internal/service/orders"
)

const dateLayout = "2006-01-02"

// Server — HTTP-граница сервиса поверх fiber.
type Server struct {
	app     *fiber.App
	catalog *catalog.Service
	orders  *orders.Service
	logger  *log.Entry
}

// NewServer собирает приложение с маршрутами API и открытым CORS.
func NewServer(catalogSvc *catalog.Service, ordersSvc *orders.Service, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		catalog: catalogSvc,
		orders:  ordersSvc,
		logger:  logger.WithField("component", "rest_server"),
	}

	s.app.Use(cors.New())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Post("/clients", s.registerClient)
	api.Get("/clients", s.listClients)
	api.Get("/clients/:identifier", s.findClients)

	api.Post("/products", s.registerProduct)
	api.Get("/products", s.listProducts)
	api.Get("/products/:identifier", s.findProducts)

	api.Post("/orders", s.placeOrder)
	api.Get("/orders", s.listOrders)
	// Фиксированный сегмент должен регистрироваться раньше параметра :id.
	api.Get("/orders/search", s.searchOrders)
	api.Get("/orders/:id", s.getOrder)
}

// App возвращает fiber-приложение (используется в тестах).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen запускает HTTP-сервер на addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown останавливает сервер, дождавшись активных запросов.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerClient(ctx *fiber.Ctx) error {
	var req registerClientRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	client, err := s.catalog.RegisterClient(domain.Client{Name: req.Name, Email: req.Email})
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(toClientResponse(client))
}

func (s *Server) listClients(ctx *fiber.Ctx) error {
	clients, err := s.catalog.ListClients()
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.JSON(toClientResponses(clients))
}

// findClients ищет по точному id либо фрагменту имени; пустой результат — 404.
func (s *Server) findClients(ctx *fiber.Ctx) error {
	clients, err := s.catalog.FindClients(ctx.Params("identifier"))
	if err != nil {
		return s.respondError(ctx, err)
	}
	if len(clients) == 0 {
		return notFound(ctx, "no clients match the identifier")
	}
	return ctx.JSON(toClientResponses(clients))
}

func (s *Server) registerProduct(ctx *fiber.Ctx) error {
	var req registerProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	product, err := s.catalog.RegisterProduct(domain.Product{
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		StockQty:    req.StockQty,
	})
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(toProductResponse(product))
}

func (s *Server) listProducts(ctx *fiber.Ctx) error {
	products, err := s.catalog.ListProducts()
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.JSON(toProductResponses(products))
}

func (s *Server) findProducts(ctx *fiber.Ctx) error {
	products, err := s.catalog.FindProducts(ctx.Params("identifier"))
	if err != nil {
		return s.respondError(ctx, err)
	}
	if len(products) == 0 {
		return notFound(ctx, "no products match the identifier")
	}
	return ctx.JSON(toProductResponses(products))
}

func (s *Server) placeOrder(ctx *fiber.Ctx) error {
	var req placeOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	order, err := s.orders.Place(req.toDomain())
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

func (s *Server) listOrders(ctx *fiber.Ctx) error {
	report, err := s.orders.ListAll()
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.JSON(toOrderReportResponse(report))
}

// searchOrders принимает query-параметры order_id, client, product, from, to.
// Термы client и product "умные": целое число — точный id, иначе подстрока.
func (s *Server) searchOrders(ctx *fiber.Ctx) error {
	query := orders.SearchQuery{
		ClientTerm:  ctx.Query("client"),
		ProductTerm: ctx.Query("product"),
	}

	if raw := ctx.Query("order_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(ctx, "order_id must be an integer")
		}
		query.OrderID = &id
	}
	if raw := ctx.Query("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return badRequest(ctx, "from must be a date in YYYY-MM-DD format")
		}
		query.From = &from
	}
	if raw := ctx.Query("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return badRequest(ctx, "to must be a date in YYYY-MM-DD format")
		}
		query.To = &to
	}

	report, err := s.orders.Search(query)
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.JSON(toOrderReportResponse(report))
}

func (s *Server) getOrder(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return badRequest(ctx, "order id must be an integer")
	}

	order, err := s.orders.Get(id)
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.JSON(toOrderResponse(order))
}

// respondError отображает доменные ошибки в HTTP-статусы.
func (s *Server) respondError(ctx *fiber.Ctx, err error) error {
	switch {
	case domain.IsValidation(err):
		return fail(ctx, fiber.StatusBadRequest, err)
	case domain.IsNotFound(err):
		return fail(ctx, fiber.StatusNotFound, err)
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrEmailTaken):
		return fail(ctx, fiber.StatusConflict, err)
	default:
		s.logger.WithError(err).WithFields(log.Fields{
			"method": ctx.Method(),
			"path":   ctx.Path(),
		}).Error("request failed")
		return fail(ctx, fiber.StatusInternalServerError, err)
	}
}

func fail(ctx *fiber.Ctx, status int, err error) error {
	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func notFound(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}
