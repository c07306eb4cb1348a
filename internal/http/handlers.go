package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"bakery/internal/domain"
	"bakery/internal/logging"
	"bakery/internal/repository"
	"bakery/internal/service"
)

type Server struct {
	engine   *gin.Engine
	catalog  *service.CatalogService
	carts    *service.CartService
	orders   *service.OrderService
	currency string
	log      *zap.Logger
}

func NewServer(catalog *service.CatalogService, carts *service.CartService, orders *service.OrderService, currency string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if currency == "" {
		currency = service.DefaultCurrency
	}
	r := gin.New()
	r.Use(logging.GinLogger(log), gin.Recovery())
	s := &Server{engine: r, catalog: catalog, carts: carts, orders: orders, currency: currency, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok\n") })

	v1 := s.engine.Group("/api/v1")
	{
		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.GET("/categories", s.listCategories)
		products.GET("/:key", s.getProduct)

		v1.GET("/testimonials", s.listTestimonials)

		carts := v1.Group("/carts")
		carts.POST("", s.createCart)
		carts.GET("/:id", s.getCart)
		carts.DELETE("/:id", s.clearCart)
		carts.POST("/:id/items", s.addItem)
		carts.PUT("/:id/items/:product_id/:size", s.updateQuantity)
		carts.DELETE("/:id/items/:product_id/:size", s.removeItem)
		carts.POST("/:id/checkout", s.checkout)
	}
}

// productView товар с готовой строкой цены для витрины
type productView struct {
	domain.Product
	DisplayPrice string `json:"display_price"`
}

type catalogResp struct {
	Items any `json:"items"`
}

type errorResp struct {
	Error      string `json:"error"`
	Retryable  bool   `json:"retryable"`
	StatusCode int    `json:"upstream_status,omitempty"`
}

type catalogErrorResp struct {
	errorResp
	Items []any `json:"items"`
}

// @Summary List available products
// @Tags products
// @Produce json
// @Param refresh query bool false "Bypass the catalog cache"
// @Param q query string false "Name contains"
// @Param category query string false "Category"
// @Param filter query string false "Flag filter (flavor-wise, occasion-wise, customer-cake or attribute name)"
// @Param min_price query number false "Min display price"
// @Param max_price query number false "Max display price"
// @Success 200 {object} catalogResp
// @Failure 500 {object} catalogErrorResp
// @Failure 502 {object} catalogErrorResp
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	var f repository.ProductFilter
	f.NameSubstring = c.Query("q")
	f.Category = c.Query("category")
	f.Flag = c.Query("filter")
	if v := c.Query("min_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.catalog.ListProducts(c, f, queryBool(c, "refresh"))
	if err != nil {
		s.catalogError(c, err)
		return
	}
	views := make([]productView, 0, len(list))
	for _, p := range list {
		views = append(views, productView{Product: p, DisplayPrice: p.DisplayPrice(s.currency)})
	}
	c.JSON(http.StatusOK, catalogResp{Items: views})
}

// @Summary Distinct product categories
// @Tags products
// @Produce json
// @Success 200 {object} catalogResp
// @Failure 502 {object} catalogErrorResp
// @Router /products/categories [get]
func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.catalog.Categories(c)
	if err != nil {
		s.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogResp{Items: cats})
}

// @Summary Get product by id (or name for id-less rows)
// @Tags products
// @Produce json
// @Param key path string true "Product id"
// @Success 200 {object} productView
// @Failure 404 {object} errorResp
// @Router /products/{key} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.catalog.FindProduct(c, c.Param("key"))
	if err != nil {
		s.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, productView{Product: *p, DisplayPrice: p.DisplayPrice(s.currency)})
}

// @Summary List testimonials
// @Tags testimonials
// @Produce json
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} catalogResp
// @Failure 502 {object} catalogErrorResp
// @Router /testimonials [get]
func (s *Server) listTestimonials(c *gin.Context) {
	list, err := s.catalog.Testimonials(c, queryBool(c, "refresh"))
	if err != nil {
		s.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogResp{Items: list})
}

// @Summary Create cart
// @Tags carts
// @Produce json
// @Success 201 {object} service.CartView
// @Router /carts [post]
func (s *Server) createCart(c *gin.Context) {
	v, err := s.carts.Create(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// @Summary Get cart
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Success 200 {object} service.CartView
// @Failure 404 {object} errorResp
// @Router /carts/{id} [get]
func (s *Server) getCart(c *gin.Context) {
	v, err := s.carts.Get(c, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary Clear cart
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Success 200 {object} service.CartView
// @Failure 404 {object} errorResp
// @Router /carts/{id} [delete]
func (s *Server) clearCart(c *gin.Context) {
	v, err := s.carts.Clear(c, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
}

// @Summary Add one unit of a product in a size
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param input body addItemReq true "Item"
// @Success 200 {object} service.CartView
// @Failure 400 {object} errorResp
// @Failure 404 {object} errorResp
// @Router /carts/{id}/items [post]
func (s *Server) addItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid json"})
		return
	}
	size := domain.Size(req.Size)
	if size == "" {
		size = domain.Size500g
	}
	v, err := s.carts.AddItem(c, c.Param("id"), req.ProductID, size)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

// @Summary Set line quantity (0 or less removes the line)
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param product_id path string true "Product id"
// @Param size path string true "Size"
// @Param input body updateQuantityReq true "Quantity"
// @Success 200 {object} service.CartView
// @Failure 400 {object} errorResp
// @Failure 404 {object} errorResp
// @Router /carts/{id}/items/{product_id}/{size} [put]
func (s *Server) updateQuantity(c *gin.Context) {
	var req updateQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid json"})
		return
	}
	v, err := s.carts.UpdateQuantity(c, c.Param("id"), c.Param("product_id"), domain.Size(c.Param("size")), req.Quantity)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary Remove line
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Param product_id path string true "Product id"
// @Param size path string true "Size"
// @Success 200 {object} service.CartView
// @Failure 404 {object} errorResp
// @Router /carts/{id}/items/{product_id}/{size} [delete]
func (s *Server) removeItem(c *gin.Context) {
	v, err := s.carts.RemoveItem(c, c.Param("id"), c.Param("product_id"), domain.Size(c.Param("size")))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary Checkout: build the order message and link, then clear the cart
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Success 200 {object} service.Order
// @Failure 404 {object} errorResp
// @Failure 409 {object} errorResp
// @Router /carts/{id}/checkout [post]
func (s *Server) checkout(c *gin.Context) {
	o, err := s.orders.PlaceOrder(c, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// catalogError keeps the storefront renderable: the list is empty and the
// client is told whether a retry makes sense.
func (s *Server) catalogError(c *gin.Context, err error) {
	resp := catalogErrorResp{errorResp: errorResp{Error: err.Error()}, Items: []any{}}
	var unavailable *repository.SourceUnavailableError
	if errors.As(err, &unavailable) {
		resp.Retryable = true
		resp.StatusCode = unavailable.StatusCode
	}
	c.JSON(mapErrorToStatus(err), resp)
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, errorResp{Error: err.Error(), Retryable: errors.Is(err, repository.ErrSourceUnavailable)})
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, repository.ErrSourceUnavailable), errors.Is(err, repository.ErrResponseTooLarge):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
