package controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"billing-service/internal/dto"
	"billing-service/internal/middleware"
	"billing-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxReceiptSize = 10 << 20 // 10MB

var allowedReceiptExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

var allowedReceiptMimes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type OrderController struct {
	Orders    *service.OrderService
	Companies *service.CompanyService
	UploadDir string
	Logger    *zap.Logger
}

func NewOrderController(orders *service.OrderService, companies *service.CompanyService, uploadDir string, logger *zap.Logger) *OrderController {
	return &OrderController{Orders: orders, Companies: companies, UploadDir: uploadDir, Logger: logger}
}

// POST /api/orders
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "cuerpo JSON inválido"})
		return
	}

	res, err := ctl.Orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	middleware.RecordOrderCreated()
	if res.EmailSent {
		middleware.RecordEmailResult("sent")
	} else {
		middleware.RecordEmailResult("failed")
	}

	c.JSON(http.StatusCreated, res)
}

// GET /api/orders — listado admin
func (ctl *OrderController) ListOrders(c *gin.Context) {
	orders, err := ctl.Orders.GetAll(c.Request.Context())
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/orders/:code
func (ctl *OrderController) GetOrder(c *gin.Context) {
	order, err := ctl.Orders.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PATCH /api/orders/:code/status
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "falta el campo status"})
		return
	}

	order, err := ctl.Orders.UpdateStatus(c.Request.Context(), c.Param("code"), req.Status)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// POST /api/orders/:code/receipt — multipart con el comprobante.
// El archivo se valida por completo antes de tocar el store o el mailer.
func (ctl *OrderController) UploadReceipt(c *gin.Context) {
	code := c.Param("code")

	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no se recibió ningún archivo"})
		return
	}

	if file.Size > maxReceiptSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "el archivo supera el máximo de 10MB"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mime := file.Header.Get("Content-Type")
	if !allowedReceiptExts[ext] || !mimeAllowed(mime) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "solo se aceptan JPG, PNG, WEBP o PDF"})
		return
	}

	// La orden tiene que existir antes de guardar nada en disco.
	if _, err := ctl.Orders.GetByCode(c.Request.Context(), code); err != nil {
		ctl.respondError(c, err)
		return
	}

	if err := os.MkdirAll(ctl.UploadDir, 0o755); err != nil {
		ctl.respondError(c, err)
		return
	}
	dst := filepath.Join(ctl.UploadDir, fmt.Sprintf("%s_%d%s", code, time.Now().UnixNano(), ext))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		ctl.respondError(c, err)
		return
	}

	res, err := ctl.Orders.SubmitReceipt(c.Request.Context(), code, dst, c.PostForm("notes"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/companies
func (ctl *OrderController) RegisterCompany(c *gin.Context) {
	var req dto.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nombre y email son requeridos"})
		return
	}

	company, err := ctl.Companies.Register(c.Request.Context(), req)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "company": company})
}

// GET /api/health
func (ctl *OrderController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (ctl *OrderController) respondError(c *gin.Context, err error) {
	var invalid *service.InvalidInputError

	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": invalid.Error()})
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "orden no encontrada"})
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrFinalState):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, service.ErrCompanyExists):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	default:
		ctl.Logger.Error("error interno", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "error interno del servidor"})
	}
}

func mimeAllowed(mime string) bool {
	if mime == "" || mime == "application/octet-stream" {
		// Algunos clientes no declaran el tipo; decide la extensión.
		return true
	}
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return allowedReceiptMimes[strings.TrimSpace(mime)]
}
