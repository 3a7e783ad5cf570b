// dto.go
package dto

// CreateOrderRequest es el esquema canónico de creación de órdenes,
// compartido por la API y el consumer de Rabbit.
type CreateOrderRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Amount  float64 `json:"amount"`
	Lang    string  `json:"lang"`
	Product string  `json:"product"`
}

type CreateOrderResponse struct {
	Success   bool   `json:"success"`
	OrderCode string `json:"orderCode"`
	EmailSent bool   `json:"emailSent"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ReceiptResponse struct {
	Success   bool   `json:"success"`
	OrderCode string `json:"orderCode"`
	Status    string `json:"status"`
}

type RegisterCompanyRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}
