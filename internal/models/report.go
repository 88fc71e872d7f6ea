package models

// SalesSummary aggregates receipts over a date range.
type SalesSummary struct {
	NumReceipts int64   `json:"num_boletas"`
	TotalSold   float64 `json:"total_vendido"`
}

// TopProduct is one row of the best sellers report.
type TopProduct struct {
	ProductID   uint    `json:"producto_id"`
	ProductName string  `json:"nombre_producto"`
	UnitsSold   int64   `json:"unidades_vendidas"`
	TotalSold   float64 `json:"total_vendido"`
}
