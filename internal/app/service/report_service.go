package service

import (
	"context"
	"fmt"
	"io"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Pedidos"

var reportHeaders = []string{
	"Pedido", "Fecha", "Estado", "Cliente", "Correo", "Teléfono",
	"Calle", "Ciudad", "Estado (dirección)", "Código postal", "País",
	"Producto", "ID producto", "Precio", "Cantidad", "Importe",
	"Subtotal", "Envío", "Total", "Notas",
}

// ReportService renders orders as a spreadsheet for the admin team
type ReportService interface {
	// ExportOrders writes every order, one row per line item, as xlsx
	ExportOrders(ctx context.Context, w io.Writer) (int, error)
}

type reportService struct {
	orders OrderService
}

func NewReportService(orders OrderService) ReportService {
	return &reportService{orders: orders}
}

func (s *reportService) ExportOrders(ctx context.Context, w io.Writer) (int, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, 1, toCells(reportHeaders)); err != nil {
		return 0, err
	}

	row := 2
	for _, order := range orders {
		for _, item := range order.Items {
			if err := writeRow(f, row, orderRow(order, item)); err != nil {
				return 0, err
			}
			row++
		}
	}

	if err := f.SetPanes(reportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write report: %w", err)
	}

	logger.Info("Order report exported", map[string]interface{}{
		"orders": len(orders),
		"rows":   row - 2,
	})
	return len(orders), nil
}

func orderRow(order model.Order, item model.OrderItem) []interface{} {
	return []interface{}{
		order.ID,
		order.CreatedAt.Format("2006-01-02 15:04"),
		string(order.Status),
		order.Customer.Name,
		order.Customer.Email,
		order.Customer.Phone,
		order.ShippingAddress.Street,
		order.ShippingAddress.City,
		order.ShippingAddress.State,
		order.ShippingAddress.PostalCode,
		order.ShippingAddress.Country,
		item.Name,
		item.ProductID,
		item.Price,
		item.Quantity,
		item.Price * float64(item.Quantity),
		order.Subtotal,
		order.ShippingCost,
		order.Total,
		order.Notes,
	}
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
