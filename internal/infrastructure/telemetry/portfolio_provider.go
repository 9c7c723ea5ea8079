package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPortfolioProvider aggregates assigned houses per project
type GormPortfolioProvider struct {
	db *gorm.DB
}

// NewGormPortfolioProvider creates a GormPortfolioProvider
func NewGormPortfolioProvider(db *gorm.DB) *GormPortfolioProvider {
	return &GormPortfolioProvider{db: db}
}

// ProjectPositions sums the stored totals of assigned houses by project
func (p *GormPortfolioProvider) ProjectPositions(ctx context.Context) ([]ProjectPosition, error) {
	type row struct {
		ProyectoID     string          `gorm:"column:proyecto_id"`
		Houses         int64           `gorm:"column:houses"`
		TotalAbonado   decimal.Decimal `gorm:"column:total_abonado"`
		SaldoPendiente decimal.Decimal `gorm:"column:saldo_pendiente"`
	}
	var rows []row
	err := p.db.WithContext(ctx).
		Table("viviendas").
		Select("proyecto_id, COUNT(*) AS houses, COALESCE(SUM(total_abonado), 0) AS total_abonado, COALESCE(SUM(saldo_pendiente), 0) AS saldo_pendiente").
		Where("cliente_id IS NOT NULL").
		Group("proyecto_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ProjectPosition, len(rows))
	for i, r := range rows {
		out[i] = ProjectPosition{
			ProjectID:      r.ProyectoID,
			AssignedHouses: r.Houses,
			TotalPaid:      r.TotalAbonado,
			TotalBalance:   r.SaldoPendiente,
		}
	}
	return out, nil
}
