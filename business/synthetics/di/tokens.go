// Package di contains dependency injection tokens for the synthetics context.
package di

import (
	"github.com/fd1az/synthetic-orderbook/business/synthetics/app"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/httpapi"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/venue"
	"github.com/fd1az/synthetic-orderbook/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SyntheticsService = di.NewToken[*app.Service]("synthetics.Service")
	HTTPHandler       = di.NewToken[*httpapi.Handler]("synthetics.HTTPHandler")
)

// Private dependency tokens - internal to the synthetics module
var (
	Adapters    = di.NewToken[[]venue.Adapter]("synthetics:adapters")
	VenueRouter = di.NewToken[*venue.Router]("synthetics:venueRouter")
	Commissions = di.NewToken[*domain.CommissionTable]("synthetics:commissions")
)

func GetSyntheticsService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, SyntheticsService)
}

func GetHTTPHandler(c di.ServiceRegistry) *httpapi.Handler {
	return di.GetToken(c, HTTPHandler)
}

func GetAdapters(c di.ServiceRegistry) []venue.Adapter {
	return di.GetToken(c, Adapters)
}

func GetVenueRouter(c di.ServiceRegistry) *venue.Router {
	return di.GetToken(c, VenueRouter)
}

func GetCommissions(c di.ServiceRegistry) *domain.CommissionTable {
	return di.GetToken(c, Commissions)
}
